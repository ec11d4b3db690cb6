package menu

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// manifestNode is the YAML shape of one tree node. A node with a type tag or
// an order map becomes a multi-entry; everything else is a plain Menu.
type manifestNode struct {
	Title    string             `yaml:"title,omitempty"`
	ID       string             `yaml:"id,omitempty"`
	Call     string             `yaml:"call,omitempty"`
	Type     string             `yaml:"type,omitempty"`
	View     string             `yaml:"view,omitempty"`
	When     string             `yaml:"when,omitempty"`
	OrderKey string             `yaml:"order_key,omitempty"`
	SortKey  string             `yaml:"sort_key,omitempty"`
	Order    map[int]stringList `yaml:"order,omitempty"`
	Items    []manifestNode     `yaml:"items,omitempty"`
}

// stringList accepts a single scalar or a sequence.
type stringList []string

func (l *stringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		*l = stringList{s}
		return nil
	case yaml.SequenceNode:
		var ss []string
		if err := value.Decode(&ss); err != nil {
			return err
		}
		*l = stringList(ss)
		return nil
	default:
		return fmt.Errorf("menu: order patterns must be a string or a list")
	}
}

// FromYAML parses a menu tree manifest. Order patterns are globs unless
// prefixed with "re:", which compiles the rest as a regular expression.
func FromYAML(data []byte) (*Menu, error) {
	var root manifestNode
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parse menu manifest: %w", err)
	}
	node, err := root.build()
	if err != nil {
		return nil, err
	}
	m, ok := node.(*Menu)
	if !ok {
		return nil, fmt.Errorf("menu: manifest root must not be a multi-entry")
	}
	if err := Validate(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (n *manifestNode) build() (Node, error) {
	if n.Type != "" || len(n.Order) > 0 {
		if len(n.Items) > 0 {
			return nil, fmt.Errorf("menu: multi-entry %q cannot carry static items", n.Title)
		}
		order := make(Order, len(n.Order))
		for level, patterns := range n.Order {
			for _, raw := range patterns {
				p, err := parsePattern(raw)
				if err != nil {
					return nil, err
				}
				order[level] = append(order[level], p)
			}
		}
		return &Items{
			Title:    n.Title,
			ID:       n.ID,
			Type:     n.Type,
			Order:    order,
			OrderKey: n.OrderKey,
			SortKey:  n.SortKey,
			View:     n.View,
			When:     n.When,
		}, nil
	}
	m := &Menu{
		Title:    n.Title,
		ID:       n.ID,
		Call:     n.Call,
		View:     n.View,
		When:     n.When,
		OrderKey: n.OrderKey,
	}
	for _, child := range n.Items {
		built, err := child.build()
		if err != nil {
			return nil, err
		}
		m.Items = append(m.Items, built)
	}
	return m, nil
}

func parsePattern(raw string) (Pattern, error) {
	if expr, ok := strings.CutPrefix(raw, "re:"); ok {
		re, err := regexp.Compile(expr)
		if err != nil {
			return Pattern{}, fmt.Errorf("menu: bad order regexp %q: %w", raw, err)
		}
		return Regexp(re), nil
	}
	return Glob(raw), nil
}
