package menu

import (
	"fmt"
	"strconv"
	"strings"
)

// Item is one dynamically produced entry of a multi-entry node.
type Item map[string]any

// Directory is the sink the host renders menu entries into. The walker calls
// it for the entries it can place itself; everything else goes through the
// Handler hooks.
type Directory interface {
	// Leaf adds an entry that dispatches to the named handler on activation.
	Leaf(title, call string) error
	// Folder adds an entry that opens the submenu at the given index path.
	Folder(title, indexPath string) error
}

// Handler is the host side of the walk. Implementations usually live on the
// plugin; plugin.Plugin provides a registry-backed one.
type Handler interface {
	// Entry renders a node the walker has no rule for. Returning false
	// means the entry was skipped.
	Entry(dir Directory, e *Entry) (bool, error)
	// EntryIter produces the items of a multi-entry node.
	EntryIter(e *Entry) ([]Item, error)
	// EntryItem renders a single produced item of a multi-entry node.
	EntryItem(dir Directory, e *Entry, item Item) (bool, error)
}

// Entry is the walker's resolved view of a node: the node itself plus data
// inherited from its ancestors.
type Entry struct {
	Node      Node
	IndexPath []int

	Title string
	ID    string
	Call  string
	Type  string
	View  string

	// OrderKey is the effective order key after inheritance.
	OrderKey string
}

// Path renders the entry's index path in the comma-separated wire form used
// by Folder targets.
func (e *Entry) Path() string {
	parts := make([]string, len(e.IndexPath))
	for i, v := range e.IndexPath {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

// Walker interprets a menu tree against a host Handler.
type Walker struct {
	Root    *Menu
	Handler Handler

	// Enabled gates nodes carrying a When key. Nil enables everything.
	Enabled func(settingKey string) bool
}

// inherited carries the node data that flows root to leaf.
type inherited struct {
	orderKey string
	view     string
}

// Walk renders the submenu at indexPath ("" for the root, "1,0" for the
// first child of the second entry) into dir.
func (w *Walker) Walk(dir Directory, indexPath string) error {
	if w.Root == nil {
		return fmt.Errorf("menu: walker has no root")
	}
	node, inh, err := w.resolve(indexPath)
	if err != nil {
		return err
	}
	prefix, err := parsePath(indexPath)
	if err != nil {
		return err
	}
	for i, child := range node.Items {
		path := append(append([]int(nil), prefix...), i)
		if err := w.walkNode(dir, child, path, inh); err != nil {
			return err
		}
	}
	return nil
}

// resolve follows indexPath from the root, accumulating inherited data.
func (w *Walker) resolve(indexPath string) (*Menu, inherited, error) {
	inh := inherited{orderKey: DefaultOrderKey}
	node := w.Root
	inh.absorb(node.OrderKey, node.View)
	path, err := parsePath(indexPath)
	if err != nil {
		return nil, inh, err
	}
	for _, idx := range path {
		if idx < 0 || idx >= len(node.Items) {
			return nil, inh, fmt.Errorf("menu: index path %q out of range", indexPath)
		}
		child, ok := node.Items[idx].(*Menu)
		if !ok {
			return nil, inh, fmt.Errorf("menu: index path %q descends into a multi-entry", indexPath)
		}
		node = child
		inh.absorb(node.OrderKey, node.View)
	}
	return node, inh, nil
}

func (inh *inherited) absorb(orderKey, view string) {
	if orderKey != "" {
		inh.orderKey = orderKey
	}
	if view != "" {
		inh.view = view
	}
}

func (w *Walker) enabled(when string) bool {
	if when == "" || w.Enabled == nil {
		return true
	}
	return w.Enabled(when)
}

func (w *Walker) walkNode(dir Directory, n Node, path []int, inh inherited) error {
	switch node := n.(type) {
	case *Items:
		if !w.enabled(node.When) {
			return nil
		}
		local := inh
		local.absorb(node.OrderKey, node.View)
		e := &Entry{
			Node:      node,
			IndexPath: path,
			Title:     node.Title,
			ID:        node.ID,
			Type:      node.Type,
			View:      local.view,
			OrderKey:  local.orderKey,
		}
		return w.walkItems(dir, node, e)
	case *Menu:
		if !w.enabled(node.When) {
			return nil
		}
		local := inh
		local.absorb(node.OrderKey, node.View)
		e := &Entry{
			Node:      node,
			IndexPath: path,
			Title:     node.Title,
			ID:        node.ID,
			Call:      node.Call,
			View:      local.view,
			OrderKey:  local.orderKey,
		}
		switch {
		case node.Call != "":
			return dir.Leaf(node.Title, node.Call)
		case len(node.Items) > 0:
			return dir.Folder(node.Title, e.Path())
		default:
			_, err := w.Handler.Entry(dir, e)
			return err
		}
	default:
		return fmt.Errorf("menu: unsupported node type %T", n)
	}
}

// walkItems expands a multi-entry: fetch items from the host, order them,
// then hand each back for rendering.
func (w *Walker) walkItems(dir Directory, node *Items, e *Entry) error {
	items, err := w.Handler.EntryIter(e)
	if err != nil {
		return fmt.Errorf("menu: expand %q: %w", node.ID, err)
	}
	ordered := make([]orderedItem, len(items))
	for i, item := range items {
		ordered[i] = orderedItem{
			item:  item,
			level: node.Order.Level(itemString(item, e.OrderKey)),
			index: i,
		}
		if node.SortKey != "" {
			ordered[i].sort = itemString(item, node.SortKey)
		}
	}
	sortItems(ordered)
	for _, oi := range ordered {
		if _, err := w.Handler.EntryItem(dir, e, oi.item); err != nil {
			return err
		}
	}
	return nil
}

func itemString(item Item, key string) string {
	switch v := item[key].(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func parsePath(indexPath string) ([]int, error) {
	if indexPath == "" {
		return nil, nil
	}
	parts := strings.Split(indexPath, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("menu: bad index path %q: %w", indexPath, err)
		}
		out = append(out, n)
	}
	return out, nil
}
