// Package menu describes a plugin's navigation hierarchy as declarative
// data. The tree is built once, typically at plugin construction, and walked
// on every navigation request. Rendering stays on the host side: the walker
// talks to the host through the Handler and Directory interfaces.
package menu

import (
	"errors"
	"fmt"
)

// DefaultOrderKey names the item field used for ordering multi-entries when
// a node does not set its own OrderKey.
var DefaultOrderKey = "title"

// Node is a single element of the menu tree, either a *Menu or an *Items.
type Node interface {
	isMenuNode()
}

// Menu is a static menu entry. A node is meaningful when at least one of
// Title, ID, Call or Items is set.
type Menu struct {
	// Title shown by the host. May be empty when Call carries its own label.
	Title string
	// ID is an opaque identifier resolved by the host or the plugin.
	ID string
	// Call names a registered handler invoked when the entry is activated.
	Call string
	// View is a host rendering hint, inherited by children.
	View string
	// When gates the entry on a settings key. Empty means always visible.
	When string
	// OrderKey overrides DefaultOrderKey for descendant multi-entries.
	OrderKey string
	// Items holds the ordered children of this node.
	Items []Node
}

func (m *Menu) isMenuNode() {}

// Items is a multi-entry node: its children are produced dynamically by the
// host (Handler.EntryIter), then ordered by Order and rendered one by one.
type Items struct {
	Title string
	// ID is passed through to the host iterator, e.g. a remote list id.
	ID string
	// Type tags every expanded entry.
	Type string
	// Order maps priority levels to title patterns; see Order.
	Order Order
	// OrderKey selects the item field matched against Order patterns.
	OrderKey string
	// SortKey selects the item field used to break ties inside one level.
	// Items keep their iteration order when empty.
	SortKey string
	View    string
	When    string
}

func (it *Items) isMenuNode() {}

// ErrEmptyNode marks a menu node with no title, id, call or children.
var ErrEmptyNode = errors.New("menu: node needs at least one of title, id, call or items")

// Validate walks the tree and reports the first meaningless node.
func Validate(root *Menu) error {
	return validate(root, nil)
}

func validate(n Node, path []int) error {
	switch node := n.(type) {
	case *Menu:
		if node.Title == "" && node.ID == "" && node.Call == "" && len(node.Items) == 0 {
			return fmt.Errorf("%w (at %v)", ErrEmptyNode, path)
		}
		for i, child := range node.Items {
			if err := validate(child, append(path, i)); err != nil {
				return err
			}
		}
	case *Items:
		if node.Title == "" && node.ID == "" && node.Type == "" {
			return fmt.Errorf("%w (at %v)", ErrEmptyNode, path)
		}
	case nil:
		return fmt.Errorf("menu: nil node (at %v)", path)
	}
	return nil
}
