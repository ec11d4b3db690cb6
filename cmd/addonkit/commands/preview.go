package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/addonkit/addonkit/menu"
)

// RunPreview renders the manifest's menu tree as indented text. Leaves show
// their call target, folders are expanded recursively, and multi-entry nodes
// show a placeholder since their items only exist at plugin runtime.
func RunPreview(w io.Writer, manifestPath, indexPath string) error {
	raw, err := os.ReadFile(manifestPath)
	if err != nil {
		return fmt.Errorf("read menu manifest: %w", err)
	}
	root, err := menu.FromYAML(raw)
	if err != nil {
		return err
	}
	walker := &menu.Walker{Root: root, Handler: previewHandler{}}
	dir := &treePrinter{w: w, walker: walker}
	return walker.Walk(dir, indexPath)
}

// treePrinter is a menu.Directory that prints entries and descends into
// folders in place.
type treePrinter struct {
	w      io.Writer
	walker *menu.Walker
	depth  int
}

func (p *treePrinter) Leaf(title, call string) error {
	_, err := fmt.Fprintf(p.w, "%s%s -> %s\n", p.indent(), title, call)
	return err
}

func (p *treePrinter) Folder(title, indexPath string) error {
	if _, err := fmt.Fprintf(p.w, "%s%s/\n", p.indent(), title); err != nil {
		return err
	}
	child := &treePrinter{w: p.w, walker: p.walker, depth: p.depth + 1}
	return p.walker.Walk(child, indexPath)
}

func (p *treePrinter) indent() string {
	return strings.Repeat("  ", p.depth)
}

// previewHandler stands in for a plugin host. It has no runtime data, so
// multi-entry nodes render as a single placeholder line.
type previewHandler struct{}

func (previewHandler) Entry(dir menu.Directory, e *menu.Entry) (bool, error) {
	title := e.Title
	if title == "" {
		title = e.ID
	}
	if err := dir.Leaf(title, "(no call)"); err != nil {
		return false, err
	}
	return true, nil
}

func (previewHandler) EntryIter(e *menu.Entry) ([]menu.Item, error) {
	label := e.ID
	if label == "" {
		label = e.Type
	}
	return []menu.Item{{"title": fmt.Sprintf("<%s items>", label)}}, nil
}

func (previewHandler) EntryItem(dir menu.Directory, e *menu.Entry, item menu.Item) (bool, error) {
	title, _ := item["title"].(string)
	if err := dir.Leaf(title, e.Type); err != nil {
		return false, err
	}
	return true, nil
}
