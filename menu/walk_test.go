package menu

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingDir collects what the walker placed into the directory.
type recordingDir struct {
	lines []string
}

func (d *recordingDir) Leaf(title, call string) error {
	d.lines = append(d.lines, fmt.Sprintf("leaf %s -> %s", title, call))
	return nil
}

func (d *recordingDir) Folder(title, indexPath string) error {
	d.lines = append(d.lines, fmt.Sprintf("folder %s @ %s", title, indexPath))
	return nil
}

// testHandler serves canned items per multi-entry id.
type testHandler struct {
	items   map[string][]Item
	entries []string
}

func (h *testHandler) Entry(dir Directory, e *Entry) (bool, error) {
	h.entries = append(h.entries, e.Title)
	return true, nil
}

func (h *testHandler) EntryIter(e *Entry) ([]Item, error) {
	items, ok := h.items[e.ID]
	if !ok {
		return nil, fmt.Errorf("unknown list %q", e.ID)
	}
	return items, nil
}

func (h *testHandler) EntryItem(dir Directory, e *Entry, item Item) (bool, error) {
	return true, dir.Leaf(itemString(item, "title"), e.Type)
}

func testTree() *Menu {
	return &Menu{
		Title: "root",
		Items: []Node{
			&Menu{Title: "Search", Call: "search"},
			&Menu{Title: "Library", Items: []Node{
				&Menu{Title: "Movies", Call: "movies"},
				&Menu{Title: "Shows", Call: "shows"},
			}},
			&Items{ID: "channels", Type: "channel", Order: Order{
				5:  []Pattern{Glob("news*")},
				-5: []Pattern{Glob("* sd")},
			}},
			&Menu{Title: "Hidden", Call: "secret", When: "adult"},
		},
	}
}

func TestWalkRoot(t *testing.T) {
	h := &testHandler{items: map[string][]Item{
		"channels": {
			{"title": "Alpha SD"},
			{"title": "Music"},
			{"title": "News 24"},
		},
	}}
	w := &Walker{Root: testTree(), Handler: h, Enabled: func(key string) bool { return false }}
	dir := &recordingDir{}
	require.NoError(t, w.Walk(dir, ""))

	assert.Equal(t, []string{
		"leaf Search -> search",
		"folder Library @ 1",
		"leaf News 24 -> channel",
		"leaf Music -> channel",
		"leaf Alpha SD -> channel",
	}, dir.lines)
}

func TestWalkSubmenuByIndexPath(t *testing.T) {
	h := &testHandler{}
	w := &Walker{Root: testTree(), Handler: h}
	dir := &recordingDir{}
	require.NoError(t, w.Walk(dir, "1"))
	assert.Equal(t, []string{
		"leaf Movies -> movies",
		"leaf Shows -> shows",
	}, dir.lines)
}

func TestWalkGateEnablesWhenKey(t *testing.T) {
	h := &testHandler{items: map[string][]Item{"channels": nil}}
	w := &Walker{Root: testTree(), Handler: h, Enabled: func(key string) bool { return key == "adult" }}
	dir := &recordingDir{}
	require.NoError(t, w.Walk(dir, ""))
	assert.Contains(t, dir.lines, "leaf Hidden -> secret")
}

func TestWalkBadIndexPath(t *testing.T) {
	w := &Walker{Root: testTree(), Handler: &testHandler{}}
	assert.Error(t, w.Walk(&recordingDir{}, "9"))
	assert.Error(t, w.Walk(&recordingDir{}, "x"))
	assert.Error(t, w.Walk(&recordingDir{}, "2"))
}

func TestWalkPlainEntryGoesToHandler(t *testing.T) {
	h := &testHandler{}
	root := &Menu{Title: "root", Items: []Node{&Menu{Title: "Status", ID: "status"}}}
	w := &Walker{Root: root, Handler: h}
	require.NoError(t, w.Walk(&recordingDir{}, ""))
	assert.Equal(t, []string{"Status"}, h.entries)
}

func TestOrderKeyInheritance(t *testing.T) {
	var seen string
	root := &Menu{
		Title:    "root",
		OrderKey: "name",
		Items: []Node{
			&Items{ID: "list", Type: "x"},
		},
	}
	h := &fnHandler{iter: func(e *Entry) ([]Item, error) {
		seen = e.OrderKey
		return nil, nil
	}}
	w := &Walker{Root: root, Handler: h}
	require.NoError(t, w.Walk(&recordingDir{}, ""))
	assert.Equal(t, "name", seen)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(testTree()))
	bad := &Menu{Title: "root", Items: []Node{&Menu{}}}
	assert.ErrorIs(t, Validate(bad), ErrEmptyNode)
}

// fnHandler adapts plain funcs to Handler for small tests.
type fnHandler struct {
	iter func(e *Entry) ([]Item, error)
}

func (h *fnHandler) Entry(dir Directory, e *Entry) (bool, error) { return false, nil }

func (h *fnHandler) EntryIter(e *Entry) ([]Item, error) {
	if h.iter == nil {
		return nil, nil
	}
	return h.iter(e)
}

func (h *fnHandler) EntryItem(dir Directory, e *Entry, item Item) (bool, error) { return false, nil }
