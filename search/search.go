// Package search keeps a plugin's search history: recent queries with
// their options, newest first, capped in size. The history lives in a
// storage.Store so it shares the plugin's user-data file handling.
package search

import (
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/addonkit/addonkit/storage"
)

// DefaultSize caps the history length when no size is configured.
const DefaultSize = 50

// Item is one remembered search.
type Item struct {
	ID        string            `json:"id"`
	Query     string            `json:"query"`
	Options   map[string]string `json:"options,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// History stores and recalls searches. Scopes separate independent
// histories inside one plugin (e.g. per section).
type History struct {
	store *storage.Store
	name  string
	size  int
}

// Option configures a History.
type Option func(*History)

// WithName separates this history from others sharing the same store.
func WithName(name string) Option {
	return func(h *History) { h.name = name }
}

// WithSize caps the number of remembered searches.
func WithSize(n int) Option {
	return func(h *History) {
		if n > 0 {
			h.size = n
		}
	}
}

// New builds a search history on the given store.
func New(store *storage.Store, opts ...Option) *History {
	h := &History{store: store, size: DefaultSize}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// key builds the dotted store path for a scope.
func (h *History) key(scope string) string {
	parts := []string{"history"}
	if h.name != "" {
		parts = append(parts, "search", h.name)
	}
	if scope != "" {
		parts = append(parts, "scope", scope)
	}
	parts = append(parts, "items")
	return strings.Join(parts, ".")
}

// List returns the remembered searches of a scope, newest first.
func (h *History) List(scope string) ([]Item, error) {
	raw, ok := h.store.Get(h.key(scope))
	if !ok {
		return nil, nil
	}
	// The store holds decoded generic data; round-trip through JSON to get
	// typed items back.
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("search: encode history: %w", err)
	}
	var items []Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("search: decode history: %w", err)
	}
	return items, nil
}

// Add remembers a query in a scope. Repeating a known query moves it to the
// front and refreshes its timestamp instead of duplicating it.
func (h *History) Add(scope, query string, options map[string]string) (Item, error) {
	items, err := h.List(scope)
	if err != nil {
		return Item{}, err
	}
	item := Item{
		ID:        uuid.NewString(),
		Query:     query,
		Options:   options,
		CreatedAt: time.Now().UTC(),
	}
	kept := make([]Item, 0, len(items)+1)
	kept = append(kept, item)
	for _, it := range items {
		if it.Query == query {
			continue
		}
		kept = append(kept, it)
	}
	if len(kept) > h.size {
		kept = kept[:h.size]
	}
	if err := h.save(scope, kept); err != nil {
		return Item{}, err
	}
	return item, nil
}

// Remove forgets the search with the given id. Unknown ids are ignored.
func (h *History) Remove(scope, id string) error {
	items, err := h.List(scope)
	if err != nil {
		return err
	}
	kept := items[:0]
	for _, it := range items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	return h.save(scope, kept)
}

// Clear forgets the whole scope.
func (h *History) Clear(scope string) error {
	if err := h.store.Remove(h.key(scope)); err != nil {
		return err
	}
	return h.store.Save()
}

func (h *History) save(scope string, items []Item) error {
	if err := h.store.Set(h.key(scope), items); err != nil {
		return err
	}
	return h.store.Save()
}
