// Package storage persists plugin user data. Store is a small document
// store over a single file with dotted key paths; SQLiteStore is a
// namespaced key-value table for heavier or shared data (the cache package
// builds on it).
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Store holds user data in memory and persists it to a single file. Keys
// are dotted paths ("search.history.size") into nested maps. Mutations mark
// the store dirty; Save writes atomically and is a no-op when clean.
type Store struct {
	path   string
	ser    Serializer
	sync   bool
	pretty bool

	mu    sync.Mutex
	data  map[string]any
	dirty bool
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithSerializer selects the data file format. Default is JSON.
func WithSerializer(s Serializer) StoreOption {
	return func(st *Store) { st.ser = s }
}

// WithSync saves after every mutation instead of waiting for Save/Close.
func WithSync() StoreOption {
	return func(st *Store) { st.sync = true }
}

// WithCompact disables pretty output.
func WithCompact() StoreOption {
	return func(st *Store) { st.pretty = false }
}

// Open loads the store at path, creating an empty one when the file does
// not exist yet.
func Open(path string, opts ...StoreOption) (*Store, error) {
	st := &Store{
		path:   path,
		ser:    JSON,
		pretty: true,
		data:   make(map[string]any),
	}
	for _, opt := range opts {
		opt(st)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return st, nil
		}
		return nil, fmt.Errorf("read store %s: %w", path, err)
	}
	if len(raw) > 0 {
		if err := st.ser.Unmarshal(raw, &st.data); err != nil {
			return nil, fmt.Errorf("load store %s: %w", path, err)
		}
	}
	if st.data == nil {
		st.data = make(map[string]any)
	}
	return st, nil
}

// Path returns the backing file path.
func (st *Store) Path() string { return st.path }

// Get returns the value at the dotted key path.
func (st *Store) Get(key string) (any, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	return lookup(st.data, splitKey(key))
}

// GetDefault returns the value at key, or def when absent.
func (st *Store) GetDefault(key string, def any) any {
	if v, ok := st.Get(key); ok {
		return v
	}
	return def
}

// Set stores v at the dotted key path, creating intermediate maps. Setting
// through an existing non-map value is an error.
func (st *Store) Set(key string, v any) error {
	st.mu.Lock()
	path := splitKey(key)
	if len(path) == 0 {
		st.mu.Unlock()
		return fmt.Errorf("storage: empty key")
	}
	parent, err := descend(st.data, path[:len(path)-1], true)
	if err != nil {
		st.mu.Unlock()
		return err
	}
	parent[path[len(path)-1]] = v
	st.dirty = true
	st.mu.Unlock()
	if st.sync {
		return st.Save()
	}
	return nil
}

// Remove deletes the value at the dotted key path. Removing a missing key
// is not an error.
func (st *Store) Remove(key string) error {
	st.mu.Lock()
	path := splitKey(key)
	if len(path) == 0 {
		st.mu.Unlock()
		return fmt.Errorf("storage: empty key")
	}
	parent, err := descend(st.data, path[:len(path)-1], false)
	if err != nil || parent == nil {
		st.mu.Unlock()
		return err
	}
	if _, ok := parent[path[len(path)-1]]; ok {
		delete(parent, path[len(path)-1])
		st.dirty = true
	}
	st.mu.Unlock()
	if st.sync {
		return st.Save()
	}
	return nil
}

// Save writes the store to its file through a temp file and rename. Clean
// stores skip the write.
func (st *Store) Save() error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if !st.dirty {
		return nil
	}
	data, err := st.ser.Marshal(st.data, st.pretty)
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	if dir := filepath.Dir(st.path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("create store directory: %w", err)
		}
	}
	tmp := st.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o640); err != nil {
		return fmt.Errorf("write store: %w", err)
	}
	if err := os.Rename(tmp, st.path); err != nil {
		return fmt.Errorf("replace store: %w", err)
	}
	st.dirty = false
	return nil
}

// Close saves pending changes.
func (st *Store) Close() error {
	return st.Save()
}

func splitKey(key string) []string {
	if key == "" {
		return nil
	}
	return strings.Split(key, ".")
}

func lookup(data map[string]any, path []string) (any, bool) {
	if len(path) == 0 {
		return nil, false
	}
	cur := any(data)
	for _, part := range path {
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// descend walks to the map holding the last path element. With create set,
// missing intermediate maps are made on the way; otherwise nil is returned
// for a missing branch.
func descend(data map[string]any, path []string, create bool) (map[string]any, error) {
	cur := data
	for i, part := range path {
		next, ok := cur[part]
		if !ok {
			if !create {
				return nil, nil
			}
			m := make(map[string]any)
			cur[part] = m
			cur = m
			continue
		}
		m, ok := next.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("storage: %q is not a map", strings.Join(path[:i+1], "."))
		}
		cur = m
	}
	return cur, nil
}
