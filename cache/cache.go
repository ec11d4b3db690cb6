// Package cache stores request results (JSON responses in particular) with
// a time-to-live, backed by the storage SQLite store. A Janitor reclaims
// expired entries on a schedule.
package cache

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/goccy/go-json"

	"github.com/addonkit/addonkit/storage"
)

// TTL presets, matching the usual lifetimes of remote listings.
const (
	DefaultTTL = 24 * time.Hour
	ShortTTL   = time.Hour
	LongTTL    = 7 * 24 * time.Hour
)

// ErrMiss is returned by Get for a missing or expired entry.
var ErrMiss = errors.New("cache: miss")

// Cache is a JSON-encoding TTL cache over a SQLite namespace.
type Cache struct {
	store *storage.SQLiteStore
	ns    string
}

// New builds a cache on the given store and namespace.
func New(store *storage.SQLiteStore, ns string) *Cache {
	return &Cache{store: store, ns: ns}
}

// Get decodes the cached entry under key into v, or returns ErrMiss.
func (c *Cache) Get(ctx context.Context, key string, v any) error {
	data, err := c.store.Get(ctx, c.ns, key)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrMiss
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("cache: decode %q: %w", key, err)
	}
	return nil
}

// Set stores v under key for ttl. A non-positive ttl uses DefaultTTL.
func (c *Cache) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache: encode %q: %w", key, err)
	}
	return c.store.Put(ctx, c.ns, key, data, time.Now().Add(ttl))
}

// Delete drops the entry under key.
func (c *Cache) Delete(ctx context.Context, key string) error {
	return c.store.Delete(ctx, c.ns, key)
}

// Do returns the cached value under key, computing and storing it with fn
// on a miss. Decode errors count as misses; fn errors are returned as is.
func Do[T any](ctx context.Context, c *Cache, key string, ttl time.Duration, fn func(context.Context) (T, error)) (T, error) {
	var v T
	if err := c.Get(ctx, key, &v); err == nil {
		return v, nil
	}
	v, err := fn(ctx)
	if err != nil {
		return v, err
	}
	if err := c.Set(ctx, key, v, ttl); err != nil {
		return v, err
	}
	return v, nil
}

// Key builds a stable cache key from an operation name and its parameters,
// in the form "name?k1=v1&k2=v2" with sorted keys.
func Key(name string, params map[string]any) string {
	if len(params) == 0 {
		return name
	}
	values := make(url.Values, len(params))
	for k, v := range params {
		values.Set(k, fmt.Sprint(v))
	}
	return name + "?" + values.Encode()
}
