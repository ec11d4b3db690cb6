package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/addonkit/addonkit/storage"
)

func newCache(t *testing.T) *Cache {
	t.Helper()
	store, err := storage.OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return New(store, "test")
}

type listing struct {
	Names []string `json:"names"`
}

func TestCacheSetGet(t *testing.T) {
	c := newCache(t)
	ctx := context.Background()

	want := listing{Names: []string{"a", "b"}}
	require.NoError(t, c.Set(ctx, "list", want, ShortTTL))

	var got listing
	require.NoError(t, c.Get(ctx, "list", &got))
	assert.Equal(t, want, got)

	var missing listing
	assert.ErrorIs(t, c.Get(ctx, "other", &missing), ErrMiss)
}

func TestCacheExpiredEntryMisses(t *testing.T) {
	c := newCache(t)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", listing{}, time.Second))

	// Simulate expiry by writing a pre-expired row directly.
	require.NoError(t, c.store.Put(ctx, c.ns, "k", []byte(`{}`), time.Now().Add(-time.Second)))
	var got listing
	assert.ErrorIs(t, c.Get(ctx, "k", &got), ErrMiss)
}

func TestDoComputesOnceThenServesCached(t *testing.T) {
	c := newCache(t)
	ctx := context.Background()

	calls := 0
	fetch := func(ctx context.Context) (listing, error) {
		calls++
		return listing{Names: []string{"fresh"}}, nil
	}

	got, err := Do(ctx, c, "list", DefaultTTL, fetch)
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, got.Names)

	got, err = Do(ctx, c, "list", DefaultTTL, fetch)
	require.NoError(t, err)
	assert.Equal(t, []string{"fresh"}, got.Names)
	assert.Equal(t, 1, calls)
}

func TestDoPropagatesFetchError(t *testing.T) {
	c := newCache(t)
	wantErr := errors.New("remote down")
	_, err := Do(context.Background(), c, "k", DefaultTTL, func(ctx context.Context) (listing, error) {
		return listing{}, wantErr
	})
	assert.ErrorIs(t, err, wantErr)
}

func TestKey(t *testing.T) {
	assert.Equal(t, "channels", Key("channels", nil))
	k := Key("channels", map[string]any{"page": 2, "genre": "news"})
	assert.Equal(t, "channels?genre=news&page=2", k)
}

func TestDelete(t *testing.T) {
	c := newCache(t)
	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", listing{}, ShortTTL))
	require.NoError(t, c.Delete(ctx, "k"))
	var got listing
	assert.ErrorIs(t, c.Get(ctx, "k", &got), ErrMiss)
}
