package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by SQLiteStore.Get for a missing or expired key.
var ErrNotFound = errors.New("storage: key not found")

// SQLiteStore is a namespaced key-value store on SQLite. Use ":memory:" for
// an in-memory database. Values may carry an expiry; expired rows behave as
// missing and are reclaimed by DeleteExpired.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// OpenSQLite opens (and if needed initializes) the database at dbPath.
func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	s := &SQLiteStore{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS kv (
		ns TEXT NOT NULL,
		key TEXT NOT NULL,
		value BLOB NOT NULL,
		updated_at INTEGER NOT NULL,
		expires_at INTEGER,
		PRIMARY KEY (ns, key)
	);
	CREATE INDEX IF NOT EXISTS idx_kv_expires ON kv(expires_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Put stores value under ns/key. A zero expires keeps the row forever.
func (s *SQLiteStore) Put(ctx context.Context, ns, key string, value []byte, expires time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expiresAt any
	if !expires.IsZero() {
		expiresAt = expires.Unix()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (ns, key, value, updated_at, expires_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(ns, key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at, expires_at=excluded.expires_at`,
		ns, key, value, time.Now().Unix(), expiresAt,
	)
	if err != nil {
		return fmt.Errorf("put %s/%s: %w", ns, key, err)
	}
	return nil
}

// Get returns the value under ns/key, or ErrNotFound when missing or
// expired.
func (s *SQLiteStore) Get(ctx context.Context, ns, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var value []byte
	var expiresAt sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		"SELECT value, expires_at FROM kv WHERE ns = ? AND key = ?", ns, key,
	).Scan(&value, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", ns, key, err)
	}
	if expiresAt.Valid && time.Now().Unix() >= expiresAt.Int64 {
		return nil, ErrNotFound
	}
	return value, nil
}

// Delete removes ns/key. Deleting a missing key is not an error.
func (s *SQLiteStore) Delete(ctx context.Context, ns, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.ExecContext(ctx, "DELETE FROM kv WHERE ns = ? AND key = ?", ns, key); err != nil {
		return fmt.Errorf("delete %s/%s: %w", ns, key, err)
	}
	return nil
}

// Keys lists the live keys of a namespace.
func (s *SQLiteStore) Keys(ctx context.Context, ns string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT key FROM kv WHERE ns = ? AND (expires_at IS NULL OR expires_at > ?) ORDER BY key",
		ns, time.Now().Unix(),
	)
	if err != nil {
		return nil, fmt.Errorf("list keys of %s: %w", ns, err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("scan key: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// DeleteExpired reclaims expired rows and reports how many were removed.
func (s *SQLiteStore) DeleteExpired(ctx context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		"DELETE FROM kv WHERE expires_at IS NOT NULL AND expires_at <= ?", time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("delete expired: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
