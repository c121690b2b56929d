// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package localstore is a small persistent key/value store for
// client-side preferences that must survive between sessions (the
// saved task filter, for example).
//
// Values are opaque byte strings; callers choose the encoding. The
// SQLite-backed [DB] is what binaries use; [Memory] serves tests and
// callers that run without a state directory.
package localstore

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/bureau-foundation/taskboard/lib/sqlitepool"
)

// ErrNotFound is returned by Get when the key has never been set or has
// been deleted.
var ErrNotFound = errors.New("localstore: key not found")

// Store is a string-keyed byte store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// Schema creates the table DB reads and writes. It is idempotent and is
// passed to sqlitepool.Config.Schema by [OpenFile].
const Schema = `
CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	updated_at INTEGER NOT NULL
);`

// DB is a Store backed by a table in a SQLite database.
type DB struct {
	pool *sqlitepool.Pool
	now  func() time.Time
}

// New wraps an already-open pool. The pool's Schema must include
// [Schema].
func New(pool *sqlitepool.Pool) *DB {
	return &DB{pool: pool, now: time.Now}
}

// OpenFile opens (creating if needed) the SQLite database at path and
// returns a DB over it along with the pool, which the caller must
// close.
func OpenFile(path string, config sqlitepool.Config) (*DB, *sqlitepool.Pool, error) {
	config.Path = path
	config.Schema = Schema + config.Schema
	pool, err := sqlitepool.Open(config)
	if err != nil {
		return nil, nil, fmt.Errorf("localstore: %w", err)
	}
	return New(pool), pool, nil
}

// Get returns the value for key, or ErrNotFound.
func (d *DB) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	found := false
	err := d.pool.With(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, "SELECT value FROM kv WHERE key = ?", &sqlitex.ExecOptions{
			Args: []any{key},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				value = make([]byte, stmt.ColumnLen(0))
				stmt.ColumnBytes(0, value)
				found = true
				return nil
			},
		})
	})
	if err != nil {
		return nil, fmt.Errorf("localstore: reading %q: %w", key, err)
	}
	if !found {
		return nil, ErrNotFound
	}
	return value, nil
}

// Set stores value under key, replacing any previous value.
func (d *DB) Set(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	err := d.pool.WithTransaction(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn,
			`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			&sqlitex.ExecOptions{Args: []any{key, value, d.now().Unix()}})
	})
	if err != nil {
		return fmt.Errorf("localstore: writing %q: %w", key, err)
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (d *DB) Delete(ctx context.Context, key string) error {
	err := d.pool.WithTransaction(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, "DELETE FROM kv WHERE key = ?", &sqlitex.ExecOptions{
			Args: []any{key},
		})
	})
	if err != nil {
		return fmt.Errorf("localstore: deleting %q: %w", key, err)
	}
	return nil
}

// Memory is an in-process Store. The zero value is ready to use.
type Memory struct {
	mutex  sync.Mutex
	values map[string][]byte
}

// Get returns a copy of the value for key, or ErrNotFound.
func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	value, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(value), nil
}

// Set stores a copy of value.
func (m *Memory) Set(_ context.Context, key string, value []byte) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.values == nil {
		m.values = make(map[string][]byte)
	}
	m.values[key] = append([]byte{}, value...)
	return nil
}

// Delete removes key.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.values, key)
	return nil
}

// Keys returns the stored keys in sorted order.
func (m *Memory) Keys() []string {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return slices.Sorted(maps.Keys(m.values))
}
