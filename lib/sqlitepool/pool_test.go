// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sqlitepool_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"github.com/bureau-foundation/taskboard/lib/sqlitepool"
)

const testSchema = `CREATE TABLE IF NOT EXISTS notes (id INTEGER PRIMARY KEY, body TEXT NOT NULL);`

func TestOpenAppliesPragmasAndSchema(t *testing.T) {
	pool := openTestPool(t, filepath.Join(t.TempDir(), "state.db"))

	err := pool.With(context.Background(), func(conn *sqlite.Conn) error {
		var journalMode string
		err := sqlitex.Execute(conn, "PRAGMA journal_mode", &sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				journalMode = stmt.ColumnText(0)
				return nil
			},
		})
		if err != nil {
			return err
		}
		if journalMode != "wal" {
			t.Errorf("journal_mode = %q, want wal", journalMode)
		}
		return sqlitex.Execute(conn, "INSERT INTO notes (body) VALUES (?)", &sqlitex.ExecOptions{
			Args: []any{"hello"},
		})
	})
	if err != nil {
		t.Fatalf("With: %v", err)
	}
}

func TestOpenCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "state.db")
	pool := openTestPool(t, path)

	// The file appears once a connection has been prepared.
	if err := pool.With(context.Background(), func(*sqlite.Conn) error { return nil }); err != nil {
		t.Fatalf("With: %v", err)
	}
	if _, err := os.Stat(filepath.Dir(path)); err != nil {
		t.Fatalf("parent directory not created: %v", err)
	}
}

func TestWithTransactionRollsBackOnError(t *testing.T) {
	pool := openTestPool(t, filepath.Join(t.TempDir(), "state.db"))
	ctx := context.Background()
	failure := errors.New("abort")

	err := pool.WithTransaction(ctx, func(conn *sqlite.Conn) error {
		if err := sqlitex.Execute(conn, "INSERT INTO notes (body) VALUES ('lost')", nil); err != nil {
			return err
		}
		return failure
	})
	if !errors.Is(err, failure) {
		t.Fatalf("WithTransaction error = %v, want %v", err, failure)
	}

	err = pool.WithTransaction(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, "INSERT INTO notes (body) VALUES ('kept')", nil)
	})
	if err != nil {
		t.Fatalf("WithTransaction: %v", err)
	}

	var bodies []string
	err = pool.With(ctx, func(conn *sqlite.Conn) error {
		return sqlitex.Execute(conn, "SELECT body FROM notes ORDER BY id", &sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				bodies = append(bodies, stmt.ColumnText(0))
				return nil
			},
		})
	})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(bodies) != 1 || bodies[0] != "kept" {
		t.Fatalf("rows = %v, want [kept]", bodies)
	}
}

func TestInMemory(t *testing.T) {
	ctx := context.Background()
	pool, err := sqlitepool.Open(sqlitepool.Config{Path: ":memory:", PoolSize: 2, Schema: testSchema})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer pool.Close()

	writer, err := pool.Take(ctx)
	if err != nil {
		t.Fatalf("Take writer: %v", err)
	}
	defer pool.Put(writer)
	if err := sqlitex.Execute(writer, "INSERT INTO notes (body) VALUES ('shared')", nil); err != nil {
		t.Fatalf("insert: %v", err)
	}

	// A second connection, taken while the first is still held, sees
	// the same database.
	reader, err := pool.Take(ctx)
	if err != nil {
		t.Fatalf("Take reader: %v", err)
	}
	defer pool.Put(reader)
	if count := countNotes(t, reader); count != 1 {
		t.Fatalf("second connection sees %d notes, want 1", count)
	}

	other := openTestPool(t, ":memory:")
	err = other.With(ctx, func(conn *sqlite.Conn) error {
		if count := countNotes(t, conn); count != 0 {
			t.Errorf("separate in-memory pool sees %d notes, want 0", count)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("With: %v", err)
	}
}

func countNotes(t *testing.T, conn *sqlite.Conn) int {
	t.Helper()
	count, err := sqlitex.ResultInt(conn.Prep("SELECT count(*) FROM notes"))
	if err != nil {
		t.Fatalf("count notes: %v", err)
	}
	return count
}

func TestEmptyPathRejected(t *testing.T) {
	if _, err := sqlitepool.Open(sqlitepool.Config{}); err == nil {
		t.Fatal("expected error for empty Path")
	}
}

func TestTakeHonoursCancelledContext(t *testing.T) {
	pool, err := sqlitepool.Open(sqlitepool.Config{
		Path:     filepath.Join(t.TempDir(), "cancel.db"),
		PoolSize: 1,
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer pool.Close()

	conn, err := pool.Take(context.Background())
	if err != nil {
		t.Fatalf("Take: %v", err)
	}
	defer pool.Put(conn)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := pool.Take(ctx); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}

func openTestPool(t *testing.T, path string) *sqlitepool.Pool {
	t.Helper()
	pool, err := sqlitepool.Open(sqlitepool.Config{Path: path, Schema: testSchema})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := pool.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return pool
}
