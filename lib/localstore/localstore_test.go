// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package localstore

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"github.com/bureau-foundation/taskboard/lib/sqlitepool"
)

func openTestDB(t *testing.T, path string) *DB {
	t.Helper()
	db, pool, err := OpenFile(path, sqlitepool.Config{})
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	t.Cleanup(func() {
		if err := pool.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return db
}

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) error = %v, want ErrNotFound", err)
	}

	if err := store.Set(ctx, "tasks.filterPreset", []byte(`{"mineOnly":true}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	value, err := store.Get(ctx, "tasks.filterPreset")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(value) != `{"mineOnly":true}` {
		t.Fatalf("Get = %q", value)
	}

	if err := store.Set(ctx, "tasks.filterPreset", []byte(`{}`)); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	value, err = store.Get(ctx, "tasks.filterPreset")
	if err != nil {
		t.Fatalf("Get after overwrite: %v", err)
	}
	if string(value) != `{}` {
		t.Fatalf("Get after overwrite = %q, want {}", value)
	}

	if err := store.Delete(ctx, "tasks.filterPreset"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, "tasks.filterPreset"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after Delete error = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, "tasks.filterPreset"); err != nil {
		t.Fatalf("Delete missing: %v", err)
	}
}

func TestDB(t *testing.T) {
	exerciseStore(t, openTestDB(t, filepath.Join(t.TempDir(), "state.db")))
}

func TestMemory(t *testing.T) {
	exerciseStore(t, &Memory{})
}

func TestDBPersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	ctx := context.Background()

	db, pool, err := OpenFile(path, sqlitepool.Config{})
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if err := db.Set(ctx, "key", []byte("value")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := pool.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened := openTestDB(t, path)
	value, err := reopened.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get after reopen: %v", err)
	}
	if string(value) != "value" {
		t.Fatalf("Get after reopen = %q, want value", value)
	}
}

func TestMemoryCopiesValues(t *testing.T) {
	ctx := context.Background()
	var store Memory
	input := []byte("abc")
	if err := store.Set(ctx, "k", input); err != nil {
		t.Fatalf("Set: %v", err)
	}
	input[0] = 'z'

	value, _ := store.Get(ctx, "k")
	if string(value) != "abc" {
		t.Fatalf("stored value aliased caller slice: %q", value)
	}
	value[1] = 'z'
	again, _ := store.Get(ctx, "k")
	if string(again) != "abc" {
		t.Fatalf("returned value aliased store: %q", again)
	}

	if keys := store.Keys(); !slices.Equal(keys, []string{"k"}) {
		t.Fatalf("Keys = %v", keys)
	}
}
