// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package taskfilter

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/bureau-foundation/taskboard/lib/localstore"
	"github.com/bureau-foundation/taskboard/lib/schema/task"
	"github.com/bureau-foundation/taskboard/lib/sqlitepool"
)

// failingStorage fails every operation.
type failingStorage struct{}

func (failingStorage) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("disk on fire")
}

func (failingStorage) Set(context.Context, string, []byte) error {
	return errors.New("disk on fire")
}

func (failingStorage) Delete(context.Context, string) error {
	return errors.New("disk on fire")
}

func storedPresetFor(t *testing.T, storage localstore.Store) Preset {
	t.Helper()
	data, err := storage.Get(context.Background(), PresetKey)
	if err != nil {
		t.Fatalf("reading stored preset: %v", err)
	}
	preset, err := DecodePreset(data)
	if err != nil {
		t.Fatalf("decoding stored preset %s: %v", data, err)
	}
	return preset
}

func TestOpenWithoutStoredPresetUsesDefault(t *testing.T) {
	store := Open(context.Background(), Config{Storage: &localstore.Memory{}})
	if filter := store.Filter(); !filter.SameQuery(Default()) {
		t.Fatalf("Filter() = %+v, want default", filter)
	}
}

func TestOpenWithCorruptPresetUsesDefault(t *testing.T) {
	for _, content := range []string{`not json`, `{"mineOnly":42}`, `{"statusFilter":"nope"}`, ``} {
		storage := &localstore.Memory{}
		if err := storage.Set(context.Background(), PresetKey, []byte(content)); err != nil {
			t.Fatalf("Set: %v", err)
		}
		store := Open(context.Background(), Config{Storage: storage})
		if filter := store.Filter(); !filter.SameQuery(Default()) {
			t.Errorf("content %q: Filter() = %+v, want default", content, filter)
		}
	}
}

func TestOpenWithUnreadableStorageUsesDefault(t *testing.T) {
	store := Open(context.Background(), Config{Storage: failingStorage{}})
	if filter := store.Filter(); !filter.SameQuery(Default()) {
		t.Fatalf("Filter() = %+v, want default", filter)
	}
}

func TestPresetRoundTripThroughSQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	db, pool, err := localstore.OpenFile(path, sqlitepool.Config{})
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	store := Open(ctx, Config{Storage: db})
	if _, err := store.ApplyPreset(ctx, PresetBlockedOnly, false); err != nil {
		t.Fatalf("ApplyPreset: %v", err)
	}
	if err := store.SetProjectFilter(ctx, func() *int64 { id := int64(12); return &id }()); err != nil {
		t.Fatalf("SetProjectFilter: %v", err)
	}
	store.SetSearchTerm("not persisted")
	if err := pool.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopenedDB, reopenedPool, err := localstore.OpenFile(path, sqlitepool.Config{})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { reopenedPool.Close() })

	reopened := Open(ctx, Config{Storage: reopenedDB})
	filter := reopened.Filter()
	if !filter.MineOnly || !filter.ActiveOnly || filter.StatusFilter != task.StatusBlocked {
		t.Fatalf("reloaded filter = %+v", filter)
	}
	if filter.ProjectFilterID == nil || *filter.ProjectFilterID != 12 {
		t.Fatalf("reloaded project = %v, want 12", filter.ProjectFilterID)
	}
	if filter.SearchTerm != "" {
		t.Fatalf("search term persisted: %q", filter.SearchTerm)
	}
}

func TestDirectSettersPersist(t *testing.T) {
	ctx := context.Background()
	storage := &localstore.Memory{}
	store := Open(ctx, Config{Storage: storage})

	if err := store.SetMineOnly(ctx, false); err != nil {
		t.Fatalf("SetMineOnly: %v", err)
	}
	if err := store.SetActiveOnly(ctx, false); err != nil {
		t.Fatalf("SetActiveOnly: %v", err)
	}
	if err := store.SetStatusFilter(ctx, task.StatusDone); err != nil {
		t.Fatalf("SetStatusFilter: %v", err)
	}
	want := Preset{StatusFilter: task.StatusDone}
	if got := storedPresetFor(t, storage); !got.Equal(want) {
		t.Fatalf("stored = %+v, want %+v", got, want)
	}
}

func TestSetStatusFilterRejectsUnknown(t *testing.T) {
	ctx := context.Background()
	store := Open(ctx, Config{})
	if err := store.SetStatusFilter(ctx, "archived"); err == nil {
		t.Fatal("expected error for unknown status")
	}
	if store.Filter().StatusFilter != "" {
		t.Fatal("rejected status must not be applied")
	}
}

func TestRestrictedPresetIsSilentNoOp(t *testing.T) {
	ctx := context.Background()
	storage := &localstore.Memory{}
	store := Open(ctx, Config{Storage: storage})

	applied, err := store.ApplyPreset(ctx, PresetAllActive, false)
	if err != nil || applied {
		t.Fatalf("ApplyPreset = %v, %v; want false, nil", applied, err)
	}
	if !store.Filter().MineOnly {
		t.Fatal("restricted preset changed the filter")
	}
	if keys := storage.Keys(); len(keys) != 0 {
		t.Fatalf("restricted preset wrote storage: %v", keys)
	}

	applied, err = store.ApplyPreset(ctx, PresetAllActive, true)
	if err != nil || !applied {
		t.Fatalf("elevated ApplyPreset = %v, %v; want true, nil", applied, err)
	}
	if store.Filter().MineOnly {
		t.Fatal("elevated allActive should clear mineOnly")
	}
	if got := storedPresetFor(t, storage); got.MineOnly {
		t.Fatalf("stored preset = %+v", got)
	}
}

func TestPersistenceFailureStillUpdatesFilter(t *testing.T) {
	ctx := context.Background()
	store := Open(ctx, Config{Storage: failingStorage{}})
	if err := store.SetMineOnly(ctx, false); err == nil {
		t.Fatal("expected persistence error")
	}
	if store.Filter().MineOnly {
		t.Fatal("filter must be updated even when persisting fails")
	}
}

func TestConcurrentSettersPersistLatest(t *testing.T) {
	ctx := context.Background()
	storage := &localstore.Memory{}
	store := Open(ctx, Config{Storage: storage})

	var waitGroup sync.WaitGroup
	for index := range 16 {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			_ = store.SetMineOnly(ctx, index%2 == 0)
		}()
	}
	waitGroup.Wait()

	if got, want := storedPresetFor(t, storage), store.Filter().Preset(); !got.Equal(want) {
		t.Fatalf("stored = %+v, in memory = %+v", got, want)
	}
}
