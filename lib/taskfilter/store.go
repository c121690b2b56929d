// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package taskfilter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bureau-foundation/taskboard/lib/localstore"
	"github.com/bureau-foundation/taskboard/lib/schema/task"
)

// Config configures a Store.
type Config struct {
	// Storage persists the preset. Nil keeps the preset in memory
	// only.
	Storage localstore.Store

	// Logger receives persistence diagnostics. Nil discards.
	Logger *slog.Logger
}

// Store owns the current Filter and persists its server-side
// dimensions on every change. Safe for concurrent use.
type Store struct {
	storage localstore.Store
	logger  *slog.Logger

	mutex  sync.Mutex
	filter Filter

	// persistMutex serializes writes so the stored preset is always
	// the latest filter, never an older one written late.
	persistMutex sync.Mutex
}

// Open creates a Store initialized from the persisted preset. A
// missing, unreadable, or malformed preset yields [Default]; Open never
// fails.
func Open(ctx context.Context, config Config) *Store {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	storage := config.Storage
	if storage == nil {
		storage = &localstore.Memory{}
	}

	store := &Store{storage: storage, logger: logger, filter: Default()}
	store.filter = store.filter.WithPreset(store.load(ctx))
	return store
}

func (s *Store) load(ctx context.Context) Preset {
	data, err := s.storage.Get(ctx, PresetKey)
	if errors.Is(err, localstore.ErrNotFound) {
		return DefaultPreset()
	}
	if err != nil {
		s.logger.Warn("reading filter preset failed, using default", "key", PresetKey, "error", err)
		return DefaultPreset()
	}
	preset, err := DecodePreset(data)
	if err != nil {
		s.logger.Debug("discarding malformed filter preset", "key", PresetKey, "error", err)
		return DefaultPreset()
	}
	return preset
}

// Filter returns the current filter.
func (s *Store) Filter() Filter {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.filter
}

// Query returns the current server-side query.
func (s *Store) Query() task.Query {
	return s.Filter().Query()
}

// Matches reports whether item passes the current search term.
func (s *Store) Matches(item task.Task) bool {
	return s.Filter().Matches(item)
}

// Visible returns the tasks that pass the current search term.
func (s *Store) Visible(tasks []task.Task) []task.Task {
	return s.Filter().Visible(tasks)
}

// SetMineOnly updates the mine dimension and persists the preset.
// The returned error reports a persistence failure only; the in-memory
// filter is updated regardless.
func (s *Store) SetMineOnly(ctx context.Context, mine bool) error {
	return s.update(ctx, func(f Filter) Filter { return f.WithMineOnly(mine) })
}

// SetActiveOnly updates the active-only dimension and persists.
func (s *Store) SetActiveOnly(ctx context.Context, active bool) error {
	return s.update(ctx, func(f Filter) Filter { return f.WithActiveOnly(active) })
}

// SetStatusFilter updates the status dimension and persists. The empty
// status means any; other values must be valid statuses.
func (s *Store) SetStatusFilter(ctx context.Context, status task.Status) error {
	if status != "" && !status.IsValid() {
		return fmt.Errorf("status filter: unknown status %q", status)
	}
	return s.update(ctx, func(f Filter) Filter { return f.WithStatus(status) })
}

// SetProjectFilter updates the project dimension and persists. Nil
// means any project.
func (s *Store) SetProjectFilter(ctx context.Context, projectID *int64) error {
	return s.update(ctx, func(f Filter) Filter { return f.WithProject(projectID) })
}

// SetSearchTerm replaces the search term. Nothing is persisted.
func (s *Store) SetSearchTerm(term string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.filter = s.filter.WithSearch(term)
}

// ApplyPreset applies a built-in preset and persists it. applied is
// false, with nothing changed or written, when the preset requires
// elevated privilege and elevated is false.
func (s *Store) ApplyPreset(ctx context.Context, name PresetName, elevated bool) (applied bool, err error) {
	s.mutex.Lock()
	next, applied, err := s.filter.ApplyPreset(name, elevated)
	if err != nil || !applied {
		s.mutex.Unlock()
		if err != nil {
			return false, fmt.Errorf("%w: %q", err, name)
		}
		s.logger.Debug("restricted filter preset ignored", "preset", name)
		return false, nil
	}
	s.filter = next
	s.mutex.Unlock()

	return true, s.persist(ctx)
}

func (s *Store) update(ctx context.Context, mutate func(Filter) Filter) error {
	s.mutex.Lock()
	s.filter = mutate(s.filter)
	s.mutex.Unlock()
	return s.persist(ctx)
}

func (s *Store) persist(ctx context.Context) error {
	s.persistMutex.Lock()
	defer s.persistMutex.Unlock()

	data, err := s.Filter().Preset().Encode()
	if err != nil {
		return fmt.Errorf("encoding filter preset: %w", err)
	}
	if err := s.storage.Set(ctx, PresetKey, data); err != nil {
		s.logger.Warn("persisting filter preset failed", "key", PresetKey, "error", err)
		return fmt.Errorf("persisting filter preset: %w", err)
	}
	return nil
}
