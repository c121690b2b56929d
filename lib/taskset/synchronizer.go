// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package taskset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/bureau-foundation/taskboard/lib/schema/task"
)

// Phase is the fetch state of one list.
type Phase string

const (
	// PhaseIdle means no fetch has been issued, or the list was
	// cleared.
	PhaseIdle Phase = "idle"

	// PhaseLoading means the latest issued fetch has not resolved.
	PhaseLoading Phase = "loading"

	// PhaseLoaded means the latest fetch succeeded.
	PhaseLoaded Phase = "loaded"

	// PhaseFailed means the latest fetch failed; Items is empty.
	PhaseFailed Phase = "failed"
)

// List is a snapshot of one fetched list.
type List[T any] struct {
	Items   []T
	Phase   Phase
	Loading bool

	// Error is the failure message of the latest fetch, or "".
	Error string

	// Sequence is the token of the fetch whose result Items holds.
	Sequence uint64
}

// State is a snapshot of both lists.
type State struct {
	Tasks    List[task.Task]
	Projects List[task.Project]
}

// SynchronizerConfig configures a Synchronizer.
type SynchronizerConfig struct {
	API API

	// OnChange is called after every state transition, without any
	// lock held. Nil is allowed.
	OnChange func()

	Logger *slog.Logger
}

// Synchronizer fetches the task and project lists.
//
// Every fetch takes a sequence token from a per-list counter. When a
// fetch resolves, its result (items or error) is applied only if its
// token is still the latest issued for that list; otherwise it is
// discarded. Overlapping fetches are never cancelled: all of them run
// to completion and the most recently issued one determines the
// state.
type Synchronizer struct {
	api      API
	onChange func()
	logger   *slog.Logger

	mutex    sync.Mutex
	tasks    listState[task.Task]
	projects listState[task.Project]
}

type listState[T any] struct {
	list   List[T]
	issued uint64
}

// NewSynchronizer returns a Synchronizer with both lists idle.
func NewSynchronizer(config SynchronizerConfig) *Synchronizer {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	onChange := config.OnChange
	if onChange == nil {
		onChange = func() {}
	}
	return &Synchronizer{
		api:      config.API,
		onChange: onChange,
		logger:   logger,
		tasks:    listState[task.Task]{list: List[task.Task]{Items: []task.Task{}, Phase: PhaseIdle}},
		projects: listState[task.Project]{list: List[task.Project]{Items: []task.Project{}, Phase: PhaseIdle}},
	}
}

// State returns a snapshot of both lists. The slices are copies.
func (s *Synchronizer) State() State {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return State{
		Tasks:    copyList(s.tasks.list),
		Projects: copyList(s.projects.list),
	}
}

// Tasks returns a copy of the current task list.
func (s *Synchronizer) Tasks() []task.Task {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return slices.Clone(s.tasks.list.Items)
}

// Sync fetches the task list for query and the project list
// concurrently and waits for both. Either failure is recorded in its
// own list only; the returned error joins whichever applied failures
// occurred.
func (s *Synchronizer) Sync(ctx context.Context, query task.Query) error {
	var waitGroup sync.WaitGroup
	var taskErr, projectErr error

	waitGroup.Add(2)
	go func() {
		defer waitGroup.Done()
		taskErr = s.FetchTasks(ctx, query)
	}()
	go func() {
		defer waitGroup.Done()
		projectErr = s.FetchProjects(ctx)
	}()
	waitGroup.Wait()

	return errors.Join(taskErr, projectErr)
}

// FetchTasks fetches the task list for query. A failure clears the
// list and records the message. Returns the fetch's error if its
// result was applied, nil if it succeeded or was superseded.
func (s *Synchronizer) FetchTasks(ctx context.Context, query task.Query) error {
	return fetch(ctx, s, &s.tasks, "tasks", func(ctx context.Context) ([]task.Task, error) {
		return s.api.ListTasks(ctx, query)
	})
}

// FetchProjects fetches the project list.
func (s *Synchronizer) FetchProjects(ctx context.Context) error {
	return fetch(ctx, s, &s.projects, "projects", s.api.ListProjects)
}

// Clear empties both lists and invalidates every in-flight fetch, so
// results still arriving for them are discarded. Used when the caller
// loses authentication.
func (s *Synchronizer) Clear() {
	s.mutex.Lock()
	s.tasks.issued++
	s.tasks.list = List[task.Task]{Items: []task.Task{}, Phase: PhaseIdle, Sequence: s.tasks.issued}
	s.projects.issued++
	s.projects.list = List[task.Project]{Items: []task.Project{}, Phase: PhaseIdle, Sequence: s.projects.issued}
	s.mutex.Unlock()
	s.onChange()
}

func fetch[T any](ctx context.Context, s *Synchronizer, state *listState[T], name string, load func(context.Context) ([]T, error)) error {
	s.mutex.Lock()
	state.issued++
	sequence := state.issued
	state.list.Phase = PhaseLoading
	state.list.Loading = true
	s.mutex.Unlock()
	s.onChange()

	items, err := load(ctx)

	s.mutex.Lock()
	if sequence != state.issued {
		latest := state.issued
		s.mutex.Unlock()
		s.logger.Debug("discarding superseded fetch",
			"list", name,
			"sequence", sequence,
			"latest", latest,
			"error", err,
		)
		return nil
	}
	state.list.Loading = false
	state.list.Sequence = sequence
	if err != nil {
		state.list.Items = []T{}
		state.list.Phase = PhaseFailed
		state.list.Error = err.Error()
	} else {
		if items == nil {
			items = []T{}
		}
		state.list.Items = items
		state.list.Phase = PhaseLoaded
		state.list.Error = ""
	}
	s.mutex.Unlock()
	s.onChange()

	if err != nil {
		s.logger.Warn("fetch failed", "list", name, "sequence", sequence, "error", err)
		return fmt.Errorf("fetching %s: %w", name, err)
	}
	s.logger.Debug("fetch applied", "list", name, "sequence", sequence, "count", len(items))
	return nil
}

func copyList[T any](list List[T]) List[T] {
	list.Items = slices.Clone(list.Items)
	return list
}
