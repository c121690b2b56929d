// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package taskset

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/bureau-foundation/taskboard/lib/clock"
	"github.com/bureau-foundation/taskboard/lib/localstore"
	"github.com/bureau-foundation/taskboard/lib/schema/task"
	"github.com/bureau-foundation/taskboard/lib/selection"
	"github.com/bureau-foundation/taskboard/lib/taskfilter"
)

// Config configures an Engine.
type Config struct {
	// API is the remote task service. Required.
	API API

	// Storage persists the filter preset. Nil keeps it in memory.
	Storage localstore.Store

	Notifier  Notifier
	Confirmer Confirmer

	// OnChange is called after any state change (fetch started or
	// resolved, selection or filter changed). Front ends use it to
	// redraw. Nil is allowed.
	OnChange func()

	Clock       clock.Clock
	MaxInFlight int
	Logger      *slog.Logger
}

// Session identifies the authenticated caller.
type Session struct {
	Username string

	// Admin enables restricted filter presets. The server enforces
	// its own authorization independently.
	Admin bool
}

// Engine is the task-collection engine: filter, synchronized lists,
// selection, and mutations.
type Engine struct {
	*Orchestrator

	filters   *taskfilter.Store
	sync      *Synchronizer
	selection *SelectionState
	onChange  func()
	logger    *slog.Logger

	mutex   sync.Mutex
	session *Session
}

// New builds an Engine, loading the persisted filter preset. Nothing
// is fetched until [Engine.SetSession] supplies a session.
func New(ctx context.Context, config Config) *Engine {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	onChange := config.OnChange
	if onChange == nil {
		onChange = func() {}
	}

	engine := &Engine{
		filters: taskfilter.Open(ctx, taskfilter.Config{
			Storage: config.Storage,
			Logger:  logger.With("component", "filter"),
		}),
		sync: NewSynchronizer(SynchronizerConfig{
			API:      config.API,
			OnChange: onChange,
			Logger:   logger.With("component", "sync"),
		}),
		selection: NewSelectionState(onChange),
		onChange:  onChange,
		logger:    logger,
	}
	engine.Orchestrator = NewOrchestrator(OrchestratorConfig{
		API:          config.API,
		Synchronizer: engine.sync,
		Selection:    engine.selection,
		Query:        engine.filters.Query,
		Active:       engine.Authenticated,
		Notifier:     config.Notifier,
		Confirmer:    config.Confirmer,
		Clock:        config.Clock,
		MaxInFlight:  config.MaxInFlight,
		Logger:       logger.With("component", "mutations"),
	})
	return engine
}

// SetSession changes the authentication state. A non-nil session
// triggers a sync of both lists; nil clears them and invalidates any
// fetch still in flight.
func (e *Engine) SetSession(ctx context.Context, session *Session) error {
	e.mutex.Lock()
	if session != nil {
		copied := *session
		session = &copied
	}
	e.session = session
	e.mutex.Unlock()

	if session == nil {
		e.sync.Clear()
		e.logger.Info("session cleared")
		return nil
	}
	e.logger.Info("session started", "username", session.Username, "admin", session.Admin)
	return e.sync.Sync(ctx, e.filters.Query())
}

// Session returns a copy of the current session, or nil.
func (e *Engine) Session() *Session {
	e.mutex.Lock()
	defer e.mutex.Unlock()
	if e.session == nil {
		return nil
	}
	copied := *e.session
	return &copied
}

// Authenticated reports whether a session is set.
func (e *Engine) Authenticated() bool {
	return e.Session() != nil
}

// Reload re-fetches both lists for the current filter. Without a
// session it does nothing.
func (e *Engine) Reload(ctx context.Context) error {
	if !e.Authenticated() {
		return nil
	}
	return e.sync.Sync(ctx, e.filters.Query())
}

// State returns a snapshot of the task and project lists.
func (e *Engine) State() State {
	return e.sync.State()
}

// Filter returns the current filter.
func (e *Engine) Filter() taskfilter.Filter {
	return e.filters.Filter()
}

// Visible returns the fetched tasks that pass the search term.
func (e *Engine) Visible() []task.Task {
	return e.filters.Visible(e.sync.Tasks())
}

// visibleIDs returns the IDs of Visible.
func (e *Engine) visibleIDs() []int64 {
	return e.filters.Filter().VisibleIDs(e.sync.Tasks())
}

// SetMineOnly changes the mine dimension, persists it, and re-syncs
// when the query changed.
func (e *Engine) SetMineOnly(ctx context.Context, mine bool) error {
	return e.changeFilter(ctx, func(ctx context.Context) error { return e.filters.SetMineOnly(ctx, mine) })
}

// SetActiveOnly changes the active-only dimension.
func (e *Engine) SetActiveOnly(ctx context.Context, active bool) error {
	return e.changeFilter(ctx, func(ctx context.Context) error { return e.filters.SetActiveOnly(ctx, active) })
}

// SetStatusFilter changes the status dimension. The empty status means
// any.
func (e *Engine) SetStatusFilter(ctx context.Context, status task.Status) error {
	return e.changeFilter(ctx, func(ctx context.Context) error { return e.filters.SetStatusFilter(ctx, status) })
}

// SetProjectFilter changes the project dimension. Nil means any.
func (e *Engine) SetProjectFilter(ctx context.Context, projectID *int64) error {
	return e.changeFilter(ctx, func(ctx context.Context) error { return e.filters.SetProjectFilter(ctx, projectID) })
}

// ApplyPreset applies a built-in preset. Restricted presets are
// silently ignored unless the session is an administrator.
func (e *Engine) ApplyPreset(ctx context.Context, name taskfilter.PresetName) error {
	session := e.Session()
	elevated := session != nil && session.Admin
	return e.changeFilter(ctx, func(ctx context.Context) error {
		_, err := e.filters.ApplyPreset(ctx, name, elevated)
		return err
	})
}

// SetSearchTerm changes the client-side search term. No request is
// made.
func (e *Engine) SetSearchTerm(term string) {
	e.filters.SetSearchTerm(term)
	e.onChange()
}

// changeFilter runs change and, when the server-side query differs
// afterwards and a session is set, re-syncs both lists. A persistence
// error does not prevent the sync.
func (e *Engine) changeFilter(ctx context.Context, change func(context.Context) error) error {
	before := e.filters.Filter()
	changeErr := change(ctx)
	after := e.filters.Filter()
	e.onChange()

	if before.SameQuery(after) || !e.Authenticated() {
		return changeErr
	}
	return errors.Join(changeErr, e.sync.Sync(ctx, after.Query()))
}

// Selection returns the current selection.
func (e *Engine) Selection() selection.Set {
	return e.selection.Get()
}

// Toggle flips id's membership in the selection.
func (e *Engine) Toggle(id int64) selection.Set {
	return e.selection.Update(func(set selection.Set) selection.Set { return set.Toggle(id) })
}

// ToggleSelectAllVisible selects every visible task, or deselects
// exactly the visible ones when all are already selected.
func (e *Engine) ToggleSelectAllVisible() selection.Set {
	visible := e.visibleIDs()
	return e.selection.Update(func(set selection.Set) selection.Set { return set.ToggleAllVisible(visible) })
}

// ClearSelection empties the selection.
func (e *Engine) ClearSelection() selection.Set {
	return e.selection.Update(selection.Set.Clear)
}

// SelectedVisibleCount returns how many visible tasks are selected.
func (e *Engine) SelectedVisibleCount() int {
	return e.Selection().CountVisible(e.visibleIDs())
}

// AllVisibleSelected reports whether every visible task is selected.
func (e *Engine) AllVisibleSelected() bool {
	return e.Selection().AllVisibleSelected(e.visibleIDs())
}

// SomeVisibleSelected reports whether some, but not every, visible task
// is selected.
func (e *Engine) SomeVisibleSelected() bool {
	return e.Selection().SomeVisibleSelected(e.visibleIDs())
}

// FindTask returns the fetched task with id.
func (e *Engine) FindTask(id int64) (task.Task, bool) {
	for _, item := range e.sync.Tasks() {
		if item.ID == id {
			return item, true
		}
	}
	return task.Task{}, false
}

// ShiftTaskDueDate shifts one task's due date by days, reading its
// current due date from the fetched list.
func (e *Engine) ShiftTaskDueDate(ctx context.Context, id int64, days int) error {
	var current *string
	if item, ok := e.FindTask(id); ok {
		current = item.DueDate
	}
	return e.ShiftDueDate(ctx, id, current, days)
}

// ProjectName returns the name of the fetched project with id.
func (e *Engine) ProjectName(id int64) (string, bool) {
	for _, project := range e.sync.State().Projects.Items {
		if project.ID == id {
			return project.Name, true
		}
	}
	return "", false
}
