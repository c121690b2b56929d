// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package taskset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/bureau-foundation/taskboard/lib/clock"
	"github.com/bureau-foundation/taskboard/lib/duedate"
	"github.com/bureau-foundation/taskboard/lib/schema/task"
	"github.com/bureau-foundation/taskboard/lib/selection"
)

// OrchestratorConfig configures an Orchestrator.
type OrchestratorConfig struct {
	API          API
	Synchronizer *Synchronizer
	Selection    *SelectionState

	// Query returns the current server-side filter. It is read when
	// each post-mutation re-fetch is issued.
	Query func() task.Query

	// Active, if set, gates the post-mutation re-fetch: when it
	// returns false (the caller signed out mid-operation) no fetch is
	// issued.
	Active func() bool

	Notifier  Notifier
	Confirmer Confirmer

	// Clock supplies "now" for due-date arithmetic. Nil means the
	// real clock.
	Clock clock.Clock

	// MaxInFlight caps concurrent requests within one bulk operation.
	// Zero or negative means one request per selected task at once.
	MaxInFlight int

	Logger *slog.Logger
}

// Orchestrator performs mutations against the API. Every completed
// mutation is followed by a full task re-fetch; the task list is never
// patched locally.
type Orchestrator struct {
	api         API
	sync        *Synchronizer
	selection   *SelectionState
	query       func() task.Query
	active      func() bool
	notifier    Notifier
	confirmer   Confirmer
	clock       clock.Clock
	maxInFlight int
	logger      *slog.Logger
}

// NewOrchestrator returns an Orchestrator. API, Synchronizer, Selection
// and Query are required.
func NewOrchestrator(config OrchestratorConfig) *Orchestrator {
	orchestrator := &Orchestrator{
		api:         config.API,
		sync:        config.Synchronizer,
		selection:   config.Selection,
		query:       config.Query,
		active:      config.Active,
		notifier:    config.Notifier,
		confirmer:   config.Confirmer,
		clock:       config.Clock,
		maxInFlight: config.MaxInFlight,
		logger:      config.Logger,
	}
	if orchestrator.notifier == nil {
		orchestrator.notifier = discardNotifier{}
	}
	if orchestrator.confirmer == nil {
		orchestrator.confirmer = NeverConfirm
	}
	if orchestrator.clock == nil {
		orchestrator.clock = clock.Real()
	}
	if orchestrator.logger == nil {
		orchestrator.logger = slog.New(slog.DiscardHandler)
	}
	return orchestrator
}

// Create creates a task. A blank title is rejected before any request.
func (o *Orchestrator) Create(ctx context.Context, title, description string, projectID *int64) (task.Task, error) {
	request := task.NewCreateRequest(title, description, projectID)
	if err := request.Validate(); err != nil {
		o.rejected(validationMessage(err), err)
		return task.Task{}, err
	}

	created, err := o.api.CreateTask(ctx, request)
	if err != nil {
		o.failed("Failed to create task", err)
		return task.Task{}, fmt.Errorf("creating task: %w", err)
	}
	o.logger.Info("task created", "task_id", created.ID)
	o.refresh(ctx)
	o.succeeded("Task created")
	return created, nil
}

// Update applies a partial update to one task.
func (o *Orchestrator) Update(ctx context.Context, id int64, payload task.UpdatePayload) error {
	return o.update(ctx, id, payload, "Task updated", "Failed to update task")
}

// Archive soft-deletes a task (is_active=false).
func (o *Orchestrator) Archive(ctx context.Context, id int64) error {
	return o.update(ctx, id, task.ArchiveUpdate(), "Task archived", "Failed to archive task")
}

// Restore reactivates an archived task.
func (o *Orchestrator) Restore(ctx context.Context, id int64) error {
	return o.update(ctx, id, task.RestoreUpdate(), "Task restored", "Failed to restore task")
}

// SetStatus changes one task's status.
func (o *Orchestrator) SetStatus(ctx context.Context, id int64, status task.Status) error {
	return o.update(ctx, id, task.StatusUpdate(status), "Status updated", "Failed to update status")
}

// SetProgress changes one task's progress (0-100).
func (o *Orchestrator) SetProgress(ctx context.Context, id int64, progress int) error {
	return o.update(ctx, id, task.ProgressUpdate(progress), "Progress updated", "Failed to update progress")
}

// ShiftDueDate moves one task's due date by days calendar days,
// starting from current, or from today when current is nil.
func (o *Orchestrator) ShiftDueDate(ctx context.Context, id int64, current *string, days int) error {
	shifted, err := duedate.Shift(current, days, o.clock.Now())
	if err != nil {
		o.rejected("Invalid due date", err)
		return err
	}
	return o.update(ctx, id, task.DueDateUpdate(shifted), "Due date updated", "Failed to update due date")
}

// ClearDueDate removes one task's due date.
func (o *Orchestrator) ClearDueDate(ctx context.Context, id int64) error {
	return o.update(ctx, id, task.ClearDueDateUpdate(), "Due date cleared", "Failed to clear due date")
}

// Delete permanently deletes a task after confirmation, unless
// skipConfirm is set. A declined confirmation returns ErrCancelled.
func (o *Orchestrator) Delete(ctx context.Context, id int64, skipConfirm bool) error {
	if !skipConfirm {
		approved := o.confirmer.Confirm(ctx, Confirmation{
			Action:      "delete",
			Count:       1,
			Prompt:      "Permanently delete this task? This cannot be undone.",
			Destructive: true,
		})
		if !approved {
			return ErrCancelled
		}
	}

	if err := o.api.DeleteTask(ctx, id); err != nil {
		o.failed("Failed to delete task", err)
		return fmt.Errorf("deleting task %d: %w", id, err)
	}
	o.logger.Info("task deleted", "task_id", id)
	o.refresh(ctx)
	o.succeeded("Task deleted")
	return nil
}

func (o *Orchestrator) update(ctx context.Context, id int64, payload task.UpdatePayload, success, failure string) error {
	if err := payload.Validate(); err != nil {
		o.rejected(validationMessage(err), err)
		return err
	}
	if _, err := o.api.UpdateTask(ctx, id, payload); err != nil {
		o.failed(failure, err)
		return fmt.Errorf("updating task %d: %w", id, err)
	}
	o.logger.Info("task updated", "task_id", id)
	o.refresh(ctx)
	o.succeeded(success)
	return nil
}

// BulkStatusChange sets status on every selected task. The selection
// is kept.
func (o *Orchestrator) BulkStatusChange(ctx context.Context, status task.Status) (BulkResult, error) {
	if !status.IsValid() {
		err := fmt.Errorf("unknown status %q", status)
		o.rejected("Unknown status", err)
		return BulkResult{Action: "status"}, err
	}
	payload := task.StatusUpdate(status)
	label := task.StatusLabel(status)
	return o.runBulk(ctx, bulkOperation{
		action: "status",
		prompt: func(count int) string {
			return fmt.Sprintf("Set status of %s to %q?", pluralSelected(count), label)
		},
		success: func(count int) string {
			return fmt.Sprintf("Set %s to %s", pluralTasks(count), label)
		},
		verb: "update",
		request: func(ctx context.Context, id int64) error {
			_, err := o.api.UpdateTask(ctx, id, payload)
			return err
		},
	})
}

// BulkShiftDueDate moves the due date of every selected task by days.
// Each task's current due date is read from the task list as it was
// when the operation began; a task without a due date, or not in the
// list, is shifted from today, so a zero shift gives it today's date.
// The selection is kept.
func (o *Orchestrator) BulkShiftDueDate(ctx context.Context, days int) (BulkResult, error) {
	currentDates := make(map[int64]*string)
	for _, item := range o.sync.Tasks() {
		currentDates[item.ID] = item.DueDate
	}
	now := o.clock.Now()

	return o.runBulk(ctx, bulkOperation{
		action: "shift-due",
		prompt: func(count int) string {
			return fmt.Sprintf("Shift due date of %s by %s?", pluralSelected(count), signedDays(days))
		},
		success: func(count int) string {
			return fmt.Sprintf("Shifted due date of %s by %s", pluralTasks(count), signedDays(days))
		},
		verb: "update",
		request: func(ctx context.Context, id int64) error {
			shifted, err := duedate.Shift(currentDates[id], days, now)
			if err != nil {
				return err
			}
			_, err = o.api.UpdateTask(ctx, id, task.DueDateUpdate(shifted))
			return err
		},
	})
}

// BulkClearDueDate removes the due date of every selected task. The
// selection is kept.
func (o *Orchestrator) BulkClearDueDate(ctx context.Context) (BulkResult, error) {
	payload := task.ClearDueDateUpdate()
	return o.runBulk(ctx, bulkOperation{
		action: "clear-due",
		prompt: func(count int) string {
			return fmt.Sprintf("Clear due date of %s?", pluralSelected(count))
		},
		success: func(count int) string {
			return fmt.Sprintf("Cleared due date of %s", pluralTasks(count))
		},
		verb: "update",
		request: func(ctx context.Context, id int64) error {
			_, err := o.api.UpdateTask(ctx, id, payload)
			return err
		},
	})
}

// BulkArchiveSelected archives every selected task. On full success the
// selection is cleared; on partial failure only the archived IDs are
// deselected.
func (o *Orchestrator) BulkArchiveSelected(ctx context.Context) (BulkResult, error) {
	payload := task.ArchiveUpdate()
	return o.runBulk(ctx, bulkOperation{
		action: "archive",
		prompt: func(count int) string {
			return fmt.Sprintf("Archive %s?", pluralSelected(count))
		},
		success: func(count int) string {
			return fmt.Sprintf("Archived %s", pluralTasks(count))
		},
		verb:           "archive",
		clearSelection: true,
		request: func(ctx context.Context, id int64) error {
			_, err := o.api.UpdateTask(ctx, id, payload)
			return err
		},
	})
}

// BulkDeleteSelected permanently deletes every selected task, with the
// same selection handling as BulkArchiveSelected.
func (o *Orchestrator) BulkDeleteSelected(ctx context.Context) (BulkResult, error) {
	return o.runBulk(ctx, bulkOperation{
		action:      "delete",
		destructive: true,
		prompt: func(count int) string {
			return fmt.Sprintf("Permanently delete %s? This cannot be undone.", pluralSelected(count))
		},
		success: func(count int) string {
			return fmt.Sprintf("Deleted %s", pluralTasks(count))
		},
		verb:           "delete",
		clearSelection: true,
		request:        o.api.DeleteTask,
	})
}

type bulkOperation struct {
	action         string
	verb           string
	destructive    bool
	clearSelection bool
	prompt         func(count int) string
	success        func(count int) string
	request        func(ctx context.Context, id int64) error
}

// runBulk captures the selected IDs, confirms, sends one request per
// ID concurrently, waits for every request to settle, re-fetches once,
// adjusts the selection, and sends one aggregate notification.
func (o *Orchestrator) runBulk(ctx context.Context, operation bulkOperation) (BulkResult, error) {
	result := BulkResult{Action: operation.action}

	ids := o.selection.Get().IDs()
	if len(ids) == 0 {
		o.rejected("No tasks selected", ErrEmptySelection)
		return result, ErrEmptySelection
	}
	result.Requested = ids

	approved := o.confirmer.Confirm(ctx, Confirmation{
		Action:      operation.action,
		Count:       len(ids),
		Prompt:      operation.prompt(len(ids)),
		Destructive: operation.destructive,
	})
	if !approved {
		return result, ErrCancelled
	}

	o.logger.Info("bulk operation started", "action", operation.action, "count", len(ids))
	errs := o.fanOut(ctx, ids, operation.request)

	for index, id := range ids {
		if errs[index] == nil {
			result.Succeeded = append(result.Succeeded, id)
			continue
		}
		result.Failed = append(result.Failed, Outcome{TaskID: id, Err: errs[index]})
		o.logger.Warn("bulk request failed", "action", operation.action, "task_id", id, "error", errs[index])
	}

	result.RefreshErr = o.refresh(ctx)

	if operation.clearSelection {
		if len(result.Failed) == 0 {
			o.selection.Update(selection.Set.Clear)
		} else if len(result.Succeeded) > 0 {
			succeeded := result.Succeeded
			o.selection.Update(func(set selection.Set) selection.Set { return set.Remove(succeeded...) })
		}
	}

	bulkErr := result.Err()
	if bulkErr != nil {
		o.notifier.Notify(Notification{
			Kind:    KindFailure,
			Message: fmt.Sprintf("Failed to %s %d of %s", operation.verb, len(result.Failed), pluralTasks(len(ids))),
			Err:     bulkErr,
		})
	} else {
		o.succeeded(operation.success(len(ids)))
	}
	o.logger.Info("bulk operation finished",
		"action", operation.action,
		"succeeded", len(result.Succeeded),
		"failed", len(result.Failed),
	)
	return result, bulkErr
}

// fanOut runs request for every id concurrently, bounded by
// maxInFlight, and returns each request's error at its id's index. It
// returns only after every request has settled.
func (o *Orchestrator) fanOut(ctx context.Context, ids []int64, request func(context.Context, int64) error) []error {
	errs := make([]error, len(ids))

	var slots chan struct{}
	if o.maxInFlight > 0 && o.maxInFlight < len(ids) {
		slots = make(chan struct{}, o.maxInFlight)
	}

	var waitGroup sync.WaitGroup
	for index, id := range ids {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			if slots != nil {
				select {
				case slots <- struct{}{}:
					defer func() { <-slots }()
				case <-ctx.Done():
					errs[index] = ctx.Err()
					return
				}
			}
			errs[index] = request(ctx, id)
		}()
	}
	waitGroup.Wait()
	return errs
}

// refresh re-fetches the task list with the filter as it is now.
func (o *Orchestrator) refresh(ctx context.Context) error {
	if o.active != nil && !o.active() {
		o.logger.Debug("skipping re-fetch without a session")
		return nil
	}
	return o.sync.FetchTasks(ctx, o.query())
}

func (o *Orchestrator) succeeded(message string) {
	o.notifier.Notify(Notification{Kind: KindSuccess, Message: message})
}

func (o *Orchestrator) failed(message string, err error) {
	o.notifier.Notify(Notification{Kind: KindFailure, Message: message + ": " + err.Error(), Err: err})
}

func (o *Orchestrator) rejected(message string, err error) {
	o.notifier.Notify(Notification{Kind: KindValidation, Message: message, Err: err})
}

func validationMessage(err error) string {
	switch {
	case errors.Is(err, task.ErrEmptyTitle):
		return "Task title is required"
	case errors.Is(err, task.ErrEmptyPayload):
		return "Nothing to update"
	}
	return "Invalid input: " + err.Error()
}

func pluralSelected(count int) string {
	if count == 1 {
		return "1 selected task"
	}
	return fmt.Sprintf("%d selected tasks", count)
}

func signedDays(days int) string {
	if days == 1 || days == -1 {
		return fmt.Sprintf("%+d day", days)
	}
	return fmt.Sprintf("%+d days", days)
}
