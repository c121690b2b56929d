// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package taskset

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptySelection is returned by bulk operations invoked with nothing
// selected. No confirmation is asked and no request is sent.
var ErrEmptySelection = errors.New("no tasks selected")

// ErrCancelled is returned when the user declines a confirmation. No
// request is sent.
var ErrCancelled = errors.New("cancelled")

// Outcome is the result of one request within a bulk operation.
type Outcome struct {
	TaskID int64
	Err    error
}

// BulkResult aggregates the outcomes of a bulk operation.
type BulkResult struct {
	// Action is the operation's short name ("status", "archive", ...).
	Action string

	// Requested lists the task IDs a request was sent for, ascending.
	Requested []int64

	// Succeeded lists the IDs whose request succeeded, ascending.
	Succeeded []int64

	// Failed lists the outcomes of failed requests, by ascending ID.
	Failed []Outcome

	// RefreshErr is the error of the post-operation re-fetch, if it
	// was applied and failed.
	RefreshErr error
}

// Err returns a *BulkError when any request failed, else nil.
func (r BulkResult) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	return &BulkError{Action: r.Action, Total: len(r.Requested), Failures: r.Failed}
}

// BulkError reports the failed requests of a bulk operation. The
// requests that succeeded are not rolled back.
type BulkError struct {
	Action   string
	Total    int
	Failures []Outcome
}

func (e *BulkError) Error() string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "bulk %s: %d of %d tasks failed", e.Action, len(e.Failures), e.Total)
	for index, failure := range e.Failures {
		if index == 3 {
			fmt.Fprintf(&builder, "; and %d more", len(e.Failures)-index)
			break
		}
		fmt.Fprintf(&builder, "; task %d: %v", failure.TaskID, failure.Err)
	}
	return builder.String()
}

// Unwrap exposes every per-task error to errors.Is and errors.As.
func (e *BulkError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for index, failure := range e.Failures {
		errs[index] = failure.Err
	}
	return errs
}

// FailedIDs returns the IDs whose request failed.
func (e *BulkError) FailedIDs() []int64 {
	ids := make([]int64, len(e.Failures))
	for index, failure := range e.Failures {
		ids[index] = failure.TaskID
	}
	return ids
}

func pluralTasks(count int) string {
	if count == 1 {
		return "1 task"
	}
	return fmt.Sprintf("%d tasks", count)
}
