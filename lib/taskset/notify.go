// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package taskset

import "context"

// Kind classifies a notification.
type Kind string

const (
	// KindSuccess reports a completed mutation.
	KindSuccess Kind = "success"

	// KindFailure reports a mutation the server rejected or that
	// failed in transit, including partially failed bulk operations.
	KindFailure Kind = "failure"

	// KindValidation reports input rejected before any request was
	// sent (empty title, empty selection).
	KindValidation Kind = "validation"
)

// Notification is one user-facing message.
type Notification struct {
	Kind    Kind
	Message string

	// Err is the underlying error for failure and validation
	// notifications.
	Err error
}

// Notifier receives notifications. Implementations must not block for
// long; they are called on the goroutine that ran the operation.
type Notifier interface {
	Notify(notification Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

// Notify calls f.
func (f NotifierFunc) Notify(notification Notification) { f(notification) }

// Confirmation describes an action awaiting the user's approval.
type Confirmation struct {
	// Action is a short verb identifying the operation ("delete",
	// "archive", "status", "shift-due", "clear-due").
	Action string

	// Count is the number of tasks affected.
	Count int

	// Prompt is the question to show, naming the action and count.
	Prompt string

	// Destructive is true for irreversible operations.
	Destructive bool
}

// Confirmer asks the user to approve an action. It may block until the
// user answers; a cancelled ctx should be treated as a refusal.
type Confirmer interface {
	Confirm(ctx context.Context, confirmation Confirmation) bool
}

// ConfirmerFunc adapts a function to Confirmer.
type ConfirmerFunc func(context.Context, Confirmation) bool

// Confirm calls f.
func (f ConfirmerFunc) Confirm(ctx context.Context, confirmation Confirmation) bool {
	return f(ctx, confirmation)
}

// AlwaysConfirm approves every action. Used for non-interactive
// callers that confirmed up front (a --yes flag).
var AlwaysConfirm Confirmer = ConfirmerFunc(func(context.Context, Confirmation) bool { return true })

// NeverConfirm refuses every action. It is the default when no
// Confirmer is configured.
var NeverConfirm Confirmer = ConfirmerFunc(func(context.Context, Confirmation) bool { return false })

type discardNotifier struct{}

func (discardNotifier) Notify(Notification) {}
