// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package taskset is the client-side engine behind a task list view.
//
// It composes four parts:
//
//   - a [taskfilter.Store] holding the filter state and its persisted
//     preset,
//   - a [Synchronizer] that fetches the task and project lists for the
//     current filter, discarding results that a newer fetch has
//     superseded,
//   - a [SelectionState] holding the multi-select set, which survives
//     filter changes,
//   - an [Orchestrator] that performs single-task and bulk mutations
//     against the remote [API] and always re-fetches afterwards.
//
// [Engine] wires them together and is what front ends use. Engine
// state is guarded by mutexes; every method is safe to call from any
// goroutine, and no lock is held across a network call.
//
// The engine never patches its task list locally. After any mutation,
// successful or not, the list shown is the one the server returned
// from a fresh fetch.
//
// User-facing side effects go through two injected collaborators: a
// [Notifier] receives one notification per operation, and a
// [Confirmer] is asked before every bulk operation and before a
// confirmed delete.
package taskset
