// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package task defines the task tracker's wire types: [Task],
// [Project], the sparse [UpdatePayload] used for partial updates, the
// [CreateRequest] for new tasks, and the [Query] carrying the
// server-side filter dimensions of a list request.
//
// All types use `json` tags: the remote task API speaks JSON and so
// does the CLI's --json output.
//
// The engine never owns a Task. Values of these types are a cache of
// what the server last returned; mutations go out as UpdatePayloads and
// the list is re-fetched afterwards rather than patched in place.
//
// Validation of outgoing payloads is tag-driven (go-playground
// validator) with a small amount of hand-written checking for the
// cases the tags cannot express (trimmed titles, explicit clears).
//
// This package depends on no other taskboard packages.
package task
