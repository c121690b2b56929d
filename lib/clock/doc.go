// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source for testability.
//
// Code that needs "now" (due-date arithmetic, "due today" labels,
// overdue highlighting) accepts a Clock instead of calling time.Now
// directly. In production, Real() provides the standard library
// behavior. In tests, Fake() provides a clock that stands still until
// Set or Advance is called.
//
// The time zone matters: due dates are calendar dates in the user's
// local zone, so a fake clock constructed with a specific location
// (e.g. America/New_York) makes every date computation behave as if
// the process ran in that zone.
//
//	c := clock.Fake(time.Date(2024, 3, 9, 23, 30, 0, 0, newYork))
//	label := duedate.Label(task.DueDate, c.Now())
package clock
