// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package duedate implements calendar-date arithmetic for task due
// dates.
//
// Due dates are calendar dates (YYYY-MM-DD) with no time component,
// interpreted in the user's local zone. All arithmetic anchors the
// date at local noon before adding days: noon is at least eleven hours
// away from either midnight, so a 23- or 25-hour day at a daylight
// saving transition cannot push the result onto the wrong date.
// Anchoring at midnight instead would turn "2024-03-09 + 1 day" into
// 2024-03-09 23:00 in zones that spring forward at 02:00 on the 10th
// when the arithmetic is done in fixed 24-hour steps.
package duedate

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Layout is the wire format of a due date.
const Layout = "2006-01-02"

// Parse interprets date (YYYY-MM-DD) as a calendar day in location and
// returns local noon of that day. A trailing time component
// ("2024-03-09T00:00:00Z") is ignored: only the date part is
// meaningful.
func Parse(date string, location *time.Location) (time.Time, error) {
	trimmed := strings.TrimSpace(date)
	if len(trimmed) > len(Layout) {
		trimmed = trimmed[:len(Layout)]
	}
	day, err := time.ParseInLocation(Layout, trimmed, location)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing due date %q: %w", date, err)
	}
	return atNoon(day), nil
}

// Shift returns the calendar date days after date, formatted as
// YYYY-MM-DD. When date is nil or empty the computation starts from
// now's calendar day. days may be negative.
//
// The base is normalized to local noon (in now's location) before
// the shift, then truncated back to a date.
func Shift(date *string, days int, now time.Time) (string, error) {
	base := atNoon(now)
	if date != nil && strings.TrimSpace(*date) != "" {
		parsed, err := Parse(*date, now.Location())
		if err != nil {
			return "", err
		}
		base = parsed
	}
	return base.AddDate(0, 0, days).Format(Layout), nil
}

// DaysUntil returns the number of calendar days from now's date to
// date: 0 for today, 1 for tomorrow, negative when date is in the past.
func DaysUntil(date string, now time.Time) (int, error) {
	due, err := Parse(date, now.Location())
	if err != nil {
		return 0, err
	}
	// Noon to noon spans 23 or 25 hours across a transition; rounding
	// recovers the calendar-day count.
	hours := due.Sub(atNoon(now)).Hours()
	return int(math.Round(hours / 24)), nil
}

// IsOverdue reports whether date lies strictly before now's calendar
// day. Nil or unparseable dates are never overdue.
func IsOverdue(date *string, now time.Time) bool {
	if date == nil || *date == "" {
		return false
	}
	days, err := DaysUntil(*date, now)
	return err == nil && days < 0
}

// Label formats a due date relative to now for display: "Overdue by 3
// days", "Due today", "Due tomorrow", "Due in 5 days". Returns "" for
// a nil or empty date and the raw string for an unparseable one.
func Label(date *string, now time.Time) string {
	if date == nil || strings.TrimSpace(*date) == "" {
		return ""
	}
	days, err := DaysUntil(*date, now)
	if err != nil {
		return *date
	}
	switch {
	case days < -1:
		return fmt.Sprintf("Overdue by %d days", -days)
	case days == -1:
		return "Overdue by 1 day"
	case days == 0:
		return "Due today"
	case days == 1:
		return "Due tomorrow"
	default:
		return fmt.Sprintf("Due in %d days", days)
	}
}

func atNoon(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 12, 0, 0, 0, t.Location())
}
