// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package selection tracks a multi-select set of task IDs.
//
// A Set is independent of whatever list is currently displayed: it may
// hold IDs of tasks hidden by the current filter, and it survives
// filter changes. Operations that care about what is on screen take
// the visible IDs as an argument and work on the intersection.
//
// Set is an immutable value. Every mutator returns a new Set and leaves
// the receiver untouched, so a Set captured at the start of a bulk
// operation is a stable snapshot regardless of what the user does next.
package selection

import "slices"

// Set is an immutable set of task IDs. The zero value is empty and
// ready to use.
type Set struct {
	ids map[int64]struct{}
}

// Of returns a Set holding ids.
func Of(ids ...int64) Set {
	if len(ids) == 0 {
		return Set{}
	}
	members := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		members[id] = struct{}{}
	}
	return Set{ids: members}
}

// Len returns the number of selected IDs.
func (s Set) Len() int { return len(s.ids) }

// IsEmpty reports whether nothing is selected.
func (s Set) IsEmpty() bool { return len(s.ids) == 0 }

// Contains reports whether id is selected.
func (s Set) Contains(id int64) bool {
	_, ok := s.ids[id]
	return ok
}

// IDs returns the selected IDs in ascending order.
func (s Set) IDs() []int64 {
	ids := make([]int64, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Toggle adds id if absent, removes it if present.
func (s Set) Toggle(id int64) Set {
	next := s.clone(1)
	if _, ok := next[id]; ok {
		delete(next, id)
	} else {
		next[id] = struct{}{}
	}
	return Set{ids: next}
}

// ToggleAllVisible implements the select-all checkbox over the visible
// list. When every visible ID is already selected, exactly those IDs
// are removed. Otherwise every visible ID is added. Selected IDs that
// are not visible are never touched. An empty visible list is a no-op.
func (s Set) ToggleAllVisible(visibleIDs []int64) Set {
	if len(visibleIDs) == 0 {
		return s
	}
	allSelected := s.AllVisibleSelected(visibleIDs)
	next := s.clone(len(visibleIDs))
	for _, id := range visibleIDs {
		if allSelected {
			delete(next, id)
		} else {
			next[id] = struct{}{}
		}
	}
	return Set{ids: next}
}

// Remove returns the set without ids.
func (s Set) Remove(ids ...int64) Set {
	if len(ids) == 0 || len(s.ids) == 0 {
		return s
	}
	next := s.clone(0)
	for _, id := range ids {
		delete(next, id)
	}
	return Set{ids: next}
}

// Clear returns the empty set.
func (s Set) Clear() Set { return Set{} }

// CountVisible returns how many of visibleIDs are selected.
func (s Set) CountVisible(visibleIDs []int64) int {
	count := 0
	for _, id := range visibleIDs {
		if s.Contains(id) {
			count++
		}
	}
	return count
}

// AllVisibleSelected reports whether every visible ID is selected. It
// is false for an empty visible list, matching an unchecked
// select-all box over an empty table.
func (s Set) AllVisibleSelected(visibleIDs []int64) bool {
	if len(visibleIDs) == 0 {
		return false
	}
	for _, id := range visibleIDs {
		if !s.Contains(id) {
			return false
		}
	}
	return true
}

// SomeVisibleSelected reports whether at least one, but not every,
// visible ID is selected (the indeterminate select-all state).
func (s Set) SomeVisibleSelected(visibleIDs []int64) bool {
	count := s.CountVisible(visibleIDs)
	return count > 0 && count < len(visibleIDs)
}

func (s Set) clone(extra int) map[int64]struct{} {
	next := make(map[int64]struct{}, len(s.ids)+extra)
	for id := range s.ids {
		next[id] = struct{}{}
	}
	return next
}
