// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package taskfilter holds the filter state of a task list: four
// server-side dimensions (mine, active-only, status, project) that
// select what is fetched, and a client-side search term that narrows
// the fetched list without a network call.
//
// [Filter] is a plain value with pure mutators. [Store] owns the
// current Filter and persists the four server-side dimensions as a
// preset under [PresetKey] so they survive between sessions. The
// search term is never persisted.
package taskfilter

import (
	"errors"
	"strings"

	"github.com/bureau-foundation/taskboard/lib/schema/task"
)

// PresetName names a built-in filter preset.
type PresetName string

const (
	// PresetMyActive shows the caller's active tasks in any status.
	PresetMyActive PresetName = "myActive"

	// PresetBlockedOnly shows the caller's active blocked tasks.
	PresetBlockedOnly PresetName = "blockedOnly"

	// PresetAllActive shows every user's active tasks. Only applied
	// when the caller asserts administrator privilege; the server
	// enforces its own authorization regardless.
	PresetAllActive PresetName = "allActive"
)

// PresetNames lists the built-in presets in display order.
var PresetNames = []PresetName{PresetMyActive, PresetBlockedOnly, PresetAllActive}

// ErrUnknownPreset is returned when a preset name is not one of
// [PresetNames].
var ErrUnknownPreset = errors.New("unknown filter preset")

// Filter is the complete filter state.
type Filter struct {
	MineOnly        bool
	ActiveOnly      bool
	StatusFilter    task.Status
	ProjectFilterID *int64
	SearchTerm      string
}

// Default returns the filter used when nothing has been persisted:
// the caller's active tasks, any status, any project, no search.
func Default() Filter {
	return Filter{MineOnly: true, ActiveOnly: true}
}

// WithMineOnly returns f with MineOnly set.
func (f Filter) WithMineOnly(mine bool) Filter {
	f.MineOnly = mine
	return f
}

// WithActiveOnly returns f with ActiveOnly set.
func (f Filter) WithActiveOnly(active bool) Filter {
	f.ActiveOnly = active
	return f
}

// WithStatus returns f restricted to status. The empty status means
// any.
func (f Filter) WithStatus(status task.Status) Filter {
	f.StatusFilter = status
	return f
}

// WithProject returns f restricted to projectID. Nil means any
// project.
func (f Filter) WithProject(projectID *int64) Filter {
	if projectID != nil {
		id := *projectID
		projectID = &id
	}
	f.ProjectFilterID = projectID
	return f
}

// WithSearch returns f with the search term replaced.
func (f Filter) WithSearch(term string) Filter {
	f.SearchTerm = term
	return f
}

// WithPreset returns f with the four server-side dimensions set from
// preset. The search term is kept.
func (f Filter) WithPreset(preset Preset) Filter {
	f.MineOnly = preset.MineOnly
	f.ActiveOnly = preset.ActiveOnly
	f.StatusFilter = preset.StatusFilter
	return f.WithProject(preset.ProjectFilterID)
}

// ApplyPreset returns f with the named built-in preset applied.
// applied is false when the preset is restricted and elevated is
// false; f is then returned unchanged.
func (f Filter) ApplyPreset(name PresetName, elevated bool) (result Filter, applied bool, err error) {
	switch name {
	case PresetMyActive:
		return f.WithPreset(Preset{MineOnly: true, ActiveOnly: true}), true, nil
	case PresetBlockedOnly:
		return f.WithPreset(Preset{MineOnly: true, ActiveOnly: true, StatusFilter: task.StatusBlocked}), true, nil
	case PresetAllActive:
		if !elevated {
			return f, false, nil
		}
		return f.WithPreset(Preset{MineOnly: false, ActiveOnly: true}), true, nil
	}
	return f, false, ErrUnknownPreset
}

// Preset extracts the persisted dimensions of f.
func (f Filter) Preset() Preset {
	preset := Preset{
		MineOnly:     f.MineOnly,
		ActiveOnly:   f.ActiveOnly,
		StatusFilter: f.StatusFilter,
	}
	if f.ProjectFilterID != nil {
		id := *f.ProjectFilterID
		preset.ProjectFilterID = &id
	}
	return preset
}

// Query converts the server-side dimensions into a list query.
func (f Filter) Query() task.Query {
	query := task.Query{
		ActiveOnly: f.ActiveOnly,
		Mine:       f.MineOnly,
		Status:     f.StatusFilter,
	}
	if f.ProjectFilterID != nil {
		id := *f.ProjectFilterID
		query.ProjectID = &id
	}
	return query
}

// SameQuery reports whether f and other select the same server-side
// result set.
func (f Filter) SameQuery(other Filter) bool {
	return f.Preset().Equal(other.Preset())
}

// Matches reports whether item passes the search term. Matching is a
// case-insensitive substring test over title, description, owner and
// project name. An empty or whitespace-only term matches everything.
func (f Filter) Matches(item task.Task) bool {
	term := strings.ToLower(strings.TrimSpace(f.SearchTerm))
	if term == "" {
		return true
	}
	return strings.Contains(item.SearchText(), term)
}

// Visible returns the tasks that pass the search term, in their
// original order.
func (f Filter) Visible(tasks []task.Task) []task.Task {
	visible := make([]task.Task, 0, len(tasks))
	for _, item := range tasks {
		if f.Matches(item) {
			visible = append(visible, item)
		}
	}
	return visible
}

// VisibleIDs returns the IDs of [Filter.Visible].
func (f Filter) VisibleIDs(tasks []task.Task) []int64 {
	ids := make([]int64, 0, len(tasks))
	for _, item := range tasks {
		if f.Matches(item) {
			ids = append(ids, item.ID)
		}
	}
	return ids
}
