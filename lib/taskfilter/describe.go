// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package taskfilter

import (
	"strconv"
	"strings"

	"github.com/bureau-foundation/taskboard/lib/schema/task"
)

// Describe renders the server-side dimensions of f on one line, for
// example "my tasks, active only, status Blocked". projectName
// resolves a project ID to its name; nil or a miss prints the ID.
func (f Filter) Describe(projectName func(int64) (string, bool)) string {
	parts := []string{"everyone's tasks"}
	if f.MineOnly {
		parts[0] = "my tasks"
	}
	if f.ActiveOnly {
		parts = append(parts, "active only")
	} else {
		parts = append(parts, "including archived")
	}
	if f.StatusFilter != "" {
		parts = append(parts, "status "+task.StatusLabel(f.StatusFilter))
	}
	if f.ProjectFilterID != nil {
		label := "project " + strconv.FormatInt(*f.ProjectFilterID, 10)
		if projectName != nil {
			if name, ok := projectName(*f.ProjectFilterID); ok {
				label = "project " + name
			}
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, ", ")
}

// MatchingPreset returns the built-in preset that selects the same
// tasks as f, or "" when none does.
func (f Filter) MatchingPreset() PresetName {
	for _, name := range PresetNames {
		preset, _, err := f.ApplyPreset(name, true)
		if err == nil && preset.SameQuery(f) {
			return name
		}
	}
	return ""
}
