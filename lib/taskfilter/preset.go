// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package taskfilter

import (
	"encoding/json"
	"fmt"

	"github.com/bureau-foundation/taskboard/lib/schema/task"
)

// PresetKey is the local storage key holding the persisted preset.
const PresetKey = "tasks.filterPreset"

// Preset is the persisted subset of a Filter.
type Preset struct {
	MineOnly        bool        `json:"mineOnly"`
	ActiveOnly      bool        `json:"activeOnly"`
	StatusFilter    task.Status `json:"statusFilter"`
	ProjectFilterID *int64      `json:"projectFilterId"`
}

// DefaultPreset is the preset of [Default].
func DefaultPreset() Preset {
	return Default().Preset()
}

// Equal reports whether two presets select the same tasks.
func (p Preset) Equal(other Preset) bool {
	if p.MineOnly != other.MineOnly || p.ActiveOnly != other.ActiveOnly || p.StatusFilter != other.StatusFilter {
		return false
	}
	if p.ProjectFilterID == nil || other.ProjectFilterID == nil {
		return p.ProjectFilterID == nil && other.ProjectFilterID == nil
	}
	return *p.ProjectFilterID == *other.ProjectFilterID
}

// Encode serializes the preset for storage. projectFilterId is always
// present (null when unset).
func (p Preset) Encode() ([]byte, error) {
	return json.Marshal(p)
}

// storedPreset mirrors Preset with every field optional so that a
// partially written object can be told apart from zero values.
type storedPreset struct {
	MineOnly        *bool        `json:"mineOnly"`
	ActiveOnly      *bool        `json:"activeOnly"`
	StatusFilter    *task.Status `json:"statusFilter"`
	ProjectFilterID *int64       `json:"projectFilterId"`
}

// DecodePreset parses a stored preset. Keys that are absent take their
// value from [DefaultPreset]. Invalid JSON, a value of the wrong type,
// an unknown status, or a non-positive project ID is an error; callers
// fall back to the default preset in that case.
func DecodePreset(data []byte) (Preset, error) {
	var stored storedPreset
	if err := json.Unmarshal(data, &stored); err != nil {
		return Preset{}, fmt.Errorf("decoding filter preset: %w", err)
	}

	preset := DefaultPreset()
	if stored.MineOnly != nil {
		preset.MineOnly = *stored.MineOnly
	}
	if stored.ActiveOnly != nil {
		preset.ActiveOnly = *stored.ActiveOnly
	}
	if stored.StatusFilter != nil {
		status := *stored.StatusFilter
		if status != "" && !status.IsValid() {
			return Preset{}, fmt.Errorf("decoding filter preset: unknown status %q", status)
		}
		preset.StatusFilter = status
	}
	if stored.ProjectFilterID != nil {
		if *stored.ProjectFilterID <= 0 {
			return Preset{}, fmt.Errorf("decoding filter preset: invalid project id %d", *stored.ProjectFilterID)
		}
		preset.ProjectFilterID = stored.ProjectFilterID
	}
	return preset, nil
}
