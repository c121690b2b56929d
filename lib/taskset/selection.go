// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package taskset

import (
	"sync"

	"github.com/bureau-foundation/taskboard/lib/selection"
)

// SelectionState is the engine's mutable holder for the selection
// set. The Set values it hands out are immutable snapshots.
type SelectionState struct {
	mutex    sync.Mutex
	set      selection.Set
	onChange func()
}

// NewSelectionState returns an empty selection. onChange, if non-nil,
// is called after every change without the lock held.
func NewSelectionState(onChange func()) *SelectionState {
	if onChange == nil {
		onChange = func() {}
	}
	return &SelectionState{onChange: onChange}
}

// Get returns the current set.
func (s *SelectionState) Get() selection.Set {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.set
}

// Update replaces the set with mutate's result and returns it.
func (s *SelectionState) Update(mutate func(selection.Set) selection.Set) selection.Set {
	s.mutex.Lock()
	s.set = mutate(s.set)
	result := s.set
	s.mutex.Unlock()
	s.onChange()
	return result
}
