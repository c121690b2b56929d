// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package taskui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the task board.
//
// Mutation keys act on the selection when it is non-empty and on the
// task under the cursor otherwise.
type KeyMap struct {
	// Navigation.
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Home     key.Binding
	End      key.Binding

	// Selection.
	Toggle         key.Binding
	SelectAll      key.Binding
	ClearSelection key.Binding

	// Filter.
	Search       key.Binding
	ToggleMine   key.Binding
	ToggleActive key.Binding
	CycleStatus  key.Binding
	PresetMine   key.Binding
	PresetBlock  key.Binding
	PresetAll    key.Binding
	Reload       key.Binding

	// Mutations.
	SetStatus        key.Binding // Open the status picker.
	ShiftDueLater    key.Binding
	ShiftDueEarlier  key.Binding
	ShiftWeekLater   key.Binding
	ShiftWeekEarlier key.Binding
	ClearDue         key.Binding
	ProgressUp       key.Binding
	ProgressDown     key.Binding
	Archive          key.Binding
	Restore          key.Binding
	Delete           key.Binding
	Create           key.Binding
	Rename           key.Binding

	// Prompts.
	Confirm key.Binding
	Cancel  key.Binding
	Submit  key.Binding

	Help key.Binding
	Quit key.Binding
}

// DefaultKeyMap is the built-in key binding set. Vim-style navigation
// (j/k) alongside standard arrow keys and page up/down.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("ctrl+u", "pgup"),
		key.WithHelp("C-u", "page up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("ctrl+d", "pgdown"),
		key.WithHelp("C-d", "page down"),
	),
	Home: key.NewBinding(
		key.WithKeys("g", "home"),
		key.WithHelp("g", "top"),
	),
	End: key.NewBinding(
		key.WithKeys("G", "end"),
		key.WithHelp("G", "bottom"),
	),
	Toggle: key.NewBinding(
		key.WithKeys(" ", "x"),
		key.WithHelp("space", "select"),
	),
	SelectAll: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "select all"),
	),
	ClearSelection: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("Esc", "clear selection"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	ToggleMine: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "mine/all"),
	),
	ToggleActive: key.NewBinding(
		key.WithKeys("v"),
		key.WithHelp("v", "show archived"),
	),
	CycleStatus: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "status filter"),
	),
	PresetMine: key.NewBinding(
		key.WithKeys("1"),
		key.WithHelp("1", "my active"),
	),
	PresetBlock: key.NewBinding(
		key.WithKeys("2"),
		key.WithHelp("2", "blocked"),
	),
	PresetAll: key.NewBinding(
		key.WithKeys("3"),
		key.WithHelp("3", "all active"),
	),
	Reload: key.NewBinding(
		key.WithKeys("r", "ctrl+r"),
		key.WithHelp("r", "reload"),
	),
	SetStatus: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "set status"),
	),
	ShiftDueLater: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+/-", "due ±1 day"),
	),
	ShiftDueEarlier: key.NewBinding(
		key.WithKeys("-"),
		key.WithHelp("-", "due -1 day"),
	),
	ShiftWeekLater: key.NewBinding(
		key.WithKeys(">"),
		key.WithHelp(">/<", "due ±1 week"),
	),
	ShiftWeekEarlier: key.NewBinding(
		key.WithKeys("<"),
		key.WithHelp("<", "due -1 week"),
	),
	ClearDue: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "clear due"),
	),
	ProgressUp: key.NewBinding(
		key.WithKeys("]"),
		key.WithHelp("]/[", "progress ±10"),
	),
	ProgressDown: key.NewBinding(
		key.WithKeys("["),
		key.WithHelp("[", "progress -10"),
	),
	Archive: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "archive"),
	),
	Restore: key.NewBinding(
		key.WithKeys("u"),
		key.WithHelp("u", "restore"),
	),
	Delete: key.NewBinding(
		key.WithKeys("D"),
		key.WithHelp("D", "delete"),
	),
	Create: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new task"),
	),
	Rename: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "rename"),
	),
	Confirm: key.NewBinding(
		key.WithKeys("y", "Y"),
		key.WithHelp("y", "yes"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc", "n", "N"),
		key.WithHelp("n/Esc", "no"),
	),
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("Enter", "submit"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "more keys"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// ShortHelp implements help.KeyMap.
func (keys KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{keys.Toggle, keys.SetStatus, keys.ShiftDueLater, keys.Archive, keys.Search, keys.Help, keys.Quit}
}

// FullHelp implements help.KeyMap.
func (keys KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{keys.Up, keys.Down, keys.PageUp, keys.PageDown, keys.Home, keys.End},
		{keys.Toggle, keys.SelectAll, keys.ClearSelection, keys.Search, keys.Reload},
		{keys.ToggleMine, keys.ToggleActive, keys.CycleStatus, keys.PresetMine, keys.PresetBlock, keys.PresetAll},
		{keys.SetStatus, keys.ShiftDueLater, keys.ShiftWeekLater, keys.ClearDue, keys.ProgressUp},
		{keys.Create, keys.Rename, keys.Archive, keys.Restore, keys.Delete, keys.Quit},
	}
}
