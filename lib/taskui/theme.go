// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package taskui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/bureau-foundation/taskboard/lib/schema/task"
)

// Theme defines the color palette of the board. All colors use
// lipgloss ANSI 256-color codes for broad terminal compatibility.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Cursor row.
	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	// Status colors.
	StatusTodo       lipgloss.Color
	StatusInProgress lipgloss.Color
	StatusDone       lipgloss.Color
	StatusBlocked    lipgloss.Color

	// Due dates in the past.
	Overdue lipgloss.Color

	// Checked rows.
	CheckMark lipgloss.Color

	// UI chrome.
	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color

	// Status bar notices by kind.
	NoticeSuccess lipgloss.Color
	NoticeFailure lipgloss.Color
	NoticeWarning lipgloss.Color
}

// StatusColor returns the color for a task status, or FaintText for
// a status this client does not know.
func (theme Theme) StatusColor(status task.Status) lipgloss.Color {
	switch status {
	case task.StatusTodo:
		return theme.StatusTodo
	case task.StatusInProgress:
		return theme.StatusInProgress
	case task.StatusDone:
		return theme.StatusDone
	case task.StatusBlocked:
		return theme.StatusBlocked
	default:
		return theme.FaintText
	}
}

// DefaultTheme is the built-in dark-terminal color scheme.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	StatusTodo:       lipgloss.Color("252"),
	StatusInProgress: lipgloss.Color("220"), // amber
	StatusDone:       lipgloss.Color("114"), // green
	StatusBlocked:    lipgloss.Color("196"), // red

	Overdue:   lipgloss.Color("203"),
	CheckMark: lipgloss.Color("75"),

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),

	NoticeSuccess: lipgloss.Color("114"),
	NoticeFailure: lipgloss.Color("203"),
	NoticeWarning: lipgloss.Color("220"),
}
