// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"io"
	"log/slog"

	"golang.org/x/term"
)

// NewCommandLogger creates a structured logger writing to w at level.
// Pass a *slog.LevelVar to change the level after construction.
// When w is a terminal, uses slog.TextHandler for human-readable output.
// When it is piped or redirected (CI, scripts, tests), uses
// slog.JSONHandler for machine-parseable output.
func NewCommandLogger(w io.Writer, level slog.Leveler) *slog.Logger {
	var handler slog.Handler
	options := &slog.HandlerOptions{Level: level}
	if fd := terminalFD(w); fd >= 0 && term.IsTerminal(fd) {
		handler = slog.NewTextHandler(w, options)
	} else {
		handler = slog.NewJSONHandler(w, options)
	}
	return slog.New(handler)
}

// IsTerminal reports whether value is an *os.File attached to a
// terminal.
func IsTerminal(value any) bool {
	fd := terminalFD(value)
	return fd >= 0 && term.IsTerminal(fd)
}
