// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package taskui implements the interactive task board. Built on
// bubbletea (Elm architecture), it renders the filtered task list of a
// [taskset.Engine] with selection checkboxes, due-date labels, and a
// status bar, and maps keys onto engine operations.
//
// Engine operations block on the network, so the model runs every one
// of them as a tea.Cmd. The engine reports back through a [Bridge],
// which turns state changes, notifications, and confirmation requests
// into bubbletea messages:
//
//	[taskset.Engine] --(Notifier, Confirmer, OnChange)--> [Bridge]
//	        ^                                                |
//	        | tea.Cmd                              program.Send
//	        |                                                v
//	    [Model] <------------- bubbletea event loop ---------+
//
// A confirmation request holds the engine goroutine until the user
// answers y or n in the board.
package taskui
