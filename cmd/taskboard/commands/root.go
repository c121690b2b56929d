// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the taskboard command tree: single-task
// commands, bulk commands over an explicit or filtered set of tasks,
// filter management, and the interactive viewer.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/taskboard/cmd/taskboard/cli"
	"github.com/bureau-foundation/taskboard/lib/clock"
	"github.com/bureau-foundation/taskboard/lib/version"
)

// Options carries what every command shares with main.
type Options struct {
	Streams cli.Streams

	// Level is raised or lowered to the config's log.level once the
	// config is loaded. Nil leaves the logger's level alone.
	Level *slog.LevelVar

	// Clock anchors due-date labels and shifts. Nil means the real
	// clock.
	Clock clock.Clock
}

// Root builds the taskboard command tree.
func Root(options Options) *cli.Command {
	if options.Clock == nil {
		options.Clock = clock.Real()
	}
	return &cli.Command{
		Name: "taskboard",
		Description: `Taskboard: manage a task collection from the terminal.

Tasks are listed through a saved filter (mine or everyone's, active or
archived, one status, one project). The filter persists between runs;
"taskboard filter" changes it and "taskboard view" opens an interactive
board over it.`,
		HelpOutput: options.Streams.Err,
		Subcommands: []*cli.Command{
			listCommand(options),
			projectsCommand(options),
			createCommand(options),
			updateCommand(options),
			archiveCommand(options),
			restoreCommand(options),
			deleteCommand(options),
			bulkCommand(options),
			filterCommand(options),
			viewCommand(options),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, _ []string, _ *slog.Logger) error {
					fmt.Fprintf(options.Streams.Out, "taskboard %s\n", version.Full())
					return nil
				},
			},
		},
	}
}
