// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bureau-foundation/taskboard/cmd/taskboard/cli"
	"github.com/bureau-foundation/taskboard/lib/taskset"
	"github.com/bureau-foundation/taskboard/lib/taskui"
)

type viewParams struct {
	Connection
	LogFile string `flag:"log-file" desc:"also write every log record to this file as JSON lines"`
}

func viewCommand(options Options) *cli.Command {
	var params viewParams
	return &cli.Command{
		Name:    "view",
		Summary: "Open the interactive task board",
		Description: `Open a full-screen board over the saved filter.

Move with j/k, select with space, and act on the selection (or the
task under the cursor when nothing is selected). Filter changes made
here are saved exactly as "taskboard filter" saves them. Press ? for
every key.

While the board is open, warnings and errors appear in the status
bar. Use --log-file to keep a complete record.`,
		Usage: "taskboard view [flags]",
		Examples: []cli.Example{
			{Description: "Open the board", Command: "taskboard view"},
			{Description: "Open the board and log everything to a file", Command: "taskboard view --log-file /tmp/taskboard.jsonl"},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, _ *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument: %s", args[0])
			}
			if !cli.IsTerminal(options.Streams.Out) {
				return cli.Validation("the board needs a terminal").
					WithHint("Use \"taskboard list\" for non-interactive output.")
			}
			return params.run(ctx, options)
		},
	}
}

// run builds a logger that writes into the board's status bar (and
// optionally a file), opens the engine with the board as notifier and
// confirmer, and runs the program until the user quits.
func (p *viewParams) run(ctx context.Context, options Options) error {
	var level slog.Leveler = slog.LevelWarn
	if options.Level != nil {
		level = options.Level
	}
	boardHandler := taskui.NewLogHandler(level)

	var handler slog.Handler = boardHandler
	if p.LogFile != "" {
		file, err := os.Create(p.LogFile)
		if err != nil {
			return cli.Validation("cannot open log file %s: %w", p.LogFile, err)
		}
		defer file.Close()
		handler = fanoutHandler{boardHandler, slog.NewJSONHandler(file, &slog.HandlerOptions{Level: slog.LevelDebug})}
	}
	logger := slog.New(handler)

	bridge := taskui.NewBridge()
	e, err := p.open(ctx, options, logger, engineOptions{
		notifier:  bridge,
		confirmer: bridge,
		onChange:  bridge.Changed,
	})
	if err != nil {
		return err
	}
	defer e.Close()

	model := taskui.NewModel(taskui.Config{
		Context: ctx,
		Engine:  e.engine,
		Session: &taskset.Session{Username: e.config.API.Username, Admin: e.config.API.Admin},
		Clock:   options.Clock,
	})
	program := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithInput(options.Streams.In),
		tea.WithOutput(options.Streams.Out),
	)

	// Records and engine messages produced before this point are
	// dropped; the board is not rendering yet.
	boardHandler.SetProgram(program)
	bridge.SetProgram(program)

	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return cli.Internal("running board: %w", err)
	}
	return nil
}

// fanoutHandler sends each record to every handler enabled for its
// level.
type fanoutHandler []slog.Handler

func (handlers fanoutHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, handler := range handlers {
		if handler.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (handlers fanoutHandler) Handle(ctx context.Context, record slog.Record) error {
	for _, handler := range handlers {
		if handler.Enabled(ctx, record.Level) {
			if err := handler.Handle(ctx, record.Clone()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (handlers fanoutHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	derived := make(fanoutHandler, len(handlers))
	for index, handler := range handlers {
		derived[index] = handler.WithAttrs(attrs)
	}
	return derived
}

func (handlers fanoutHandler) WithGroup(name string) slog.Handler {
	derived := make(fanoutHandler, len(handlers))
	for index, handler := range handlers {
		derived[index] = handler.WithGroup(name)
	}
	return derived
}
