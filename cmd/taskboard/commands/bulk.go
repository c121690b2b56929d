// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"log/slog"
	"slices"

	"github.com/bureau-foundation/taskboard/cmd/taskboard/cli"
	"github.com/bureau-foundation/taskboard/lib/schema/task"
	"github.com/bureau-foundation/taskboard/lib/taskset"
)

// BulkTarget selects the tasks a bulk command acts on: explicit IDs,
// or every task in the filtered (and optionally searched) list.
type BulkTarget struct {
	Connection
	cli.JSONOutput
	IDs     []int64 `json:"ids"     flag:"id"       desc:"task ID to act on (repeatable)"`
	Visible bool    `json:"visible" flag:"visible"  desc:"act on every task in the filtered list"`
	Search  string  `json:"search"  flag:"search,s" desc:"with --visible, only tasks matching this text"`
	Yes     bool    `json:"-"       flag:"yes,y"    desc:"skip the confirmation prompt"`
}

// bulkOutput is the --json form of a bulk result.
type bulkOutput struct {
	Action    string        `json:"action"`
	Requested []int64       `json:"requested"`
	Succeeded []int64       `json:"succeeded"`
	Failed    []bulkFailure `json:"failed"`
	Refresh   *string       `json:"refresh_error,omitempty"`
}

type bulkFailure struct {
	ID    int64  `json:"id"`
	Error string `json:"error"`
}

func newBulkOutput(result taskset.BulkResult) bulkOutput {
	output := bulkOutput{
		Action:    result.Action,
		Requested: result.Requested,
		Succeeded: result.Succeeded,
		Failed:    []bulkFailure{},
	}
	if output.Requested == nil {
		output.Requested = []int64{}
	}
	if output.Succeeded == nil {
		output.Succeeded = []int64{}
	}
	for _, failure := range result.Failed {
		output.Failed = append(output.Failed, bulkFailure{ID: failure.TaskID, Error: failure.Err.Error()})
	}
	if result.RefreshErr != nil {
		message := result.RefreshErr.Error()
		output.Refresh = &message
	}
	return output
}

func (t *BulkTarget) validate(args []string, maxArgs int) error {
	if len(args) > maxArgs {
		return cli.Validation("unexpected argument %q", args[maxArgs])
	}
	switch {
	case len(t.IDs) > 0 && t.Visible:
		return cli.Validation("--id and --visible are mutually exclusive")
	case len(t.IDs) == 0 && !t.Visible:
		return cli.Validation("nothing to act on").
			WithHint("Name tasks with --id (repeatable) or pass --visible for the whole filtered list.")
	case t.Search != "" && !t.Visible:
		return cli.Validation("--search only applies with --visible")
	}
	for _, id := range t.IDs {
		if id <= 0 {
			return cli.Validation("invalid task ID %d", id)
		}
	}
	return nil
}

// run opens the engine, builds the selection, and runs operation over
// it. Partial failures are reported both in the output and as the
// returned error.
func (t *BulkTarget) run(ctx context.Context, options Options, logger *slog.Logger, operation func(context.Context, *taskset.Engine) (taskset.BulkResult, error)) error {
	e, err := t.open(ctx, options, logger, engineOptions{skipConfirm: t.Yes})
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.signIn(ctx); err != nil {
		return err
	}

	if t.Visible {
		e.engine.SetSearchTerm(t.Search)
		e.engine.ToggleSelectAllVisible()
	} else {
		ids := slices.Clone(t.IDs)
		slices.Sort(ids)
		for _, id := range slices.Compact(ids) {
			e.engine.Toggle(id)
		}
	}

	result, err := operation(ctx, e.engine)
	if result.RefreshErr != nil {
		logger.Warn("task list refresh after bulk operation failed", "error", result.RefreshErr)
	}
	if len(result.Requested) > 0 {
		if done, emitErr := t.EmitJSON(options.Streams.Out, newBulkOutput(result)); done && emitErr != nil {
			return emitErr
		}
	}
	return commandError(options.Streams, err)
}

func bulkCommand(options Options) *cli.Command {
	return &cli.Command{
		Name:    "bulk",
		Summary: "Apply one change to many tasks",
		Description: `Apply one change to a set of tasks. The set is either named with
repeated --id flags or taken from the filtered list with --visible
(narrowed by --search).

Requests are sent concurrently and every one is allowed to finish; a
failure does not undo the requests that succeeded. The task list is
fetched again once, after all requests settle. Each command asks for
confirmation unless --yes is given.`,
		Subcommands: []*cli.Command{
			bulkStatusCommand(options),
			bulkShiftDueCommand(options),
			bulkClearDueCommand(options),
			bulkArchiveCommand(options),
			bulkDeleteCommand(options),
		},
	}
}

func bulkStatusCommand(options Options) *cli.Command {
	var params BulkTarget

	return &cli.Command{
		Name:    "status",
		Summary: "Set the status of many tasks",
		Usage:   "taskboard bulk status STATUS (--id ID... | --visible) [flags]",
		Examples: []cli.Example{
			{
				Description: "Mark two tasks blocked",
				Command:     "taskboard bulk status blocked --id 4 --id 9",
			},
			{
				Description: "Close every visible task matching a search",
				Command:     "taskboard bulk status done --visible --search migration --yes",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) == 0 {
				return cli.Validation("status is required (todo, in_progress, done, blocked)")
			}
			status, ok := task.ParseStatus(args[0])
			if !ok {
				return cli.Validation("unknown status %q (want todo, in_progress, done, or blocked)", args[0])
			}
			if err := params.validate(args, 1); err != nil {
				return err
			}
			return params.run(ctx, options, logger, func(ctx context.Context, engine *taskset.Engine) (taskset.BulkResult, error) {
				return engine.BulkStatusChange(ctx, status)
			})
		},
	}
}

type bulkShiftParams struct {
	BulkTarget
	Days int `json:"days" flag:"days,n" desc:"calendar days to move each due date (negative moves earlier)"`
}

func bulkShiftDueCommand(options Options) *cli.Command {
	var params bulkShiftParams

	return &cli.Command{
		Name:    "shift-due",
		Summary: "Move the due date of many tasks",
		Description: `Move each task's due date by --days calendar days. A task without a
due date is given one counted from today. The shift is by calendar
date, so a daylight saving change in between never moves a task onto
the wrong day.`,
		Usage: "taskboard bulk shift-due --days N (--id ID... | --visible) [flags]",
		Examples: []cli.Example{
			{
				Description: "Push every visible task back a week",
				Command:     "taskboard bulk shift-due --days 7 --visible",
			},
			{
				Description: "Pull one task in by a day",
				Command:     "taskboard bulk shift-due --days=-1 --id 12",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if params.Days == 0 {
				return cli.Validation("--days is required")
			}
			if err := params.validate(args, 0); err != nil {
				return err
			}
			return params.run(ctx, options, logger, func(ctx context.Context, engine *taskset.Engine) (taskset.BulkResult, error) {
				return engine.BulkShiftDueDate(ctx, params.Days)
			})
		},
	}
}

func bulkClearDueCommand(options Options) *cli.Command {
	var params BulkTarget

	return &cli.Command{
		Name:    "clear-due",
		Summary: "Remove the due date of many tasks",
		Usage:   "taskboard bulk clear-due (--id ID... | --visible) [flags]",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := params.validate(args, 0); err != nil {
				return err
			}
			return params.run(ctx, options, logger, func(ctx context.Context, engine *taskset.Engine) (taskset.BulkResult, error) {
				return engine.BulkClearDueDate(ctx)
			})
		},
	}
}

func bulkArchiveCommand(options Options) *cli.Command {
	var params BulkTarget

	return &cli.Command{
		Name:    "archive",
		Summary: "Archive many tasks",
		Usage:   "taskboard bulk archive (--id ID... | --visible) [flags]",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := params.validate(args, 0); err != nil {
				return err
			}
			return params.run(ctx, options, logger, func(ctx context.Context, engine *taskset.Engine) (taskset.BulkResult, error) {
				return engine.BulkArchiveSelected(ctx)
			})
		},
	}
}

func bulkDeleteCommand(options Options) *cli.Command {
	var params BulkTarget

	return &cli.Command{
		Name:    "delete",
		Summary: "Permanently delete many tasks",
		Usage:   "taskboard bulk delete (--id ID... | --visible) [flags]",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := params.validate(args, 0); err != nil {
				return err
			}
			return params.run(ctx, options, logger, func(ctx context.Context, engine *taskset.Engine) (taskset.BulkResult, error) {
				return engine.BulkDeleteSelected(ctx)
			})
		},
	}
}
