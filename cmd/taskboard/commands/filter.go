// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/bureau-foundation/taskboard/cmd/taskboard/cli"
	"github.com/bureau-foundation/taskboard/lib/schema/task"
	"github.com/bureau-foundation/taskboard/lib/taskfilter"
)

// filterOutput is the --json form of the saved filter.
type filterOutput struct {
	MineOnly   bool                  `json:"mine_only"`
	ActiveOnly bool                  `json:"active_only"`
	Status     task.Status           `json:"status,omitempty"`
	ProjectID  *int64                `json:"project_id,omitempty"`
	Preset     taskfilter.PresetName `json:"preset,omitempty"`
}

func filterCommand(options Options) *cli.Command {
	return &cli.Command{
		Name:    "filter",
		Summary: "Show or change the saved task filter",
		Description: `The saved filter decides which tasks "list", "bulk --visible", and
"view" fetch. It has four dimensions: owner (mine or everyone's),
archived tasks (hidden or included), status, and project. Changes are
stored in the local state database and apply to every later command.`,
		Subcommands: []*cli.Command{
			filterShowCommand(options),
			filterSetCommand(options),
			filterPresetCommand(options),
		},
	}
}

type filterShowParams struct {
	Connection
	cli.JSONOutput
}

func filterShowCommand(options Options) *cli.Command {
	var params filterShowParams

	return &cli.Command{
		Name:    "show",
		Summary: "Print the saved filter",
		Usage:   "taskboard filter show [--json]",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument %q", args[0])
			}
			e, err := params.openStore(ctx, options, logger)
			if err != nil {
				return err
			}
			defer e.Close()

			filter := e.filters(ctx).Filter()
			output := filterOutput{
				MineOnly:   filter.MineOnly,
				ActiveOnly: filter.ActiveOnly,
				Status:     filter.StatusFilter,
				ProjectID:  filter.ProjectFilterID,
				Preset:     filter.MatchingPreset(),
			}
			if done, err := params.EmitJSON(options.Streams.Out, output); done {
				return err
			}

			fmt.Fprintln(options.Streams.Out, filter.Describe(nil))
			if output.Preset != "" {
				fmt.Fprintf(options.Streams.Out, "preset: %s\n", output.Preset)
			}
			return nil
		},
	}
}

type filterSetParams struct {
	Connection
	Mine            bool   `json:"mine"             flag:"mine"             desc:"only my tasks"`
	AllOwners       bool   `json:"all_owners"       flag:"all-owners"       desc:"tasks of every owner"`
	Active          bool   `json:"active"           flag:"active"           desc:"hide archived tasks"`
	IncludeArchived bool   `json:"include_archived" flag:"include-archived" desc:"show archived tasks too"`
	Status          string `json:"status"           flag:"status,s"         desc:"only this status (todo, in_progress, done, blocked, or any)"`
	Project         int64  `json:"project"          flag:"project,p"        desc:"only this project ID"`
	AnyProject      bool   `json:"any_project"      flag:"any-project"      desc:"tasks of every project"`
}

func filterSetCommand(options Options) *cli.Command {
	var params filterSetParams

	return &cli.Command{
		Name:    "set",
		Summary: "Change dimensions of the saved filter",
		Description: `Change one or more dimensions of the saved filter. Dimensions not
named by a flag keep their saved value.`,
		Usage: "taskboard filter set [flags]",
		Examples: []cli.Example{
			{
				Description: "Show everyone's blocked tasks, archived included",
				Command:     "taskboard filter set --all-owners --include-archived --status blocked",
			},
			{
				Description: "Drop the status and project restrictions",
				Command:     "taskboard filter set --status any --any-project",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument %q", args[0])
			}
			changes, err := params.changes()
			if err != nil {
				return err
			}

			e, err := params.openStore(ctx, options, logger)
			if err != nil {
				return err
			}
			defer e.Close()

			store := e.filters(ctx)
			var errs []error
			for _, change := range changes {
				errs = append(errs, change(ctx, store))
			}
			if err := errors.Join(errs...); err != nil {
				return cli.Internal("saving filter: %w", err)
			}
			fmt.Fprintln(options.Streams.Out, store.Filter().Describe(nil))
			return nil
		},
	}
}

type filterChange func(context.Context, *taskfilter.Store) error

// changes validates the flags and returns one store update per named
// dimension.
func (p *filterSetParams) changes() ([]filterChange, error) {
	var changes []filterChange

	switch {
	case p.Mine && p.AllOwners:
		return nil, cli.Validation("--mine and --all-owners are mutually exclusive")
	case p.Mine || p.AllOwners:
		mine := p.Mine
		changes = append(changes, func(ctx context.Context, store *taskfilter.Store) error {
			return store.SetMineOnly(ctx, mine)
		})
	}

	switch {
	case p.Active && p.IncludeArchived:
		return nil, cli.Validation("--active and --include-archived are mutually exclusive")
	case p.Active || p.IncludeArchived:
		active := p.Active
		changes = append(changes, func(ctx context.Context, store *taskfilter.Store) error {
			return store.SetActiveOnly(ctx, active)
		})
	}

	if p.Status != "" {
		var status task.Status
		if !strings.EqualFold(p.Status, "any") {
			parsed, ok := task.ParseStatus(p.Status)
			if !ok {
				return nil, cli.Validation("unknown status %q (want todo, in_progress, done, blocked, or any)", p.Status)
			}
			status = parsed
		}
		changes = append(changes, func(ctx context.Context, store *taskfilter.Store) error {
			return store.SetStatusFilter(ctx, status)
		})
	}

	switch {
	case p.Project != 0 && p.AnyProject:
		return nil, cli.Validation("--project and --any-project are mutually exclusive")
	case p.Project < 0:
		return nil, cli.Validation("--project must be a project ID, got %d", p.Project)
	case p.Project > 0:
		projectID := p.Project
		changes = append(changes, func(ctx context.Context, store *taskfilter.Store) error {
			return store.SetProjectFilter(ctx, &projectID)
		})
	case p.AnyProject:
		changes = append(changes, func(ctx context.Context, store *taskfilter.Store) error {
			return store.SetProjectFilter(ctx, nil)
		})
	}

	if len(changes) == 0 {
		return nil, cli.Validation("no filter dimension given").
			WithHint("Pass --mine, --all-owners, --active, --include-archived, --status, --project, or --any-project.")
	}
	return changes, nil
}

type filterPresetParams struct {
	Connection
}

func filterPresetCommand(options Options) *cli.Command {
	var params filterPresetParams

	names := make([]string, len(taskfilter.PresetNames))
	for index, name := range taskfilter.PresetNames {
		names[index] = string(name)
	}

	return &cli.Command{
		Name:    "preset",
		Summary: "Replace the saved filter with a built-in preset",
		Description: `Replace the owner, archived, status, and project dimensions with a
built-in preset:

  myActive      my active tasks
  blockedOnly   my active blocked tasks
  allActive     every owner's active tasks (requires api.admin)`,
		Usage: "taskboard filter preset NAME",
		Examples: []cli.Example{
			{
				Description: "Go back to the default view",
				Command:     "taskboard filter preset myActive",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) != 1 {
				return cli.Validation("expected 1 preset name (%s), got %d", strings.Join(names, ", "), len(args))
			}
			name := taskfilter.PresetName(args[0])

			e, err := params.openStore(ctx, options, logger)
			if err != nil {
				return err
			}
			defer e.Close()

			store := e.filters(ctx)
			applied, err := store.ApplyPreset(ctx, name, e.config.API.Admin)
			switch {
			case errors.Is(err, taskfilter.ErrUnknownPreset):
				return cli.Validation("%w", err).WithHint("Presets: " + strings.Join(names, ", "))
			case err != nil:
				return cli.Internal("saving filter: %w", err)
			case !applied:
				return cli.Forbidden("preset %s requires administrator access", name).
					WithHint("Set api.admin: true in the config if your account is an administrator.")
			}
			fmt.Fprintln(options.Streams.Out, store.Filter().Describe(nil))
			return nil
		},
	}
}
