// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/bureau-foundation/taskboard/cmd/taskboard/cli"
	"github.com/bureau-foundation/taskboard/lib/duedate"
	"github.com/bureau-foundation/taskboard/lib/schema/task"
	"github.com/bureau-foundation/taskboard/lib/taskset"
)

// parseTaskID reads the single positional task ID.
func parseTaskID(args []string, usage string) (int64, error) {
	if len(args) != 1 {
		return 0, cli.Validation("expected 1 task ID, got %d\n\nUsage: %s", len(args), usage)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, cli.Validation("invalid task ID %q", args[0])
	}
	return id, nil
}

// --- list ---

type listParams struct {
	Connection
	cli.JSONOutput
	Search string `json:"search" flag:"search,s" desc:"only tasks whose title, description, owner, or project contains this text"`
}

func listCommand(options Options) *cli.Command {
	var params listParams

	return &cli.Command{
		Name:    "list",
		Summary: "List tasks through the saved filter",
		Description: `Fetch the tasks selected by the saved filter and print them. --search
narrows the fetched list further without changing the saved filter.

Change the saved filter with "taskboard filter set" or
"taskboard filter preset".`,
		Usage: "taskboard list [flags]",
		Examples: []cli.Example{
			{
				Description: "List tasks through the saved filter",
				Command:     "taskboard list",
			},
			{
				Description: "Search the filtered list",
				Command:     "taskboard list --search release",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument %q", args[0])
			}
			e, err := params.open(ctx, options, logger, engineOptions{})
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.signIn(ctx); err != nil {
				return err
			}
			e.engine.SetSearchTerm(params.Search)
			visible := e.engine.Visible()

			if done, err := params.EmitJSON(options.Streams.Out, visible); done {
				return err
			}
			if len(visible) == 0 {
				logger.Info("no tasks match the filter", "filter", e.engine.Filter().Describe(e.engine.ProjectName))
				return nil
			}
			return writeTaskTable(options.Streams.Out, visible, options.Clock.Now())
		},
	}
}

// --- projects ---

type projectsParams struct {
	Connection
	cli.JSONOutput
}

func projectsCommand(options Options) *cli.Command {
	var params projectsParams

	return &cli.Command{
		Name:    "projects",
		Summary: "List projects",
		Usage:   "taskboard projects [flags]",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument %q", args[0])
			}
			e, err := params.open(ctx, options, logger, engineOptions{})
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.signIn(ctx); err != nil {
				return err
			}
			projects := e.engine.State().Projects
			if projects.Phase == taskset.PhaseFailed {
				return cli.Transient("listing projects: %s", projects.Error)
			}

			if done, err := params.EmitJSON(options.Streams.Out, projects.Items); done {
				return err
			}
			style := newStyles(options.Streams.Out)
			rows := [][]string{{
				style.header.Render("ID"),
				style.header.Render("NAME"),
				style.header.Render("STATUS"),
				style.header.Render("OWNER"),
			}}
			for _, project := range projects.Items {
				rows = append(rows, []string{
					strconv.FormatInt(project.ID, 10),
					project.Name,
					string(project.Status),
					project.Owner,
				})
			}
			return writeTable(options.Streams.Out, rows)
		},
	}
}

// --- create ---

type createParams struct {
	Connection
	cli.JSONOutput
	Description string `json:"description" flag:"description,d" desc:"task description"`
	Project     int64  `json:"project"     flag:"project,p"     desc:"project ID (0 for none)"`
}

func createCommand(options Options) *cli.Command {
	var params createParams

	return &cli.Command{
		Name:    "create",
		Summary: "Create a task",
		Description: `Create a task owned by the signed-in user. The title is every
positional argument joined with spaces; a blank title is rejected
before anything is sent.`,
		Usage: "taskboard create TITLE... [flags]",
		Examples: []cli.Example{
			{
				Description: "Create a task in project 3",
				Command:     "taskboard create Write the release notes --project 3",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if params.Project < 0 {
				return cli.Validation("--project must be a project ID, got %d", params.Project)
			}
			e, err := params.open(ctx, options, logger, engineOptions{})
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.signIn(ctx); err != nil {
				return err
			}
			var projectID *int64
			if params.Project > 0 {
				projectID = &params.Project
			}
			created, err := e.engine.Create(ctx, strings.Join(args, " "), params.Description, projectID)
			if err != nil {
				return commandError(options.Streams, err)
			}

			if done, err := params.EmitJSON(options.Streams.Out, created); done {
				return err
			}
			fmt.Fprintln(options.Streams.Out, created.ID)
			return nil
		},
	}
}

// --- update ---

type updateParams struct {
	Connection
	Title            string `json:"title"       flag:"title,t"       desc:"new title"`
	Description      string `json:"description" flag:"description,d" desc:"new description"`
	ClearDescription bool   `json:"-"           flag:"clear-description" desc:"set the description to empty"`
	Status           string `json:"status"      flag:"status,s"      desc:"new status (todo, in_progress, done, blocked)"`
	Progress         int    `json:"progress"    flag:"progress"      desc:"new progress, 0-100 (-1 leaves it unchanged)" default:"-1"`
	Due              string `json:"due"         flag:"due"           desc:"new due date (YYYY-MM-DD)"`
	ClearDue         bool   `json:"-"           flag:"clear-due"     desc:"remove the due date"`
	ShiftDue         int    `json:"shift_due"   flag:"shift-due"     desc:"move the due date by this many days (from today when unset)"`
	Project          int64  `json:"project"     flag:"project,p"     desc:"move to this project ID"`
	ClearProject     bool   `json:"-"           flag:"clear-project" desc:"remove the task from its project"`
}

func updateCommand(options Options) *cli.Command {
	var params updateParams

	return &cli.Command{
		Name:    "update",
		Summary: "Change fields of one task",
		Description: `Send one partial update for a task. Only the fields named by flags
are sent; everything else is left as the server has it.

--shift-due moves the due date by calendar days, so a shift across a
daylight saving change still lands on the intended date. The task must
be in the filtered list so its current due date is known.`,
		Usage: "taskboard update ID [flags]",
		Examples: []cli.Example{
			{
				Description: "Mark a task done",
				Command:     "taskboard update 42 --status done --progress 100",
			},
			{
				Description: "Push a due date back a week",
				Command:     "taskboard update 42 --shift-due 7",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			id, err := parseTaskID(args, "taskboard update ID [flags]")
			if err != nil {
				return err
			}
			payload, err := params.payload()
			if err != nil {
				return err
			}

			e, err := params.open(ctx, options, logger, engineOptions{})
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.signIn(ctx); err != nil {
				return err
			}
			if params.ShiftDue != 0 {
				item, found := e.engine.FindTask(id)
				if !found {
					return cli.NotFound("task %d is not in the filtered list", id).
						WithHint("Widen the filter with \"taskboard filter set\" or set the date with --due.")
				}
				shifted, err := duedate.Shift(item.DueDate, params.ShiftDue, options.Clock.Now())
				if err != nil {
					return cli.Validation("%w", err)
				}
				payload.DueDate = &shifted
			}
			return commandError(options.Streams, e.engine.Update(ctx, id, payload))
		},
	}
}

// payload builds the update from the flags, rejecting contradictory
// combinations before any connection is made.
func (p *updateParams) payload() (task.UpdatePayload, error) {
	var payload task.UpdatePayload
	if p.Title != "" {
		payload.Title = &p.Title
	}
	switch {
	case p.ClearDescription && p.Description != "":
		return payload, cli.Validation("--description and --clear-description are mutually exclusive")
	case p.ClearDescription:
		payload.Description = new(string)
	case p.Description != "":
		payload.Description = &p.Description
	}
	if p.Status != "" {
		status, ok := task.ParseStatus(p.Status)
		if !ok {
			return payload, cli.Validation("unknown status %q (want todo, in_progress, done, or blocked)", p.Status)
		}
		payload.Status = &status
	}
	if p.Progress != -1 {
		if p.Progress < 0 || p.Progress > 100 {
			return payload, cli.Validation("--progress must be between 0 and 100, got %d", p.Progress)
		}
		payload.Progress = &p.Progress
	}

	dueFlags := 0
	for _, set := range []bool{p.Due != "", p.ClearDue, p.ShiftDue != 0} {
		if set {
			dueFlags++
		}
	}
	if dueFlags > 1 {
		return payload, cli.Validation("--due, --clear-due, and --shift-due are mutually exclusive")
	}
	if p.Due != "" {
		if _, err := duedate.Parse(p.Due, time.Local); err != nil {
			return payload, cli.Validation("%w", err)
		}
		payload.DueDate = &p.Due
	}
	payload.ClearDueDate = p.ClearDue

	switch {
	case p.ClearProject && p.Project != 0:
		return payload, cli.Validation("--project and --clear-project are mutually exclusive")
	case p.Project < 0:
		return payload, cli.Validation("--project must be a project ID, got %d", p.Project)
	case p.Project > 0:
		payload.ProjectID = &p.Project
	}
	payload.ClearProject = p.ClearProject

	if payload.IsEmpty() && p.ShiftDue == 0 {
		return payload, cli.Validation("nothing to update").
			WithHint("Pass at least one of --title, --description, --status, --progress, --due, --shift-due, --clear-due, --project, --clear-project.")
	}
	return payload, nil
}

// --- archive / restore / delete ---

type taskParams struct {
	Connection
}

func archiveCommand(options Options) *cli.Command {
	var params taskParams

	return &cli.Command{
		Name:    "archive",
		Summary: "Archive a task",
		Description: `Archive a task. Archived tasks are hidden by the active-only filter
and can be brought back with "taskboard restore".`,
		Usage:  "taskboard archive ID",
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			return params.run(ctx, options, logger, args, "taskboard archive ID", func(e *env, id int64) error {
				return e.engine.Archive(ctx, id)
			})
		},
	}
}

func restoreCommand(options Options) *cli.Command {
	var params taskParams

	return &cli.Command{
		Name:    "restore",
		Summary: "Restore an archived task",
		Usage:   "taskboard restore ID",
		Params:  func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			return params.run(ctx, options, logger, args, "taskboard restore ID", func(e *env, id int64) error {
				return e.engine.Restore(ctx, id)
			})
		},
	}
}

type deleteParams struct {
	Connection
	Yes bool `json:"-" flag:"yes,y" desc:"delete without asking"`
}

func deleteCommand(options Options) *cli.Command {
	var params deleteParams

	return &cli.Command{
		Name:    "delete",
		Summary: "Permanently delete a task",
		Description: `Permanently delete a task after a y/N confirmation. This cannot be
undone; use "taskboard archive" for a reversible removal.`,
		Usage: "taskboard delete ID [--yes]",
		Examples: []cli.Example{
			{
				Description: "Delete without prompting",
				Command:     "taskboard delete 42 --yes",
			},
		},
		Params: func() any { return &params },
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			single := taskParams{Connection: params.Connection}
			return single.run(ctx, options, logger, args, "taskboard delete ID [--yes]", func(e *env, id int64) error {
				return e.engine.Delete(ctx, id, params.Yes)
			})
		},
	}
}

// run opens the engine, signs in, and applies mutate to the task
// named by the single positional argument.
func (p *taskParams) run(ctx context.Context, options Options, logger *slog.Logger, args []string, usage string, mutate func(*env, int64) error) error {
	id, err := parseTaskID(args, usage)
	if err != nil {
		return err
	}
	e, err := p.open(ctx, options, logger, engineOptions{})
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.signIn(ctx); err != nil {
		return err
	}
	return commandError(options.Streams, mutate(e, id))
}
