// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/bureau-foundation/taskboard/cmd/taskboard/cli"
	"github.com/bureau-foundation/taskboard/lib/duedate"
	"github.com/bureau-foundation/taskboard/lib/schema/task"
	"github.com/bureau-foundation/taskboard/lib/taskset"
)

// maxTitleWidth caps the TITLE column so one long title does not push
// the table past the terminal.
const maxTitleWidth = 60

// styles renders table cells. Color is stripped automatically when
// the output is not a terminal.
type styles struct {
	header  lipgloss.Style
	overdue lipgloss.Style
	muted   lipgloss.Style
	status  map[task.Status]lipgloss.Style
}

func newStyles(w io.Writer) styles {
	renderer := lipgloss.NewRenderer(w)
	return styles{
		header:  renderer.NewStyle().Bold(true),
		overdue: renderer.NewStyle().Foreground(lipgloss.Color("9")),
		muted:   renderer.NewStyle().Faint(true),
		status: map[task.Status]lipgloss.Style{
			task.StatusTodo:       renderer.NewStyle(),
			task.StatusInProgress: renderer.NewStyle().Foreground(lipgloss.Color("12")),
			task.StatusDone:       renderer.NewStyle().Foreground(lipgloss.Color("10")),
			task.StatusBlocked:    renderer.NewStyle().Foreground(lipgloss.Color("11")),
		},
	}
}

// writeTaskTable writes tasks as an aligned table. Archived tasks are
// rendered faint.
func writeTaskTable(w io.Writer, tasks []task.Task, now time.Time) error {
	style := newStyles(w)
	rows := [][]string{{"ID", "STATUS", "PROGRESS", "DUE", "PROJECT", "OWNER", "TITLE"}}
	for index := range rows[0] {
		rows[0][index] = style.header.Render(rows[0][index])
	}

	for _, item := range tasks {
		statusStyle, ok := style.status[item.Status]
		if !ok {
			statusStyle = style.muted
		}
		due := duedate.Label(item.DueDate, now)
		if duedate.IsOverdue(item.DueDate, now) {
			due = style.overdue.Render(due)
		}
		row := []string{
			strconv.FormatInt(item.ID, 10),
			statusStyle.Render(task.StatusLabel(item.Status)),
			fmt.Sprintf("%d%%", item.Progress),
			due,
			task.ProjectLabel(item),
			item.Owner,
			ansi.Truncate(item.Title, maxTitleWidth, "…"),
		}
		if !item.IsActive {
			for index := range row {
				row[index] = style.muted.Render(row[index])
			}
		}
		rows = append(rows, row)
	}
	return writeTable(w, rows)
}

// writeTable pads each column to its widest cell. Widths are measured
// in terminal cells so that styled and wide text align.
func writeTable(w io.Writer, rows [][]string) error {
	var widths []int
	for _, row := range rows {
		for index, cell := range row {
			if index >= len(widths) {
				widths = append(widths, 0)
			}
			widths[index] = max(widths[index], ansi.StringWidth(cell))
		}
	}

	var builder strings.Builder
	for _, row := range rows {
		for index, cell := range row {
			builder.WriteString(cell)
			if index == len(row)-1 {
				break
			}
			builder.WriteString(strings.Repeat(" ", widths[index]-ansi.StringWidth(cell)+2))
		}
		builder.WriteByte('\n')
	}
	_, err := io.WriteString(w, builder.String())
	return err
}

// terminalNotifier prints success notifications. Failures and
// validation rejections are returned as errors by the operation
// itself, so printing them here would duplicate them.
type terminalNotifier struct {
	output io.Writer
}

func newTerminalNotifier(output io.Writer) *terminalNotifier {
	return &terminalNotifier{output: output}
}

func (n *terminalNotifier) Notify(notification taskset.Notification) {
	if notification.Kind != taskset.KindSuccess {
		return
	}
	fmt.Fprintf(n.output, "✓ %s\n", notification.Message)
}

// promptConfirmer asks on the error stream and reads a y/N answer
// from the input stream.
type promptConfirmer struct {
	reader *bufio.Reader
	output io.Writer
}

func newPromptConfirmer(streams cli.Streams) *promptConfirmer {
	return &promptConfirmer{reader: bufio.NewReader(streams.In), output: streams.Err}
}

func (c *promptConfirmer) Confirm(ctx context.Context, confirmation taskset.Confirmation) bool {
	if ctx.Err() != nil {
		return false
	}
	fmt.Fprintf(c.output, "%s [y/N] ", confirmation.Prompt)
	line, err := c.reader.ReadString('\n')
	if err != nil && line == "" {
		fmt.Fprintln(c.output)
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}

// commandError maps engine errors onto CLI error categories.
func commandError(streams cli.Streams, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, taskset.ErrCancelled):
		fmt.Fprintln(streams.Err, "Cancelled.")
		return &cli.ExitError{Code: 1}
	case errors.Is(err, task.ErrEmptyTitle),
		errors.Is(err, task.ErrEmptyPayload),
		errors.Is(err, taskset.ErrEmptySelection):
		return cli.Validation("%w", err)
	}
	var bulkError *taskset.BulkError
	if errors.As(err, &bulkError) {
		var retry strings.Builder
		for _, id := range bulkError.FailedIDs() {
			fmt.Fprintf(&retry, " --id %d", id)
		}
		classified := cli.Classify(err)
		var toolError *cli.ToolError
		if errors.As(classified, &toolError) && toolError.Hint == "" {
			return toolError.WithHint("Retry the failed tasks with:" + retry.String())
		}
		return classified
	}
	return cli.Classify(err)
}
