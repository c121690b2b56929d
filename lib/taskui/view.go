// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package taskui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/bureau-foundation/taskboard/lib/duedate"
	"github.com/bureau-foundation/taskboard/lib/schema/task"
	"github.com/bureau-foundation/taskboard/lib/taskset"
)

// Column widths of a task row, in terminal cells. The title takes
// what is left.
const (
	checkWidth    = 4
	idWidth       = 7
	statusWidth   = 12
	progressWidth = 5
	dueWidth      = 17
	projectWidth  = 16
	ownerWidth    = 12
)

// View implements tea.Model.
func (model Model) View() string {
	if !model.ready {
		return "Loading..."
	}

	sections := []string{
		model.renderHeader(),
		model.renderFilterLine(),
		model.renderList(),
		lipgloss.NewStyle().Foreground(model.theme.BorderColor).Render(strings.Repeat("─", model.width)),
		model.renderStatusBar(),
	}
	return strings.Join(sections, "\n")
}

// renderHeader renders the title, the filter summary, and counts.
func (model Model) renderHeader() string {
	filter := model.engine.Filter()
	title := lipgloss.NewStyle().Bold(true).Foreground(model.theme.HeaderForeground).Render("Tasks")
	summary := lipgloss.NewStyle().Foreground(model.theme.FaintText).
		Render(" · " + filter.Describe(model.engine.ProjectName))
	if preset := filter.MatchingPreset(); preset != "" {
		summary += lipgloss.NewStyle().Foreground(model.theme.HelpText).Render(" [" + string(preset) + "]")
	}

	visible := len(model.engine.Visible())
	counts := fmt.Sprintf("%d shown", visible)
	if visible > 0 {
		counts = model.selectAllIndicator() + " " + counts
	}
	if selected := model.engine.Selection().Len(); selected > 0 {
		counts += fmt.Sprintf(" · %d selected", selected)
		if inView := model.engine.SelectedVisibleCount(); inView < selected {
			counts += fmt.Sprintf(" (%d hidden)", selected-inView)
		}
	}
	if model.loading() {
		counts = model.spinner.View() + " " + counts
	}

	left := title + summary
	gap := model.width - ansi.StringWidth(left) - ansi.StringWidth(counts)
	if gap < 1 {
		return ansi.Truncate(left, model.width, "…")
	}
	return left + strings.Repeat(" ", gap) + counts
}

// selectAllIndicator is the tri-state checkbox for the a key: checked
// when every visible task is selected, mixed when only some are.
func (model Model) selectAllIndicator() string {
	switch {
	case model.engine.AllVisibleSelected():
		return "[x]"
	case model.engine.SomeVisibleSelected():
		return "[-]"
	default:
		return "[ ]"
	}
}

// renderFilterLine shows the search input while searching, the active
// search term otherwise, or a hint when there is none.
func (model Model) renderFilterLine() string {
	if model.focus == focusSearch {
		return model.search.View()
	}
	term := model.engine.Filter().SearchTerm
	if term == "" {
		return lipgloss.NewStyle().Foreground(model.theme.HelpText).Render("/ to search")
	}
	return lipgloss.NewStyle().Foreground(model.theme.NormalText).Render("/ " + term)
}

// renderList renders the visible window of the task list, or the
// empty state.
func (model Model) renderList() string {
	height := model.visibleHeight()
	visible := model.engine.Visible()
	if len(visible) == 0 {
		return lipgloss.Place(model.width, height, lipgloss.Center, lipgloss.Center, model.renderEmpty())
	}

	now := model.clock.Now()
	selection := model.engine.Selection()
	showOwner := !model.engine.Filter().MineOnly

	rows := make([]string, 0, height)
	for index := model.scrollOffset; index < model.scrollOffset+height && index < len(visible); index++ {
		item := visible[index]
		rows = append(rows, model.renderRow(item, selection.Contains(item.ID), index == model.cursor, showOwner, now))
	}
	for len(rows) < height {
		rows = append(rows, "")
	}
	return strings.Join(rows, "\n")
}

// renderRow renders one task row:
//
//	[x] #42    In progress  40%  Due tomorrow     Launch          Title
func (model Model) renderRow(item task.Task, checked, cursor, showOwner bool, now time.Time) string {
	check := "[ ]"
	if checked {
		check = lipgloss.NewStyle().Foreground(model.theme.CheckMark).Render("[x]")
	}

	statusStyle := lipgloss.NewStyle().Foreground(model.theme.StatusColor(item.Status))
	due := duedate.Label(item.DueDate, now)
	dueStyle := lipgloss.NewStyle().Foreground(model.theme.FaintText)
	if duedate.IsOverdue(item.DueDate, now) {
		dueStyle = lipgloss.NewStyle().Foreground(model.theme.Overdue)
	}

	cells := []string{
		fit(check, checkWidth),
		fit("#"+strconv.FormatInt(item.ID, 10), idWidth),
		statusStyle.Render(fit(task.StatusLabel(item.Status), statusWidth)),
		fit(fmt.Sprintf("%d%%", item.Progress), progressWidth),
		dueStyle.Render(fit(due, dueWidth)),
		fit(task.ProjectLabel(item), projectWidth),
	}
	used := checkWidth + idWidth + statusWidth + progressWidth + dueWidth + projectWidth
	if showOwner {
		cells = append(cells, fit(item.Owner, ownerWidth))
		used += ownerWidth
	}
	title := item.Title
	if !item.IsActive {
		title += " (archived)"
	}
	cells = append(cells, fit(title, max(model.width-used, 0)))
	row := strings.Join(cells, "")

	switch {
	case cursor:
		return lipgloss.NewStyle().
			Background(model.theme.SelectedBackground).
			Foreground(model.theme.SelectedForeground).
			Width(model.width).
			MaxWidth(model.width).
			Render(row)
	case !item.IsActive:
		return lipgloss.NewStyle().Faint(true).Render(row)
	}
	return row
}

// renderEmpty renders the message shown when no task is visible.
func (model Model) renderEmpty() string {
	state := model.engine.State().Tasks
	style := lipgloss.NewStyle().Foreground(model.theme.FaintText)
	switch {
	case state.Phase == taskset.PhaseFailed:
		return lipgloss.NewStyle().Foreground(model.theme.NoticeFailure).
			Render("Could not load tasks: " + state.Error + "\nPress r to retry.")
	case state.Loading || state.Phase == taskset.PhaseIdle:
		return style.Render(model.spinner.View() + " Loading tasks...")
	case model.engine.Filter().SearchTerm != "":
		return style.Render("No tasks match the search.")
	}
	return style.Render("No tasks match the filter. Press 1 for your active tasks.")
}

// renderStatusBar renders, in priority order, the active prompt, the
// latest notice, or the key help.
func (model Model) renderStatusBar() string {
	if prompt := model.promptLine(); prompt != "" {
		return prompt
	}
	if model.notice != nil {
		return lipgloss.NewStyle().Foreground(model.notice.color).
			Render(ansi.Truncate(model.notice.text, max(model.width, 1), "…"))
	}
	return model.help.View(model.keys)
}

// fit truncates text to width cells and pads it with spaces to
// exactly width. Text must be unstyled or fully styled; widths are
// measured without escape sequences.
func fit(text string, width int) string {
	if width <= 0 {
		return ""
	}
	text = ansi.Truncate(text, width-1, "…")
	return text + strings.Repeat(" ", width-ansi.StringWidth(text))
}
