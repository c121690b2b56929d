// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package taskui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bureau-foundation/taskboard/lib/clock"
	"github.com/bureau-foundation/taskboard/lib/schema/task"
	"github.com/bureau-foundation/taskboard/lib/taskfilter"
	"github.com/bureau-foundation/taskboard/lib/taskset"
)

// focusRegion identifies where keystrokes go.
type focusRegion int

const (
	// focusList means keys navigate the list and trigger actions.
	focusList focusRegion = iota
	// focusSearch means keystrokes edit the search term.
	focusSearch
	// focusEditor means keystrokes edit a new task's title or a
	// rename.
	focusEditor
	// focusStatusPicker means the next key picks a status.
	focusStatusPicker
	// focusConfirm means the engine is waiting for a y/n answer.
	focusConfirm
)

const (
	// noticeDuration is how long a notice stays in the status bar
	// before the help line returns.
	noticeDuration = 4 * time.Second

	// progressStep is the progress change per keypress.
	progressStep = 10

	// chromeTop is the header line plus the filter/search line.
	chromeTop = 2
)

// statusFilterCycle is the order the status filter key steps through.
// The empty status means any.
var statusFilterCycle = []task.Status{"", task.StatusTodo, task.StatusInProgress, task.StatusDone, task.StatusBlocked}

// sessionStartedMsg reports the first fetch after the board starts.
type sessionStartedMsg struct {
	err error
}

// operationDoneMsg is sent when an engine operation run as a command
// returns. Failures have already been reported through the Bridge;
// err is kept to recognize a declined confirmation.
type operationDoneMsg struct {
	action string
	err    error
}

// noticeFadeMsg clears the notice it was scheduled for, unless a newer
// notice replaced it.
type noticeFadeMsg struct {
	sequence int
}

type notice struct {
	text  string
	color lipgloss.Color
}

// Config configures a Model.
type Config struct {
	// Context bounds every engine call the board makes. Cancelling it
	// abandons in-flight operations and refuses pending confirmations.
	Context context.Context

	// Engine is the task engine. Its Notifier, Confirmer, and OnChange
	// should be a [Bridge] attached to the same program. Required.
	Engine *taskset.Engine

	// Session is started when the board starts.
	Session *taskset.Session

	// Clock anchors due-date labels. Nil means the real clock.
	Clock clock.Clock
}

// Model is the top-level bubbletea model for the task board.
type Model struct {
	ctx     context.Context
	engine  *taskset.Engine
	session *taskset.Session
	clock   clock.Clock
	theme   Theme
	keys    KeyMap

	// Terminal dimensions (set by WindowSizeMsg).
	width  int
	height int
	ready  bool

	focus        focusRegion
	cursor       int
	scrollOffset int
	focusedID    int64 // Stable focus: the cursor follows this task across refreshes.

	search     textinput.Model
	editor     textinput.Model
	editTarget int64 // Task being renamed; 0 while creating.

	help     help.Model
	spinner  spinner.Model
	spinning bool

	confirm        *confirmRequestMsg
	notice         *notice
	noticeSequence int
	inFlight       int
}

// NewModel creates a Model over config.Engine.
func NewModel(config Config) Model {
	ctx := config.Context
	if ctx == nil {
		ctx = context.Background()
	}
	boardClock := config.Clock
	if boardClock == nil {
		boardClock = clock.Real()
	}

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search title, description, owner, project"

	editor := textinput.New()
	editor.CharLimit = 200

	return Model{
		ctx:     ctx,
		engine:  config.Engine,
		session: config.Session,
		clock:   boardClock,
		theme:   DefaultTheme,
		keys:    DefaultKeyMap,
		search:  search,
		editor:  editor,
		help:    help.New(),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

// Init implements tea.Model. Starts the session, which fetches the
// task and project lists.
func (model Model) Init() tea.Cmd {
	engine, session, ctx := model.engine, model.session, model.ctx
	start := func() tea.Msg {
		return sessionStartedMsg{err: engine.SetSession(ctx, session)}
	}
	return start
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.KeyMsg:
		return model.handleKey(message)

	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		model.ready = true
		model.help.Width = message.Width
		model.search.Width = message.Width - 4
		model.editor.Width = message.Width - 20
		model.ensureCursorVisible()

	case stateChangedMsg:
		model.syncCursor()
		return model, model.startSpinner()

	case sessionStartedMsg:
		model.syncCursor()
		if message.err != nil {
			return model, model.showNotice("Could not load tasks: "+message.err.Error(), model.theme.NoticeFailure)
		}

	case operationDoneMsg:
		model.inFlight--
		model.syncCursor()
		if errors.Is(message.err, taskset.ErrCancelled) {
			return model, model.showNotice("Cancelled", model.theme.FaintText)
		}

	case notificationMsg:
		color := model.theme.NoticeSuccess
		switch message.notification.Kind {
		case taskset.KindFailure:
			color = model.theme.NoticeFailure
		case taskset.KindValidation:
			color = model.theme.NoticeWarning
		}
		return model, model.showNotice(message.notification.Message, color)

	case confirmRequestMsg:
		if model.confirm != nil {
			message.reply <- false
			return model, nil
		}
		model.confirm = &message
		model.focus = focusConfirm

	case logRecordMsg:
		color := model.theme.NoticeWarning
		if message.Level >= slog.LevelError {
			color = model.theme.NoticeFailure
		}
		return model, model.showNotice(message.Summary, color)

	case noticeFadeMsg:
		if message.sequence == model.noticeSequence {
			model.notice = nil
		}

	case spinner.TickMsg:
		if !model.loading() {
			model.spinning = false
			return model, nil
		}
		var command tea.Cmd
		model.spinner, command = model.spinner.Update(message)
		return model, command
	}
	return model, nil
}

// handleKey routes a keystroke by focus region.
func (model Model) handleKey(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	if message.String() == "ctrl+c" {
		model.answerConfirm(false)
		return model, tea.Quit
	}

	switch model.focus {
	case focusConfirm:
		switch {
		case key.Matches(message, model.keys.Confirm):
			model.answerConfirm(true)
		case key.Matches(message, model.keys.Cancel):
			model.answerConfirm(false)
		}
		return model, nil

	case focusSearch:
		return model.handleSearchKeys(message)

	case focusEditor:
		return model.handleEditorKeys(message)

	case focusStatusPicker:
		return model.handleStatusPickerKeys(message)
	}
	return model.handleListKeys(message)
}

func (model *Model) answerConfirm(approved bool) {
	if model.confirm == nil {
		return
	}
	model.confirm.reply <- approved
	model.confirm = nil
	model.focus = focusList
}

func (model Model) handleSearchKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch message.Type {
	case tea.KeyEnter:
		model.search.Blur()
		model.focus = focusList
		return model, nil
	case tea.KeyEsc:
		model.search.Blur()
		model.search.SetValue("")
		model.engine.SetSearchTerm("")
		model.focus = focusList
		model.syncCursor()
		return model, nil
	}

	var command tea.Cmd
	model.search, command = model.search.Update(message)
	model.engine.SetSearchTerm(model.search.Value())
	model.cursor = 0
	model.scrollOffset = 0
	model.focusedID = 0
	model.syncCursor()
	return model, command
}

func (model Model) handleEditorKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch message.Type {
	case tea.KeyEsc:
		model.closeEditor()
		return model, nil
	case tea.KeyEnter:
		title := model.editor.Value()
		target := model.editTarget
		model.closeEditor()
		if target == 0 {
			projectID := model.engine.Filter().ProjectFilterID
			return model, model.run("create", func(ctx context.Context) error {
				_, err := model.engine.Create(ctx, title, "", projectID)
				return err
			})
		}
		return model, model.run("rename", func(ctx context.Context) error {
			return model.engine.Update(ctx, target, task.UpdatePayload{Title: &title})
		})
	}

	var command tea.Cmd
	model.editor, command = model.editor.Update(message)
	return model, command
}

func (model *Model) openEditor(target int64, value string) tea.Cmd {
	model.editTarget = target
	model.editor.SetValue(value)
	model.editor.CursorEnd()
	if target == 0 {
		model.editor.Prompt = "New task: "
	} else {
		model.editor.Prompt = fmt.Sprintf("Rename #%d: ", target)
	}
	model.focus = focusEditor
	return model.editor.Focus()
}

func (model *Model) closeEditor() {
	model.editor.Blur()
	model.editor.SetValue("")
	model.focus = focusList
}

// statusPickerKeys maps the picker's keys to statuses.
var statusPickerKeys = map[string]task.Status{
	"1": task.StatusTodo, "t": task.StatusTodo,
	"2": task.StatusInProgress, "i": task.StatusInProgress,
	"3": task.StatusDone, "d": task.StatusDone,
	"4": task.StatusBlocked, "b": task.StatusBlocked,
}

func (model Model) handleStatusPickerKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	model.focus = focusList
	status, ok := statusPickerKeys[message.String()]
	if !ok {
		return model, nil
	}
	if model.hasSelection() {
		return model, model.runBulk("status", func(ctx context.Context) (taskset.BulkResult, error) {
			return model.engine.BulkStatusChange(ctx, status)
		})
	}
	item, ok := model.focusedTask()
	if !ok {
		return model, nil
	}
	return model, model.run("status", func(ctx context.Context) error {
		return model.engine.SetStatus(ctx, item.ID, status)
	})
}

func (model Model) handleListKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := model.keys
	switch {
	case key.Matches(message, keys.Quit):
		return model, tea.Quit

	case key.Matches(message, keys.Help):
		model.help.ShowAll = !model.help.ShowAll
		model.ensureCursorVisible()

	case key.Matches(message, keys.Up):
		model.moveCursor(-1)
	case key.Matches(message, keys.Down):
		model.moveCursor(1)
	case key.Matches(message, keys.PageUp):
		model.moveCursor(-model.visibleHeight())
	case key.Matches(message, keys.PageDown):
		model.moveCursor(model.visibleHeight())
	case key.Matches(message, keys.Home):
		model.moveCursor(-len(model.engine.Visible()))
	case key.Matches(message, keys.End):
		model.moveCursor(len(model.engine.Visible()))

	case key.Matches(message, keys.Toggle):
		if item, ok := model.focusedTask(); ok {
			model.engine.Toggle(item.ID)
		}
	case key.Matches(message, keys.SelectAll):
		model.engine.ToggleSelectAllVisible()
	case key.Matches(message, keys.ClearSelection):
		model.engine.ClearSelection()

	case key.Matches(message, keys.Search):
		model.focus = focusSearch
		return model, model.search.Focus()

	case key.Matches(message, keys.Reload):
		return model, model.run("reload", model.engine.Reload)
	case key.Matches(message, keys.ToggleMine):
		mine := !model.engine.Filter().MineOnly
		return model, model.run("filter", func(ctx context.Context) error {
			return model.engine.SetMineOnly(ctx, mine)
		})
	case key.Matches(message, keys.ToggleActive):
		active := !model.engine.Filter().ActiveOnly
		return model, model.run("filter", func(ctx context.Context) error {
			return model.engine.SetActiveOnly(ctx, active)
		})
	case key.Matches(message, keys.CycleStatus):
		next := nextStatusFilter(model.engine.Filter().StatusFilter)
		return model, model.run("filter", func(ctx context.Context) error {
			return model.engine.SetStatusFilter(ctx, next)
		})
	case key.Matches(message, keys.PresetMine):
		return model, model.applyPreset(taskfilter.PresetMyActive)
	case key.Matches(message, keys.PresetBlock):
		return model, model.applyPreset(taskfilter.PresetBlockedOnly)
	case key.Matches(message, keys.PresetAll):
		return model, model.applyPreset(taskfilter.PresetAllActive)

	case key.Matches(message, keys.SetStatus):
		if model.hasSelection() || model.hasFocusedTask() {
			model.focus = focusStatusPicker
		}
	case key.Matches(message, keys.ShiftDueLater):
		return model, model.shiftDue(1)
	case key.Matches(message, keys.ShiftDueEarlier):
		return model, model.shiftDue(-1)
	case key.Matches(message, keys.ShiftWeekLater):
		return model, model.shiftDue(7)
	case key.Matches(message, keys.ShiftWeekEarlier):
		return model, model.shiftDue(-7)
	case key.Matches(message, keys.ClearDue):
		return model, model.clearDue()
	case key.Matches(message, keys.ProgressUp):
		return model, model.stepProgress(progressStep)
	case key.Matches(message, keys.ProgressDown):
		return model, model.stepProgress(-progressStep)
	case key.Matches(message, keys.Archive):
		return model, model.archive()
	case key.Matches(message, keys.Restore):
		return model, model.restore()
	case key.Matches(message, keys.Delete):
		return model, model.delete()

	case key.Matches(message, keys.Create):
		return model, model.openEditor(0, "")
	case key.Matches(message, keys.Rename):
		if item, ok := model.focusedTask(); ok {
			return model, model.openEditor(item.ID, item.Title)
		}
	}
	return model, nil
}

// run executes an engine operation as a command.
func (model *Model) run(action string, operation func(context.Context) error) tea.Cmd {
	model.inFlight++
	ctx := model.ctx
	return tea.Batch(
		func() tea.Msg {
			return operationDoneMsg{action: action, err: operation(ctx)}
		},
		model.startSpinner(),
	)
}

func (model *Model) runBulk(action string, operation func(context.Context) (taskset.BulkResult, error)) tea.Cmd {
	return model.run(action, func(ctx context.Context) error {
		_, err := operation(ctx)
		return err
	})
}

func (model *Model) applyPreset(name taskfilter.PresetName) tea.Cmd {
	if name == taskfilter.PresetAllActive && (model.session == nil || !model.session.Admin) {
		return model.showNotice("All active tasks requires administrator access", model.theme.NoticeWarning)
	}
	return model.run("filter", func(ctx context.Context) error {
		return model.engine.ApplyPreset(ctx, name)
	})
}

func (model *Model) shiftDue(days int) tea.Cmd {
	if model.hasSelection() {
		return model.runBulk("shift-due", func(ctx context.Context) (taskset.BulkResult, error) {
			return model.engine.BulkShiftDueDate(ctx, days)
		})
	}
	item, ok := model.focusedTask()
	if !ok {
		return nil
	}
	return model.run("shift-due", func(ctx context.Context) error {
		return model.engine.ShiftTaskDueDate(ctx, item.ID, days)
	})
}

func (model *Model) clearDue() tea.Cmd {
	if model.hasSelection() {
		return model.runBulk("clear-due", model.engine.BulkClearDueDate)
	}
	item, ok := model.focusedTask()
	if !ok {
		return nil
	}
	return model.run("clear-due", func(ctx context.Context) error {
		return model.engine.ClearDueDate(ctx, item.ID)
	})
}

func (model *Model) stepProgress(delta int) tea.Cmd {
	item, ok := model.focusedTask()
	if !ok {
		return nil
	}
	progress := min(max(item.Progress+delta, 0), 100)
	if progress == item.Progress {
		return nil
	}
	return model.run("progress", func(ctx context.Context) error {
		return model.engine.SetProgress(ctx, item.ID, progress)
	})
}

func (model *Model) archive() tea.Cmd {
	if model.hasSelection() {
		return model.runBulk("archive", model.engine.BulkArchiveSelected)
	}
	item, ok := model.focusedTask()
	if !ok {
		return nil
	}
	return model.run("archive", func(ctx context.Context) error {
		return model.engine.Archive(ctx, item.ID)
	})
}

func (model *Model) restore() tea.Cmd {
	if model.hasSelection() {
		return model.showNotice("Restore acts on the task under the cursor; clear the selection first", model.theme.NoticeWarning)
	}
	item, ok := model.focusedTask()
	if !ok || item.IsActive {
		return nil
	}
	return model.run("restore", func(ctx context.Context) error {
		return model.engine.Restore(ctx, item.ID)
	})
}

func (model *Model) delete() tea.Cmd {
	if model.hasSelection() {
		return model.runBulk("delete", model.engine.BulkDeleteSelected)
	}
	item, ok := model.focusedTask()
	if !ok {
		return nil
	}
	return model.run("delete", func(ctx context.Context) error {
		return model.engine.Delete(ctx, item.ID, false)
	})
}

// showNotice replaces the status bar notice and schedules its fade.
func (model *Model) showNotice(text string, color lipgloss.Color) tea.Cmd {
	model.noticeSequence++
	model.notice = &notice{text: text, color: color}
	sequence := model.noticeSequence
	return tea.Tick(noticeDuration, func(time.Time) tea.Msg {
		return noticeFadeMsg{sequence: sequence}
	})
}

func (model *Model) startSpinner() tea.Cmd {
	if model.spinning || !model.loading() {
		return nil
	}
	model.spinning = true
	return model.spinner.Tick
}

// loading reports whether a fetch or an operation is outstanding.
func (model Model) loading() bool {
	state := model.engine.State()
	return model.inFlight > 0 || state.Tasks.Loading || state.Projects.Loading
}

func (model Model) hasSelection() bool {
	return !model.engine.Selection().IsEmpty()
}

func (model Model) hasFocusedTask() bool {
	_, ok := model.focusedTask()
	return ok
}

// focusedTask returns the visible task under the cursor.
func (model Model) focusedTask() (task.Task, bool) {
	visible := model.engine.Visible()
	if model.cursor < 0 || model.cursor >= len(visible) {
		return task.Task{}, false
	}
	return visible[model.cursor], true
}

func (model *Model) moveCursor(delta int) {
	visible := model.engine.Visible()
	if len(visible) == 0 {
		return
	}
	model.cursor = min(max(model.cursor+delta, 0), len(visible)-1)
	model.focusedID = visible[model.cursor].ID
	model.ensureCursorVisible()
}

// syncCursor keeps the cursor on the focused task after the visible
// list changed, or clamps it when that task is gone.
func (model *Model) syncCursor() {
	visible := model.engine.Visible()
	if len(visible) == 0 {
		model.cursor = 0
		model.scrollOffset = 0
		return
	}
	found := false
	for index, item := range visible {
		if item.ID == model.focusedID {
			model.cursor = index
			found = true
			break
		}
	}
	if !found {
		model.cursor = min(max(model.cursor, 0), len(visible)-1)
		model.focusedID = visible[model.cursor].ID
	}
	model.ensureCursorVisible()
}

// visibleHeight returns the number of list rows that fit between the
// top chrome and the status bar.
func (model Model) visibleHeight() int {
	return max(model.height-chromeTop-1-lipgloss.Height(model.renderStatusBar()), 0)
}

// ensureCursorVisible adjusts scrollOffset so the cursor is within
// the visible window.
func (model *Model) ensureCursorVisible() {
	visible := model.visibleHeight()
	if visible <= 0 {
		return
	}
	total := len(model.engine.Visible())
	model.scrollOffset = min(model.scrollOffset, max(total-visible, 0))
	if model.cursor < model.scrollOffset {
		model.scrollOffset = model.cursor
	}
	if model.cursor >= model.scrollOffset+visible {
		model.scrollOffset = model.cursor - visible + 1
	}
}

func nextStatusFilter(current task.Status) task.Status {
	for index, status := range statusFilterCycle {
		if status == current {
			return statusFilterCycle[(index+1)%len(statusFilterCycle)]
		}
	}
	return ""
}

// promptLine renders the single-line prompt of the active focus
// region, or "" when no prompt is active.
func (model Model) promptLine() string {
	switch model.focus {
	case focusConfirm:
		style := lipgloss.NewStyle().Bold(true)
		if model.confirm.confirmation.Destructive {
			style = style.Foreground(model.theme.NoticeFailure)
		}
		return style.Render(model.confirm.confirmation.Prompt) + " " +
			lipgloss.NewStyle().Foreground(model.theme.HelpText).Render("[y/N]")
	case focusStatusPicker:
		target := "task"
		if count := model.engine.Selection().Len(); count > 0 {
			target = fmt.Sprintf("%d selected", count)
		}
		options := make([]string, len(task.Statuses))
		for index, status := range task.Statuses {
			label := task.StatusLabel(status)
			options[index] = lipgloss.NewStyle().Foreground(model.theme.StatusColor(status)).
				Render(fmt.Sprintf("%d:%s", index+1, label))
		}
		return fmt.Sprintf("Set status of %s: %s", target, strings.Join(options, "  "))
	case focusEditor:
		return model.editor.View()
	}
	return ""
}
