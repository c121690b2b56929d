// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bureau-foundation/taskboard/cmd/taskboard/cli"
	"github.com/bureau-foundation/taskboard/lib/clock"
	"github.com/bureau-foundation/taskboard/lib/config"
	"github.com/bureau-foundation/taskboard/lib/schema/task"
	"github.com/bureau-foundation/taskboard/lib/taskapi/taskapitest"
	"github.com/bureau-foundation/taskboard/lib/testutil"
)

const testToken = "secret-token"

var commandNow = time.Date(2026, time.March, 6, 9, 0, 0, 0, time.UTC)

type commandHarness struct {
	server *taskapitest.Server
	dir    string
	stdout bytes.Buffer
	stderr bytes.Buffer
}

type harnessConfig struct {
	admin     bool
	noToken   bool
	extraYAML string
}

// newCommandHarness starts an in-memory task service holding two tasks
// of alice and one of bob, and points TASKBOARD_CONFIG at a config for
// it.
func newCommandHarness(t *testing.T, settings harnessConfig) *commandHarness {
	t.Helper()

	server := taskapitest.NewServer(taskapitest.Config{Token: testToken})
	t.Cleanup(server.Close)
	due := "2026-03-07"
	server.AddTasks(
		task.Task{ID: 1, Owner: "alice", Title: "Alpha launch", Status: task.StatusTodo, IsActive: true, DueDate: &due},
		task.Task{ID: 2, Owner: "bob", Title: "Bob's chores", Status: task.StatusBlocked, IsActive: true},
		task.Task{ID: 3, Owner: "alice", Title: "Gamma rollout", Status: task.StatusInProgress, Progress: 40, IsActive: true},
	)

	dir := t.TempDir()
	tokenLine := ""
	if !settings.noToken {
		tokenLine = "  token_file: " + testutil.WriteFile(t, dir, "token", testToken+"\n") + "\n"
	}
	admin := "false"
	if settings.admin {
		admin = "true"
	}
	configYAML := "api:\n" +
		"  base_url: " + server.URL + "\n" +
		tokenLine +
		"  username: alice\n" +
		"  admin: " + admin + "\n" +
		"state:\n" +
		"  root: " + filepath.Join(dir, "state") + "\n" +
		"  database: ${TASKBOARD_ROOT}/state.db\n" +
		"log:\n" +
		"  level: warn\n" +
		settings.extraYAML
	t.Setenv(config.EnvVar, testutil.WriteFile(t, dir, "taskboard.yaml", configYAML))

	return &commandHarness{server: server, dir: dir}
}

// run executes one command line with stdin as input, collecting output
// in the harness buffers.
func (h *commandHarness) run(t *testing.T, stdin string, args ...string) error {
	t.Helper()
	h.stdout.Reset()
	h.stderr.Reset()
	root := Root(Options{
		Streams: cli.Streams{In: strings.NewReader(stdin), Out: &h.stdout, Err: &h.stderr},
		Clock:   clock.Fake(commandNow),
	})
	return root.Execute(context.Background(), args, nil)
}

func requireCategory(t *testing.T, err error, want cli.ErrorCategory) *cli.ToolError {
	t.Helper()
	var toolErr *cli.ToolError
	if !errors.As(err, &toolErr) {
		t.Fatalf("error = %v (%T), want a %s ToolError", err, err, want)
	}
	if toolErr.Category != want {
		t.Fatalf("category = %s, want %s (error: %v)", toolErr.Category, want, err)
	}
	return toolErr
}

func TestListPrintsFilteredTable(t *testing.T) {
	h := newCommandHarness(t, harnessConfig{})

	if err := h.run(t, "", "list"); err != nil {
		t.Fatalf("list: %v", err)
	}
	output := h.stdout.String()
	for _, want := range []string{"TITLE", "Alpha launch", "Due tomorrow", "Gamma rollout", "40%"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q:\n%s", want, output)
		}
	}
	if strings.Contains(output, "Bob's chores") {
		t.Errorf("default filter should hide other owners' tasks:\n%s", output)
	}

	listRequests := h.server.RequestsMatching(http.MethodGet, "/tasks")
	if len(listRequests) != 1 {
		t.Fatalf("%d list requests, want 1", len(listRequests))
	}
	request := listRequests[0]
	if request.Authorization != "Bearer "+testToken {
		t.Errorf("Authorization = %q", request.Authorization)
	}
	if !strings.HasPrefix(request.UserAgent, "taskboard/") {
		t.Errorf("User-Agent = %q, want taskboard/...", request.UserAgent)
	}
	if request.Query.Get("mine") != "true" || request.Query.Get("active_only") != "true" {
		t.Errorf("query = %v, want mine and active_only", request.Query)
	}
}

func TestListJSONWithSearch(t *testing.T) {
	h := newCommandHarness(t, harnessConfig{})

	if err := h.run(t, "", "list", "--json", "--search", "gamma"); err != nil {
		t.Fatalf("list: %v", err)
	}
	var tasks []task.Task
	if err := json.Unmarshal(h.stdout.Bytes(), &tasks); err != nil {
		t.Fatalf("decoding output: %v\n%s", err, h.stdout.String())
	}
	if len(tasks) != 1 || tasks[0].ID != 3 {
		t.Errorf("tasks = %+v, want only task 3", tasks)
	}
}

func TestMissingTokenIsValidationError(t *testing.T) {
	h := newCommandHarness(t, harnessConfig{noToken: true})

	err := h.run(t, "", "list")
	toolErr := requireCategory(t, err, cli.CategoryValidation)
	if !strings.Contains(toolErr.Hint, "token_file") {
		t.Errorf("hint = %q, want a pointer to api.token_file", toolErr.Hint)
	}
	if len(h.server.Requests()) != 0 {
		t.Errorf("no request should be sent without a token")
	}
}

func TestTokenFromStdin(t *testing.T) {
	h := newCommandHarness(t, harnessConfig{noToken: true})

	if err := h.run(t, testToken+"\n", "list", "--token-file", "-"); err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(h.stdout.String(), "Alpha launch") {
		t.Errorf("output:\n%s", h.stdout.String())
	}
}

func TestUpdateRejectsBadFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"nothing to update", []string{"update", "1"}},
		{"two due flags", []string{"update", "1", "--due", "2026-04-01", "--clear-due"}},
		{"progress out of range", []string{"update", "1", "--progress", "101"}},
		{"unknown status", []string{"update", "1", "--status", "waiting"}},
		{"impossible date", []string{"update", "1", "--due", "2026-02-30"}},
		{"description conflict", []string{"update", "1", "--description", "x", "--clear-description"}},
		{"bad ID", []string{"update", "zero", "--status", "done"}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			h := newCommandHarness(t, harnessConfig{})
			requireCategory(t, h.run(t, "", test.args...), cli.CategoryValidation)
			if len(h.server.Requests()) != 0 {
				t.Errorf("%d requests sent, want 0", len(h.server.Requests()))
			}
		})
	}
}

func TestUpdateSendsPartialPayload(t *testing.T) {
	h := newCommandHarness(t, harnessConfig{})

	if err := h.run(t, "", "update", "3", "--status", "done", "--progress", "100"); err != nil {
		t.Fatalf("update: %v", err)
	}
	updates := h.server.RequestsMatching(http.MethodPut, "/tasks/3")
	if len(updates) != 1 {
		t.Fatalf("%d updates, want 1", len(updates))
	}
	var body map[string]any
	if err := json.Unmarshal(updates[0].Body, &body); err != nil {
		t.Fatalf("decoding body: %v", err)
	}
	if len(body) != 2 || body["status"] != "done" || body["progress"] != float64(100) {
		t.Errorf("body = %v, want only status and progress", body)
	}
	if !strings.Contains(h.stderr.String(), "✓") {
		t.Errorf("stderr should confirm the update: %q", h.stderr.String())
	}
}

func TestUpdateShiftDue(t *testing.T) {
	h := newCommandHarness(t, harnessConfig{})

	if err := h.run(t, "", "update", "1", "--shift-due", "-3"); err != nil {
		t.Fatalf("update: %v", err)
	}
	stored, _ := h.server.Task(1)
	if stored.DueDate == nil || *stored.DueDate != "2026-03-04" {
		t.Errorf("due date = %v, want 2026-03-04", stored.DueDate)
	}

	err := h.run(t, "", "update", "2", "--shift-due", "1")
	requireCategory(t, err, cli.CategoryNotFound)
}

func TestCreate(t *testing.T) {
	h := newCommandHarness(t, harnessConfig{})

	if err := h.run(t, "", "create", "Write", "the", "notes"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if got := strings.TrimSpace(h.stdout.String()); got != "4" {
		t.Errorf("stdout = %q, want the new ID 4", got)
	}
	if created, _ := h.server.Task(4); created.Title != "Write the notes" {
		t.Errorf("title = %q", created.Title)
	}

	requireCategory(t, h.run(t, "", "create", "  "), cli.CategoryValidation)
	if h.server.TaskCount() != 4 {
		t.Errorf("a blank title should not create a task")
	}
}

func TestDeleteAsksFirst(t *testing.T) {
	h := newCommandHarness(t, harnessConfig{})

	err := h.run(t, "n\n", "delete", "1")
	var exitErr *cli.ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 1 {
		t.Fatalf("declined delete: err = %v, want ExitError 1", err)
	}
	if !strings.Contains(h.stderr.String(), "Permanently delete this task?") || !strings.Contains(h.stderr.String(), "Cancelled.") {
		t.Errorf("stderr = %q", h.stderr.String())
	}
	if _, ok := h.server.Task(1); !ok {
		t.Fatal("task 1 deleted despite the declined prompt")
	}

	if err := h.run(t, "y\n", "delete", "1"); err != nil {
		t.Fatalf("confirmed delete: %v", err)
	}
	if _, ok := h.server.Task(1); ok {
		t.Error("task 1 still exists after a confirmed delete")
	}
}

func TestDeleteWithYesSkipsPrompt(t *testing.T) {
	h := newCommandHarness(t, harnessConfig{})

	if err := h.run(t, "", "delete", "3", "--yes"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if strings.Contains(h.stderr.String(), "[y/N]") {
		t.Errorf("--yes should not prompt: %q", h.stderr.String())
	}
	if _, ok := h.server.Task(3); ok {
		t.Error("task 3 still exists")
	}
}

func TestBulkStatusByID(t *testing.T) {
	h := newCommandHarness(t, harnessConfig{})

	if err := h.run(t, "", "bulk", "status", "done", "--id", "3", "--id", "1", "--id", "3", "--yes", "--json"); err != nil {
		t.Fatalf("bulk status: %v", err)
	}
	var output bulkOutput
	if err := json.Unmarshal(h.stdout.Bytes(), &output); err != nil {
		t.Fatalf("decoding output: %v\n%s", err, h.stdout.String())
	}
	if output.Action != "status" || len(output.Succeeded) != 2 || len(output.Failed) != 0 {
		t.Errorf("output = %+v, want 2 succeeded", output)
	}
	for _, id := range []int64{1, 3} {
		if stored, _ := h.server.Task(id); stored.Status != task.StatusDone {
			t.Errorf("task %d status = %q, want done", id, stored.Status)
		}
	}
	if got := len(h.server.RequestsMatching(http.MethodPut, "/tasks/")); got != 2 {
		t.Errorf("%d updates, want one per distinct ID", got)
	}
}

func TestBulkPartialFailureSuggestsRetry(t *testing.T) {
	h := newCommandHarness(t, harnessConfig{})
	h.server.Fail(http.MethodPut, "/tasks/3", http.StatusInternalServerError, "database down")

	err := h.run(t, "", "bulk", "archive", "--visible", "--yes")
	toolErr := requireCategory(t, err, cli.CategoryTransient)
	if !strings.Contains(toolErr.Hint, "--id 3") {
		t.Errorf("hint = %q, want a retry for task 3", toolErr.Hint)
	}
	if stored, _ := h.server.Task(1); stored.IsActive {
		t.Error("task 1 should be archived despite task 3 failing")
	}
}

func TestBulkTargetValidation(t *testing.T) {
	h := newCommandHarness(t, harnessConfig{})

	requireCategory(t, h.run(t, "", "bulk", "clear-due", "--yes"), cli.CategoryValidation)
	requireCategory(t, h.run(t, "", "bulk", "clear-due", "--id", "1", "--visible"), cli.CategoryValidation)
	requireCategory(t, h.run(t, "", "bulk", "clear-due", "--id", "1", "--search", "x"), cli.CategoryValidation)
	requireCategory(t, h.run(t, "", "bulk", "shift-due", "--id", "1"), cli.CategoryValidation)
	if len(h.server.Requests()) != 0 {
		t.Errorf("%d requests sent, want 0", len(h.server.Requests()))
	}
}

func TestBulkShiftDue(t *testing.T) {
	h := newCommandHarness(t, harnessConfig{})

	if err := h.run(t, "", "bulk", "shift-due", "--days", "2", "--id", "1", "--id", "3", "--yes"); err != nil {
		t.Fatalf("bulk shift-due: %v", err)
	}
	wants := map[int64]string{1: "2026-03-09", 3: "2026-03-08"}
	for id, want := range wants {
		stored, _ := h.server.Task(id)
		if stored.DueDate == nil || *stored.DueDate != want {
			t.Errorf("task %d due = %v, want %s", id, stored.DueDate, want)
		}
	}
}

func TestFilterPersistsAcrossCommands(t *testing.T) {
	h := newCommandHarness(t, harnessConfig{})

	if err := h.run(t, "", "filter", "set", "--all-owners", "--status", "blocked"); err != nil {
		t.Fatalf("filter set: %v", err)
	}
	if err := h.run(t, "", "filter", "show", "--json"); err != nil {
		t.Fatalf("filter show: %v", err)
	}
	var shown filterOutput
	if err := json.Unmarshal(h.stdout.Bytes(), &shown); err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	if shown.MineOnly || !shown.ActiveOnly || shown.Status != task.StatusBlocked {
		t.Errorf("filter = %+v, want every owner, active, blocked", shown)
	}

	if err := h.run(t, "", "list"); err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(h.stdout.String(), "Bob's chores") || strings.Contains(h.stdout.String(), "Alpha launch") {
		t.Errorf("list should use the saved filter:\n%s", h.stdout.String())
	}

	if err := h.run(t, "", "filter", "preset", "myActive"); err != nil {
		t.Fatalf("filter preset: %v", err)
	}
	if err := h.run(t, "", "filter", "show", "--json"); err != nil {
		t.Fatalf("filter show: %v", err)
	}
	shown = filterOutput{}
	if err := json.Unmarshal(h.stdout.Bytes(), &shown); err != nil {
		t.Fatalf("decoding output: %v", err)
	}
	if shown.Preset != "myActive" {
		t.Errorf("preset = %q, want myActive", shown.Preset)
	}
}

func TestFilterPresetRequiresAdmin(t *testing.T) {
	h := newCommandHarness(t, harnessConfig{})

	toolErr := requireCategory(t, h.run(t, "", "filter", "preset", "allActive"), cli.CategoryForbidden)
	if !strings.Contains(toolErr.Hint, "api.admin") {
		t.Errorf("hint = %q", toolErr.Hint)
	}
	requireCategory(t, h.run(t, "", "filter", "preset", "everything"), cli.CategoryValidation)

	admin := newCommandHarness(t, harnessConfig{admin: true})
	if err := admin.run(t, "", "filter", "preset", "allActive"); err != nil {
		t.Fatalf("admin preset: %v", err)
	}
}

func TestFilterSetNeedsADimension(t *testing.T) {
	h := newCommandHarness(t, harnessConfig{})

	requireCategory(t, h.run(t, "", "filter", "set"), cli.CategoryValidation)
	requireCategory(t, h.run(t, "", "filter", "set", "--mine", "--all-owners"), cli.CategoryValidation)
}

func TestInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(config.EnvVar, testutil.WriteFile(t, dir, "taskboard.yaml", "api:\n  base_url: ftp://example\n"))

	var stdout, stderr bytes.Buffer
	root := Root(Options{Streams: cli.Streams{In: strings.NewReader(""), Out: &stdout, Err: &stderr}})
	err := root.Execute(context.Background(), []string{"list"}, nil)
	requireCategory(t, err, cli.CategoryValidation)
	if !strings.Contains(err.Error(), "base_url") {
		t.Errorf("error = %v, want a base_url complaint", err)
	}
}

func TestViewRequiresTerminal(t *testing.T) {
	h := newCommandHarness(t, harnessConfig{})
	requireCategory(t, h.run(t, "", "view"), cli.CategoryValidation)
}

func TestVersion(t *testing.T) {
	h := newCommandHarness(t, harnessConfig{})
	if err := h.run(t, "", "version"); err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.HasPrefix(h.stdout.String(), "taskboard ") {
		t.Errorf("stdout = %q", h.stdout.String())
	}
}
