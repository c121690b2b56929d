// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package taskapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/bureau-foundation/taskboard/lib/schema/task"
	"github.com/bureau-foundation/taskboard/lib/secret"
	"github.com/bureau-foundation/taskboard/lib/taskapi"
	"github.com/bureau-foundation/taskboard/lib/taskapi/taskapitest"
)

func int64Pointer(value int64) *int64 { return &value }

func newTestClient(t *testing.T, baseURL string, token string) *taskapi.Client {
	t.Helper()
	config := taskapi.Config{BaseURL: baseURL}
	if token != "" {
		config.TokenSource = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	}
	client, err := taskapi.NewClient(config)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func newFakeServer(t *testing.T, config taskapitest.Config) *taskapitest.Server {
	t.Helper()
	server := taskapitest.NewServer(config)
	t.Cleanup(server.Close)
	return server
}

func TestNewClientValidatesBaseURL(t *testing.T) {
	for _, baseURL := range []string{"", "ftp://example.com", "://bad"} {
		if _, err := taskapi.NewClient(taskapi.Config{BaseURL: baseURL}); err == nil {
			t.Errorf("NewClient(%q): expected error", baseURL)
		}
	}
}

func TestListTasksEncodesQuery(t *testing.T) {
	server := newFakeServer(t, taskapitest.Config{User: "alice"})
	server.AddTasks(
		task.Task{ID: 1, Owner: "alice", Title: "one", Status: task.StatusBlocked, IsActive: true, ProjectID: int64Pointer(7)},
		task.Task{ID: 2, Owner: "alice", Title: "two", Status: task.StatusTodo, IsActive: true},
		task.Task{ID: 3, Owner: "bob", Title: "three", Status: task.StatusBlocked, IsActive: true, ProjectID: int64Pointer(7)},
	)
	client := newTestClient(t, server.URL, "")

	tasks, err := client.ListTasks(context.Background(), task.Query{
		ActiveOnly: true,
		Mine:       true,
		Status:     task.StatusBlocked,
		ProjectID:  int64Pointer(7),
	})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != 1 {
		t.Fatalf("ListTasks = %+v, want task 1 only", tasks)
	}

	requests := server.RequestsMatching(http.MethodGet, "/tasks")
	if len(requests) != 1 {
		t.Fatalf("recorded %d list requests, want 1", len(requests))
	}
	query := requests[0].Query
	for key, want := range map[string]string{"active_only": "true", "mine": "true", "status": "blocked", "project_id": "7"} {
		if got := query.Get(key); got != want {
			t.Errorf("query %s = %q, want %q", key, got, want)
		}
	}
}

func TestListTasksOmitsUnsetDimensions(t *testing.T) {
	server := newFakeServer(t, taskapitest.Config{})
	client := newTestClient(t, server.URL, "")

	tasks, err := client.ListTasks(context.Background(), task.Query{})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if tasks == nil || len(tasks) != 0 {
		t.Fatalf("ListTasks = %#v, want empty non-nil slice", tasks)
	}
	query := server.Requests()[0].Query
	if query.Get("active_only") != "false" || query.Get("mine") != "false" {
		t.Errorf("booleans must always be sent: %v", query)
	}
	if query.Has("status") || query.Has("project_id") {
		t.Errorf("unset dimensions sent: %v", query)
	}
}

func TestBearerAndRequestIDHeaders(t *testing.T) {
	server := newFakeServer(t, taskapitest.Config{Token: "tok-123"})

	buffer, err := secret.NewFromBytes([]byte("tok-123"))
	if err != nil {
		t.Fatalf("NewFromBytes: %v", err)
	}
	defer buffer.Close()

	client, err := taskapi.NewClient(taskapi.Config{
		BaseURL:     server.URL,
		TokenSource: taskapi.TokenSource(buffer),
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.ListProjects(context.Background()); err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if _, err := client.ListProjects(context.Background()); err != nil {
		t.Fatalf("ListProjects: %v", err)
	}

	requests := server.Requests()
	if requests[0].Authorization != "Bearer tok-123" {
		t.Errorf("Authorization = %q", requests[0].Authorization)
	}
	if _, err := uuid.Parse(requests[0].RequestID); err != nil {
		t.Errorf("X-Request-ID %q is not a UUID: %v", requests[0].RequestID, err)
	}
	if requests[0].RequestID == requests[1].RequestID {
		t.Error("request IDs must differ per request")
	}
}

func TestUserAgentHeader(t *testing.T) {
	server := newFakeServer(t, taskapitest.Config{})
	client, err := taskapi.NewClient(taskapi.Config{BaseURL: server.URL, UserAgent: "taskboard/test"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.ListProjects(context.Background()); err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if got := server.Requests()[0].UserAgent; got != "taskboard/test" {
		t.Errorf("User-Agent = %q, want taskboard/test", got)
	}
}

func TestWrongTokenIsUnauthorized(t *testing.T) {
	server := newFakeServer(t, taskapitest.Config{Token: "right"})
	client := newTestClient(t, server.URL, "wrong")

	_, err := client.ListTasks(context.Background(), task.Query{})
	if !taskapi.IsStatus(err, http.StatusUnauthorized) {
		t.Fatalf("error = %v, want 401 APIError", err)
	}
}

func TestCreateTask(t *testing.T) {
	server := newFakeServer(t, taskapitest.Config{User: "alice"})
	server.AddProjects(task.Project{ID: 4, Name: "Website"})
	client := newTestClient(t, server.URL, "")

	created, err := client.CreateTask(context.Background(), task.NewCreateRequest("  Ship it ", "", int64Pointer(4)))
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if created.ID == 0 || created.Title != "Ship it" || created.Owner != "alice" || !created.IsActive {
		t.Fatalf("created = %+v", created)
	}
	if created.ProjectName == nil || *created.ProjectName != "Website" {
		t.Fatalf("project name = %v", created.ProjectName)
	}
}

func TestCreateTaskRejectsBlankTitleWithoutRequest(t *testing.T) {
	server := newFakeServer(t, taskapitest.Config{})
	client := newTestClient(t, server.URL, "")

	_, err := client.CreateTask(context.Background(), task.NewCreateRequest("   ", "x", nil))
	if !errors.Is(err, task.ErrEmptyTitle) {
		t.Fatalf("error = %v, want ErrEmptyTitle", err)
	}
	if len(server.Requests()) != 0 {
		t.Fatal("invalid create must not reach the server")
	}
}

func TestUpdateTaskSendsSparseBody(t *testing.T) {
	server := newFakeServer(t, taskapitest.Config{})
	due := "2024-03-09"
	server.AddTasks(task.Task{ID: 5, Title: "t", Status: task.StatusTodo, IsActive: true, DueDate: &due})
	client := newTestClient(t, server.URL, "")

	updated, err := client.UpdateTask(context.Background(), 5, task.ClearDueDateUpdate())
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if updated.DueDate != nil {
		t.Fatalf("due date not cleared: %v", *updated.DueDate)
	}

	body := server.RequestsMatching(http.MethodPut, "/tasks/5")[0].Body
	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("decoding body %s: %v", body, err)
	}
	if len(decoded) != 1 {
		t.Fatalf("body %s has extra keys", body)
	}
	if value, present := decoded["due_date"]; !present || value != nil {
		t.Fatalf("body %s must carry an explicit null due_date", body)
	}
}

func TestUpdateTaskNotFound(t *testing.T) {
	server := newFakeServer(t, taskapitest.Config{})
	client := newTestClient(t, server.URL, "")

	_, err := client.UpdateTask(context.Background(), 99, task.StatusUpdate(task.StatusDone))
	var apiErr *taskapi.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusNotFound || apiErr.Message != "Task not found" {
		t.Fatalf("APIError = %+v", apiErr)
	}
	if apiErr.Method != http.MethodPut || apiErr.Path != "/tasks/99" || apiErr.RequestID == "" {
		t.Fatalf("APIError request fields = %+v", apiErr)
	}
}

func TestUpdateTaskValidatesPayload(t *testing.T) {
	server := newFakeServer(t, taskapitest.Config{})
	client := newTestClient(t, server.URL, "")

	if _, err := client.UpdateTask(context.Background(), 1, task.UpdatePayload{}); !errors.Is(err, task.ErrEmptyPayload) {
		t.Fatalf("empty payload error = %v", err)
	}
	if _, err := client.UpdateTask(context.Background(), 1, task.ProgressUpdate(150)); err == nil {
		t.Fatal("expected error for progress 150")
	}
	if len(server.Requests()) != 0 {
		t.Fatal("invalid payloads must not reach the server")
	}
}

func TestDeleteTaskAcceptsNoContentAndBody(t *testing.T) {
	for _, withBody := range []bool{false, true} {
		server := newFakeServer(t, taskapitest.Config{DeleteWithBody: withBody})
		server.AddTasks(task.Task{ID: 8, Title: "gone"})
		client := newTestClient(t, server.URL, "")

		if err := client.DeleteTask(context.Background(), 8); err != nil {
			t.Fatalf("DeleteTask (body=%v): %v", withBody, err)
		}
		if server.TaskCount() != 0 {
			t.Fatalf("task not deleted (body=%v)", withBody)
		}
	}
}

func TestErrorMessageShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"detail string", `{"detail":"Forbidden"}`, "Forbidden"},
		{"detail list", `{"detail":[{"msg":"field required"},{"msg":"bad status"}]}`, "field required; bad status"},
		{"error key", `{"error":"conflict"}`, "conflict"},
		{"message key", `{"message":"slow down"}`, "slow down"},
		{"plain text", `upstream exploded`, "upstream exploded"},
		{"empty", ``, ""},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
				writer.WriteHeader(http.StatusBadGateway)
				writer.Write([]byte(test.body))
			}))
			defer server.Close()
			client := newTestClient(t, server.URL, "")

			err := client.DeleteTask(context.Background(), 1)
			var apiErr *taskapi.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error = %v, want *APIError", err)
			}
			if apiErr.Message != test.want {
				t.Errorf("Message = %q, want %q", apiErr.Message, test.want)
			}
			if taskapi.StatusCode(err) != http.StatusBadGateway {
				t.Errorf("StatusCode = %d", taskapi.StatusCode(err))
			}
		})
	}
}

func TestTransportErrorIsNotAPIError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	baseURL := server.URL
	server.Close()

	client := newTestClient(t, baseURL, "")
	_, err := client.ListProjects(context.Background())
	if err == nil {
		t.Fatal("expected transport error")
	}
	if taskapi.StatusCode(err) != 0 {
		t.Fatalf("transport error classified as HTTP %d", taskapi.StatusCode(err))
	}
}

func TestClosedTokenBufferFailsBeforeSending(t *testing.T) {
	server := newFakeServer(t, taskapitest.Config{})
	buffer, err := secret.NewFromBytes([]byte("tok"))
	if err != nil {
		t.Fatalf("NewFromBytes: %v", err)
	}
	buffer.Close()

	client, err := taskapi.NewClient(taskapi.Config{BaseURL: server.URL, TokenSource: taskapi.TokenSource(buffer)})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.ListProjects(context.Background()); err == nil {
		t.Fatal("expected token error")
	}
	if len(server.Requests()) != 0 {
		t.Fatal("request sent without a token")
	}
}
