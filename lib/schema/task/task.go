// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package task

import (
	"net/url"
	"strconv"
	"strings"
)

// Status is the lifecycle state of a task. The server imposes no
// workflow between statuses and neither does this package: any status
// may follow any other.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
	StatusBlocked    Status = "blocked"
)

// Statuses lists every task status in display order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusDone, StatusBlocked}

// IsValid reports whether s is one of the four known statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone, StatusBlocked:
		return true
	}
	return false
}

// ParseStatus converts user input ("done", "In Progress", "in-progress")
// to a Status. Returns false for anything that does not name a known
// status.
func ParseStatus(input string) (Status, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)
	status := Status(normalized)
	return status, status.IsValid()
}

// StatusLabel returns the human-readable label for a status. Unknown
// values are returned unchanged so that a newer server's statuses
// still render.
func StatusLabel(status Status) string {
	switch status {
	case StatusTodo:
		return "To do"
	case StatusInProgress:
		return "In progress"
	case StatusDone:
		return "Done"
	case StatusBlocked:
		return "Blocked"
	}
	return string(status)
}

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	ProjectPlanned ProjectStatus = "planned"
	ProjectActive  ProjectStatus = "active"
	ProjectBlocked ProjectStatus = "blocked"
	ProjectDone    ProjectStatus = "done"
)

// Task is a single work item as returned by the task API.
type Task struct {
	// ID is assigned by the server and never changes.
	ID int64 `json:"id"`

	// Owner is the username of the task's owner.
	Owner string `json:"owner"`

	Title       string `json:"title"`
	Description string `json:"description"`

	Status Status `json:"status"`

	// Progress is a percentage, 0-100. It is not tied to Status: a
	// "done" task may report 40 and a "todo" task 100.
	Progress int `json:"progress"`

	// IsActive is false for archived tasks. Archiving is a reversible
	// soft delete, distinct from the hard delete endpoint.
	IsActive bool `json:"is_active"`

	// ProjectID and ProjectName reference the owning project, if any.
	// ProjectName is denormalized by the server for display.
	ProjectID   *int64  `json:"project_id"`
	ProjectName *string `json:"project_name"`

	// DueDate is a calendar date in YYYY-MM-DD form with no time
	// component, or nil when the task has no due date.
	DueDate *string `json:"due_date"`

	// OriginStandupID references the standup entry this task was
	// converted from. Informational; never written by this client.
	OriginStandupID *int64 `json:"origin_standup_id"`

	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// ProjectLabel returns the task's project name, or "—" when the task
// belongs to no project.
func ProjectLabel(task Task) string {
	if task.ProjectName == nil || *task.ProjectName == "" {
		return "—"
	}
	return *task.ProjectName
}

// SearchText returns the lower-cased concatenation of the fields that
// free-text search matches against: title, description, owner, and
// project name.
func (t Task) SearchText() string {
	var builder strings.Builder
	builder.WriteString(t.Title)
	builder.WriteByte(' ')
	builder.WriteString(t.Description)
	builder.WriteByte(' ')
	builder.WriteString(t.Owner)
	if t.ProjectName != nil {
		builder.WriteByte(' ')
		builder.WriteString(*t.ProjectName)
	}
	return strings.ToLower(builder.String())
}

// Apply returns a copy of t with every field present in payload
// overwritten. Used by in-memory implementations of the task API; the
// engine itself never patches tasks locally.
func (t Task) Apply(payload UpdatePayload) Task {
	if payload.Title != nil {
		t.Title = *payload.Title
	}
	if payload.Description != nil {
		t.Description = *payload.Description
	}
	if payload.Status != nil {
		t.Status = *payload.Status
	}
	if payload.Progress != nil {
		t.Progress = *payload.Progress
	}
	if payload.IsActive != nil {
		t.IsActive = *payload.IsActive
	}
	switch {
	case payload.ClearProject:
		t.ProjectID = nil
		t.ProjectName = nil
	case payload.ProjectID != nil:
		projectID := *payload.ProjectID
		t.ProjectID = &projectID
	}
	switch {
	case payload.ClearDueDate:
		t.DueDate = nil
	case payload.DueDate != nil:
		dueDate := *payload.DueDate
		t.DueDate = &dueDate
	}
	return t
}

// Project groups tasks. Read-only from the client's perspective: the
// engine uses projects only to label tasks and populate pickers.
type Project struct {
	ID          int64         `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Owner       string        `json:"owner"`
	Status      ProjectStatus `json:"status"`
	CreatedAt   string        `json:"created_at"`
}

// Query carries the server-side filter dimensions of a task list
// request. Free-text search is deliberately absent: it is applied
// client-side to the fetched list.
type Query struct {
	// ActiveOnly excludes archived tasks.
	ActiveOnly bool

	// Mine restricts the list to tasks owned by the caller.
	Mine bool

	// Status restricts to a single status. Empty means any.
	Status Status

	// ProjectID restricts to one project. Nil means any.
	ProjectID *int64
}

// Values encodes the query as URL parameters for GET /tasks. The two
// booleans are always sent; status and project_id only when set.
func (q Query) Values() url.Values {
	values := url.Values{}
	values.Set("active_only", strconv.FormatBool(q.ActiveOnly))
	values.Set("mine", strconv.FormatBool(q.Mine))
	if q.Status != "" {
		values.Set("status", string(q.Status))
	}
	if q.ProjectID != nil {
		values.Set("project_id", strconv.FormatInt(*q.ProjectID, 10))
	}
	return values
}

// ParseQuery is the inverse of [Query.Values]. Malformed values are
// treated as absent.
func ParseQuery(values url.Values) Query {
	query := Query{
		ActiveOnly: values.Get("active_only") == "true",
		Mine:       values.Get("mine") == "true",
	}
	if status, ok := ParseStatus(values.Get("status")); ok {
		query.Status = status
	}
	if raw := values.Get("project_id"); raw != "" {
		if projectID, err := strconv.ParseInt(raw, 10, 64); err == nil {
			query.ProjectID = &projectID
		}
	}
	return query
}

// ListResponse is the envelope of GET /tasks and GET /projects.
type ListResponse[T any] struct {
	Items []T `json:"items"`
}
