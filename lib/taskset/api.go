// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package taskset

import (
	"context"

	"github.com/bureau-foundation/taskboard/lib/schema/task"
)

// API is the remote task service. *taskapi.Client implements it.
type API interface {
	ListTasks(ctx context.Context, query task.Query) ([]task.Task, error)
	ListProjects(ctx context.Context) ([]task.Project, error)
	CreateTask(ctx context.Context, request task.CreateRequest) (task.Task, error)
	UpdateTask(ctx context.Context, id int64, payload task.UpdatePayload) (task.Task, error)
	DeleteTask(ctx context.Context, id int64) error
}
