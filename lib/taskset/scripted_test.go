// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package taskset

import (
	"context"
	"errors"
	"sync"

	"github.com/bureau-foundation/taskboard/lib/schema/task"
)

// scriptedAPI hands every list call to the test, which decides when
// and how it resolves. Mutations are not supported.
type scriptedAPI struct {
	taskCalls    chan *listCall[task.Task]
	projectCalls chan *listCall[task.Project]
}

type listCall[T any] struct {
	query task.Query
	reply chan listReply[T]
}

type listReply[T any] struct {
	items []T
	err   error
}

func newScriptedAPI() *scriptedAPI {
	return &scriptedAPI{
		taskCalls:    make(chan *listCall[task.Task]),
		projectCalls: make(chan *listCall[task.Project]),
	}
}

func (a *scriptedAPI) ListTasks(ctx context.Context, query task.Query) ([]task.Task, error) {
	call := &listCall[task.Task]{query: query, reply: make(chan listReply[task.Task], 1)}
	select {
	case a.taskCalls <- call:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	reply := <-call.reply
	return reply.items, reply.err
}

func (a *scriptedAPI) ListProjects(ctx context.Context) ([]task.Project, error) {
	call := &listCall[task.Project]{reply: make(chan listReply[task.Project], 1)}
	select {
	case a.projectCalls <- call:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	reply := <-call.reply
	return reply.items, reply.err
}

var errNotScripted = errors.New("scriptedAPI: mutations are not scripted")

func (a *scriptedAPI) CreateTask(context.Context, task.CreateRequest) (task.Task, error) {
	return task.Task{}, errNotScripted
}

func (a *scriptedAPI) UpdateTask(context.Context, int64, task.UpdatePayload) (task.Task, error) {
	return task.Task{}, errNotScripted
}

func (a *scriptedAPI) DeleteTask(context.Context, int64) error {
	return errNotScripted
}

// countingAPI wraps an API and tracks the peak number of concurrent
// UpdateTask and DeleteTask calls.
type countingAPI struct {
	API

	mutex    sync.Mutex
	inFlight int
	peak     int
}

func (a *countingAPI) enter() {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	a.inFlight++
	if a.inFlight > a.peak {
		a.peak = a.inFlight
	}
}

func (a *countingAPI) leave() {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	a.inFlight--
}

func (a *countingAPI) Peak() int {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	return a.peak
}

func (a *countingAPI) UpdateTask(ctx context.Context, id int64, payload task.UpdatePayload) (task.Task, error) {
	a.enter()
	defer a.leave()
	return a.API.UpdateTask(ctx, id, payload)
}

func (a *countingAPI) DeleteTask(ctx context.Context, id int64) error {
	a.enter()
	defer a.leave()
	return a.API.DeleteTask(ctx, id)
}
