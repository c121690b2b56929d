// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package taskapitest provides an in-memory task service for tests.
//
// [Server] implements the task API routes on an httptest.Server with
// gorilla/mux, keeps tasks in memory, records every request, and lets
// tests inject failures, hold requests at a barrier to prove they
// overlap, and intercept list calls to reorder responses.
package taskapitest

import (
	"bytes"
	"cmp"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/bureau-foundation/taskboard/lib/schema/task"
)

// Request is one recorded request.
type Request struct {
	Method        string
	Path          string
	Query         url.Values
	Body          []byte
	Authorization string
	RequestID     string
	UserAgent     string
}

// Config configures a Server.
type Config struct {
	// User is the owner assigned to created tasks and matched by
	// mine=true. Defaults to "alice".
	User string

	// Token, when set, is the bearer token every request must carry;
	// anything else gets 401.
	Token string

	// DeleteWithBody makes DELETE answer 200 with a JSON body instead
	// of 204.
	DeleteWithBody bool

	// Now stamps created_at and updated_at. Defaults to time.Now.
	Now func() time.Time
}

// ListHook runs before a GET /tasks response is written. call counts
// list requests from 1. A hook may block to delay the response.
type ListHook func(call int, query task.Query)

// Server is an in-memory task service.
type Server struct {
	*httptest.Server

	config Config

	mutex     sync.Mutex
	tasks     map[int64]task.Task
	projects  []task.Project
	nextID    int64
	requests  []Request
	listCalls int
	listHook  ListHook
	failures  map[string]failure
	barrier   *Barrier
}

type failure struct {
	status  int
	message string
}

// NewServer starts a Server. Close it when done.
func NewServer(config Config) *Server {
	if config.User == "" {
		config.User = "alice"
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	server := &Server{
		config:   config,
		tasks:    make(map[int64]task.Task),
		nextID:   1,
		failures: make(map[string]failure),
	}

	router := mux.NewRouter()
	router.Use(server.record, server.authenticate)
	router.HandleFunc("/tasks", server.listTasks).Methods(http.MethodGet)
	router.HandleFunc("/tasks", server.createTask).Methods(http.MethodPost)
	router.HandleFunc("/tasks/{id:[0-9]+}", server.updateTask).Methods(http.MethodPut)
	router.HandleFunc("/tasks/{id:[0-9]+}", server.deleteTask).Methods(http.MethodDelete)
	router.HandleFunc("/projects", server.listProjects).Methods(http.MethodGet)

	server.Server = httptest.NewServer(router)
	return server
}

// AddTasks stores tasks as given. IDs must be set; the next created ID
// continues after the largest.
func (s *Server) AddTasks(tasks ...task.Task) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for _, item := range tasks {
		s.tasks[item.ID] = item
		if item.ID >= s.nextID {
			s.nextID = item.ID + 1
		}
	}
}

// AddProjects stores projects.
func (s *Server) AddProjects(projects ...task.Project) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.projects = append(s.projects, projects...)
}

// Task returns the stored task with id.
func (s *Server) Task(id int64) (task.Task, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	item, ok := s.tasks[id]
	return item, ok
}

// TaskCount returns the number of stored tasks.
func (s *Server) TaskCount() int {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return len(s.tasks)
}

// Fail makes every request matching method and path answer status with
// message until [Server.ClearFailures]. path is the literal request
// path ("/tasks/3", "/projects").
func (s *Server) Fail(method, path string, status int, message string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.failures[method+" "+path] = failure{status: status, message: message}
}

// ClearFailures removes every injected failure.
func (s *Server) ClearFailures() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	clear(s.failures)
}

// SetListHook installs hook for subsequent GET /tasks requests. Nil
// removes it.
func (s *Server) SetListHook(hook ListHook) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.listHook = hook
}

// HoldUpdates installs a barrier that holds each PUT until parties PUTs
// have arrived. The returned Barrier reports whether that happened.
func (s *Server) HoldUpdates(parties int, timeout time.Duration) *Barrier {
	barrier := NewBarrier(parties, timeout)
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.barrier = barrier
	return barrier
}

// Requests returns every request received so far, in arrival order.
func (s *Server) Requests() []Request {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return slices.Clone(s.requests)
}

// RequestsMatching returns the recorded requests with the given method
// whose path starts with pathPrefix.
func (s *Server) RequestsMatching(method, pathPrefix string) []Request {
	var matching []Request
	for _, request := range s.Requests() {
		if request.Method == method && strings.HasPrefix(request.Path, pathPrefix) {
			matching = append(matching, request)
		}
	}
	return matching
}

// ResetRequests discards the request log.
func (s *Server) ResetRequests() {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.requests = nil
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		body, err := io.ReadAll(request.Body)
		if err != nil {
			writeError(writer, http.StatusBadRequest, "unreadable body")
			return
		}
		request.Body = io.NopCloser(bytes.NewReader(body))

		s.mutex.Lock()
		s.requests = append(s.requests, Request{
			Method:        request.Method,
			Path:          request.URL.Path,
			Query:         request.URL.Query(),
			Body:          body,
			Authorization: request.Header.Get("Authorization"),
			RequestID:     request.Header.Get("X-Request-ID"),
			UserAgent:     request.UserAgent(),
		})
		injected, failing := s.failures[request.Method+" "+request.URL.Path]
		s.mutex.Unlock()

		if failing {
			writeError(writer, injected.status, injected.message)
			return
		}
		next.ServeHTTP(writer, request)
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if s.config.Token != "" && request.Header.Get("Authorization") != "Bearer "+s.config.Token {
			writeError(writer, http.StatusUnauthorized, "Not authenticated")
			return
		}
		next.ServeHTTP(writer, request)
	})
}

func (s *Server) listTasks(writer http.ResponseWriter, request *http.Request) {
	query := task.ParseQuery(request.URL.Query())

	s.mutex.Lock()
	s.listCalls++
	call := s.listCalls
	hook := s.listHook
	s.mutex.Unlock()

	if hook != nil {
		hook(call, query)
	}

	s.mutex.Lock()
	items := make([]task.Task, 0, len(s.tasks))
	for _, item := range s.tasks {
		if query.ActiveOnly && !item.IsActive {
			continue
		}
		if query.Mine && item.Owner != s.config.User {
			continue
		}
		if query.Status != "" && item.Status != query.Status {
			continue
		}
		if query.ProjectID != nil && (item.ProjectID == nil || *item.ProjectID != *query.ProjectID) {
			continue
		}
		items = append(items, item)
	}
	s.mutex.Unlock()

	slices.SortFunc(items, func(a, b task.Task) int { return cmp.Compare(a.ID, b.ID) })
	writeJSON(writer, http.StatusOK, task.ListResponse[task.Task]{Items: items})
}

func (s *Server) listProjects(writer http.ResponseWriter, _ *http.Request) {
	s.mutex.Lock()
	projects := slices.Clone(s.projects)
	s.mutex.Unlock()
	if projects == nil {
		projects = []task.Project{}
	}
	writeJSON(writer, http.StatusOK, task.ListResponse[task.Project]{Items: projects})
}

func (s *Server) createTask(writer http.ResponseWriter, request *http.Request) {
	var body task.CreateRequest
	if err := json.NewDecoder(request.Body).Decode(&body); err != nil {
		writeError(writer, http.StatusUnprocessableEntity, "invalid body")
		return
	}
	if err := body.Validate(); err != nil {
		writeError(writer, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.mutex.Lock()
	now := s.config.Now().UTC().Format(time.RFC3339)
	created := task.Task{
		ID:          s.nextID,
		Owner:       s.config.User,
		Title:       body.Title,
		Description: body.Description,
		Status:      task.StatusTodo,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.nextID++
	if body.ProjectID != nil {
		created = s.assignProjectLocked(created, *body.ProjectID)
	}
	s.tasks[created.ID] = created
	s.mutex.Unlock()

	writeJSON(writer, http.StatusCreated, created)
}

func (s *Server) updateTask(writer http.ResponseWriter, request *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(request)["id"], 10, 64)

	var payload task.UpdatePayload
	if err := json.NewDecoder(request.Body).Decode(&payload); err != nil {
		writeError(writer, http.StatusUnprocessableEntity, "invalid body")
		return
	}
	if err := payload.Validate(); err != nil {
		writeError(writer, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.mutex.Lock()
	barrier := s.barrier
	s.mutex.Unlock()
	if barrier != nil && !barrier.Arrive() {
		writeError(writer, http.StatusGatewayTimeout, "barrier timed out")
		return
	}

	s.mutex.Lock()
	current, ok := s.tasks[id]
	if !ok {
		s.mutex.Unlock()
		writeError(writer, http.StatusNotFound, "Task not found")
		return
	}
	updated := current.Apply(payload)
	if payload.ProjectID != nil {
		updated = s.assignProjectLocked(updated, *payload.ProjectID)
	}
	updated.UpdatedAt = s.config.Now().UTC().Format(time.RFC3339)
	s.tasks[id] = updated
	s.mutex.Unlock()

	writeJSON(writer, http.StatusOK, updated)
}

func (s *Server) deleteTask(writer http.ResponseWriter, request *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(request)["id"], 10, 64)

	s.mutex.Lock()
	_, ok := s.tasks[id]
	delete(s.tasks, id)
	s.mutex.Unlock()

	if !ok {
		writeError(writer, http.StatusNotFound, "Task not found")
		return
	}
	if s.config.DeleteWithBody {
		writeJSON(writer, http.StatusOK, map[string]any{"deleted": id})
		return
	}
	writer.WriteHeader(http.StatusNoContent)
}

// assignProjectLocked sets the project ID and name. Caller holds
// s.mutex.
func (s *Server) assignProjectLocked(item task.Task, projectID int64) task.Task {
	id := projectID
	item.ProjectID = &id
	item.ProjectName = nil
	for _, project := range s.projects {
		if project.ID == projectID {
			name := project.Name
			item.ProjectName = &name
			break
		}
	}
	return item
}

func writeJSON(writer http.ResponseWriter, status int, value any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	// A write error means the client went away; nothing to report to.
	_ = json.NewEncoder(writer).Encode(value)
}

func writeError(writer http.ResponseWriter, status int, message string) {
	writeJSON(writer, status, map[string]string{"detail": message})
}
