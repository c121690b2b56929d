// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package taskapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/bureau-foundation/taskboard/lib/netutil"
	"github.com/bureau-foundation/taskboard/lib/schema/task"
)

// RequestIDHeader carries a per-request identifier for correlating
// client and server logs.
const RequestIDHeader = "X-Request-ID"

// Config holds configuration for creating a Client.
type Config struct {
	// BaseURL is the root of the task service (for example
	// "https://tasks.example.com/api"). Required.
	BaseURL string

	// HTTPClient is used for all requests. Nil means a client with
	// DefaultTimeout.
	HTTPClient *http.Client

	// TokenSource provides the bearer credential. Nil sends requests
	// without an Authorization header.
	TokenSource oauth2.TokenSource

	// UserAgent is sent on every request when non-empty.
	UserAgent string

	// Logger receives one debug record per request. Nil discards.
	Logger *slog.Logger
}

// DefaultTimeout bounds each request when Config.HTTPClient is nil.
const DefaultTimeout = 30 * time.Second

// Client talks to the task service.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	tokenSource oauth2.TokenSource
	userAgent   string
	logger      *slog.Logger
}

// NewClient validates config and returns a Client.
func NewClient(config Config) (*Client, error) {
	if config.BaseURL == "" {
		return nil, fmt.Errorf("taskapi: BaseURL is required")
	}
	parsed, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("taskapi: invalid BaseURL %q: %w", config.BaseURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("taskapi: BaseURL %q must be http or https", config.BaseURL)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Client{
		baseURL:     strings.TrimRight(config.BaseURL, "/"),
		httpClient:  httpClient,
		tokenSource: config.TokenSource,
		userAgent:   config.UserAgent,
		logger:      logger,
	}, nil
}

// ListTasks fetches the tasks matching query.
func (c *Client) ListTasks(ctx context.Context, query task.Query) ([]task.Task, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/tasks", query.Values(), nil)
	if err != nil {
		return nil, err
	}
	var response task.ListResponse[task.Task]
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("taskapi: decoding task list: %w", err)
	}
	if response.Items == nil {
		response.Items = []task.Task{}
	}
	return response.Items, nil
}

// ListProjects fetches every project visible to the caller.
func (c *Client) ListProjects(ctx context.Context) ([]task.Project, error) {
	body, err := c.doRequest(ctx, http.MethodGet, "/projects", nil, nil)
	if err != nil {
		return nil, err
	}
	var response task.ListResponse[task.Project]
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("taskapi: decoding project list: %w", err)
	}
	if response.Items == nil {
		response.Items = []task.Project{}
	}
	return response.Items, nil
}

// CreateTask creates a task. The request is validated before sending.
func (c *Client) CreateTask(ctx context.Context, request task.CreateRequest) (task.Task, error) {
	if err := request.Validate(); err != nil {
		return task.Task{}, err
	}
	body, err := c.doRequest(ctx, http.MethodPost, "/tasks", nil, request)
	if err != nil {
		return task.Task{}, err
	}
	var created task.Task
	if err := json.Unmarshal(body, &created); err != nil {
		return task.Task{}, fmt.Errorf("taskapi: decoding created task: %w", err)
	}
	return created, nil
}

// UpdateTask applies a partial update. The payload is validated before
// sending. When the server answers with an empty body the returned
// Task carries only the ID.
func (c *Client) UpdateTask(ctx context.Context, id int64, payload task.UpdatePayload) (task.Task, error) {
	if err := payload.Validate(); err != nil {
		return task.Task{}, err
	}
	body, err := c.doRequest(ctx, http.MethodPut, taskPath(id), nil, payload)
	if err != nil {
		return task.Task{}, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return task.Task{ID: id}, nil
	}
	var updated task.Task
	if err := json.Unmarshal(body, &updated); err != nil {
		return task.Task{}, fmt.Errorf("taskapi: decoding updated task %d: %w", id, err)
	}
	return updated, nil
}

// DeleteTask permanently deletes a task. 204 No Content and any other
// 2xx response, with or without a body, are success.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	_, err := c.doRequest(ctx, http.MethodDelete, taskPath(id), nil, nil)
	return err
}

func taskPath(id int64) string {
	return "/tasks/" + strconv.FormatInt(id, 10)
}

// doRequest performs one JSON request and returns the response body of
// a 2xx response. Any other status becomes an *APIError.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, requestBody any) ([]byte, error) {
	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("taskapi: encoding %s %s body: %w", method, path, err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("taskapi: creating request: %w", err)
	}
	request.Header.Set("Accept", "application/json")
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		request.Header.Set("User-Agent", c.userAgent)
	}
	requestID := uuid.NewString()
	request.Header.Set(RequestIDHeader, requestID)

	if c.tokenSource != nil {
		token, err := c.tokenSource.Token()
		if err != nil {
			return nil, fmt.Errorf("taskapi: obtaining bearer token: %w", err)
		}
		token.SetAuthHeader(request)
	}

	start := time.Now()
	response, err := c.httpClient.Do(request)
	if err != nil {
		c.logger.Debug("task api request failed",
			"method", method, "path", path, "request_id", requestID, "error", err)
		return nil, fmt.Errorf("taskapi: %s %s: %w", method, path, err)
	}
	defer response.Body.Close()

	c.logger.Debug("task api request",
		"method", method,
		"path", path,
		"status", response.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start),
	)

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, &APIError{
			Method:     method,
			Path:       path,
			StatusCode: response.StatusCode,
			Message:    errorMessage(netutil.ErrorBody(response.Body)),
			RequestID:  requestID,
		}
	}

	responseBody, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return nil, fmt.Errorf("taskapi: %s %s: %w", method, path, err)
	}
	return responseBody, nil
}
