// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package taskapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// APIError is a non-2xx response from the task service.
type APIError struct {
	// Method and Path identify the failed request.
	Method string
	Path   string

	// StatusCode is the HTTP status of the response.
	StatusCode int

	// Message is the server's description of the failure, or the raw
	// body when the server did not return a recognized error shape.
	Message string

	// RequestID is the X-Request-ID the request was sent with.
	RequestID string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("taskapi: %s %s: HTTP %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("taskapi: %s %s: HTTP %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// IsStatus reports whether err is an *APIError with the given status
// code.
func IsStatus(err error, statusCode int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == statusCode
}

// StatusCode returns the HTTP status of an *APIError in err's chain, or
// 0 when err did not come from a server response.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// errorMessage extracts a human-readable message from an error body.
// Recognized shapes: {"detail": "..."}, {"detail": [{"msg": "..."}]},
// {"error": "..."}, {"message": "..."}. Anything else is returned as
// the raw text.
func errorMessage(body string) string {
	var shape struct {
		Detail  json.RawMessage `json:"detail"`
		Error   string          `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal([]byte(body), &shape); err != nil {
		return body
	}

	if len(shape.Detail) > 0 {
		var detail string
		if json.Unmarshal(shape.Detail, &detail) == nil && detail != "" {
			return detail
		}
		var items []struct {
			Message string `json:"msg"`
		}
		if json.Unmarshal(shape.Detail, &items) == nil {
			messages := make([]string, 0, len(items))
			for _, item := range items {
				if item.Message != "" {
					messages = append(messages, item.Message)
				}
			}
			if len(messages) > 0 {
				return strings.Join(messages, "; ")
			}
		}
	}
	if shape.Error != "" {
		return shape.Error
	}
	if shape.Message != "" {
		return shape.Message
	}
	return body
}
