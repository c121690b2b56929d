// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil provides HTTP response helpers and network error
// classification for taskboard's API client.
//
// Response reads are bounded: a JSON API response larger than
// MaxResponseSize is rejected rather than truncated, and error bodies
// are cut to MaxErrorBodySize so they fit in a diagnostic message.
package netutil

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// MaxResponseSize bounds JSON response body reads. A task list is a
// few hundred bytes per task, so this allows lists far larger than any
// real board.
const MaxResponseSize int64 = 16 << 20

// MaxErrorBodySize bounds how much of an error response body is kept
// for diagnostics.
const MaxErrorBodySize = 4 << 10

// ReadResponse reads a response body. A body longer than
// MaxResponseSize is an error.
func ReadResponse(body io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if int64(len(data)) > MaxResponseSize {
		return nil, fmt.Errorf("response body exceeds %d bytes", MaxResponseSize)
	}
	return data, nil
}

// DecodeResponse reads a bounded response body and JSON-decodes it
// into v.
func DecodeResponse(body io.Reader, v any) error {
	data, err := ReadResponse(body)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding response body: %w", err)
	}
	return nil
}

// ErrorBody reads an error response body for use in a diagnostic
// message: whitespace-trimmed, cut to MaxErrorBodySize. Read errors are
// ignored; a partial body is still useful.
func ErrorBody(body io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(body, MaxErrorBodySize))
	return strings.TrimSpace(string(data))
}
