// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package taskset

import (
	"errors"
	"strings"
	"testing"
)

func TestBulkErrorMessage(t *testing.T) {
	errTimeout := errors.New("timeout")
	bulkErr := &BulkError{
		Action: "archive",
		Total:  6,
		Failures: []Outcome{
			{TaskID: 1, Err: errTimeout},
			{TaskID: 2, Err: errors.New("forbidden")},
			{TaskID: 3, Err: errors.New("gone")},
			{TaskID: 4, Err: errors.New("gone")},
			{TaskID: 5, Err: errors.New("gone")},
		},
	}

	message := bulkErr.Error()
	if !strings.HasPrefix(message, "bulk archive: 5 of 6 tasks failed; task 1: timeout") {
		t.Fatalf("message = %q", message)
	}
	if !strings.HasSuffix(message, "; and 2 more") {
		t.Fatalf("message = %q, want truncation", message)
	}
	if !errors.Is(bulkErr, errTimeout) {
		t.Fatal("per-task error not reachable through errors.Is")
	}
}

func TestBulkResultErr(t *testing.T) {
	if err := (BulkResult{Action: "status", Requested: []int64{1}, Succeeded: []int64{1}}).Err(); err != nil {
		t.Fatalf("Err() = %v for full success", err)
	}
	result := BulkResult{Action: "status", Requested: []int64{1, 2}, Failed: []Outcome{{TaskID: 2, Err: errors.New("x")}}}
	var bulkErr *BulkError
	if !errors.As(result.Err(), &bulkErr) || bulkErr.Total != 2 {
		t.Fatalf("Err() = %v", result.Err())
	}
}

func TestMessageHelpers(t *testing.T) {
	cases := []struct{ got, want string }{
		{pluralTasks(1), "1 task"},
		{pluralTasks(3), "3 tasks"},
		{pluralSelected(1), "1 selected task"},
		{signedDays(1), "+1 day"},
		{signedDays(-1), "-1 day"},
		{signedDays(7), "+7 days"},
		{signedDays(-3), "-3 days"},
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Errorf("got %q, want %q", tc.got, tc.want)
		}
	}
}
