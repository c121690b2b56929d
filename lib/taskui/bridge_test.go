// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package taskui

import (
	"context"
	"log/slog"
	"testing"

	"github.com/bureau-foundation/taskboard/lib/taskset"
)

func TestBridgeWithoutProgram(t *testing.T) {
	bridge := NewBridge()

	// Neither call may block or panic before a program is attached.
	bridge.Changed()
	bridge.Notify(taskset.Notification{Kind: taskset.KindSuccess, Message: "ok"})

	if bridge.Confirm(context.Background(), taskset.Confirmation{Prompt: "Delete?"}) {
		t.Error("Confirm without a program should refuse")
	}
}

func TestLogHandlerSummary(t *testing.T) {
	handler := NewLogHandler(slog.LevelWarn)
	derived := handler.WithGroup("sync").WithAttrs([]slog.Attr{slog.String("list", "tasks")}).(*LogHandler)

	record := slog.NewRecord(boardNow, slog.LevelWarn, "fetch failed", 0)
	record.AddAttrs(slog.Int("status", 502))

	got := derived.summarize(record)
	want := "fetch failed (sync.list=tasks, sync.status=502)"
	if got != want {
		t.Errorf("summarize = %q, want %q", got, want)
	}
	if derived.program != handler.program {
		t.Error("derived handlers should share the program pointer")
	}
}

func TestLogHandlerLevel(t *testing.T) {
	level := &slog.LevelVar{}
	level.Set(slog.LevelWarn)
	handler := NewLogHandler(level)

	if handler.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be filtered at warn")
	}
	if !handler.Enabled(context.Background(), slog.LevelError) {
		t.Error("error should pass at warn")
	}

	level.Set(slog.LevelDebug)
	if !handler.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("level changes should apply to an existing handler")
	}

	// No program attached: records are dropped without error.
	if err := handler.Handle(context.Background(), slog.NewRecord(boardNow, slog.LevelError, "dropped", 0)); err != nil {
		t.Errorf("Handle: %v", err)
	}
}
