// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestCollectorWaitFor(t *testing.T) {
	var collector Collector[int]
	var waitGroup sync.WaitGroup
	for value := range 5 {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			collector.Add(value)
		}()
	}

	items := collector.WaitFor(t, 5, 5*time.Second)
	if len(items) != 5 {
		t.Fatalf("WaitFor returned %d items, want 5", len(items))
	}
	waitGroup.Wait()
	if collector.Len() != 5 {
		t.Fatalf("Len = %d, want 5", collector.Len())
	}
}

func TestRequireHelpers(t *testing.T) {
	ch := make(chan string, 1)
	ch <- "hello"
	if got := RequireReceive(t, ch, time.Second, "receive"); got != "hello" {
		t.Fatalf("received %q", got)
	}
	RequireNoReceive(t, ch, 10*time.Millisecond, "nothing pending")
}

type fatalRecorder struct {
	message string
}

func (r *fatalRecorder) Helper() {}

func (r *fatalRecorder) Fatalf(format string, args ...any) {
	r.message = format
	panic(r)
}

func TestRequireReceiveTimesOut(t *testing.T) {
	recorder := &fatalRecorder{}
	func() {
		defer func() { recover() }()
		RequireReceive(recorder, make(chan int), time.Millisecond, "waiting for %s", "nothing")
	}()
	if !strings.Contains(recorder.message, "timed out") {
		t.Fatalf("Fatalf message = %q", recorder.message)
	}
}
