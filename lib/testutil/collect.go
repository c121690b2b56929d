// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"slices"
	"sync"
	"time"
)

// Collector records values added from any goroutine. The zero value is
// ready to use.
type Collector[T any] struct {
	mutex   sync.Mutex
	items   []T
	changed chan struct{}
}

// Add records value.
func (c *Collector[T]) Add(value T) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.items = append(c.items, value)
	if c.changed != nil {
		close(c.changed)
		c.changed = nil
	}
}

// Items returns a copy of everything recorded, in order.
func (c *Collector[T]) Items() []T {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return slices.Clone(c.items)
}

// Len returns how many values have been recorded.
func (c *Collector[T]) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.items)
}

// WaitFor blocks until at least count values are recorded and returns
// them, or fails the test after timeout.
func (c *Collector[T]) WaitFor(t TB, count int, timeout time.Duration) []T {
	t.Helper()
	deadline := time.After(timeout)
	for {
		c.mutex.Lock()
		if len(c.items) >= count {
			items := slices.Clone(c.items)
			c.mutex.Unlock()
			return items
		}
		if c.changed == nil {
			c.changed = make(chan struct{})
		}
		changed := c.changed
		have := len(c.items)
		c.mutex.Unlock()

		select {
		case <-changed:
		case <-deadline:
			t.Fatalf("timed out after %v waiting for %d values (have %d)", timeout, count, have)
			return nil
		}
	}
}
