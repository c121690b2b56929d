// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package taskapitest

import (
	"sync"
	"time"
)

// Barrier releases waiters once a fixed number of parties have
// arrived. A party that waits longer than the timeout gives up, which
// shows the requests it was meant to overlap with were serialized.
type Barrier struct {
	parties int
	timeout time.Duration

	mutex    sync.Mutex
	arrived  int
	released chan struct{}
	timedOut bool
}

// NewBarrier returns a barrier for parties arrivals.
func NewBarrier(parties int, timeout time.Duration) *Barrier {
	return &Barrier{parties: parties, timeout: timeout, released: make(chan struct{})}
}

// Arrive registers one party and blocks until all parties have arrived
// or the timeout elapses. Returns false on timeout. Arrivals beyond
// parties return immediately.
func (b *Barrier) Arrive() bool {
	b.mutex.Lock()
	b.arrived++
	if b.arrived == b.parties {
		close(b.released)
	}
	b.mutex.Unlock()

	timer := time.NewTimer(b.timeout)
	defer timer.Stop()
	select {
	case <-b.released:
		return true
	case <-timer.C:
		b.mutex.Lock()
		b.timedOut = true
		b.mutex.Unlock()
		return false
	}
}

// Released reports whether every party arrived.
func (b *Barrier) Released() bool {
	select {
	case <-b.released:
		return true
	default:
		return false
	}
}

// Arrived returns how many parties have arrived.
func (b *Barrier) Arrived() int {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.arrived
}

// TimedOut reports whether any party gave up waiting.
func (b *Barrier) TimedOut() bool {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.timedOut
}
