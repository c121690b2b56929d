// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package taskui

import (
	"context"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/bureau-foundation/taskboard/lib/taskset"
)

// stateChangedMsg tells the model the engine's lists, filter, or
// selection changed.
type stateChangedMsg struct{}

// notificationMsg carries an engine notification to the status bar.
type notificationMsg struct {
	notification taskset.Notification
}

// confirmRequestMsg asks the user to approve an engine action. The
// answer goes to reply, which is buffered so that an answer to an
// abandoned request never blocks.
type confirmRequestMsg struct {
	confirmation taskset.Confirmation
	reply        chan<- bool
}

// Bridge connects a [taskset.Engine] to a running bubbletea program.
// Pass it as the engine's Notifier and Confirmer and its Changed
// method as OnChange. Until SetProgram is called, notifications and
// changes are dropped and confirmations are refused.
type Bridge struct {
	program atomic.Pointer[tea.Program]
}

// NewBridge returns a Bridge with no program attached.
func NewBridge() *Bridge {
	return &Bridge{}
}

// SetProgram attaches the program that receives engine messages. Safe
// to call from any goroutine.
func (bridge *Bridge) SetProgram(program *tea.Program) {
	bridge.program.Store(program)
}

// Changed is the engine's OnChange callback. The engine calls it from
// inside model updates as well as from commands, so the message is
// sent from a new goroutine to keep the event loop from waiting on
// itself.
func (bridge *Bridge) Changed() {
	program := bridge.program.Load()
	if program == nil {
		return
	}
	go program.Send(stateChangedMsg{})
}

// Notify implements [taskset.Notifier]. The engine notifies only from
// operations, which the model runs as commands off the event loop.
func (bridge *Bridge) Notify(notification taskset.Notification) {
	program := bridge.program.Load()
	if program == nil {
		return
	}
	program.Send(notificationMsg{notification: notification})
}

// Confirm implements [taskset.Confirmer]. It blocks until the user
// answers in the board or ctx is done.
func (bridge *Bridge) Confirm(ctx context.Context, confirmation taskset.Confirmation) bool {
	program := bridge.program.Load()
	if program == nil {
		return false
	}
	reply := make(chan bool, 1)
	program.Send(confirmRequestMsg{confirmation: confirmation, reply: reply})
	select {
	case approved := <-reply:
		return approved
	case <-ctx.Done():
		return false
	}
}
