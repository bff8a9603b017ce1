package orchestrator

import (
	tea "charm.land/bubbletea/v2"
)

// Action is the closed set of events the loop can hand to its consumer.
// Every variant is declared in this file; consumers switch exhaustively.
type Action interface{ action() }

// TermOutput carries bytes the child process wrote. Consecutive chunks may
// be coalesced into one action.
type TermOutput struct {
	Data []byte
}

// TermExited reports that the child process is gone. Err is nil on a clean
// exit. It is delivered exactly once, followed by Shutdown.
type TermExited struct {
	Err error
}

// Input is a key press from the user.
type Input struct {
	Key tea.KeyPressMsg
}

// Paste is a bracketed paste from the user.
type Paste struct {
	Text string
}

// MouseInput is a mouse event from the user.
type MouseInput struct {
	Mouse tea.MouseMsg
}

// Tick is the periodic timer. Pending ticks coalesce; at most one is ever
// queued.
type Tick struct {
	At int64 // unix nanos when the tick fired
}

// External is an event injected by another goroutine via EnqueueExternal.
// Source names the producer for logging and routing.
type External struct {
	Source  string
	Payload any
}

// Error wraps a failure from one of the sources.
type Error struct {
	Source string
	Err    error
}

// Shutdown tells the consumer to stop. Final action of every stream.
type Shutdown struct{}

func (TermOutput) action() {}
func (TermExited) action() {}
func (Input) action()      {}
func (Paste) action()      {}
func (MouseInput) action() {}
func (Tick) action()       {}
func (External) action()   {}
func (Error) action()      {}
func (Shutdown) action()   {}
