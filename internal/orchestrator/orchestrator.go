package orchestrator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/termhive/termhive/internal/logging"
	"github.com/termhive/termhive/internal/pty"
	"github.com/termhive/termhive/internal/safego"
)

// ErrClosed is returned by Next once the Shutdown action has been delivered.
var ErrClosed = errors.New("orchestrator: closed")

const (
	// Coalescing limit for a single TermOutput action
	maxCoalesceBytes = 256 * 1024
	// Total terminal-output bytes queued before the producer blocks
	maxTermQueueBytes = 1024 * 1024
	// Default bound for the external queue
	defaultExternalCap = 1024
	// How often queue-full drops are logged
	dropLogInterval = time.Second
)

// Orchestrator merges events from the user, the child process, a periodic
// ticker and arbitrary external producers into one ordered action stream.
//
// When several sources have actions pending, delivery follows a fixed
// precedence: input first, then terminal output, then external events, then
// ticks. A tick that has waited two full intervals jumps the queue so a
// flooding child cannot starve timers forever.
//
// Next is intended for a single consumer goroutine; enqueue methods are safe
// to call from any goroutine.
type Orchestrator struct {
	mu     sync.Mutex
	notify chan struct{}

	inputQ []Action
	termQ  []Action
	extQ   []Action
	extCap int

	// Terminal output is never dropped; past maxTermQueueBytes the PTY pump
	// blocks on this condition until the consumer catches up, which
	// throttles the child through the PTY's own buffer.
	termBytes   int
	termNotFull *sync.Cond

	tickPending bool
	tickAt      int64
	lastTick    time.Time
	interval    time.Duration

	// Set once the child exit (or Close) has been observed. All queued
	// actions drain, then Shutdown is delivered and the stream ends.
	draining bool
	done     bool

	exitSeen bool

	droppedExt int
	dropLogAt  time.Time

	cancel    chan struct{}
	closeOnce sync.Once
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithExternalCap bounds the external queue.
func WithExternalCap(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.extCap = n
		}
	}
}

// New creates an orchestrator ticking at the given interval.
func New(tickInterval time.Duration, opts ...Option) *Orchestrator {
	if tickInterval <= 0 {
		tickInterval = 250 * time.Millisecond
	}
	o := &Orchestrator{
		notify:   make(chan struct{}, 1),
		extCap:   defaultExternalCap,
		interval: tickInterval,
		lastTick: time.Now(),
		cancel:   make(chan struct{}),
	}
	o.termNotFull = sync.NewCond(&o.mu)
	for _, opt := range opts {
		opt(o)
	}
	safego.Go("orchestrator.ticker", o.runTicker)
	return o
}

func (o *Orchestrator) runTicker() {
	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()
	for {
		select {
		case <-o.cancel:
			return
		case now := <-ticker.C:
			o.mu.Lock()
			if !o.tickPending {
				o.tickPending = true
				o.tickAt = now.UnixNano()
			}
			o.mu.Unlock()
			o.signal()
		}
	}
}

func (o *Orchestrator) signal() {
	select {
	case o.notify <- struct{}{}:
	default:
	}
}

// AttachPTY consumes a session's event stream in the background, turning it
// into TermOutput and, exactly once, TermExited.
func (o *Orchestrator) AttachPTY(events <-chan pty.Event) {
	safego.Go("orchestrator.pty_pump", func() {
		for ev := range events {
			switch v := ev.(type) {
			case pty.Output:
				o.enqueueTermOutput(v.Data)
			case pty.Exited:
				o.enqueueExit(v.Err)
			}
		}
	})
}

func (o *Orchestrator) enqueueTermOutput(data []byte) {
	if len(data) == 0 {
		return
	}
	o.mu.Lock()
	// An oversized single chunk is admitted into an empty queue rather than
	// blocking forever.
	for o.termBytes > 0 && o.termBytes+len(data) > maxTermQueueBytes && !o.draining && !o.done {
		o.termNotFull.Wait()
	}
	if o.draining {
		o.mu.Unlock()
		return
	}
	o.termBytes += len(data)
	if n := len(o.termQ); n > 0 {
		if last, ok := o.termQ[n-1].(TermOutput); ok && len(last.Data)+len(data) <= maxCoalesceBytes {
			last.Data = append(last.Data, data...)
			o.termQ[n-1] = last
			o.mu.Unlock()
			o.signal()
			return
		}
	}
	chunk := make([]byte, len(data))
	copy(chunk, data)
	o.termQ = append(o.termQ, TermOutput{Data: chunk})
	o.mu.Unlock()
	o.signal()
}

func (o *Orchestrator) enqueueExit(err error) {
	o.mu.Lock()
	if o.exitSeen {
		o.mu.Unlock()
		return
	}
	o.exitSeen = true
	o.termQ = append(o.termQ, TermExited{Err: err})
	o.draining = true
	o.termNotFull.Broadcast()
	o.mu.Unlock()
	o.signal()
}

// EnqueueKey queues a key press at input precedence.
func (o *Orchestrator) EnqueueKey(key Input) {
	o.enqueueInput(key)
}

// EnqueuePaste queues a paste at input precedence.
func (o *Orchestrator) EnqueuePaste(p Paste) {
	o.enqueueInput(p)
}

// EnqueueMouse queues a mouse event at input precedence.
func (o *Orchestrator) EnqueueMouse(m MouseInput) {
	o.enqueueInput(m)
}

func (o *Orchestrator) enqueueInput(a Action) {
	o.mu.Lock()
	if o.done {
		o.mu.Unlock()
		return
	}
	o.inputQ = append(o.inputQ, a)
	o.mu.Unlock()
	o.signal()
}

// EnqueueError queues a source failure. Source names the producer. Errors
// share the external queue and its bound.
func (o *Orchestrator) EnqueueError(source string, err error) {
	if err == nil {
		return
	}
	o.mu.Lock()
	if o.done || !o.admitExternalLocked() {
		o.mu.Unlock()
		return
	}
	o.extQ = append(o.extQ, Error{Source: source, Err: err})
	o.mu.Unlock()
	o.signal()
}

// admitExternalLocked enforces the external queue bound, counting drops and
// logging them at most once per dropLogInterval. Caller holds o.mu.
func (o *Orchestrator) admitExternalLocked() bool {
	if len(o.extQ) < o.extCap {
		return true
	}
	o.droppedExt++
	if now := time.Now(); now.Sub(o.dropLogAt) >= dropLogInterval {
		dropped := o.droppedExt
		o.droppedExt = 0
		o.dropLogAt = now
		logging.Warn("external queue full, dropped %d events", dropped)
	}
	return false
}

// EnqueueExternal queues an event from an outside producer. The queue is
// bounded; when full the event is dropped and the drop is logged at most
// once per second. Reports whether the event was accepted.
func (o *Orchestrator) EnqueueExternal(source string, payload any) bool {
	o.mu.Lock()
	if o.done || !o.admitExternalLocked() {
		o.mu.Unlock()
		return false
	}
	o.extQ = append(o.extQ, External{Source: source, Payload: payload})
	o.mu.Unlock()
	o.signal()
	return true
}

// Next blocks until an action is available and returns it. After Shutdown
// has been delivered it returns ErrClosed. Respects ctx cancellation.
func (o *Orchestrator) Next(ctx context.Context) (Action, error) {
	for {
		o.mu.Lock()
		if o.done {
			o.mu.Unlock()
			return nil, ErrClosed
		}
		if a, ok := o.takeLocked(); ok {
			o.mu.Unlock()
			return a, nil
		}
		o.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-o.notify:
		}
	}
}

// takeLocked applies the precedence order. Caller holds o.mu.
func (o *Orchestrator) takeLocked() (Action, bool) {
	// Liveness: an overdue tick outranks everything so heavy output or
	// input floods cannot starve timers.
	if o.tickPending && !o.draining && time.Since(o.lastTick) >= 2*o.interval {
		return o.takeTick(), true
	}
	if len(o.inputQ) > 0 {
		a := o.inputQ[0]
		o.inputQ = o.inputQ[1:]
		return a, true
	}
	if len(o.termQ) > 0 {
		a := o.termQ[0]
		o.termQ = o.termQ[1:]
		if out, ok := a.(TermOutput); ok {
			o.termBytes -= len(out.Data)
			o.termNotFull.Broadcast()
		}
		return a, true
	}
	if len(o.extQ) > 0 {
		a := o.extQ[0]
		o.extQ = o.extQ[1:]
		return a, true
	}
	if o.tickPending && !o.draining {
		return o.takeTick(), true
	}
	if o.draining {
		o.done = true
		o.stopTicker()
		return Shutdown{}, true
	}
	return nil, false
}

func (o *Orchestrator) takeTick() Action {
	o.tickPending = false
	o.lastTick = time.Now()
	return Tick{At: o.tickAt}
}

// Close begins shutdown: queued actions drain, then Shutdown is delivered.
// Idempotent.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	o.draining = true
	o.termNotFull.Broadcast()
	o.mu.Unlock()
	o.signal()
}

func (o *Orchestrator) stopTicker() {
	o.closeOnce.Do(func() { close(o.cancel) })
}
