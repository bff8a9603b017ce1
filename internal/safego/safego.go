// Package safego launches background goroutines that survive panics. A
// panicking goroutine is logged with its stack instead of taking down the
// terminal it serves.
package safego

import (
	"runtime/debug"
	"sync/atomic"

	"github.com/termhive/termhive/internal/logging"
)

// Hook receives details of a recovered panic after it has been logged.
type Hook func(name string, recovered any, stack []byte)

var hook atomic.Pointer[Hook]

// OnPanic installs a process-wide hook invoked for every recovered panic.
// Pass nil to remove it. A panic inside the hook itself is swallowed.
func OnPanic(h Hook) {
	if h == nil {
		hook.Store(nil)
		return
	}
	hook.Store(&h)
}

// Go runs fn on a new goroutine with panic recovery. Runtime-fatal errors
// (concurrent map writes, stack exhaustion) are not recoverable.
func Go(name string, fn func()) {
	go func() {
		defer recoverPanic(name)
		fn()
	}()
}

func recoverPanic(name string) {
	r := recover()
	if r == nil {
		return
	}
	if name == "" {
		name = "goroutine"
	}
	stack := debug.Stack()
	logging.Error("panic in %s: %v\n%s", name, r, stack)
	if h := hook.Load(); h != nil {
		func() {
			defer func() { _ = recover() }()
			(*h)(name, r, stack)
		}()
	}
}
