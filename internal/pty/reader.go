package pty

import (
	"errors"
	"io"
	"syscall"
	"time"

	"github.com/termhive/termhive/internal/safego"
)

const (
	readBufferSize  = 32 * 1024
	readQueueSize   = 64
	frameInterval   = 8 * time.Millisecond
	maxPendingBytes = 256 * 1024
)

// Event is an item produced by the read loop.
type Event interface{ ptyEvent() }

// Output carries a coalesced chunk of child output.
type Output struct {
	Data []byte
}

// Exited signals the child is gone. Err is nil on a clean EOF. Exactly one
// Exited ends the stream; events is closed right after it.
type Exited struct {
	Err error
}

func (Output) ptyEvent() {}
func (Exited) ptyEvent() {}

// ReadLoop pumps session output into events until the child exits or cancel
// closes. Bursts are coalesced into frames so a busy child produces a few
// large events instead of thousands of tiny ones.
func ReadLoop(s *Session, events chan<- Event, cancel <-chan struct{}) {
	defer close(events)

	dataCh := make(chan []byte, readQueueSize)
	errCh := make(chan error, 1)

	safego.Go("pty.read_loop", func() {
		buf := make([]byte, readBufferSize)
		for {
			n, err := s.Read(buf)
			if err != nil {
				select {
				case errCh <- err:
				default:
				}
				close(dataCh)
				return
			}
			if n == 0 {
				continue
			}
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			select {
			case dataCh <- chunk:
			case <-cancel:
				return
			}
		}
	})

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	var pending []byte
	var exitErr error

	flush := func() bool {
		if len(pending) == 0 {
			return true
		}
		ok := send(events, cancel, Output{Data: pending})
		pending = nil
		return ok
	}

	// Exited is emitted only once dataCh is closed and drained. The reader
	// always closes dataCh after reporting its error, so chunks buffered
	// ahead of the error can never be dropped.
	for {
		select {
		case <-cancel:
			return
		case err := <-errCh:
			exitErr = err
		case data, ok := <-dataCh:
			if !ok {
				if !flush() {
					return
				}
				if exitErr == nil {
					select {
					case exitErr = <-errCh:
					default:
					}
				}
				send(events, cancel, Exited{Err: normalizeExit(exitErr)})
				return
			}
			pending = append(pending, data...)
			if len(pending) >= maxPendingBytes {
				if !flush() {
					return
				}
			}
		case <-ticker.C:
			if !flush() {
				return
			}
		}
	}
}

func send(events chan<- Event, cancel <-chan struct{}, ev Event) bool {
	select {
	case <-cancel:
		return false
	case events <- ev:
		return true
	}
}

// normalizeExit maps the expected end-of-stream errors to nil so callers only
// see genuinely unexpected failures. Linux reports EIO from the master side
// once the child exits; macOS reports EOF.
func normalizeExit(err error) error {
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	if errors.Is(err, syscall.EIO) {
		return nil
	}
	return err
}
