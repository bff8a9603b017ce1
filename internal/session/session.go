package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/atotto/clipboard"

	"github.com/termhive/termhive/internal/config"
	"github.com/termhive/termhive/internal/inputmode"
	"github.com/termhive/termhive/internal/logging"
	"github.com/termhive/termhive/internal/orchestrator"
	"github.com/termhive/termhive/internal/perf"
	"github.com/termhive/termhive/internal/pty"
	"github.com/termhive/termhive/internal/safego"
	"github.com/termhive/termhive/internal/vterm"
)

// Session owns one terminal instance: the child process, the screen state it
// drives, the input-mode machine gating keystrokes, and the action stream
// tying them together. All screen mutation happens on the goroutine calling
// Apply, never on the background readers.
type Session struct {
	term  *vterm.Terminal
	proc  *pty.Session
	orch  *orchestrator.Orchestrator
	modes *inputmode.Machine

	cancel    chan struct{}
	closeOnce sync.Once

	mu      sync.Mutex
	exited  bool
	exitErr error
}

// Start spawns the configured shell and wires up the event flow.
func Start(cfg config.Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("session config: %w", err)
	}

	term := vterm.New(cfg.Cols, cfg.Rows, cfg.ScrollbackRows)

	proc, err := pty.Spawn(cfg.Shell, cfg.ShellArgs, "", cfg.ShellEnv, cfg.Cols, cfg.Rows)
	if err != nil {
		return nil, err
	}
	term.SetResponseWriter(proc)

	s := &Session{
		term:   term,
		proc:   proc,
		orch:   orchestrator.New(cfg.TickInterval),
		modes:  inputmode.NewMachine(cfg.RawExitKey),
		cancel: make(chan struct{}),
	}

	events := make(chan pty.Event, 64)
	safego.Go("session.read_loop", func() {
		pty.ReadLoop(proc, events, s.cancel)
	})
	s.orch.AttachPTY(events)

	return s, nil
}

// Next blocks for the next action. The caller dispatches it, typically via
// Apply, then renders.
func (s *Session) Next(ctx context.Context) (orchestrator.Action, error) {
	return s.orch.Next(ctx)
}

// Apply performs the session-side effect of an action. External payloads are
// left to the caller; everything else is handled here.
func (s *Session) Apply(a orchestrator.Action) error {
	switch v := a.(type) {
	case orchestrator.TermOutput:
		defer perf.Time("term-write")()
		_, err := s.term.Write(v.Data)
		return err

	case orchestrator.TermExited:
		s.mu.Lock()
		s.exited = true
		s.exitErr = v.Err
		s.mu.Unlock()
		if v.Err != nil {
			logging.WithError(v.Err, "child exited")
		} else {
			logging.Info("child exited cleanly")
		}
		return nil

	case orchestrator.Input:
		_, err := s.HandleKey(v)
		return err

	case orchestrator.Paste:
		if s.modes.Mode() != inputmode.ModeRaw {
			return nil
		}
		data := inputmode.PasteToBytes(v.Text, s.term.ModeState().BracketedPaste)
		return s.writePTY(data)

	case orchestrator.MouseInput:
		m := s.term.ModeState()
		data := inputmode.MouseToBytes(v.Mouse, m.Mouse, m.MouseSGR)
		if data == nil {
			return nil
		}
		return s.writePTY(data)

	case orchestrator.Tick:
		return nil

	case orchestrator.External:
		// Opaque payloads belong to the consumer
		return nil

	case orchestrator.Error:
		logging.WithError(v.Err, v.Source)
		return nil

	case orchestrator.Shutdown:
		s.Close()
		return nil
	}
	return nil
}

// HandleKey runs a key through the mode machine and forwards it to the child
// when the machine routes it there. The result lets a UI route the key to
// its own widgets instead.
func (s *Session) HandleKey(in orchestrator.Input) (inputmode.Result, error) {
	res := s.modes.Handle(in.Key)
	if res.Route != inputmode.RoutePTY {
		return res, nil
	}
	data := inputmode.KeyToBytes(in.Key, s.term.ModeState().AppCursorKeys)
	if len(data) == 0 {
		return res, nil
	}
	return res, s.writePTY(data)
}

// WriteText sends literal text to the child.
func (s *Session) WriteText(text string) error {
	if text == "" {
		return nil
	}
	return s.writePTY([]byte(text))
}

func (s *Session) writePTY(data []byte) error {
	if _, err := s.proc.Write(data); err != nil {
		s.mu.Lock()
		exited := s.exited
		s.mu.Unlock()
		if exited {
			return nil
		}
		return fmt.Errorf("write pty: %w", err)
	}
	return nil
}

// Resize propagates a new size to the screen and the child. A failed ioctl
// is logged but does not kill the session.
func (s *Session) Resize(cols, rows int) {
	s.term.Resize(cols, rows)
	if err := s.proc.Resize(cols, rows); err != nil {
		logging.WithError(err, "pty resize")
	}
}

// EnqueueKey feeds a key press into the action stream.
func (s *Session) EnqueueKey(key orchestrator.Input) {
	s.orch.EnqueueKey(key)
}

// EnqueuePaste feeds a paste into the action stream.
func (s *Session) EnqueuePaste(p orchestrator.Paste) {
	s.orch.EnqueuePaste(p)
}

// EnqueueMouse feeds a mouse event into the action stream.
func (s *Session) EnqueueMouse(m orchestrator.MouseInput) {
	s.orch.EnqueueMouse(m)
}

// EnqueueExternal submits an opaque event from another goroutine.
func (s *Session) EnqueueExternal(source string, payload any) bool {
	return s.orch.EnqueueExternal(source, payload)
}

// CopySelection puts the selected text on the system clipboard.
func (s *Session) CopySelection(sel vterm.Selection) error {
	text := s.term.SelectedText(sel)
	if text == "" {
		return nil
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("clipboard: %w", err)
	}
	return nil
}

// Terminal exposes the screen state for rendering and queries.
func (s *Session) Terminal() *vterm.Terminal {
	return s.term
}

// Modes exposes the input-mode machine.
func (s *Session) Modes() *inputmode.Machine {
	return s.modes
}

// Exited reports whether the child is gone and with what error.
func (s *Session) Exited() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exited, s.exitErr
}

// Close kills the child and shuts the action stream down. Idempotent.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		close(s.cancel)
		s.proc.Kill()
		s.orch.Close()
	})
}
