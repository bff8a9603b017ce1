package pty

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"

	"github.com/creack/pty"

	"github.com/termhive/termhive/internal/logging"
)

// Session wraps a PTY with its child process.
type Session struct {
	mu     sync.Mutex
	ptmx   *os.File
	cmd    *exec.Cmd
	closed bool
}

// SpawnError reports a shell that could not be started. The session holds no
// resources when Spawn returns one.
type SpawnError struct {
	Shell string
	Err   error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn %s: %v", e.Shell, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// Spawn starts shell under a new PTY sized cols x rows.
func Spawn(shell string, args []string, dir string, env []string, cols, rows int) (*Session, error) {
	cmd := exec.Command(shell, args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), env...)
	cmd.Env = append(cmd.Env, "TERM=xterm-256color")

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
	})
	if err != nil {
		return nil, &SpawnError{Shell: shell, Err: err}
	}

	logging.Debug("spawned %s (pid %d) at %dx%d", shell, cmd.Process.Pid, cols, rows)
	return &Session{ptmx: ptmx, cmd: cmd}, nil
}

// Write sends input bytes to the child.
func (s *Session) Write(p []byte) (int, error) {
	s.mu.Lock()
	closed := s.closed
	ptmx := s.ptmx
	s.mu.Unlock()

	if closed || ptmx == nil {
		return 0, io.ErrClosedPipe
	}
	return ptmx.Write(p)
}

// Read reads output from the child. The mutex is not held during the
// blocking read so Kill can proceed concurrently.
func (s *Session) Read(p []byte) (int, error) {
	s.mu.Lock()
	closed := s.closed
	ptmx := s.ptmx
	s.mu.Unlock()

	if closed || ptmx == nil {
		return 0, io.EOF
	}
	return ptmx.Read(p)
}

// Resize propagates a size change to the PTY, which delivers SIGWINCH to the
// child. A no-op once the session is killed.
func (s *Session) Resize(cols, rows int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.ptmx == nil {
		return nil
	}
	return pty.Setsize(s.ptmx, &pty.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
	})
}

// SendInterrupt sends Ctrl+C to the child.
func (s *Session) SendInterrupt() error {
	_, err := s.Write([]byte{0x03})
	return err
}

// Kill terminates the child and releases the PTY. Safe to call multiple
// times; only the first call does anything.
func (s *Session) Kill() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if s.ptmx != nil {
		s.ptmx.Close()
	}
	if s.cmd != nil && s.cmd.Process != nil {
		if err := killGroup(s.cmd.Process.Pid, killGracePeriod); err != nil {
			logging.WithError(err, "kill process group")
			s.cmd.Process.Kill()
		}
		s.cmd.Wait()
	}
	return nil
}

// Running reports whether the child process has not yet been reaped.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.cmd == nil {
		return false
	}
	return s.cmd.ProcessState == nil
}

// Pid returns the child process id, or 0 when not running.
func (s *Session) Pid() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cmd == nil || s.cmd.Process == nil {
		return 0
	}
	return s.cmd.Process.Pid
}
