package pty

import (
	"bytes"
	"errors"
	"io"
	"os"
	"testing"
	"time"
)

func collectEvents(t *testing.T, s *Session) ([]byte, []Exited) {
	t.Helper()
	events := make(chan Event, 16)
	cancel := make(chan struct{})
	go ReadLoop(s, events, cancel)

	var out bytes.Buffer
	var exits []Exited
	timeout := time.After(10 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return out.Bytes(), exits
			}
			switch v := ev.(type) {
			case Output:
				out.Write(v.Data)
			case Exited:
				exits = append(exits, v)
			}
		case <-timeout:
			close(cancel)
			t.Fatalf("read loop did not finish; got %q so far", out.String())
		}
	}
}

func TestSpawnAndReadOutput(t *testing.T) {
	s, err := Spawn("/bin/sh", []string{"-c", "printf hello-from-child"}, "", nil, 80, 24)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	defer s.Kill()

	out, exits := collectEvents(t, s)
	if !bytes.Contains(out, []byte("hello-from-child")) {
		t.Errorf("output = %q, want child greeting", out)
	}
	if len(exits) != 1 {
		t.Fatalf("got %d exit events, want exactly 1", len(exits))
	}
	if exits[0].Err != nil {
		t.Errorf("exit err = %v, want nil for clean exit", exits[0].Err)
	}
}

func TestSpawnFailure(t *testing.T) {
	_, err := Spawn("/nonexistent/shell", nil, "", nil, 80, 24)
	if err == nil {
		t.Fatal("Spawn succeeded for missing binary")
	}
	var se *SpawnError
	if !errors.As(err, &se) {
		t.Errorf("err = %T, want *SpawnError", err)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	s, err := Spawn("/bin/cat", nil, "", nil, 80, 24)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	defer s.Kill()

	if _, err := s.Write([]byte("echo-me\n")); err != nil {
		t.Fatalf("Write: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	var got []byte
	buf := make([]byte, 1024)
	for time.Now().Before(deadline) {
		n, err := s.Read(buf)
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		got = append(got, buf[:n]...)
		if bytes.Contains(got, []byte("echo-me")) {
			return
		}
	}
	t.Errorf("did not read back written input, got %q", got)
}

func TestKillIdempotent(t *testing.T) {
	s, err := Spawn("/bin/sh", []string{"-c", "sleep 60"}, "", nil, 80, 24)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	if err := s.Kill(); err != nil {
		t.Fatalf("first Kill: %v", err)
	}
	if err := s.Kill(); err != nil {
		t.Errorf("second Kill: %v, want nil", err)
	}
	if s.Running() {
		t.Errorf("Running() true after Kill")
	}
	if _, err := s.Write([]byte("x")); err != io.ErrClosedPipe {
		t.Errorf("Write after Kill = %v, want ErrClosedPipe", err)
	}
	if err := s.Resize(40, 10); err != nil {
		t.Errorf("Resize after Kill = %v, want nil", err)
	}
}

func TestKillDeliversSingleExit(t *testing.T) {
	s, err := Spawn("/bin/sh", []string{"-c", "sleep 60"}, "", nil, 80, 24)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}

	events := make(chan Event, 16)
	cancel := make(chan struct{})
	go ReadLoop(s, events, cancel)

	time.Sleep(100 * time.Millisecond)
	s.Kill()
	s.Kill()

	exits := 0
	timeout := time.After(10 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				if exits != 1 {
					t.Fatalf("got %d exit events, want 1", exits)
				}
				return
			}
			if _, isExit := ev.(Exited); isExit {
				exits++
			}
		case <-timeout:
			t.Fatal("read loop did not terminate after Kill")
		}
	}
}

// A stalled consumer must not cost output: chunks buffered behind the read
// error have to be delivered before the single Exited.
func TestReadLoopDeliversBufferedOutputBeforeExit(t *testing.T) {
	for i := 0; i < 25; i++ {
		r, w, err := os.Pipe()
		if err != nil {
			t.Fatalf("pipe: %v", err)
		}
		s := &Session{ptmx: r}

		events := make(chan Event)
		cancel := make(chan struct{})
		go ReadLoop(s, events, cancel)

		// First write blocks the loop inside its send to the stalled
		// consumer; the rest plus EOF land while it is blocked.
		if _, err := w.Write([]byte("first")); err != nil {
			t.Fatalf("write: %v", err)
		}
		time.Sleep(3 * frameInterval)
		if _, err := w.Write([]byte("second")); err != nil {
			t.Fatalf("write: %v", err)
		}
		if _, err := w.Write([]byte("third")); err != nil {
			t.Fatalf("write: %v", err)
		}
		w.Close()
		time.Sleep(2 * frameInterval)

		var out bytes.Buffer
		exits := 0
		sawOutputAfterExit := false
		timeout := time.After(10 * time.Second)
	drain:
		for {
			select {
			case ev, ok := <-events:
				if !ok {
					break drain
				}
				switch v := ev.(type) {
				case Output:
					if exits > 0 {
						sawOutputAfterExit = true
					}
					out.Write(v.Data)
				case Exited:
					exits++
					if v.Err != nil {
						t.Errorf("exit err = %v, want nil for EOF", v.Err)
					}
				}
			case <-timeout:
				t.Fatal("read loop did not finish")
			}
		}

		if got := out.String(); got != "firstsecondthird" {
			t.Fatalf("iteration %d: output = %q, want all bytes before exit", i, got)
		}
		if exits != 1 {
			t.Fatalf("iteration %d: got %d exit events, want 1", i, exits)
		}
		if sawOutputAfterExit {
			t.Fatalf("iteration %d: output delivered after Exited", i)
		}
		close(cancel)
		r.Close()
	}
}

func TestResize(t *testing.T) {
	s, err := Spawn("/bin/sh", []string{"-c", "sleep 60"}, "", nil, 80, 24)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	defer s.Kill()
	if err := s.Resize(120, 40); err != nil {
		t.Errorf("Resize: %v", err)
	}
}
