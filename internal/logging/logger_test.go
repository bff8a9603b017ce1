package logging

import (
	"os"
	"strings"
	"sync"
	"testing"
)

func setupLogger(t *testing.T, level Level) (string, func()) {
	t.Helper()

	logDir := t.TempDir()
	if err := Initialize(logDir, level); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	logPath := GetLogPath()
	if logPath == "" {
		t.Fatalf("GetLogPath returned empty path")
	}

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			_ = Close()
			defaultMu.Lock()
			std = nil
			defaultMu.Unlock()
		})
	}
	t.Cleanup(cleanup)

	return logPath, cleanup
}

func TestInitializeAndLogWrites(t *testing.T) {
	logPath, cleanup := setupLogger(t, LevelInfo)
	defer cleanup()

	Info("hello %s", "world")
	cleanup()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "hello world") {
		t.Errorf("log file missing message, got: %s", data)
	}
	if !strings.Contains(string(data), "INFO") {
		t.Errorf("log file missing level, got: %s", data)
	}
}

func TestLevelFiltering(t *testing.T) {
	logPath, cleanup := setupLogger(t, LevelWarn)
	defer cleanup()

	Debug("noisy debug")
	Info("quiet info")
	Warn("important warning")
	cleanup()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	out := string(data)
	if strings.Contains(out, "noisy debug") || strings.Contains(out, "quiet info") {
		t.Errorf("messages below level were written: %s", out)
	}
	if !strings.Contains(out, "important warning") {
		t.Errorf("warning was not written: %s", out)
	}
}

func TestSetEnabled(t *testing.T) {
	logPath, cleanup := setupLogger(t, LevelDebug)
	defer cleanup()

	SetEnabled(false)
	Error("should not appear")
	SetEnabled(true)
	Error("should appear")
	cleanup()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	out := string(data)
	if strings.Contains(out, "should not appear") {
		t.Errorf("disabled logger still wrote: %s", out)
	}
	if !strings.Contains(out, "should appear") {
		t.Errorf("re-enabled logger did not write: %s", out)
	}
}

func TestWithErrorNilIsNoop(t *testing.T) {
	logPath, cleanup := setupLogger(t, LevelDebug)
	defer cleanup()

	WithError(nil, "context")
	cleanup()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if strings.Contains(string(data), "context") {
		t.Errorf("nil error should not log, got: %s", data)
	}
}
