// Package logging writes leveled log lines to a file. The terminal core
// owns the tty it draws on, so stdout and stderr are off limits for
// diagnostics; everything goes through here.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Level is the minimum severity a logger writes.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

func (l Level) String() string {
	if l < LevelDebug || l > LevelError {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// Logger writes timestamped leveled lines to one destination.
type Logger struct {
	mu   sync.Mutex
	out  io.Writer
	min  Level
	off  bool
	path string
}

// Open creates a logger appending to a dated file under dir.
func Open(dir string, min Level) (*Logger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, "termhive-"+time.Now().Format("2006-01-02")+".log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return &Logger{out: f, min: min, path: path}, nil
}

func (l *Logger) write(level Level, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.off || level < l.min {
		return
	}
	stamp := time.Now().Format("2006-01-02 15:04:05.000")
	fmt.Fprintf(l.out, "[%s] %s: %s\n", stamp, level, fmt.Sprintf(format, args...))
}

// SetLevel changes the minimum level written.
func (l *Logger) SetLevel(min Level) {
	l.mu.Lock()
	l.min = min
	l.mu.Unlock()
}

// SetEnabled turns the logger on or off without closing it.
func (l *Logger) SetEnabled(on bool) {
	l.mu.Lock()
	l.off = !on
	l.mu.Unlock()
}

// Path returns the file the logger writes to, if any.
func (l *Logger) Path() string { return l.path }

// Close releases the underlying file.
func (l *Logger) Close() error {
	if c, ok := l.out.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Package-level default. Nil until Initialize; logging before then is a
// silent no-op so library code never needs to guard its log calls.
var (
	defaultMu sync.RWMutex
	std       *Logger
)

// Initialize sets the package-level logger to a dated file under logDir.
func Initialize(logDir string, level Level) error {
	l, err := Open(logDir, level)
	if err != nil {
		return err
	}
	defaultMu.Lock()
	std = l
	defaultMu.Unlock()
	return nil
}

func get() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return std
}

// SetEnabled turns the default logger on or off.
func SetEnabled(on bool) {
	if l := get(); l != nil {
		l.SetEnabled(on)
	}
}

// SetLevel changes the default logger's minimum level.
func SetLevel(level Level) {
	if l := get(); l != nil {
		l.SetLevel(level)
	}
}

func Debug(format string, args ...any) {
	if l := get(); l != nil {
		l.write(LevelDebug, format, args...)
	}
}

func Info(format string, args ...any) {
	if l := get(); l != nil {
		l.write(LevelInfo, format, args...)
	}
}

func Warn(format string, args ...any) {
	if l := get(); l != nil {
		l.write(LevelWarn, format, args...)
	}
}

func Error(format string, args ...any) {
	if l := get(); l != nil {
		l.write(LevelError, format, args...)
	}
}

// WithError logs err at error level under a short context string. A nil
// err is a no-op.
func WithError(err error, context string) {
	if err == nil {
		return
	}
	Error("%s: %v", context, err)
}

// Close closes the default logger's file.
func Close() error {
	if l := get(); l != nil {
		return l.Close()
	}
	return nil
}

// GetLogPath returns the default logger's file path.
func GetLogPath() string {
	if l := get(); l != nil {
		return l.Path()
	}
	return ""
}
