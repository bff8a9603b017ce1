package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds the narrow set of knobs the terminal core accepts.
// Anything beyond this (themes, keymaps, provider credentials) belongs to the
// embedding application and is injected at construction time.
type Config struct {
	// Initial grid dimensions.
	Cols int
	Rows int

	// ScrollbackRows caps the number of historical rows retained per terminal.
	ScrollbackRows int

	// TickInterval drives periodic re-render even when no other source fires.
	TickInterval time.Duration

	// Shell command, arguments and extra environment for the child process.
	Shell     string
	ShellArgs []string
	ShellEnv  []string

	// RawExitKey is the reserved chord that leaves raw passthrough mode,
	// in bubbletea key string form (e.g. "ctrl+\\").
	RawExitKey string
}

// Default returns the configuration used when the embedding app supplies nothing.
func Default() Config {
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/sh"
	}
	return Config{
		Cols:           80,
		Rows:           24,
		ScrollbackRows: 10000,
		TickInterval:   250 * time.Millisecond,
		Shell:          shell,
		RawExitKey:     "ctrl+\\",
	}
}

// Validate checks the configuration and returns the first problem found.
func (c Config) Validate() error {
	if c.Cols < 1 || c.Rows < 1 {
		return fmt.Errorf("grid dimensions must be positive, got %dx%d", c.Cols, c.Rows)
	}
	if c.ScrollbackRows < 0 {
		return fmt.Errorf("scrollback capacity must be non-negative, got %d", c.ScrollbackRows)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %v", c.TickInterval)
	}
	if c.Shell == "" {
		return fmt.Errorf("shell command is required")
	}
	if c.RawExitKey == "" {
		return fmt.Errorf("raw-mode exit key is required")
	}
	return nil
}
