//go:build !windows

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/termhive/termhive/internal/config"
	"github.com/termhive/termhive/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "print version and exit")
		shell       = flag.String("shell", "", "shell to run (default $SHELL)")
		scrollback  = flag.Int("scrollback", 0, "scrollback rows (default 10000)")
		tick        = flag.Duration("tick", 0, "render tick interval")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("termhive %s (commit: %s)\n", version, commit)
		return
	}

	home, _ := os.UserHomeDir()
	logDir := filepath.Join(home, ".termhive", "logs")
	if err := logging.Initialize(logDir, logging.LevelInfo); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not initialize logging: %v\n", err)
	}
	defer logging.Close()

	cfg := config.Default()
	if *shell != "" {
		cfg.Shell = *shell
		cfg.ShellArgs = nil
	}
	if *scrollback > 0 {
		cfg.ScrollbackRows = *scrollback
	}
	if *tick > time.Duration(0) {
		cfg.TickInterval = *tick
	}

	logging.Info("starting termhive with shell %s", cfg.Shell)

	m, err := newModel(cfg)
	if err != nil {
		logging.Error("failed to start session: %v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	p := tea.NewProgram(m)
	m.SetMsgSender(p.Send)

	if _, err := p.Run(); err != nil {
		logging.Error("program exited with error: %v", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		m.sess.Close()
		os.Exit(1)
	}
	m.sess.Close()
	logging.Info("termhive shutdown complete")
}
