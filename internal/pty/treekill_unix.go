//go:build !windows

package pty

import (
	"syscall"
	"time"
)

const killGracePeriod = 200 * time.Millisecond

// killGroup terminates the child's entire process group: SIGTERM first, a
// grace period, then SIGKILL for stragglers. A shell spawns its own children;
// signaling only the leader leaves orphans holding the PTY slave open.
func killGroup(leaderPID int, grace time.Duration) error {
	if grace == 0 {
		grace = killGracePeriod
	}

	pgid, err := syscall.Getpgid(leaderPID)
	if err != nil {
		if err == syscall.ESRCH {
			return nil
		}
		return err
	}

	if err := syscall.Kill(-pgid, syscall.SIGTERM); err != nil {
		if err == syscall.ESRCH {
			return nil
		}
		return err
	}

	deadline := time.Now().Add(grace)
	for time.Now().Before(deadline) {
		if err := syscall.Kill(-pgid, 0); err == syscall.ESRCH {
			return nil
		}
		time.Sleep(10 * time.Millisecond)
	}

	// EPERM can occur if the group emptied during the grace period
	if err := syscall.Kill(-pgid, syscall.SIGKILL); err != nil && err != syscall.ESRCH && err != syscall.EPERM {
		return err
	}
	return nil
}
