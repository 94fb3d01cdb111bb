//go:build !windows

package pidfile

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// ErrProcessGone is returned by Terminate when the target process has
// already exited.
var ErrProcessGone = errors.New("process does not exist")

// TerminateSignalName names the request Terminate delivers.
func TerminateSignalName() string {
	return "SIGTERM"
}

// ProcessRunning checks if a process is running using signal 0.
// EPERM means the process exists but belongs to another user.
func ProcessRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}

// Terminate asks the process to shut down gracefully with SIGTERM.
func Terminate(pid int) error {
	if pid <= 0 {
		return ErrProcessGone
	}
	if err := unix.Kill(pid, unix.SIGTERM); err != nil {
		if errors.Is(err, unix.ESRCH) {
			return ErrProcessGone
		}
		return fmt.Errorf("failed to signal process %d: %w", pid, err)
	}
	return nil
}
