//go:build windows

package pidfile

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows"
)

// ErrProcessGone is returned by Terminate when the target process has
// already exited.
var ErrProcessGone = errors.New("process does not exist")

// TerminateSignalName names the request Terminate delivers.
// Windows has no SIGTERM, so the process is terminated outright and its
// shutdown handler never runs; the stopping side removes the lock instead.
func TerminateSignalName() string {
	return "terminate"
}

// ProcessRunning checks if a process is running on Windows.
func ProcessRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	handle, err := windows.OpenProcess(windows.SYNCHRONIZE|windows.PROCESS_QUERY_LIMITED_INFORMATION, false, uint32(pid))
	if err != nil {
		return false
	}
	defer windows.CloseHandle(handle)

	// Zero timeout: WAIT_TIMEOUT means the process has not exited.
	event, err := windows.WaitForSingleObject(handle, 0)
	if err != nil {
		return false
	}
	return event == uint32(windows.WAIT_TIMEOUT)
}

// Terminate ends the process.
func Terminate(pid int) error {
	if pid <= 0 {
		return ErrProcessGone
	}
	handle, err := windows.OpenProcess(windows.PROCESS_TERMINATE, false, uint32(pid))
	if err != nil {
		if errors.Is(err, windows.ERROR_INVALID_PARAMETER) {
			return ErrProcessGone
		}
		return fmt.Errorf("failed to open process %d: %w", pid, err)
	}
	defer windows.CloseHandle(handle)

	if err := windows.TerminateProcess(handle, 1); err != nil {
		return fmt.Errorf("failed to terminate process %d: %w", pid, err)
	}
	return nil
}
