package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/getmockd/mb/pkg/cli/internal/output"
	"github.com/getmockd/mb/pkg/config"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// UsageError reports a malformed command line or option value.
type UsageError struct {
	Err error
}

func (e *UsageError) Error() string {
	return e.Err.Error()
}

func (e *UsageError) Unwrap() error {
	return e.Err
}

func usageErrorf(format string, args ...any) error {
	return &UsageError{Err: fmt.Errorf(format, args...)}
}

// ServerNotRunningError is returned when nothing listens on the admin port.
type ServerNotRunningError struct {
	Port int
	Err  error
}

func (e *ServerNotRunningError) Error() string {
	return fmt.Sprintf("No server running on port %d", e.Port)
}

func (e *ServerNotRunningError) Unwrap() error {
	return e.Err
}

// NonSuccessStatusError is returned when the admin API answers a fetch with
// anything but 200.
type NonSuccessStatusError struct {
	StatusCode int
	Body       []byte
}

func (e *NonSuccessStatusError) Error() string {
	return fmt.Sprintf("admin API returned status %d: %s", e.StatusCode, e.Body)
}

// ExitCode maps an error returned by Execute to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var usage *UsageError
	if errors.As(err, &usage) {
		return ExitUsage
	}
	return ExitFailure
}

// FormatError returns the message shown to the user for err.
func FormatError(err error) string {
	var notRunning *ServerNotRunningError
	if errors.As(err, &notRunning) {
		return err.Error() + output.Suggestions(
			fmt.Sprintf("Start the server: mb start --port %d", notRunning.Port),
			"Check that mb is running on the expected port",
		)
	}
	if errors.Is(err, config.ErrConfigFileMissing) {
		return err.Error() + output.Suggestions("Check the --configfile path")
	}
	var usage *UsageError
	if errors.As(err, &usage) {
		return err.Error() + output.Suggestions("Run: mb help")
	}
	return err.Error()
}

// noArgs rejects positional arguments as a usage error.
func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return usageErrorf("unknown command %q for %q", args[0], cmd.CommandPath())
	}
	return nil
}
