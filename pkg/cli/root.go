package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/getmockd/mb/pkg/cli/internal/output"
	"github.com/getmockd/mb/pkg/cliconfig"
	"github.com/getmockd/mb/pkg/lifecycle"
	"github.com/getmockd/mb/pkg/logging"
)

// BuildInfo describes the running binary.
type BuildInfo struct {
	Version   string
	Commit    string
	BuildDate string
}

// Env is what a command needs from the surrounding process.
type Env struct {
	Stdout io.Writer
	Stderr io.Writer
	Getenv func(string) string
	Build  BuildInfo

	// NewServer overrides the server that start and restart run.
	NewServer lifecycle.ServerFactory
}

func (e Env) withDefaults() Env {
	if e.Stdout == nil {
		e.Stdout = os.Stdout
	}
	if e.Stderr == nil {
		e.Stderr = os.Stderr
	}
	if e.Getenv == nil {
		e.Getenv = os.Getenv
	}
	if e.Build.Version == "" {
		e.Build.Version = "dev"
	}
	return e
}

var commandNames = []string{"start", "stop", "restart", "save", "replay", "help"}

// IsCommand reports whether name is an mb command.
func IsCommand(name string) bool {
	for _, c := range commandNames {
		if c == name {
			return true
		}
	}
	return false
}

// NewRootCmd builds the mb command tree.
func NewRootCmd(env Env) *cobra.Command {
	env = env.withDefaults()

	root := &cobra.Command{
		Use:   "mb",
		Short: "mb is an over-the-wire test double server",
		Long: `mb runs imposters: test doubles that stand in for the services your
application talks to over the network.

Running mb with no command starts the server. Options may also be set in
.mbrc.yaml or through MB_* environment variables; flags win.`,
		Version:       env.Build.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(env.Stdout)
	root.SetErr(env.Stderr)
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &UsageError{Err: err}
	})
	root.SetVersionTemplate(fmt.Sprintf("mb %s (commit %s, built %s)\n", env.Build.Version, env.Build.Commit, env.Build.BuildDate))

	root.AddCommand(
		newStartCmd(env),
		newStopCmd(env),
		newRestartCmd(env),
		newSaveCmd(env),
		newReplayCmd(env),
	)
	return root
}

// Execute runs mb with args (without the program name).
func Execute(ctx context.Context, args []string, env Env) error {
	args = withDefaultCommand(args)
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") && !IsCommand(args[0]) {
		return usageErrorf("unknown command %q", args[0])
	}

	root := NewRootCmd(env)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// Main runs mb, reports any error on stderr and returns the exit code.
func Main(ctx context.Context, args []string, env Env) int {
	env = env.withDefaults()
	err := Execute(ctx, args, env)
	if err != nil {
		output.Error(env.Stderr, FormatError(err))
	}
	return ExitCode(err)
}

// withDefaultCommand inserts start when no command is named.
func withDefaultCommand(args []string) []string {
	if len(args) == 0 {
		return []string{"start"}
	}
	switch args[0] {
	case "-h", "--help", "--version":
		return args
	}
	if strings.HasPrefix(args[0], "-") {
		return append([]string{"start"}, args...)
	}
	return args
}

// consoleLogger is the logger for commands that do not write the log file.
func consoleLogger(env Env, opts cliconfig.Options) *slog.Logger {
	return logging.New(logging.Config{
		Level:  logLevel(opts),
		Format: logging.FormatText,
		Output: env.Stderr,
	})
}

// serverLogger logs to the console and, unless disabled, to the log file.
// If the log file cannot be opened the server logs to the console only.
func serverLogger(env Env, opts cliconfig.Options) (*slog.Logger, io.Closer) {
	log, closer, err := logging.Open(logging.FileConfig{
		Path:     opts.LogFile,
		Disabled: opts.NoLogFile,
		Level:    logLevel(opts),
		Console:  env.Stderr,
	})
	if err != nil {
		output.Warn(env.Stderr, "%v; logging to the console only", err)
		return consoleLogger(env, opts), nopCloser{}
	}
	return log, closer
}

func logLevel(opts cliconfig.Options) logging.Level {
	if opts.Debug {
		return logging.LevelDebug
	}
	return logging.ParseLevel(opts.LogLevel)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
