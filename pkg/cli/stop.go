package cli

import (
	"github.com/spf13/cobra"

	"github.com/getmockd/mb/pkg/lifecycle"
)

func newStopCmd(env Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the server named by the PID file",
		Long: `Ask the server recorded in the PID file to shut down and wait for it to
remove the file. Stopping when nothing is running succeeds. A stale PID
file is removed.`,
		Example: `  mb stop
  mb stop --pidfile /var/run/mb.pid`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := optionsFromFlags(cmd.Flags(), stopOptions, env.Getenv)
			if err != nil {
				return err
			}
			log := consoleLogger(env, opts)
			return lifecycle.New(opts, nil, nil, lifecycle.WithLogger(log)).Stop(cmd.Context())
		},
	}
	registerOptionFlags(cmd.Flags(), stopOptions)
	return cmd
}
