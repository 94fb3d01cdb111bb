package cli

import (
	"github.com/spf13/cobra"
)

func newRestartCmd(env Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "restart",
		Short: "Stop any running server, then start",
		Long: `Stop the server recorded in the PID file, if any, then start a new one
with the given options. The new server does not start until the old PID
file is gone.`,
		Example: `  mb restart --configfile imposters.ejs`,
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := optionsFromFlags(cmd.Flags(), serverOptions, env.Getenv)
			if err != nil {
				return err
			}
			log, closer := serverLogger(env, opts)
			defer func() { _ = closer.Close() }()

			ctrl := newController(env, opts, log)
			if err := ctrl.Restart(cmd.Context()); err != nil {
				return err
			}
			return ctrl.Wait()
		},
	}
	registerOptionFlags(cmd.Flags(), serverOptions)
	return cmd
}
