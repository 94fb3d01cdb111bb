package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/getmockd/mb/pkg/admin"
	"github.com/getmockd/mb/pkg/adminclient"
	"github.com/getmockd/mb/pkg/cliconfig"
	"github.com/getmockd/mb/pkg/config"
	"github.com/getmockd/mb/pkg/lifecycle"
)

func newStartCmd(env Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the server (default command)",
		Long: `Start the server and block until it receives SIGINT or SIGTERM.

The admin API is bound first. If --configfile is set its imposters are
then installed through the admin API, and only after that is the PID file
written. The PID file is removed on shutdown.`,
		Example: `  # Start on the default port
  mb

  # Start with imposters from a template-rendered config file
  mb start --configfile imposters.ejs

  # Only accept admin calls from two address ranges
  mb start --ipWhitelist "192.168.*|10.0.*"`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := optionsFromFlags(cmd.Flags(), serverOptions, env.Getenv)
			if err != nil {
				return err
			}
			log, closer := serverLogger(env, opts)
			defer func() { _ = closer.Close() }()

			return newController(env, opts, log).Run(cmd.Context())
		},
	}
	registerOptionFlags(cmd.Flags(), serverOptions)
	return cmd
}

// newController wires the admin server and the config loader into a
// lifecycle controller.
func newController(env Env, opts cliconfig.Options, log *slog.Logger) *lifecycle.Controller {
	newServer := env.NewServer
	if newServer == nil {
		newServer = func(o cliconfig.Options) (lifecycle.Server, error) {
			return admin.NewAPI(o, admin.WithLogger(log), admin.WithVersion(env.Build.Version))
		}
	}
	newLoader := func(o cliconfig.Options) lifecycle.ConfigLoader {
		client := adminclient.New(o.AdminURL(), adminclient.WithLogger(log))
		return config.NewLoader(o, client, config.WithLogger(log))
	}
	return lifecycle.New(opts, newServer, newLoader, lifecycle.WithLogger(log))
}
