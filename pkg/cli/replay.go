package cli

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/getmockd/mb/pkg/adminclient"
	"github.com/getmockd/mb/pkg/cliconfig"
)

func newReplayCmd(env Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Turn recorded proxies into plain stubs",
		Long: `Fetch the running imposters without their proxy responses and install
them back on the same server, so that recorded responses are replayed
instead of proxied.`,
		Example: `  mb replay --port 2525`,
		Args:    noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := optionsFromFlags(cmd.Flags(), replayOptions, env.Getenv)
			if err != nil {
				return err
			}
			log := consoleLogger(env, opts)
			client := adminclient.New(opts.AdminURL(), adminclient.WithLogger(log))
			return replay(cmd.Context(), client, opts, log)
		},
	}
	registerOptionFlags(cmd.Flags(), replayOptions)
	return cmd
}

// replayClient fetches and installs imposters.
type replayClient interface {
	fetcher
	PutConfig(ctx context.Context, document any) (*adminclient.ImpostersBody, error)
}

func replay(ctx context.Context, client replayClient, opts cliconfig.Options, log *slog.Logger) error {
	body, err := fetchImposters(ctx, client, opts, true)
	if err != nil {
		return err
	}
	result, err := client.PutConfig(ctx, json.RawMessage(body))
	if err != nil {
		return err
	}
	log.Info("imposters replayed", "count", len(result.Imposters))
	return nil
}
