package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/getmockd/mb/pkg/adminclient"
	"github.com/getmockd/mb/pkg/cliconfig"
)

func newSaveCmd(env Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save the running imposters to a file",
		Long: `Fetch the replayable imposters from a running server and write the
response body, unchanged, to the save file.`,
		Example: `  mb save --savefile imposters.json
  mb save --removeProxies`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts, err := optionsFromFlags(cmd.Flags(), saveOptions, env.Getenv)
			if err != nil {
				return err
			}
			log := consoleLogger(env, opts)
			client := adminclient.New(opts.AdminURL(), adminclient.WithLogger(log))
			return save(cmd.Context(), client, opts, log)
		},
	}
	registerOptionFlags(cmd.Flags(), saveOptions)
	return cmd
}

// fetcher fetches the replayable imposters.
type fetcher interface {
	GetConfig(ctx context.Context, opts adminclient.GetOptions) (*adminclient.Response, error)
}

func save(ctx context.Context, client fetcher, opts cliconfig.Options, log *slog.Logger) error {
	body, err := fetchImposters(ctx, client, opts, opts.RemoveProxies)
	if err != nil {
		return err
	}
	if err := os.WriteFile(opts.SaveFile, body, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", opts.SaveFile, err)
	}
	log.Info("imposters saved", "file", opts.SaveFile, "bytes", len(body))
	return nil
}

// fetchImposters returns the body of a successful replayable GET.
func fetchImposters(ctx context.Context, client fetcher, opts cliconfig.Options, removeProxies bool) ([]byte, error) {
	resp, err := client.GetConfig(ctx, adminclient.GetOptions{RemoveProxies: removeProxies})
	if err != nil {
		if errors.Is(err, adminclient.ErrConnectionRefused) {
			return nil, &ServerNotRunningError{Port: opts.Port, Err: err}
		}
		return nil, err
	}
	if !resp.OK() {
		return nil, &NonSuccessStatusError{StatusCode: resp.StatusCode, Body: resp.Body}
	}
	return resp.Body, nil
}
