// mb - command-line control surface for the mb test double server
package main

import (
	"context"
	"os"

	"github.com/getmockd/mb/pkg/cli"
)

// Build-time variables set via ldflags
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	return cli.Main(context.Background(), os.Args[1:], cli.Env{
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		Getenv: os.Getenv,
		Build:  cli.BuildInfo{Version: Version, Commit: Commit, BuildDate: BuildDate},
	})
}
