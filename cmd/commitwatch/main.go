// Command commitwatch monitors GitHub repositories for new commits and
// notifies Slack recipients when a tracked branch's tip changes.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.Command{
		Name:  "commitwatch",
		Usage: "watch GitHub repositories for new commits",
		Commands: []*cli.Command{
			cmdServe(),
			cmdCheck(),
			cmdStatus(),
		},
	}

	if err := app.Run(ctx, os.Args); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}
