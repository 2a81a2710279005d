// Package commands implements the rawbtctl command tree.
package commands

import (
	"context"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"github.com/adcondev/rawbt-daemon/internal/client"
)

var (
	serverURL string
	token     string
	timeout   time.Duration
)

// Execute runs the root command. Cobra prints the error, callers only
// turn it into an exit status.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "rawbtctl",
		Short:        "Build, submit and watch RawBT receipt print jobs",
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&serverURL, "server", "ws://localhost:8766/ws", "print service WebSocket URL")
	root.PersistentFlags().StringVar(&token, "token", os.Getenv("RAWBT_TOKEN"), "job submission token (default $RAWBT_TOKEN)")
	root.PersistentFlags().DurationVar(&timeout, "timeout", 2*time.Minute, "how long to wait for a job to finish")

	root.AddCommand(demoCmd(), printCmd(), watchCmd())
	return root
}

// connect dials the service; the context ends on Ctrl+C.
func connect(cmd *cobra.Command) (context.Context, context.CancelFunc, *client.Client, error) {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	c, err := client.Dial(dialCtx, serverURL, client.Options{Token: token})
	if err != nil {
		stop()
		return nil, nil, nil, err
	}
	return ctx, stop, c, nil
}
