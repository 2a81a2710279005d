package commands

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/adcondev/rawbt-daemon/internal/status"
)

// watch: show the service's status events until Ctrl+C.
func watchCmd() *cobra.Command {
	var progressHide time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Show live print status from the service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := status.Config{
				ProgressIdleHide: progressHide,
				OnChange:         terminalView{out: cmd.OutOrStdout()}.render,
			}

			ctx, stop, c, err := connect(cmd)
			if err != nil {
				return err
			}
			defer stop()
			defer func() { _ = c.Close() }()

			m := status.NewMachine(cfg)
			m.Attach(c)
			defer m.Close()

			current, capacity, err := c.QueueStatus(ctx)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "connected to %s (queue %d/%d), Ctrl+C to quit\n", serverURL, current, capacity)

			// Enter dismisses an error panel
			go func() {
				sc := bufio.NewScanner(os.Stdin)
				for sc.Scan() {
					m.Dismiss()
				}
			}()

			select {
			case <-ctx.Done():
				_, _ = fmt.Fprintln(cmd.ErrOrStderr())
				return nil
			case <-c.Done():
				return c.Err()
			}
		},
	}
	cmd.Flags().DurationVar(&progressHide, "progress-hide", 0, "hide a stalled progress bar after this long (e.g. 30s)")
	return cmd
}
