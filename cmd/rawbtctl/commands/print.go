package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/adcondev/rawbt-daemon/internal/printjob"
	"github.com/adcondev/rawbt-daemon/internal/status"
)

// print <file>: submit a document from a file, or stdin with "-".
func printCmd() *cobra.Command {
	var noValidate bool
	cmd := &cobra.Command{
		Use:   "print <file|->",
		Short: "Submit a print document and wait for the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := readDocument(args[0])
			if err != nil {
				return err
			}
			if !noValidate {
				job, err := printjob.Parse(doc)
				if err != nil {
					return err
				}
				if err := printjob.Validate(job); err != nil {
					return fmt.Errorf("invalid document: %w", err)
				}
			}
			return submitAndWait(cmd, doc)
		},
	}
	cmd.Flags().BoolVar(&noValidate, "no-validate", false, "let the service reject invalid documents")
	return cmd
}

func readDocument(path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

var errJobFailed = errors.New("job failed")

// submitAndWait submits doc and shows its status until it finishes.
// Ctrl+C cancels the job.
func submitAndWait(cmd *cobra.Command, doc []byte) error {
	ctx, stop, c, err := connect(cmd)
	if err != nil {
		return err
	}
	defer stop()
	defer func() { _ = c.Close() }()

	view := terminalView{out: cmd.ErrOrStderr()}
	m := status.NewMachine(status.Config{OnChange: view.render})
	m.Attach(c)
	defer m.Close()

	final := make(chan status.Event, 1)
	unsubscribe := c.Subscribe(func(ev status.Event) {
		switch ev.Status {
		case status.Success, status.Error, status.Canceled:
			select {
			case final <- ev:
			default:
			}
		}
	})
	defer unsubscribe()

	id, err := c.SubmitJob(ctx, doc)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "job %s queued\n", id)

	waitCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	select {
	case ev := <-final:
		return report(cmd, ev)
	case <-ctx.Done():
		// Ctrl+C: ask the service to drop the job, then wait for its verdict
		cancelCtx, cancelDone := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelDone()
		if err := c.Cancel(cancelCtx, id); err != nil {
			return err
		}
		select {
		case ev := <-final:
			return report(cmd, ev)
		case <-cancelCtx.Done():
			return cancelCtx.Err()
		}
	case <-waitCtx.Done():
		return fmt.Errorf("job %s: no result after %v", id, timeout)
	case <-c.Done():
		return c.Err()
	}
}

func report(cmd *cobra.Command, ev status.Event) error {
	_, _ = fmt.Fprintln(cmd.ErrOrStderr())
	switch ev.Status {
	case status.Success:
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "✔ %s\n", ev.Message)
		return nil
	case status.Canceled:
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), "job canceled")
		return nil
	default:
		return fmt.Errorf("%w: %s", errJobFailed, ev.Message)
	}
}
