package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/adcondev/rawbt-daemon/internal/client"
	"github.com/adcondev/rawbt-daemon/internal/demo"
)

// demo <name>: build one of the sample receipts and print it.
func demoCmd() *cobra.Command {
	var (
		imageURI string
		dryRun   bool
		copies   int
		printer  string
	)
	cmd := &cobra.Command{
		Use:       "demo <" + strings.Join(demo.Names(), "|") + ">",
		Short:     "Print a sample receipt",
		Args:      cobra.ExactArgs(1),
		ValidArgs: demo.Names(),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			var image string
			if demo.NeedsImage(name) {
				if imageURI == "" {
					return fmt.Errorf("demo %s needs --image", name)
				}
				b64, err := client.ResolveImage(cmd.Context(), imageURI)
				if err != nil {
					return err
				}
				image = b64
			}

			job, err := demo.Build(name, image)
			if err != nil {
				return err
			}
			if copies > 0 {
				job.SetCopies(copies)
			}
			if printer != "" {
				job.SetPrinter(printer)
			}

			doc, err := job.Serialize()
			if err != nil {
				return err
			}
			if dryRun {
				_, err := fmt.Fprintln(os.Stdout, string(doc))
				return err
			}
			return submitAndWait(cmd, doc)
		},
	}
	cmd.Flags().StringVar(&imageURI, "image", "", "image file or URL for the images demo")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the document instead of submitting it")
	cmd.Flags().IntVar(&copies, "copies", 0, "number of copies (default 1)")
	cmd.Flags().StringVar(&printer, "printer", "", "target printer (default: service default)")
	return cmd
}
