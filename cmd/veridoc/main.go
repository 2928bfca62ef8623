// Command veridoc runs the document verification engine against local
// files. Collaborator inputs (OCR extraction, registry record, merchant
// submission) are supplied as JSON; results print to stdout as JSON with
// logs on stderr.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "veridoc",
	Short:         "Forensic analysis and trust scoring for business documents",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		rootCmd.PrintErrln("error:", err)
		os.Exit(1)
	}
}
