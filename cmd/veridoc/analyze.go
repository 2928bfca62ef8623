package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"veridoc/internal/asset"
	"veridoc/internal/forensic"
	"veridoc/internal/platform/config"
	"veridoc/internal/platform/logger"
)

var analyzeIssued string

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Run the forensic check battery on a document",
	Long: `Runs every applicable forensic check on the file and prints the
report as JSON, including the aggregated tamper penalty.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeIssued, "issued", "", "Claimed issue date (YYYY-MM-DD) for metadata checks")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := config.FromEnv()
	log := logger.New("veridoc", cfg.LogLevel)

	doc, err := loadDocument(args[0], analyzeIssued)
	if err != nil {
		return err
	}

	battery := forensic.NewBattery(nil,
		forensic.WithLogger(log),
		forensic.WithCheckTimeout(cfg.CheckTimeout),
		forensic.WithParallelism(cfg.MaxParallel),
	)

	report, err := battery.Analyze(cmd.Context(), doc)
	if err != nil {
		return err
	}

	return printJSON(cmd, report)
}

// loadDocument reads and decodes one local file, attaching the claimed
// issue date when given.
func loadDocument(path, issued string) (*asset.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}

	var opts []asset.Option
	if issued != "" {
		ts, err := time.Parse("2006-01-02", issued)
		if err != nil {
			return nil, fmt.Errorf("parse issue date %q: %w", issued, err)
		}
		opts = append(opts, asset.WithClaimedIssueDate(ts))
	}

	return asset.Load(raw, "", opts...)
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(out))
	return nil
}
