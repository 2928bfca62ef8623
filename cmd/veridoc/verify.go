package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"veridoc/internal/audit"
	"veridoc/internal/forensic"
	"veridoc/internal/platform/config"
	"veridoc/internal/platform/logger"
	"veridoc/internal/scoring"
	"veridoc/internal/verification"
	"veridoc/internal/verification/metrics"
	"veridoc/pkg/domain"
)

var (
	verifyType   string
	verifyInputs string
	verifyIssued string
	verifyAudit  bool
)

var verifyCmd = &cobra.Command{
	Use:   "verify [file]",
	Short: "Run the full verification pipeline on a document",
	Long: `Runs the forensic battery, compares the supplied OCR, registry, and
merchant inputs, and prints the scored outcome as JSON.

The --inputs file carries the collaborator payloads:

  {
    "ocr":      {"fields": {"company_name": "..."}, "confidence": 97},
    "registry": {"name": "...", "number": "...", "address": "...", "found": true},
    "merchant": {"name": "...", "number": "...", "address": "..."}
  }`,
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().StringVar(&verifyType, "type", "companies_house", "Document type profile")
	verifyCmd.Flags().StringVar(&verifyInputs, "inputs", "", "Path to a JSON file with OCR, registry, and merchant inputs")
	verifyCmd.Flags().StringVar(&verifyIssued, "issued", "", "Claimed issue date (YYYY-MM-DD) for metadata checks")
	verifyCmd.Flags().BoolVar(&verifyAudit, "audit", false, "Include the audit trail in the output")
	rootCmd.AddCommand(verifyCmd)
}

// verifyInputsFile mirrors the collaborator payloads the service expects.
type verifyInputsFile struct {
	OCR struct {
		Fields     map[string]string `json:"fields"`
		Confidence float64           `json:"confidence"`
	} `json:"ocr"`
	Registry struct {
		Name    string            `json:"name"`
		Number  string            `json:"number"`
		Address string            `json:"address"`
		Fields  map[string]string `json:"fields"`
		Found   bool              `json:"found"`
	} `json:"registry"`
	Merchant struct {
		Name    string            `json:"name"`
		Number  string            `json:"number"`
		Address string            `json:"address"`
		Fields  map[string]string `json:"fields"`
	} `json:"merchant"`
}

type verifyOutput struct {
	Outcome verification.Outcome `json:"outcome"`
	Audit   []audit.Event        `json:"audit,omitempty"`
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg := config.FromEnv()
	log := logger.New("veridoc", cfg.LogLevel)

	doc, err := loadDocument(args[0], verifyIssued)
	if err != nil {
		return err
	}

	var inputs verifyInputsFile
	if verifyInputs != "" {
		raw, err := os.ReadFile(verifyInputs)
		if err != nil {
			return fmt.Errorf("read inputs: %w", err)
		}
		if err := json.Unmarshal(raw, &inputs); err != nil {
			return fmt.Errorf("parse inputs: %w", err)
		}
	}

	profiles := scoring.Builtin()
	if cfg.ProfileOverrides != "" {
		overrides, err := scoring.LoadOverrides(cfg.ProfileOverrides)
		if err != nil {
			return err
		}
		if profiles, err = profiles.Apply(overrides); err != nil {
			return err
		}
	}

	// One-shot process: the instruments live on a private registry, wired
	// anyway so the pipeline runs exactly as it does behind a scrape
	// endpoint.
	m := metrics.NewWith(prometheus.NewRegistry())

	battery := forensic.NewBattery(nil,
		forensic.WithLogger(log),
		forensic.WithCheckTimeout(cfg.CheckTimeout),
		forensic.WithParallelism(cfg.MaxParallel),
		forensic.WithObserver(m.ObserveCheck),
	)

	store := audit.NewInMemoryStore()
	svc, err := verification.New(battery, profiles,
		verification.WithLogger(log),
		verification.WithMetrics(m),
		verification.WithAudit(audit.NewPublisher(store)),
	)
	if err != nil {
		return err
	}

	documentID := domain.NewDocumentID()
	outcome, err := svc.Verify(cmd.Context(), verification.Request{
		DocumentID:   documentID,
		DocumentType: domain.DocumentType(verifyType),
		Asset:        doc,
		OCR: verification.OCRInput{
			Fields:     inputs.OCR.Fields,
			Confidence: inputs.OCR.Confidence,
		},
		Registry: verification.RegistryInput{
			Name:    inputs.Registry.Name,
			Number:  inputs.Registry.Number,
			Address: inputs.Registry.Address,
			Fields:  inputs.Registry.Fields,
			Found:   inputs.Registry.Found,
		},
		Merchant: verification.MerchantInput{
			Name:    inputs.Merchant.Name,
			Number:  inputs.Merchant.Number,
			Address: inputs.Merchant.Address,
			Fields:  inputs.Merchant.Fields,
		},
	})
	if err != nil {
		return err
	}

	if !verifyAudit {
		return printJSON(cmd, outcome)
	}

	trail, err := store.ListByDocument(cmd.Context(), documentID.String())
	if err != nil {
		return err
	}
	return printJSON(cmd, verifyOutput{Outcome: outcome, Audit: trail})
}
