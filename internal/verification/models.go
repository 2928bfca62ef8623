// Package verification runs the full pipeline for one document: forensic
// battery, registry and merchant comparisons, scoring, and report assembly.
package verification

import (
	"time"

	"veridoc/internal/asset"
	"veridoc/internal/comparison"
	"veridoc/internal/forensic"
	"veridoc/internal/scoring"
	"veridoc/pkg/domain"
)

// Status is the outcome lifecycle state.
type Status string

const (
	StatusPassed Status = "passed"
	StatusFailed Status = "failed"
	StatusReview Status = "review"
	// StatusManualReview marks an escalated revision awaiting a senior
	// reviewer. Only internal/review produces it.
	StatusManualReview Status = "manual_review"
)

// StatusFor maps a decision to the status a fresh outcome starts in.
func StatusFor(d scoring.Decision) Status {
	switch d {
	case scoring.DecisionPass:
		return StatusPassed
	case scoring.DecisionFail:
		return StatusFailed
	default:
		return StatusReview
	}
}

// OCRInput carries the extraction results for a document.
type OCRInput struct {
	Fields map[string]string
	// Confidence is the extraction engine's 0-100 confidence.
	Confidence float64
}

// RegistryInput carries the official record. Name, Number and Address cover
// the common fields; Fields carries type-specific extras such as dates of
// birth. Found is false when the lookup returned nothing.
type RegistryInput struct {
	Name    string
	Number  string
	Address string
	Fields  map[string]string
	Found   bool
}

// MerchantInput carries the merchant's own submission. All fields optional.
type MerchantInput struct {
	Name    string
	Number  string
	Address string
	Fields  map[string]string
}

// Request is one verification job.
type Request struct {
	DocumentID   domain.DocumentID
	DocumentType domain.DocumentType
	Asset        *asset.Document
	OCR          OCRInput
	Registry     RegistryInput
	Merchant     MerchantInput
}

// Outcome is the assembled verification report. Plain data, never mutated;
// manual review produces a new Outcome revision referencing this one.
type Outcome struct {
	ReportID     domain.ReportID     `json:"report_id"`
	DocumentID   domain.DocumentID   `json:"document_id"`
	DocumentType domain.DocumentType `json:"document_type"`

	Breakdown scoring.Breakdown `json:"breakdown"`
	Decision  scoring.Decision  `json:"decision"`
	Status    Status            `json:"status"`

	Forensic    forensic.Report              `json:"forensic"`
	Comparisons []comparison.FieldComparison `json:"comparisons"`
	Flags       []string                     `json:"flags,omitempty"`
	Overrides   []scoring.DecisionOverride   `json:"overrides,omitempty"`

	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`

	// Review lineage, set only on revisions produced by internal/review.
	RevisionOf   *domain.ReportID `json:"revision_of,omitempty"`
	ReviewAction string           `json:"review_action,omitempty"`
	ReviewedBy   string           `json:"reviewed_by,omitempty"`
	ReviewNotes  string           `json:"review_notes,omitempty"`
	ReviewedAt   *time.Time       `json:"reviewed_at,omitempty"`
}
