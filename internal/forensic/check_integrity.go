package forensic

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"

	"veridoc/internal/asset"
)

const integrityCheckName = "integrity"

// IntegrityCheck fingerprints the raw payload with SHA-256 and BLAKE2b-256
// for the audit trail and duplicate detection. It never judges the document.
type IntegrityCheck struct{}

func (IntegrityCheck) Name() string { return integrityCheckName }

func (IntegrityCheck) Applies(*asset.Document) bool { return true }

func (IntegrityCheck) Run(_ context.Context, doc *asset.Document) Result {
	if doc.Size() == 0 {
		return Neutral(integrityCheckName, "no raw bytes to fingerprint")
	}
	sha := sha256.Sum256(doc.Bytes)
	blake := blake2b.Sum256(doc.Bytes)
	return Result{
		Name:       integrityCheckName,
		Score:      100,
		Suspicious: false,
		Confidence: 1,
		Detail: map[string]any{
			"sha256":      hex.EncodeToString(sha[:]),
			"blake2b_256": hex.EncodeToString(blake[:]),
			"bytes":       doc.Size(),
		},
	}
}

func (IntegrityCheck) Penalty(Result) float64 { return 0 }
