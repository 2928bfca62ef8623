package forensic

import (
	"context"

	"veridoc/internal/asset"
)

// Check is one independent forensic analyzer. Implementations must be
// stateless and side-effect free: Run only reads the asset, honors ctx
// between expensive computations, and returns a neutral result instead of an
// error when it cannot produce a signal.
type Check interface {
	// Name is the stable identifier used in results, metrics, and flags.
	Name() string

	// Applies reports whether the check is meaningful for this asset kind.
	// Checks that apply but cannot run still return neutral results.
	Applies(doc *asset.Document) bool

	// Run executes the analysis. It must not panic (the battery recovers
	// regardless) and must not block past ctx.
	Run(ctx context.Context, doc *asset.Document) Result

	// Penalty converts the check's own result into its contribution to the
	// aggregate penalty. Pure step function; zero for neutral results.
	Penalty(r Result) float64
}

// DefaultChecks returns the full battery in its fixed registry order. New
// checks are appended here; the aggregator needs no change.
func DefaultChecks() []Check {
	return []Check{
		MetadataCheck{},
		ELACheck{},
		JPEGQualityCheck{},
		CopyMoveCheck{},
		PDFMetadataCheck{},
		ResolutionCheck{},
		HistogramCheck{},
		NoiseCheck{},
		IntegrityCheck{},
	}
}
