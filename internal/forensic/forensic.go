// Package forensic inspects a document's raw bytes and decoded pages for
// evidence of tampering. It runs a battery of independent checks (metadata,
// error-level analysis, compression history, copy-move matching, frequency
// and noise statistics) and folds their findings into a single bounded
// penalty.
//
// Every check is pure over the immutable asset and safe to run concurrently.
// A check that cannot run reports a neutral result instead of an error: the
// battery never aborts an analysis, and zero-confidence results contribute
// nothing to the penalty.
package forensic

import "fmt"

// Result is the immutable output of one check over one document.
type Result struct {
	// Name identifies the check that produced the result.
	Name string `json:"check_name"`
	// Score grades the document 0-100 for this check; 100 is pristine.
	Score float64 `json:"score"`
	// Suspicious marks scores the check considers evidence of tampering.
	Suspicious bool `json:"suspicious"`
	// Confidence in [0,1] qualifies the result. Zero means the check could
	// not produce a signal; the aggregator ignores such results entirely.
	Confidence float64 `json:"confidence"`
	// Detail carries structured diagnostics for audit and display.
	Detail map[string]any `json:"detail,omitempty"`
}

// Neutral is the result of a check that could not run: corrupt asset, missing
// pages, timeout, panic. It carries no opinion either way; the aggregator
// skips it.
func Neutral(name, reason string) Result {
	return Result{
		Name:       name,
		Score:      100,
		Confidence: 0,
		Detail:     map[string]any{"reason": reason},
	}
}

// Report is the ordered outcome of a full battery run.
type Report struct {
	Results []Result `json:"results"`
	// Penalty is the points subtracted from the aggregate trust score,
	// capped at PenaltyCeiling.
	Penalty float64 `json:"penalty"`
}

// Flags renders the suspicious results as human-readable strings for the
// outcome record.
func (r Report) Flags() []string {
	var flags []string
	for _, res := range r.Results {
		if !res.Suspicious {
			continue
		}
		if f, ok := res.Detail["flag"].(string); ok && f != "" {
			flags = append(flags, fmt.Sprintf("%s: %s", res.Name, f))
			continue
		}
		flags = append(flags, res.Name)
	}
	return flags
}

// ResultFor returns the named check's result, if the battery produced one.
func (r Report) ResultFor(name string) (Result, bool) {
	for _, res := range r.Results {
		if res.Name == name {
			return res, true
		}
	}
	return Result{}, false
}
