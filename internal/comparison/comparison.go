// Package comparison evaluates field agreement between document sources: the
// OCR extraction, the authoritative registry record, and the merchant's own
// submission. Each document type supplies a Spec naming the fields, their
// weights, and their strictness; the engine turns a pair of field maps into a
// bounded sub-score plus per-field diagnostics for the outcome report.
package comparison

import (
	"strings"

	"veridoc/internal/identifier"
	"veridoc/internal/similarity"

	platformstrings "veridoc/pkg/platform/strings"
)

// FieldSpec describes one compared field: the key to read from both sources,
// its share of the budget, and how its similarity is judged.
type FieldSpec struct {
	Name   string
	Weight float64
	// Strictness selects the weighting curve. Defaults to Exact, where the
	// raw similarity ratio is the score.
	Strictness similarity.Strictness
	// Identifier, when set, normalizes both sides before comparing. A side
	// the normalizer rejects scores zero with a diagnostic, it is never
	// silently dropped.
	Identifier identifier.Kind
	// ExactMatch compares whitespace-collapsed, case-folded values for
	// equality instead of fuzzy similarity. Dates and codes use this.
	ExactMatch bool
}

// SimilarityCap limits the sub-score when the critical field's similarity
// falls below a floor. A strong score built on secondary fields must not
// hide a weak legal-name match.
type SimilarityCap struct {
	Below float64
	Cap   float64
}

// Spec is one source-pair comparison for a document type.
type Spec struct {
	// Pair labels the comparison in diagnostics, e.g. "ocr_registry".
	Pair string
	// Fields in report order. Weights are shares of Budget and are NOT
	// renormalized when a field is missing: absence costs its weight
	// without counting as a contradiction.
	Fields []FieldSpec
	// Budget is the sub-score ceiling in points.
	Budget float64
	// CriticalField names the field whose similarity drives caps and
	// decision overrides. Empty disables both.
	CriticalField string
	// Caps apply when the critical field was compared; the tightest
	// matching cap wins.
	Caps []SimilarityCap
}

// FieldComparison records one compared pair for the outcome report.
type FieldComparison struct {
	Pair       string  `json:"pair"`
	Field      string  `json:"field"`
	ValueA     string  `json:"value_a"`
	ValueB     string  `json:"value_b"`
	Similarity float64 `json:"similarity"`
	Weight     float64 `json:"weight"`
	Weighted   float64 `json:"weighted"`
	Profile    string  `json:"profile"`
	Missing    bool    `json:"missing,omitempty"`
	Detail     string  `json:"detail,omitempty"`
}

// Result is the outcome of evaluating one Spec.
type Result struct {
	Fields []FieldComparison
	// Score in [0, Budget].
	Score float64
	// CriticalSimilarity is the critical field's raw similarity; only
	// meaningful when CriticalCompared is true.
	CriticalSimilarity float64
	CriticalCompared   bool
	// Capped reports that a SimilarityCap lowered the score.
	Capped bool
}

// Compare evaluates the Spec over two field maps. It never fails: missing
// fields contribute zero weight, malformed identifiers score zero with a
// diagnostic, and the result is always within budget.
func (s Spec) Compare(a, b map[string]string) Result {
	var res Result
	var sum float64

	for _, f := range s.Fields {
		va, okA := lookup(a, f.Name)
		vb, okB := lookup(b, f.Name)
		fc := FieldComparison{
			Pair:    s.Pair,
			Field:   f.Name,
			ValueA:  va,
			ValueB:  vb,
			Weight:  f.Weight,
			Profile: string(f.strictness()),
		}
		if !okA || !okB {
			fc.Missing = true
			fc.Detail = "missing on one side"
			res.Fields = append(res.Fields, fc)
			continue
		}

		sim, detail := f.similarity(va, vb)
		fc.Similarity = sim
		fc.Detail = detail
		fc.Weighted = similarity.Weighted(sim, f.strictness()) * f.Weight * s.Budget
		sum += fc.Weighted
		res.Fields = append(res.Fields, fc)

		if f.Name == s.CriticalField {
			res.CriticalCompared = true
			res.CriticalSimilarity = sim
		}
	}

	if sum > s.Budget {
		sum = s.Budget
	}
	if sum < 0 {
		sum = 0
	}

	if res.CriticalCompared {
		ceiling := s.Budget
		for _, c := range s.Caps {
			if res.CriticalSimilarity < c.Below && c.Cap < ceiling {
				ceiling = c.Cap
			}
		}
		if sum > ceiling {
			sum = ceiling
			res.Capped = true
		}
	}

	res.Score = sum
	return res
}

// strictness returns the effective curve, defaulting to Exact.
func (f FieldSpec) strictness() similarity.Strictness {
	if f.Strictness == "" {
		return similarity.Exact
	}
	return f.Strictness
}

// similarity scores one field pair. Both values are known non-empty.
func (f FieldSpec) similarity(va, vb string) (float64, string) {
	if f.Identifier != "" {
		na, okA := identifier.Normalize(f.Identifier, va)
		nb, okB := identifier.Normalize(f.Identifier, vb)
		if !okA || !okB {
			return 0, "identifier normalization failed"
		}
		if na == nb {
			return 1, ""
		}
		return similarity.Ratio(na, nb), ""
	}
	if f.ExactMatch {
		if platformstrings.CollapseWhitespaceLower(va) == platformstrings.CollapseWhitespaceLower(vb) {
			return 1, ""
		}
		return 0, ""
	}
	return similarity.Ratio(va, vb), ""
}

// RegistryMatch scores the registry's identifier against the document's into
// the given budget: exact normalized match takes the full budget, partial
// matches take their similarity share, a missing or malformed side takes
// nothing.
func RegistryMatch(docValue, registryValue string, kind identifier.Kind, budget float64) (float64, FieldComparison) {
	fc := FieldComparison{
		Pair:    "registry",
		Field:   string(kind),
		ValueA:  docValue,
		ValueB:  registryValue,
		Weight:  1,
		Profile: string(similarity.Exact),
	}
	if strings.TrimSpace(docValue) == "" || strings.TrimSpace(registryValue) == "" {
		fc.Missing = true
		fc.Detail = "missing on one side"
		return 0, fc
	}

	nd, okD := identifier.Normalize(kind, docValue)
	nr, okR := identifier.Normalize(kind, registryValue)
	if !okD || !okR {
		fc.Detail = "identifier normalization failed"
		return 0, fc
	}
	if nd == nr {
		fc.Similarity = 1
		fc.Weighted = budget
		return budget, fc
	}

	fc.Similarity = similarity.Ratio(nd, nr)
	fc.Weighted = fc.Similarity * budget
	return fc.Weighted, fc
}

// DataMatch is the informational cross-source agreement score: the mean
// similarity over every field value present in at least two of the three
// sources, scaled to 0-100. It never feeds the trust score.
func DataMatch(ocr, merchant, registry map[string]string, fields []string) float64 {
	var sims []float64
	for _, name := range fields {
		vo, okO := lookup(ocr, name)
		vm, okM := lookup(merchant, name)
		vr, okR := lookup(registry, name)
		if okO && okR {
			sims = append(sims, similarity.Ratio(vo, vr))
		}
		if okM && okR {
			sims = append(sims, similarity.Ratio(vm, vr))
		}
		if okO && okM {
			sims = append(sims, similarity.Ratio(vo, vm))
		}
	}
	if len(sims) == 0 {
		return 0
	}
	var sum float64
	for _, s := range sims {
		sum += s
	}
	return sum / float64(len(sims)) * 100
}

// lookup treats absent keys and blank values identically: not provided.
func lookup(m map[string]string, key string) (string, bool) {
	if m == nil {
		return "", false
	}
	v := strings.TrimSpace(m[key])
	return v, v != ""
}
