package scoring

import (
	"fmt"

	"veridoc/internal/comparison"
)

// Input carries everything Evaluate needs. All field maps use the profile's
// canonical keys; blank values count as absent.
type Input struct {
	Profile Profile

	// OCRConfidence is the extraction engine's 0-100 confidence.
	OCRConfidence float64
	// OCRFields holds the values extracted from the document.
	OCRFields map[string]string
	// MerchantFields holds the values the merchant submitted.
	MerchantFields map[string]string
	// RegistryFields holds the official record; RegistryFound is false when
	// the lookup returned nothing.
	RegistryFields map[string]string
	RegistryFound  bool

	// ForensicPenalty is the aggregated tamper penalty, 0-15.
	ForensicPenalty float64
}

// Breakdown itemizes the final score. DataMatchScore is informational and
// not part of the sum.
type Breakdown struct {
	OCRScore        float64 `json:"ocr_score"`
	RegistryScore   float64 `json:"registry_score"`
	ComparisonScore float64 `json:"comparison_score"`
	ProvidedScore   float64 `json:"provided_score"`
	DataMatchScore  float64 `json:"data_match_score"`
	ForensicPenalty float64 `json:"forensic_penalty"`
	FinalScore      float64 `json:"final_score"`
}

// DecisionOverride records a rule that moved the decision away from the
// plain score thresholds, or a cap that held the score down.
type DecisionOverride struct {
	Kind   string `json:"kind"`
	Reason string `json:"reason"`
}

// Override kinds.
const (
	OverrideHardFail = "hard_fail"
	OverrideSoftFail = "soft_fail"
	OverrideNameCap  = "name_cap"
)

// Evaluation is the full scoring outcome for one document.
type Evaluation struct {
	Breakdown          Breakdown                    `json:"breakdown"`
	Decision           Decision                     `json:"decision"`
	Comparisons        []comparison.FieldComparison `json:"comparisons"`
	CriticalSimilarity float64                      `json:"critical_similarity"`
	CriticalCompared   bool                         `json:"critical_compared"`
	Overrides          []DecisionOverride           `json:"overrides,omitempty"`
}

// OCRScore converts extraction confidence into points under the cap.
// Confidence is clamped to [0,100] first.
func OCRScore(confidence, ceiling float64) float64 {
	if confidence <= 0 || ceiling <= 0 {
		return 0
	}
	if confidence >= 100 {
		return ceiling
	}
	return confidence / 100 * ceiling
}

// Evaluate runs the scoring pipeline for one document. It is a pure
// function: same input, same evaluation.
func Evaluate(in Input) Evaluation {
	p := in.Profile

	var b Breakdown
	var comparisons []comparison.FieldComparison
	var overrides []DecisionOverride

	b.OCRScore = OCRScore(in.OCRConfidence, p.OCRCap)

	// Without a registry record there is nothing to compare against: the
	// registry-backed sub-scores stay at zero and the identity floors do not
	// bind. Stale fields on the input must not leak past Found.
	registryFields := in.RegistryFields
	if !in.RegistryFound {
		registryFields = nil
	}

	registryScore, registryCmp := comparison.RegistryMatch(
		in.OCRFields[p.NumberField], registryFields[p.NumberField], p.NumberKind, p.RegistryCap)
	b.RegistryScore = registryScore
	comparisons = append(comparisons, registryCmp)

	ocrRes := p.OCRComparison.Compare(in.OCRFields, registryFields)
	b.ComparisonScore = ocrRes.Score
	comparisons = append(comparisons, ocrRes.Fields...)
	if ocrRes.Capped {
		overrides = append(overrides, DecisionOverride{
			Kind: OverrideNameCap,
			Reason: fmt.Sprintf("comparison held at %.1f: critical field similarity %.2f",
				ocrRes.Score, ocrRes.CriticalSimilarity),
		})
	}

	if len(p.MerchantComparison.Fields) > 0 {
		merchRes := p.MerchantComparison.Compare(in.MerchantFields, registryFields)
		b.ProvidedScore = merchRes.Score
		comparisons = append(comparisons, merchRes.Fields...)
	}

	b.DataMatchScore = comparison.DataMatch(in.OCRFields, in.MerchantFields, registryFields, p.FieldNames())

	b.ForensicPenalty = in.ForensicPenalty
	b.FinalScore = clampScore(b.OCRScore + b.RegistryScore + b.ComparisonScore + b.ProvidedScore - b.ForensicPenalty)

	decision, floor := Decide(b.FinalScore, ocrRes.CriticalSimilarity, ocrRes.CriticalCompared, p)
	overrides = append(overrides, floor...)

	return Evaluation{
		Breakdown:          b,
		Decision:           decision,
		Comparisons:        comparisons,
		CriticalSimilarity: ocrRes.CriticalSimilarity,
		CriticalCompared:   ocrRes.CriticalCompared,
		Overrides:          overrides,
	}
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
