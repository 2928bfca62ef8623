package scoring

import "fmt"

// Decision is the engine's verdict on a document.
type Decision string

const (
	DecisionPass   Decision = "PASS"
	DecisionReview Decision = "REVIEW"
	DecisionFail   Decision = "FAIL"
)

// Decide applies the identity floors first, then the score thresholds. The
// floors only bind when the critical field was actually compared: a missing
// registry record must not auto-fail a document, it just scores low.
func Decide(finalScore, criticalSim float64, criticalCompared bool, p Profile) (Decision, []DecisionOverride) {
	if criticalCompared {
		if criticalSim < p.HardFailFloor {
			return DecisionFail, []DecisionOverride{{
				Kind: OverrideHardFail,
				Reason: fmt.Sprintf("critical field similarity %.2f below hard-fail floor %.2f",
					criticalSim, p.HardFailFloor),
			}}
		}
		if criticalSim < p.SoftFailFloor {
			return DecisionReview, []DecisionOverride{{
				Kind: OverrideSoftFail,
				Reason: fmt.Sprintf("critical field similarity %.2f below soft-fail floor %.2f",
					criticalSim, p.SoftFailFloor),
			}}
		}
	}

	switch {
	case finalScore >= p.PassThreshold:
		return DecisionPass, nil
	case finalScore >= p.ReviewThreshold:
		return DecisionReview, nil
	default:
		return DecisionFail, nil
	}
}
