package scoring

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veridoc/pkg/domain"
)

func TestOCRScore(t *testing.T) {
	tests := []struct {
		name       string
		confidence float64
		ceiling    float64
		want       float64
	}{
		{"zero confidence earns nothing", 0, 30, 0},
		{"negative confidence earns nothing", -5, 30, 0},
		{"full confidence takes the cap", 100, 30, 30},
		{"confidence above one hundred is clamped", 130, 30, 30},
		{"proportional share under the cap", 97, 30, 29.1},
		{"half confidence takes half the cap", 50, 40, 20},
		{"zero cap earns nothing", 95, 0, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, OCRScore(tc.confidence, tc.ceiling), 1e-9)
		})
	}
}

func TestEvaluate(t *testing.T) {
	company := Builtin()[domain.DocumentTypeCompaniesHouse]

	agreed := map[string]string{
		"company_name":       "Aurora Consulting Limited",
		"company_number":     "12345678",
		"registered_address": "1 Poultry, London EC2R 8EJ",
	}

	t.Run("all sources agreeing clamps the score at one hundred", func(t *testing.T) {
		eval := Evaluate(Input{
			Profile:        company,
			OCRConfidence:  97,
			OCRFields:      agreed,
			MerchantFields: agreed,
			RegistryFields: agreed,
			RegistryFound:  true,
		})

		assert.InDelta(t, 29.1, eval.Breakdown.OCRScore, 1e-9)
		assert.InDelta(t, 40, eval.Breakdown.RegistryScore, 1e-9)
		assert.InDelta(t, 30, eval.Breakdown.ComparisonScore, 1e-9)
		assert.InDelta(t, 30, eval.Breakdown.ProvidedScore, 1e-9)
		assert.InDelta(t, 100, eval.Breakdown.DataMatchScore, 1e-9)
		assert.InDelta(t, 100, eval.Breakdown.FinalScore, 1e-9)
		assert.Equal(t, DecisionPass, eval.Decision)
		assert.Empty(t, eval.Overrides)
		assert.True(t, eval.CriticalCompared)
		assert.InDelta(t, 1, eval.CriticalSimilarity, 1e-9)
		assert.Len(t, eval.Comparisons, 7)
	})

	t.Run("a near match lands in the pass band", func(t *testing.T) {
		ocr := map[string]string{
			"company_name":       strings.Repeat("a", 99) + "b",
			"company_number":     "12345678",
			"registered_address": "aaaaaaaa",
		}
		registry := map[string]string{
			"company_name":       strings.Repeat("a", 99) + "c",
			"company_number":     "12345678",
			"registered_address": "aaaaaaaaaaaa",
		}

		eval := Evaluate(Input{
			Profile:        company,
			OCRConfidence:  97,
			OCRFields:      ocr,
			RegistryFields: registry,
			RegistryFound:  true,
		})

		// name 0.99 keeps full strict weight, address 0.8 is lenient.
		assert.InDelta(t, 29.1, eval.Breakdown.OCRScore, 1e-9)
		assert.InDelta(t, 40, eval.Breakdown.RegistryScore, 1e-9)
		assert.InDelta(t, 28.65, eval.Breakdown.ComparisonScore, 1e-9)
		assert.InDelta(t, 0, eval.Breakdown.ProvidedScore, 1e-9)
		assert.InDelta(t, 93, eval.Breakdown.DataMatchScore, 1e-9)
		assert.InDelta(t, 97.75, eval.Breakdown.FinalScore, 1e-9)
		assert.Equal(t, DecisionPass, eval.Decision)
		assert.Empty(t, eval.Overrides)
		assert.InDelta(t, 0.99, eval.CriticalSimilarity, 1e-9)
	})

	t.Run("a missing registry record scores low without binding the floors", func(t *testing.T) {
		eval := Evaluate(Input{
			Profile:       company,
			OCRConfidence: 97,
			OCRFields:     agreed,
			RegistryFields: map[string]string{
				"company_name":       "Completely Different Plc",
				"company_number":     "99999999",
				"registered_address": "9 Nowhere Lane",
			},
			RegistryFound: false,
		})

		assert.InDelta(t, 0, eval.Breakdown.RegistryScore, 1e-9)
		assert.InDelta(t, 0, eval.Breakdown.ComparisonScore, 1e-9)
		assert.InDelta(t, 0, eval.Breakdown.DataMatchScore, 1e-9)
		assert.InDelta(t, 29.1, eval.Breakdown.FinalScore, 1e-9)
		assert.Equal(t, DecisionFail, eval.Decision)
		assert.False(t, eval.CriticalCompared)
		assert.Empty(t, eval.Overrides)
		for _, fc := range eval.Comparisons {
			assert.True(t, fc.Missing, "field %s should be missing", fc.Field)
		}
	})

	t.Run("a critical name mismatch fails even with a high score", func(t *testing.T) {
		ocr := map[string]string{
			"company_name":       "aaaa",
			"company_number":     "12345678",
			"registered_address": "10 Downing Street",
		}
		registry := map[string]string{
			"company_name":       "bbbb",
			"company_number":     "12345678",
			"registered_address": "10 Downing Street",
		}

		eval := Evaluate(Input{
			Profile:        company,
			OCRConfidence:  97,
			OCRFields:      ocr,
			RegistryFields: registry,
			RegistryFound:  true,
		})

		assert.InDelta(t, 15, eval.Breakdown.ComparisonScore, 1e-9)
		assert.InDelta(t, 84.1, eval.Breakdown.FinalScore, 1e-9)
		assert.Equal(t, DecisionFail, eval.Decision)
		require.Len(t, eval.Overrides, 1)
		assert.Equal(t, OverrideHardFail, eval.Overrides[0].Kind)
		assert.InDelta(t, 0, eval.CriticalSimilarity, 1e-9)
	})

	t.Run("a soft-band name caps the comparison and forces review", func(t *testing.T) {
		ocr := map[string]string{
			"company_name":       "abcdefgh",
			"company_number":     "12345678",
			"registered_address": "10 Downing Street",
		}
		registry := map[string]string{
			"company_name":       "abcdefgx",
			"company_number":     "12345678",
			"registered_address": "10 Downing Street",
		}

		eval := Evaluate(Input{
			Profile:        company,
			OCRConfidence:  97,
			OCRFields:      ocr,
			RegistryFields: registry,
			RegistryFound:  true,
		})

		assert.InDelta(t, 0.875, eval.CriticalSimilarity, 1e-9)
		assert.InDelta(t, 20, eval.Breakdown.ComparisonScore, 1e-9)
		assert.InDelta(t, 89.1, eval.Breakdown.FinalScore, 1e-9)
		assert.Equal(t, DecisionReview, eval.Decision)
		require.Len(t, eval.Overrides, 2)
		assert.Equal(t, OverrideNameCap, eval.Overrides[0].Kind)
		assert.Equal(t, OverrideSoftFail, eval.Overrides[1].Kind)
	})

	t.Run("the forensic penalty drains the final score", func(t *testing.T) {
		eval := Evaluate(Input{
			Profile:         company,
			OCRConfidence:   97,
			OCRFields:       agreed,
			RegistryFields:  agreed,
			RegistryFound:   true,
			ForensicPenalty: 15,
		})

		assert.InDelta(t, 15, eval.Breakdown.ForensicPenalty, 1e-9)
		assert.InDelta(t, 84.1, eval.Breakdown.FinalScore, 1e-9)
		assert.Equal(t, DecisionPass, eval.Decision)
	})

	t.Run("director evidence has no merchant sub-score", func(t *testing.T) {
		director := Builtin()[domain.DocumentTypeDirectorVerification]
		fields := map[string]string{
			"director_name":    "Joan Murdoch",
			"date_of_birth":    "1980-02-14",
			"company_number":   "SC123456",
			"appointment_date": "2015-06-01",
		}
		registry := map[string]string{
			"director_name":    "Joan Murdoch",
			"date_of_birth":    "1980-02-14",
			"company_number":   "sc 123456",
			"appointment_date": "2015-06-01",
		}

		eval := Evaluate(Input{
			Profile:        director,
			OCRConfidence:  90,
			OCRFields:      fields,
			MerchantFields: map[string]string{"director_name": "Joan Murdoch"},
			RegistryFields: registry,
			RegistryFound:  true,
		})

		assert.InDelta(t, 27, eval.Breakdown.OCRScore, 1e-9)
		assert.InDelta(t, 40, eval.Breakdown.RegistryScore, 1e-9)
		assert.InDelta(t, 30, eval.Breakdown.ComparisonScore, 1e-9)
		assert.InDelta(t, 0, eval.Breakdown.ProvidedScore, 1e-9)
		assert.InDelta(t, 97, eval.Breakdown.FinalScore, 1e-9)
		assert.Equal(t, DecisionPass, eval.Decision)
		assert.Len(t, eval.Comparisons, 5)
	})
}
