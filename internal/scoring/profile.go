// Package scoring turns sub-scores into the final trust score and decision.
// A Profile fixes, per document type, the sub-score caps, the compared
// fields with their strictness, and the decision floors; the engine itself
// is a pure function over a Profile and the gathered inputs.
package scoring

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"veridoc/internal/comparison"
	"veridoc/internal/identifier"
	"veridoc/internal/similarity"
	"veridoc/pkg/domain"
)

// Default decision boundaries shared by the built-in profiles.
const (
	defaultHardFailFloor   = 0.85
	defaultSoftFailFloor   = 0.90
	defaultPassThreshold   = 75
	defaultReviewThreshold = 50
)

// Profile fixes how one document type is scored. Built once at startup,
// read-only afterwards.
type Profile struct {
	DocumentType domain.DocumentType

	// OCRCap bounds the extraction-confidence sub-score; RegistryCap bounds
	// the registry identifier match.
	OCRCap      float64
	RegistryCap float64

	// Canonical field keys for this document type.
	NameField    string
	NumberField  string
	AddressField string
	NumberKind   identifier.Kind

	// OCRComparison scores the OCR extraction against the registry record;
	// MerchantComparison scores the merchant's submission against it. A
	// merchant spec without fields disables that sub-score.
	OCRComparison      comparison.Spec
	MerchantComparison comparison.Spec

	// Identity floors on the critical-field similarity, checked before any
	// score threshold.
	HardFailFloor float64
	SoftFailFloor float64

	// Score thresholds: >= pass passes, >= review needs a human, below
	// fails.
	PassThreshold   float64
	ReviewThreshold float64
}

// FieldNames lists the compared field keys in report order.
func (p Profile) FieldNames() []string {
	names := make([]string, 0, len(p.OCRComparison.Fields))
	for _, f := range p.OCRComparison.Fields {
		names = append(names, f.Name)
	}
	return names
}

// ProfileSet maps document types to their profiles.
type ProfileSet map[domain.DocumentType]Profile

// For returns the profile for the document type. Unknown types fall back to
// the companies-house profile with ok=false so the caller can log the
// substitution.
func (ps ProfileSet) For(dt domain.DocumentType) (Profile, bool) {
	if p, ok := ps[dt]; ok {
		return p, true
	}
	return ps[domain.DocumentTypeCompaniesHouse], false
}

// Builtin returns the four built-in profiles.
func Builtin() ProfileSet {
	return ProfileSet{
		domain.DocumentTypeCompaniesHouse:       companyProfile(domain.DocumentTypeCompaniesHouse),
		domain.DocumentTypeCompanyRegistration:  companyProfile(domain.DocumentTypeCompanyRegistration),
		domain.DocumentTypeVATRegistration:      vatProfile(),
		domain.DocumentTypeDirectorVerification: directorProfile(),
	}
}

// nameCaps is the shared name-cap ladder: a weak critical-name match caps
// the comparison sub-score no matter how well the other fields agree.
func nameCaps() []comparison.SimilarityCap {
	return []comparison.SimilarityCap{
		{Below: 0.95, Cap: 25},
		{Below: 0.90, Cap: 20},
	}
}

func companyProfile(dt domain.DocumentType) Profile {
	return Profile{
		DocumentType: dt,
		OCRCap:       30,
		RegistryCap:  40,
		NameField:    "company_name",
		NumberField:  "company_number",
		AddressField: "registered_address",
		NumberKind:   identifier.CompanyNumber,
		OCRComparison: comparison.Spec{
			Pair: "ocr_registry",
			Fields: []comparison.FieldSpec{
				{Name: "company_name", Weight: 0.5, Strictness: similarity.Strict},
				{Name: "company_number", Weight: 0.3, Identifier: identifier.CompanyNumber},
				{Name: "registered_address", Weight: 0.2, Strictness: similarity.Lenient},
			},
			Budget:        30,
			CriticalField: "company_name",
			Caps:          nameCaps(),
		},
		MerchantComparison: comparison.Spec{
			Pair: "merchant_registry",
			Fields: []comparison.FieldSpec{
				{Name: "company_name", Weight: 0.4},
				{Name: "company_number", Weight: 0.4, Identifier: identifier.CompanyNumber},
				{Name: "registered_address", Weight: 0.2},
			},
			Budget: 30,
		},
		HardFailFloor:   defaultHardFailFloor,
		SoftFailFloor:   defaultSoftFailFloor,
		PassThreshold:   defaultPassThreshold,
		ReviewThreshold: defaultReviewThreshold,
	}
}

func vatProfile() Profile {
	return Profile{
		DocumentType: domain.DocumentTypeVATRegistration,
		OCRCap:       40,
		RegistryCap:  30,
		NameField:    "business_name",
		NumberField:  "vat_number",
		AddressField: "registered_address",
		NumberKind:   identifier.VATNumber,
		OCRComparison: comparison.Spec{
			Pair: "ocr_registry",
			Fields: []comparison.FieldSpec{
				{Name: "business_name", Weight: 0.5, Strictness: similarity.Strict},
				{Name: "vat_number", Weight: 0.3, Identifier: identifier.VATNumber},
				{Name: "registered_address", Weight: 0.2, Strictness: similarity.Lenient},
			},
			Budget:        30,
			CriticalField: "business_name",
			Caps:          nameCaps(),
		},
		MerchantComparison: comparison.Spec{
			Pair: "merchant_registry",
			Fields: []comparison.FieldSpec{
				{Name: "business_name", Weight: 0.4},
				{Name: "vat_number", Weight: 0.4, Identifier: identifier.VATNumber},
				{Name: "registered_address", Weight: 0.2},
			},
			Budget: 30,
		},
		HardFailFloor:   defaultHardFailFloor,
		SoftFailFloor:   defaultSoftFailFloor,
		PassThreshold:   defaultPassThreshold,
		ReviewThreshold: defaultReviewThreshold,
	}
}

// directorProfile has no merchant sub-score: appointment evidence is checked
// against the registry only, merchant data feeds the data-match figure.
func directorProfile() Profile {
	return Profile{
		DocumentType: domain.DocumentTypeDirectorVerification,
		OCRCap:       30,
		RegistryCap:  40,
		NameField:    "director_name",
		NumberField:  "company_number",
		NumberKind:   identifier.CompanyNumber,
		OCRComparison: comparison.Spec{
			Pair: "ocr_registry",
			Fields: []comparison.FieldSpec{
				{Name: "director_name", Weight: 0.5, Strictness: similarity.Strict},
				{Name: "date_of_birth", Weight: 0.2, ExactMatch: true},
				{Name: "company_number", Weight: 0.15, Identifier: identifier.CompanyNumber},
				{Name: "appointment_date", Weight: 0.15, ExactMatch: true},
			},
			Budget:        30,
			CriticalField: "director_name",
			Caps:          nameCaps(),
		},
		MerchantComparison: comparison.Spec{
			Pair:   "merchant_registry",
			Budget: 0,
		},
		HardFailFloor:   defaultHardFailFloor,
		SoftFailFloor:   defaultSoftFailFloor,
		PassThreshold:   defaultPassThreshold,
		ReviewThreshold: defaultReviewThreshold,
	}
}

// Override adjusts one profile's caps and floors. Unset fields keep the
// built-in value.
type Override struct {
	OCRCap          *float64 `toml:"ocr_cap"`
	RegistryCap     *float64 `toml:"registry_cap"`
	ComparisonCap   *float64 `toml:"comparison_cap"`
	MerchantCap     *float64 `toml:"merchant_cap"`
	HardFailFloor   *float64 `toml:"hard_fail_floor"`
	SoftFailFloor   *float64 `toml:"soft_fail_floor"`
	PassThreshold   *float64 `toml:"pass_threshold"`
	ReviewThreshold *float64 `toml:"review_threshold"`
}

// LoadOverrides reads a TOML override file keyed by document type:
//
//	[vat_registration]
//	ocr_cap = 35.0
//	hard_fail_floor = 0.80
func LoadOverrides(path string) (map[string]Override, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scoring: read overrides: %w", err)
	}
	var out map[string]Override
	if err := toml.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("scoring: parse overrides: %w", err)
	}
	return out, nil
}

// Apply returns a new profile set with the overrides applied. It fails on
// unknown document types and on values outside their legal ranges, so a
// typo in the file stops the process at startup instead of skewing scores.
func (ps ProfileSet) Apply(overrides map[string]Override) (ProfileSet, error) {
	out := make(ProfileSet, len(ps))
	for dt, p := range ps {
		out[dt] = p
	}

	for key, ov := range overrides {
		dt, err := domain.ParseDocumentType(key)
		if err != nil {
			return nil, fmt.Errorf("scoring: overrides: %w", err)
		}
		p, ok := out[dt]
		if !ok {
			return nil, fmt.Errorf("scoring: overrides: no profile for %q", key)
		}
		if err := applyOverride(&p, ov); err != nil {
			return nil, fmt.Errorf("scoring: overrides[%s]: %w", key, err)
		}
		out[dt] = p
	}
	return out, nil
}

func applyOverride(p *Profile, ov Override) error {
	setCap := func(dst *float64, v *float64, name string) error {
		if v == nil {
			return nil
		}
		if *v < 0 || *v > 100 {
			return fmt.Errorf("%s %v outside [0,100]", name, *v)
		}
		*dst = *v
		return nil
	}
	if err := setCap(&p.OCRCap, ov.OCRCap, "ocr_cap"); err != nil {
		return err
	}
	if err := setCap(&p.RegistryCap, ov.RegistryCap, "registry_cap"); err != nil {
		return err
	}
	if err := setCap(&p.OCRComparison.Budget, ov.ComparisonCap, "comparison_cap"); err != nil {
		return err
	}
	if err := setCap(&p.MerchantComparison.Budget, ov.MerchantCap, "merchant_cap"); err != nil {
		return err
	}
	if err := setCap(&p.PassThreshold, ov.PassThreshold, "pass_threshold"); err != nil {
		return err
	}
	if err := setCap(&p.ReviewThreshold, ov.ReviewThreshold, "review_threshold"); err != nil {
		return err
	}

	setFloor := func(dst *float64, v *float64, name string) error {
		if v == nil {
			return nil
		}
		if *v < 0 || *v > 1 {
			return fmt.Errorf("%s %v outside [0,1]", name, *v)
		}
		*dst = *v
		return nil
	}
	if err := setFloor(&p.HardFailFloor, ov.HardFailFloor, "hard_fail_floor"); err != nil {
		return err
	}
	if err := setFloor(&p.SoftFailFloor, ov.SoftFailFloor, "soft_fail_floor"); err != nil {
		return err
	}

	if p.HardFailFloor > p.SoftFailFloor {
		return fmt.Errorf("hard_fail_floor %v above soft_fail_floor %v", p.HardFailFloor, p.SoftFailFloor)
	}
	if p.ReviewThreshold > p.PassThreshold {
		return fmt.Errorf("review_threshold %v above pass_threshold %v", p.ReviewThreshold, p.PassThreshold)
	}
	return nil
}
