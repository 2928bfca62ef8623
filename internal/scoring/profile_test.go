package scoring

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veridoc/internal/identifier"
	"veridoc/internal/similarity"
	"veridoc/pkg/domain"
)

func ptr(v float64) *float64 { return &v }

func TestBuiltin(t *testing.T) {
	ps := Builtin()
	require.Len(t, ps, 4)

	t.Run("company profiles weight the registry over extraction", func(t *testing.T) {
		for _, dt := range []domain.DocumentType{
			domain.DocumentTypeCompaniesHouse,
			domain.DocumentTypeCompanyRegistration,
		} {
			p, ok := ps[dt]
			require.True(t, ok, "missing profile for %s", dt)
			assert.Equal(t, dt, p.DocumentType)
			assert.InDelta(t, 30, p.OCRCap, 1e-9)
			assert.InDelta(t, 40, p.RegistryCap, 1e-9)
			assert.Equal(t, "company_name", p.NameField)
			assert.Equal(t, "company_number", p.NumberField)
			assert.Equal(t, "registered_address", p.AddressField)
			assert.Equal(t, identifier.CompanyNumber, p.NumberKind)
			assert.Equal(t, "company_name", p.OCRComparison.CriticalField)
			assert.InDelta(t, 30, p.OCRComparison.Budget, 1e-9)
			assert.InDelta(t, 30, p.MerchantComparison.Budget, 1e-9)
			assert.Len(t, p.MerchantComparison.Fields, 3)
		}
	})

	t.Run("vat profile weights extraction over the registry", func(t *testing.T) {
		p := ps[domain.DocumentTypeVATRegistration]
		assert.InDelta(t, 40, p.OCRCap, 1e-9)
		assert.InDelta(t, 30, p.RegistryCap, 1e-9)
		assert.Equal(t, "business_name", p.NameField)
		assert.Equal(t, "vat_number", p.NumberField)
		assert.Equal(t, identifier.VATNumber, p.NumberKind)
		assert.Equal(t, "business_name", p.OCRComparison.CriticalField)
	})

	t.Run("director profile compares appointment facts and skips the merchant", func(t *testing.T) {
		p := ps[domain.DocumentTypeDirectorVerification]
		assert.InDelta(t, 30, p.OCRCap, 1e-9)
		assert.InDelta(t, 40, p.RegistryCap, 1e-9)
		assert.Equal(t, "director_name", p.NameField)
		assert.Empty(t, p.AddressField)
		assert.Empty(t, p.MerchantComparison.Fields)
		assert.Zero(t, p.MerchantComparison.Budget)

		require.Len(t, p.OCRComparison.Fields, 4)
		name := p.OCRComparison.Fields[0]
		assert.Equal(t, "director_name", name.Name)
		assert.InDelta(t, 0.5, name.Weight, 1e-9)
		assert.Equal(t, similarity.Strict, name.Strictness)
		dob := p.OCRComparison.Fields[1]
		assert.Equal(t, "date_of_birth", dob.Name)
		assert.True(t, dob.ExactMatch)
		assert.InDelta(t, 0.2, dob.Weight, 1e-9)
	})

	t.Run("every profile shares the decision boundaries", func(t *testing.T) {
		for dt, p := range ps {
			assert.InDelta(t, 0.85, p.HardFailFloor, 1e-9, "%s", dt)
			assert.InDelta(t, 0.90, p.SoftFailFloor, 1e-9, "%s", dt)
			assert.InDelta(t, 75, p.PassThreshold, 1e-9, "%s", dt)
			assert.InDelta(t, 50, p.ReviewThreshold, 1e-9, "%s", dt)
		}
	})

	t.Run("field names follow the comparison order", func(t *testing.T) {
		p := ps[domain.DocumentTypeCompaniesHouse]
		assert.Equal(t, []string{"company_name", "company_number", "registered_address"}, p.FieldNames())
	})
}

func TestProfileSetFor(t *testing.T) {
	ps := Builtin()

	t.Run("known types resolve directly", func(t *testing.T) {
		p, ok := ps.For(domain.DocumentTypeVATRegistration)
		assert.True(t, ok)
		assert.Equal(t, domain.DocumentTypeVATRegistration, p.DocumentType)
	})

	t.Run("unknown types fall back to the companies-house profile", func(t *testing.T) {
		p, ok := ps.For(domain.DocumentType("bank_statement"))
		assert.False(t, ok)
		assert.Equal(t, domain.DocumentTypeCompaniesHouse, p.DocumentType)
	})
}

func TestLoadOverrides(t *testing.T) {
	t.Run("parses a keyed override file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "overrides.toml")
		require.NoError(t, os.WriteFile(path, []byte(`
[vat_registration]
ocr_cap = 35.0
hard_fail_floor = 0.8

[companies_house]
pass_threshold = 80.0
`), 0o644))

		overrides, err := LoadOverrides(path)
		require.NoError(t, err)
		require.Len(t, overrides, 2)

		vat := overrides["vat_registration"]
		require.NotNil(t, vat.OCRCap)
		assert.InDelta(t, 35, *vat.OCRCap, 1e-9)
		require.NotNil(t, vat.HardFailFloor)
		assert.InDelta(t, 0.8, *vat.HardFailFloor, 1e-9)
		assert.Nil(t, vat.RegistryCap)

		ch := overrides["companies_house"]
		require.NotNil(t, ch.PassThreshold)
		assert.InDelta(t, 80, *ch.PassThreshold, 1e-9)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := LoadOverrides(filepath.Join(t.TempDir(), "absent.toml"))
		assert.Error(t, err)
	})

	t.Run("malformed toml is an error", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "overrides.toml")
		require.NoError(t, os.WriteFile(path, []byte("[vat_registration\nocr_cap ="), 0o644))
		_, err := LoadOverrides(path)
		assert.Error(t, err)
	})
}

func TestApplyOverrides(t *testing.T) {
	t.Run("adjusts the named profile and leaves the rest alone", func(t *testing.T) {
		base := Builtin()
		out, err := base.Apply(map[string]Override{
			"vat_registration": {OCRCap: ptr(35), PassThreshold: ptr(80)},
		})
		require.NoError(t, err)

		vat := out[domain.DocumentTypeVATRegistration]
		assert.InDelta(t, 35, vat.OCRCap, 1e-9)
		assert.InDelta(t, 80, vat.PassThreshold, 1e-9)
		assert.InDelta(t, 30, out[domain.DocumentTypeCompaniesHouse].OCRCap, 1e-9)

		// The receiver set is untouched.
		assert.InDelta(t, 40, base[domain.DocumentTypeVATRegistration].OCRCap, 1e-9)
	})

	t.Run("comparison caps adjust the comparison budgets", func(t *testing.T) {
		out, err := Builtin().Apply(map[string]Override{
			"companies_house": {ComparisonCap: ptr(25), MerchantCap: ptr(10)},
		})
		require.NoError(t, err)
		ch := out[domain.DocumentTypeCompaniesHouse]
		assert.InDelta(t, 25, ch.OCRComparison.Budget, 1e-9)
		assert.InDelta(t, 10, ch.MerchantComparison.Budget, 1e-9)
	})

	t.Run("nil overrides copy the set unchanged", func(t *testing.T) {
		out, err := Builtin().Apply(nil)
		require.NoError(t, err)
		assert.Len(t, out, 4)
	})

	t.Run("unknown document type is rejected", func(t *testing.T) {
		_, err := Builtin().Apply(map[string]Override{"passport": {OCRCap: ptr(20)}})
		assert.ErrorContains(t, err, "passport")
	})

	t.Run("caps outside zero to one hundred are rejected", func(t *testing.T) {
		_, err := Builtin().Apply(map[string]Override{"companies_house": {OCRCap: ptr(120)}})
		assert.ErrorContains(t, err, "ocr_cap")

		_, err = Builtin().Apply(map[string]Override{"companies_house": {PassThreshold: ptr(-5)}})
		assert.ErrorContains(t, err, "pass_threshold")
	})

	t.Run("floors outside zero to one are rejected", func(t *testing.T) {
		_, err := Builtin().Apply(map[string]Override{"companies_house": {HardFailFloor: ptr(1.5)}})
		assert.ErrorContains(t, err, "hard_fail_floor")
	})

	t.Run("a hard floor above the soft floor is rejected", func(t *testing.T) {
		_, err := Builtin().Apply(map[string]Override{"companies_house": {HardFailFloor: ptr(0.95)}})
		assert.ErrorContains(t, err, "above soft_fail_floor")
	})

	t.Run("a review threshold above the pass threshold is rejected", func(t *testing.T) {
		_, err := Builtin().Apply(map[string]Override{"companies_house": {ReviewThreshold: ptr(80)}})
		assert.ErrorContains(t, err, "above pass_threshold")
	})

	t.Run("consistent threshold rewrites are accepted", func(t *testing.T) {
		out, err := Builtin().Apply(map[string]Override{
			"companies_house": {PassThreshold: ptr(60), ReviewThreshold: ptr(40)},
		})
		require.NoError(t, err)
		ch := out[domain.DocumentTypeCompaniesHouse]
		assert.InDelta(t, 60, ch.PassThreshold, 1e-9)
		assert.InDelta(t, 40, ch.ReviewThreshold, 1e-9)
	})
}
