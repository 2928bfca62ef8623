// Package identifier canonicalizes registry identifiers so comparisons see
// one spelling per value. UK company numbers and VAT numbers arrive in the
// wild with whitespace, hyphens, dropped leading zeros, and missing country
// prefixes.
package identifier

import (
	"regexp"
	"strings"
)

// Kind selects the normalization rules for an identifier.
type Kind string

const (
	CompanyNumber Kind = "company_number"
	VATNumber     Kind = "vat_number"
)

var (
	companyNumberPattern = regexp.MustCompile(`^([A-Z]{2}\d{6}|\d{8})$`)
	allDigits            = regexp.MustCompile(`^\d+$`)
)

// Normalize returns the canonical form of raw for the given kind. ok is false
// only when the value cannot be normalized at all; callers treat that as a
// zero-similarity comparison, never as an error.
//
// Normalize is idempotent: Normalize(kind, canonical) returns canonical.
func Normalize(kind Kind, raw string) (string, bool) {
	switch kind {
	case VATNumber:
		return normalizeVAT(raw)
	default:
		return normalizeCompanyNumber(raw)
	}
}

// Valid reports whether value is in canonical form for the kind.
func Valid(kind Kind, value string) bool {
	if kind == VATNumber {
		rest, found := strings.CutPrefix(value, "GB")
		return found && len(rest) == 9 && allDigits.MatchString(rest)
	}
	return companyNumberPattern.MatchString(value)
}

// normalizeCompanyNumber canonicalizes to the 8-digit Companies House format,
// or 2 letters + 6 digits for the devolved registers (SC, NI, OC, ...).
// Unrecognizable values are forwarded cleaned rather than rejected: the
// registry comparison downgrades them to a partial match on its own.
func normalizeCompanyNumber(raw string) (string, bool) {
	cleaned := strings.ToUpper(stripSeparators(raw))
	if cleaned == "" {
		return "", false
	}

	if allDigits.MatchString(cleaned) {
		switch len(cleaned) {
		case 6:
			cleaned = "00" + cleaned
		case 7:
			cleaned = "0" + cleaned
		}
	}

	return cleaned, true
}

// normalizeVAT canonicalizes to "GB" + 9 digits. Anything whose digit count
// is not exactly 9 after stripping the prefix is rejected.
func normalizeVAT(raw string) (string, bool) {
	cleaned := strings.ToUpper(stripSeparators(raw))
	if cleaned == "" {
		return "", false
	}

	cleaned = strings.TrimPrefix(cleaned, "GB")
	if len(cleaned) != 9 || !allDigits.MatchString(cleaned) {
		return "", false
	}

	return "GB" + cleaned, true
}

func stripSeparators(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', '-', '.':
			return -1
		}
		return r
	}, s)
}
