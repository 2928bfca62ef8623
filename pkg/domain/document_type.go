package domain

import "fmt"

// DocumentType identifies which kind of business document is being verified.
// Invariant: the value must be one of the supported document types.
//
// Usage: construct via ParseDocumentType at trust boundaries to enforce the
// allowlist; direct casting bypasses validation.
type DocumentType string

// Supported document types.
const (
	DocumentTypeCompaniesHouse       DocumentType = "companies_house"
	DocumentTypeCompanyRegistration  DocumentType = "company_registration"
	DocumentTypeVATRegistration      DocumentType = "vat_registration"
	DocumentTypeDirectorVerification DocumentType = "director_verification"
)

// validDocumentTypes is the single source of truth for valid document types.
var validDocumentTypes = map[DocumentType]bool{
	DocumentTypeCompaniesHouse:       true,
	DocumentTypeCompanyRegistration:  true,
	DocumentTypeVATRegistration:      true,
	DocumentTypeDirectorVerification: true,
}

// ParseDocumentType constructs a DocumentType from external input.
// Returns an error for unknown types; callers that want fallback behavior
// should handle it explicitly rather than casting around the check.
func ParseDocumentType(s string) (DocumentType, error) {
	t := DocumentType(s)
	if !validDocumentTypes[t] {
		return "", fmt.Errorf("unknown document type %q", s)
	}
	return t, nil
}

// IsValid reports whether the type is in the allowlist.
func (t DocumentType) IsValid() bool {
	return validDocumentTypes[t]
}

func (t DocumentType) String() string {
	return string(t)
}

// DocumentTypes returns the supported types in stable order.
func DocumentTypes() []DocumentType {
	return []DocumentType{
		DocumentTypeCompaniesHouse,
		DocumentTypeCompanyRegistration,
		DocumentTypeVATRegistration,
		DocumentTypeDirectorVerification,
	}
}
