// Package domain defines typed identifiers shared across the verification
// engine. Typed IDs prevent cross-type assignment at compile time; parse
// functions enforce validity at trust boundaries.
package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrInvalidID reports an identifier that failed validation at a trust boundary.
var ErrInvalidID = errors.New("invalid id")

// DocumentID identifies a submitted document asset.
type DocumentID uuid.UUID

// ReportID identifies one verification outcome. Manual review never edits an
// outcome in place; it issues a new ReportID referencing the original.
type ReportID uuid.UUID

func NewDocumentID() DocumentID { return DocumentID(uuid.New()) }

func NewReportID() ReportID { return ReportID(uuid.New()) }

func (id DocumentID) String() string { return uuid.UUID(id).String() }

func (id ReportID) String() string { return uuid.UUID(id).String() }

func (id DocumentID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

func (id ReportID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// MarshalText renders the canonical UUID form so JSON carries the id as a
// string.
func (id DocumentID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id ReportID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *DocumentID) UnmarshalText(text []byte) error {
	parsed, err := ParseDocumentID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id *ReportID) UnmarshalText(text []byte) error {
	parsed, err := ParseReportID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParseDocumentID validates raw input as a non-nil UUID.
func ParseDocumentID(raw string) (DocumentID, error) {
	u, err := parseUUID(raw)
	if err != nil {
		return DocumentID{}, err
	}
	return DocumentID(u), nil
}

// ParseReportID validates raw input as a non-nil UUID.
func ParseReportID(raw string) (ReportID, error) {
	u, err := parseUUID(raw)
	if err != nil {
		return ReportID{}, err
	}
	return ReportID(u), nil
}

func parseUUID(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, fmt.Errorf("%w: empty", ErrInvalidID)
	}
	u, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidID, err)
	}
	if u == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: nil uuid", ErrInvalidID)
	}
	return u, nil
}
