package model

import (
	"errors"
	"strings"
)

// SubjectID errors.
var (
	// ErrInvalidSubjectID is returned when the identifier contains characters
	// that cannot appear in a record file name.
	ErrInvalidSubjectID = errors.New("invalid subject identifier")
	// ErrEmptySubjectID is returned when the identifier is empty.
	ErrEmptySubjectID = errors.New("subject identifier cannot be empty")
)

const (
	// csvSuffix is the record file extension.
	csvSuffix = ".csv"
	// maxSubjectIDLength bounds identifier length. Hashed identifiers from
	// anonymized exports are 64 hex characters; phone numbers are far shorter.
	maxSubjectIDLength = 64
)

// SubjectID is an immutable value object identifying an analysis subject.
// Subject identifiers double as record file names ({id}.csv), so only
// filename-safe characters are accepted: letters, digits, '+', '_' and '-'.
// This covers E.164 phone numbers, hashed identifiers, and synthetic test ids.
type SubjectID struct {
	id string
}

// NewSubjectID creates a SubjectID from a string.
// The input is trimmed and a trailing .csv extension is stripped, so both
// "ego_1" and "ego_1.csv" normalize to the same identifier.
// Returns an error if the identifier is empty or contains unsafe characters.
func NewSubjectID(id string) (SubjectID, error) {
	normalized := strings.TrimSpace(id)
	normalized = strings.TrimSuffix(normalized, csvSuffix)

	if normalized == "" {
		return SubjectID{}, ErrEmptySubjectID
	}
	if len(normalized) > maxSubjectIDLength || !isFilenameSafe(normalized) {
		return SubjectID{}, ErrInvalidSubjectID
	}

	return SubjectID{id: normalized}, nil
}

// MustNewSubjectID creates a SubjectID or panics if invalid.
// Use only for known-valid identifiers in tests or initialization.
func MustNewSubjectID(id string) SubjectID {
	s, err := NewSubjectID(id)
	if err != nil {
		panic(err)
	}
	return s
}

// isFilenameSafe checks that a string contains only characters allowed in
// subject identifiers.
func isFilenameSafe(s string) bool {
	for _, c := range s {
		isLetter := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		isDigit := c >= '0' && c <= '9'
		isSymbol := c == '+' || c == '_' || c == '-'
		if !isLetter && !isDigit && !isSymbol {
			return false
		}
	}
	return true
}

// String returns the normalized identifier.
func (s SubjectID) String() string {
	return s.id
}

// FileName returns the record file name for this subject ({id}.csv).
func (s SubjectID) FileName() string {
	return s.id + csvSuffix
}

// IsZero returns true if this is a zero value (empty) SubjectID.
func (s SubjectID) IsZero() bool {
	return s.id == ""
}

// Equals returns true if two SubjectID values are equal.
func (s SubjectID) Equals(other SubjectID) bool {
	return s.id == other.id
}
