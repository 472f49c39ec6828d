// Package identity validates the identity documents captured on agent records:
// 13-digit South African national ID numbers and passport numbers.
//
// The package is the single implementation shared by every caller that accepts an
// identity number (HTTP handlers, the agent service, the import CLI and the
// /identity/validate endpoint used by browser forms), so the checks cannot drift
// between tiers.
//
// Domain Purity: no I/O, no logging, no clock reads. Every function is safe for
// concurrent use and returns the same Result for the same input.
package identity

import (
	"strings"

	dErrors "fieldforce/pkg/domain-errors"
)

// Type selects which identity document a value belongs to.
// Exactly one Type is active per agent record; the other document field stays empty.
type Type string

const (
	TypeNationalID Type = "sa_id"
	TypePassport   Type = "passport"
)

// Failure messages. Callers render these verbatim next to the offending field.
const (
	MsgNationalIDFormat   = "ID number must be 13 digits in format: YYMMDD + 7 digits"
	MsgNationalIDDate     = "Invalid date in ID number"
	MsgNationalIDChecksum = "Invalid ID number checksum"
	MsgPassportFormat     = "Passport number must be 6-12 characters (letters and numbers only)"
	MsgUnsupportedType    = "Unsupported identification type"
)

// Reason distinguishes bad end-user input from a caller passing an unknown Type.
type Reason string

const (
	ReasonInvalidValue    Reason = "invalid_value"
	ReasonUnsupportedType Reason = "unsupported_type"
)

// Result is the uniform outcome of every validation call.
//
// Invariants:
//   - Valid implies ErrorMessage and Reason are empty
//   - !Valid implies ErrorMessage is non-empty and NormalizedValue is empty
type Result struct {
	Valid           bool   `json:"valid"`
	ErrorMessage    string `json:"error_message,omitempty"`
	NormalizedValue string `json:"normalized_value,omitempty"`
	Reason          Reason `json:"reason,omitempty"`
}

// IsUnsupportedType reports whether the failure came from an unknown Type rather
// than from the value itself.
func (r Result) IsUnsupportedType() bool {
	return r.Reason == ReasonUnsupportedType
}

func accepted(normalized string) Result {
	return Result{Valid: true, NormalizedValue: normalized}
}

func rejected(msg string) Result {
	return Result{ErrorMessage: msg, Reason: ReasonInvalidValue}
}

// Validate dispatches raw to the validator for t.
// Unknown types yield a failed Result with ReasonUnsupportedType instead of a panic so
// callers can surface it as a programming error distinct from bad user input.
func Validate(t Type, raw string) Result {
	switch t {
	case TypeNationalID:
		return ValidateNationalID(raw)
	case TypePassport:
		return ValidatePassport(raw)
	default:
		return Result{ErrorMessage: MsgUnsupportedType, Reason: ReasonUnsupportedType}
	}
}

// ParseType maps a form discriminator ("sa_id" or "passport") to a Type.
// Matching is case-insensitive and ignores surrounding whitespace.
func ParseType(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "unsupported identification type")
	}
	return t, nil
}

func (t Type) IsValid() bool {
	return t == TypeNationalID || t == TypePassport
}

func (t Type) String() string {
	return string(t)
}

// FieldName is the form field that carries the document number for t.
func (t Type) FieldName() string {
	switch t {
	case TypeNationalID:
		return "sa_id_no"
	case TypePassport:
		return "passport_no"
	default:
		return "id_type"
	}
}
