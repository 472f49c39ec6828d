package validation

import (
	"fmt"

	dErrors "fieldforce/pkg/domain-errors"
)

// HTTP body limits
const (
	// MaxBodySize is the maximum allowed request body size (64 KB).
	MaxBodySize = 64 * 1024
)

// Agent record limits
const (
	MaxNameLength       = 100
	MaxEmailLength      = 255
	MaxPhoneLength      = 20
	MaxAddressLength    = 200
	MaxSearchLength     = 100
	MaxImportRows       = 10000
	MaxIdentityInputLen = 64
)

// Paging limits
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// CheckStringLength validates that a string does not exceed the maximum length.
func CheckStringLength(fieldName, value string, max int) error {
	if len(value) > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds max length of %d", fieldName, max))
	}
	return nil
}

// ClampPage applies the paging defaults: limit outside 1..MaxPageSize becomes
// DefaultPageSize (0) or MaxPageSize (too large); negative offsets become 0.
func ClampPage(limit, offset int) (int, int) {
	switch {
	case limit <= 0:
		limit = DefaultPageSize
	case limit > MaxPageSize:
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
