package identity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePassport(t *testing.T) {
	tests := []struct {
		name           string
		input          string
		wantValid      bool
		wantNormalized string
	}{
		{name: "lowercase accepted with case preserved", input: "ab123456", wantValid: true, wantNormalized: "ab123456"},
		{name: "uppercase", input: "A1234567", wantValid: true, wantNormalized: "A1234567"},
		{name: "minimum length", input: "A12345", wantValid: true, wantNormalized: "A12345"},
		{name: "maximum length", input: "AB1234567890", wantValid: true, wantNormalized: "AB1234567890"},
		{name: "surrounding whitespace trimmed", input: "  M00112233\t", wantValid: true, wantNormalized: "M00112233"},
		{name: "too short", input: "AB12"},
		{name: "five characters", input: "AB123"},
		{name: "too long", input: "AB12345678901"},
		{name: "inner space", input: "AB 123456"},
		{name: "dash", input: "AB-123456"},
		{name: "empty", input: ""},
		{name: "whitespace only", input: "        "},
		{name: "non-ascii letter", input: "ÅB123456"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidatePassport(tt.input)
			assert.Equal(t, tt.wantValid, res.Valid)
			if tt.wantValid {
				assert.Equal(t, tt.wantNormalized, res.NormalizedValue)
				assert.Empty(t, res.ErrorMessage)
				return
			}
			assert.Equal(t, MsgPassportFormat, res.ErrorMessage)
			assert.Contains(t, res.ErrorMessage, "6-12 characters")
		})
	}
}

func TestValidatePassport_TrimmedLengthDecides(t *testing.T) {
	padded := strings.Repeat(" ", 10) + "ABC123" + strings.Repeat(" ", 10)
	assert.True(t, ValidatePassport(padded).Valid)
}
