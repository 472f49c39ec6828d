package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "fieldforce/pkg/domain-errors"
)

func TestValidate_Dispatch(t *testing.T) {
	t.Run("national id", func(t *testing.T) {
		res := Validate(TypeNationalID, "8001015009087")
		assert.True(t, res.Valid)
		assert.Equal(t, "8001015009087", res.NormalizedValue)
	})

	t.Run("passport", func(t *testing.T) {
		res := Validate(TypePassport, " ab123456 ")
		assert.True(t, res.Valid)
		assert.Equal(t, "ab123456", res.NormalizedValue)
	})

	t.Run("passport value is not accepted as national id", func(t *testing.T) {
		res := Validate(TypeNationalID, "ab123456")
		assert.False(t, res.Valid)
		assert.Equal(t, MsgNationalIDFormat, res.ErrorMessage)
	})

	t.Run("unsupported type is reported as a contract violation", func(t *testing.T) {
		res := Validate(Type("drivers_licence"), "8001015009087")
		assert.False(t, res.Valid)
		assert.Equal(t, MsgUnsupportedType, res.ErrorMessage)
		assert.True(t, res.IsUnsupportedType())
	})

	t.Run("bad user input is not a contract violation", func(t *testing.T) {
		res := Validate(TypePassport, "AB12")
		assert.False(t, res.IsUnsupportedType())
		assert.Equal(t, ReasonInvalidValue, res.Reason)
	})
}

func TestValidate_ResultInvariants(t *testing.T) {
	inputs := []string{"", "12345", "8001015009087", "8001015009088", "8013015009087", "ab123456", "AB12", " x "}
	for _, typ := range []Type{TypeNationalID, TypePassport, Type("other")} {
		for _, in := range inputs {
			first := Validate(typ, in)
			second := Validate(typ, in)
			assert.Equal(t, first, second, "validation must be idempotent for %s/%q", typ, in)

			if first.Valid {
				assert.Empty(t, first.ErrorMessage)
				assert.True(t, Validate(typ, first.NormalizedValue).Valid, "normalized value must re-validate")
			} else {
				assert.NotEmpty(t, first.ErrorMessage)
				assert.Empty(t, first.NormalizedValue)
			}
		}
	}
}

func TestParseType(t *testing.T) {
	got, err := ParseType("sa_id")
	require.NoError(t, err)
	assert.Equal(t, TypeNationalID, got)

	got, err = ParseType(" Passport ")
	require.NoError(t, err)
	assert.Equal(t, TypePassport, got)

	_, err = ParseType("national")
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	_, err = ParseType("")
	assert.Error(t, err)
}

func TestType_FieldName(t *testing.T) {
	assert.Equal(t, "sa_id_no", TypeNationalID.FieldName())
	assert.Equal(t, "passport_no", TypePassport.FieldName())
	assert.Equal(t, "id_type", Type("").FieldName())
}
