package identity

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateNationalID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{name: "valid 1980 birth date", input: "8001015009087"},
		{name: "valid leap day in 2000", input: "0002290123088"},
		{name: "valid year below pivot resolves to 2049", input: "4901018000088"},
		{name: "valid year at pivot resolves to 1950", input: "5001018000086"},
		{name: "checksum off by one", input: "8001015009088", wantMsg: MsgNationalIDChecksum},
		{name: "month 13", input: "8013015009087", wantMsg: MsgNationalIDDate},
		{name: "month 00", input: "8000015009087", wantMsg: MsgNationalIDDate},
		{name: "day 00", input: "8001005009089", wantMsg: MsgNationalIDDate},
		{name: "31 April", input: "8004315009088", wantMsg: MsgNationalIDDate},
		{name: "29 February in non-leap 1999", input: "9902295009086", wantMsg: MsgNationalIDDate},
		{name: "too short", input: "12345", wantMsg: MsgNationalIDFormat},
		{name: "too long", input: "80010150090870", wantMsg: MsgNationalIDFormat},
		{name: "empty", input: "", wantMsg: MsgNationalIDFormat},
		{name: "letters", input: "80010150090AB", wantMsg: MsgNationalIDFormat},
		{name: "surrounding whitespace is not stripped", input: " 8001015009087", wantMsg: MsgNationalIDFormat},
		{name: "embedded separator", input: "800101-5009087", wantMsg: MsgNationalIDFormat},
		{name: "non-ascii digits", input: "٨٠٠١٠١٥٠٠٩٠٨٧", wantMsg: MsgNationalIDFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateNationalID(tt.input)
			if tt.wantMsg == "" {
				assert.True(t, res.Valid)
				assert.Empty(t, res.ErrorMessage)
				assert.Equal(t, tt.input, res.NormalizedValue)
				return
			}
			assert.False(t, res.Valid)
			assert.Equal(t, tt.wantMsg, res.ErrorMessage)
			assert.Equal(t, ReasonInvalidValue, res.Reason)
			assert.Empty(t, res.NormalizedValue)
		})
	}
}

func TestValidateNationalID_MessagesMentionTheFailedCheck(t *testing.T) {
	assert.Contains(t, ValidateNationalID("8001015009088").ErrorMessage, "checksum")
	assert.Contains(t, ValidateNationalID("8013015009087").ErrorMessage, "date")
	assert.Contains(t, ValidateNationalID("12345").ErrorMessage, "13 digits")
}

func TestParseNationalIDComponents(t *testing.T) {
	t.Run("extracts date and century", func(t *testing.T) {
		c, err := ParseNationalIDComponents("8001015009087")
		require.NoError(t, err)
		assert.Equal(t, NationalIDComponents{Year2: 80, Month: 1, Day: 1, CenturyFullYear: 1980}, c)
		assert.Equal(t, time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC), c.BirthDate())
	})

	t.Run("ignores checksum", func(t *testing.T) {
		_, err := ParseNationalIDComponents("8001015009088")
		assert.NoError(t, err)
	})

	t.Run("pivot boundary", func(t *testing.T) {
		below, err := ParseNationalIDComponents("4901018000088")
		require.NoError(t, err)
		assert.Equal(t, 2049, below.CenturyFullYear)

		at, err := ParseNationalIDComponents("5001018000086")
		require.NoError(t, err)
		assert.Equal(t, 1950, at.CenturyFullYear)
	})

	t.Run("format and date errors", func(t *testing.T) {
		_, err := ParseNationalIDComponents("abc")
		assert.ErrorIs(t, err, ErrNationalIDFormat)

		_, err = ParseNationalIDComponents("8013015009087")
		assert.ErrorIs(t, err, ErrNationalIDDate)
	})
}

func TestNationalIDChecksumDigit(t *testing.T) {
	for _, prefix := range []string{"800101500908", "000229012308", "950615123418", "870904012408"} {
		digit, err := NationalIDChecksumDigit(prefix)
		require.NoError(t, err)
		res := ValidateNationalID(prefix + strconv.Itoa(digit))
		assert.True(t, res.Valid, "prefix %s", prefix)
	}

	_, err := NationalIDChecksumDigit("12345")
	assert.ErrorIs(t, err, ErrNationalIDFormat)
}

func TestDecodeNationalID(t *testing.T) {
	t.Run("male citizen", func(t *testing.T) {
		d, err := DecodeNationalID("8001015009087")
		require.NoError(t, err)
		assert.Equal(t, time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC), d.BirthDate)
		assert.Equal(t, GenderMale, d.Gender)
		assert.Equal(t, CitizenshipCitizen, d.Citizenship)
	})

	t.Run("female citizen", func(t *testing.T) {
		d, err := DecodeNationalID("8709040124081")
		require.NoError(t, err)
		assert.Equal(t, GenderFemale, d.Gender)
		assert.Equal(t, 1987, d.BirthDate.Year())
	})

	t.Run("permanent resident", func(t *testing.T) {
		d, err := DecodeNationalID("9506151234181")
		require.NoError(t, err)
		assert.Equal(t, CitizenshipPermanentResident, d.Citizenship)
	})

	t.Run("invalid input maps to the failed check", func(t *testing.T) {
		_, err := DecodeNationalID("8001015009088")
		assert.ErrorIs(t, err, ErrNationalIDChecksum)
		_, err = DecodeNationalID("8013015009087")
		assert.ErrorIs(t, err, ErrNationalIDDate)
		_, err = DecodeNationalID("")
		assert.ErrorIs(t, err, ErrNationalIDFormat)
	})
}
