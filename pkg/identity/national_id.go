package identity

import (
	"errors"
	"time"
)

// CenturyPivot resolves the two-digit birth year of a national ID number:
// years below the pivot belong to the 2000s, the rest to the 1900s.
// It is fixed rather than derived from the current date so a number never changes
// century (and validity) as time passes.
const CenturyPivot = 50

const nationalIDLength = 13

var (
	ErrNationalIDFormat   = errors.New(MsgNationalIDFormat)
	ErrNationalIDDate     = errors.New(MsgNationalIDDate)
	ErrNationalIDChecksum = errors.New(MsgNationalIDChecksum)
)

// NationalIDComponents is the date of birth embedded in the first six digits
// (YYMMDD) of a national ID number.
type NationalIDComponents struct {
	Year2           int
	Month           int
	Day             int
	CenturyFullYear int
}

// BirthDate returns the components as a UTC midnight time.
func (c NationalIDComponents) BirthDate() time.Time {
	return time.Date(c.CenturyFullYear, time.Month(c.Month), c.Day, 0, 0, 0, 0, time.UTC)
}

// ValidateNationalID checks raw, taken literally, against the YYMMDD SSSS C A Z layout:
// 13 ASCII digits, a real calendar date under CenturyPivot, and a Luhn checksum.
// The first failing check determines the message.
func ValidateNationalID(raw string) Result {
	if !isASCIIDigits(raw) || len(raw) != nationalIDLength {
		return rejected(MsgNationalIDFormat)
	}
	if _, err := dateComponents(raw); err != nil {
		return rejected(MsgNationalIDDate)
	}
	if luhnSum(raw)%10 != 0 {
		return rejected(MsgNationalIDChecksum)
	}
	return accepted(raw)
}

// ParseNationalIDComponents extracts the embedded birth date.
// Only the format and date are checked; the checksum is not.
func ParseNationalIDComponents(raw string) (NationalIDComponents, error) {
	if !isASCIIDigits(raw) || len(raw) != nationalIDLength {
		return NationalIDComponents{}, ErrNationalIDFormat
	}
	return dateComponents(raw)
}

// NationalIDChecksumDigit returns the final digit that makes first12 + digit pass the
// checksum. first12 must be exactly 12 ASCII digits.
func NationalIDChecksumDigit(first12 string) (int, error) {
	if !isASCIIDigits(first12) || len(first12) != nationalIDLength-1 {
		return 0, ErrNationalIDFormat
	}
	sum := luhnSum(first12 + "0")
	return (10 - sum%10) % 10, nil
}

func dateComponents(digits string) (NationalIDComponents, error) {
	c := NationalIDComponents{
		Year2: twoDigits(digits[0:2]),
		Month: twoDigits(digits[2:4]),
		Day:   twoDigits(digits[4:6]),
	}
	c.CenturyFullYear = fullYear(c.Year2)
	if c.Month < 1 || c.Month > 12 || c.Day < 1 {
		return NationalIDComponents{}, ErrNationalIDDate
	}
	// time.Date normalizes overflow (31 April becomes 1 May); a round trip catches it.
	d := c.BirthDate()
	if d.Year() != c.CenturyFullYear || int(d.Month()) != c.Month || d.Day() != c.Day {
		return NationalIDComponents{}, ErrNationalIDDate
	}
	return c, nil
}

func fullYear(year2 int) int {
	if year2 < CenturyPivot {
		return 2000 + year2
	}
	return 1900 + year2
}

// luhnSum walks right to left doubling every second digit.
func luhnSum(digits string) int {
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum
}

func twoDigits(s string) int {
	return int(s[0]-'0')*10 + int(s[1]-'0')
}
