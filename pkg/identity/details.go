package identity

import "time"

// Gender as encoded by the SSSS sequence block of a national ID number.
type Gender string

const (
	GenderFemale Gender = "female"
	GenderMale   Gender = "male"
)

// Citizenship as encoded by the C digit of a national ID number.
type Citizenship string

const (
	CitizenshipCitizen           Citizenship = "citizen"
	CitizenshipPermanentResident Citizenship = "permanent_resident"
	CitizenshipRefugee           Citizenship = "refugee"
	CitizenshipUnknown           Citizenship = "unknown"
)

// NationalIDDetails holds everything a national ID number reveals about its holder.
type NationalIDDetails struct {
	BirthDate   time.Time
	Gender      Gender
	Citizenship Citizenship
}

// DecodeNationalID validates raw and decodes the holder details.
// Returns the first validation failure as an error.
func DecodeNationalID(raw string) (NationalIDDetails, error) {
	res := ValidateNationalID(raw)
	if !res.Valid {
		switch res.ErrorMessage {
		case MsgNationalIDDate:
			return NationalIDDetails{}, ErrNationalIDDate
		case MsgNationalIDChecksum:
			return NationalIDDetails{}, ErrNationalIDChecksum
		default:
			return NationalIDDetails{}, ErrNationalIDFormat
		}
	}
	c, err := dateComponents(raw)
	if err != nil {
		return NationalIDDetails{}, err
	}

	gender := GenderMale
	if sequence := twoDigits(raw[6:8])*100 + twoDigits(raw[8:10]); sequence < 5000 {
		gender = GenderFemale
	}

	return NationalIDDetails{
		BirthDate:   c.BirthDate(),
		Gender:      gender,
		Citizenship: citizenship(raw[10]),
	}, nil
}

func citizenship(c byte) Citizenship {
	switch c {
	case '0':
		return CitizenshipCitizen
	case '1':
		return CitizenshipPermanentResident
	case '2':
		return CitizenshipRefugee
	default:
		return CitizenshipUnknown
	}
}
