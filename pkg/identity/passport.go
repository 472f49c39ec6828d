package identity

import "strings"

const (
	passportMinLength = 6
	passportMaxLength = 12
)

// ValidatePassport applies the structural passport policy: after trimming surrounding
// whitespace, 6 to 12 ASCII letters or digits. No country-specific layout or check
// digit is enforced. The normalized value keeps the submitted case.
func ValidatePassport(raw string) Result {
	v := strings.TrimSpace(raw)
	if len(v) < passportMinLength || len(v) > passportMaxLength || !isASCIIAlnum(v) {
		return rejected(MsgPassportFormat)
	}
	return accepted(v)
}
