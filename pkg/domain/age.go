package domain

import "time"

// AdultAge is the minimum age of a contracted agent.
const AdultAge = 18

// IsAdult reports whether someone born on birthDate has reached AdultAge at now.
// Calendar arithmetic (AddDate) handles the birthday boundary: the 18th birthday itself counts.
func IsAdult(birthDate, now time.Time) bool {
	adultAt := birthDate.UTC().AddDate(AdultAge, 0, 0)
	return !now.UTC().Before(adultAt)
}

// AgeAt returns completed years between birthDate and now, or 0 when birthDate is after now.
func AgeAt(birthDate, now time.Time) int {
	b, n := birthDate.UTC(), now.UTC()
	if n.Before(b) {
		return 0
	}
	years := n.Year() - b.Year()
	if n.Month() < b.Month() || (n.Month() == b.Month() && n.Day() < b.Day()) {
		years--
	}
	return years
}
