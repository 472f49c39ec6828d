package models

import (
	"strings"

	"fieldforce/pkg/identity"
	"fieldforce/pkg/platform/validation"
	s "fieldforce/pkg/string"
)

// Filter selects a page of agents. Zero values mean "no constraint".
type Filter struct {
	// Query matches first name, surname, email and identity numbers, case-insensitively.
	Query        string
	Status       Status
	IdentityType identity.Type
	Limit        int
	Offset       int
	SortBy       SortField
	SortDesc     bool
}

// Normalize trims the query and caps it on a rune boundary, then clamps paging into
// range. Unknown sort fields fall back to surname.
func (f *Filter) Normalize() {
	f.Query = strings.TrimSpace(f.Query)
	f.Query = s.Truncate(f.Query, validation.MaxSearchLength)
	f.Limit, f.Offset = validation.ClampPage(f.Limit, f.Offset)
	if !f.SortBy.IsValid() {
		f.SortBy = SortBySurname
	}
}

// Page is one slice of a filtered agent list. Total counts every match, not just Items.
type Page struct {
	Items  []*Agent `json:"items"`
	Total  int      `json:"total"`
	Limit  int      `json:"limit"`
	Offset int      `json:"offset"`
}
