// Package store persists agent records.
//
// Two implementations share one contract: InMemory for development and tests, and
// SQLStore for PostgreSQL or SQLite through a database.Dialect. Both return
// sentinel.ErrNotFound for missing agents and sentinel.ErrAlreadyUsed when an identity
// number is already registered to another agent.
package store

import (
	"strings"

	"fieldforce/internal/agent/models"
	"fieldforce/pkg/identity"
	"fieldforce/pkg/platform/sentinel"
)

var (
	ErrNotFound    = sentinel.ErrNotFound
	ErrAlreadyUsed = sentinel.ErrAlreadyUsed
)

func identityKey(t identity.Type, number string) string {
	return string(t) + ":" + number
}

// matches applies the non-paging part of f to a in memory, mirroring the SQL WHERE clause.
func matches(a *models.Agent, f models.Filter) bool {
	if f.Status != "" && a.Status != f.Status {
		return false
	}
	if f.IdentityType != "" && a.IdentityType != f.IdentityType {
		return false
	}
	if f.Query == "" {
		return true
	}
	q := strings.ToLower(f.Query)
	for _, field := range []string{a.FirstName, a.Surname, a.Email, a.SAIDNumber, a.PassportNumber} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	return false
}
