// Package domain provides type-safe identifiers and small domain primitives shared across packages.
package domain

import (
	"github.com/google/uuid"

	dErrors "fieldforce/pkg/domain-errors"
)

// AgentID identifies an agent record. Distinct from uuid.UUID so handlers cannot pass
// an arbitrary UUID where an agent is expected.
type AgentID uuid.UUID

// NewAgentID returns a fresh random AgentID.
func NewAgentID() AgentID {
	return AgentID(uuid.New())
}

// ParseAgentID is used at trust boundaries (path params, CSV rows, CLI args).
func ParseAgentID(s string) (AgentID, error) {
	if s == "" {
		return AgentID{}, dErrors.New(dErrors.CodeInvalidInput, "agent ID cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return AgentID{}, dErrors.New(dErrors.CodeInvalidInput, "invalid agent ID format")
	}
	if id == uuid.Nil {
		return AgentID{}, dErrors.New(dErrors.CodeInvalidInput, "agent ID cannot be nil")
	}
	return AgentID(id), nil
}

func (id AgentID) String() string { return uuid.UUID(id).String() }

func (id AgentID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// MarshalText lets AgentID appear as a plain UUID string in JSON.
func (id AgentID) MarshalText() ([]byte, error) {
	return uuid.UUID(id).MarshalText()
}

func (id *AgentID) UnmarshalText(b []byte) error {
	parsed, err := ParseAgentID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
