package models

import (
	"time"

	id "fieldforce/pkg/domain"
	"fieldforce/pkg/identity"
)

// EventType names an agent lifecycle change.
type EventType string

const (
	EventAgentCreated     EventType = "agent_created"
	EventAgentUpdated     EventType = "agent_updated"
	EventAgentDeleted     EventType = "agent_deleted"
	EventAgentDeactivated EventType = "agent_deactivated"
	EventAgentReactivated EventType = "agent_reactivated"
)

// Event is published after an agent mutation commits. It never carries identity numbers.
type Event struct {
	Type         EventType     `json:"type"`
	AgentID      id.AgentID    `json:"agent_id"`
	IdentityType identity.Type `json:"identity_type"`
	OccurredAt   time.Time     `json:"occurred_at"`
	RequestID    string        `json:"request_id,omitempty"`
}

func NewEvent(t EventType, a *Agent, at time.Time, requestID string) Event {
	return Event{
		Type:         t,
		AgentID:      a.ID,
		IdentityType: a.IdentityType,
		OccurredAt:   at.UTC(),
		RequestID:    requestID,
	}
}
