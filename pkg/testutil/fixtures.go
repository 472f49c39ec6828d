package testutil

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"fieldforce/internal/agent/models"
	id "fieldforce/pkg/domain"
	"fieldforce/pkg/identity"
)

// TestIDs provides fixed agent IDs for deterministic test data.
var TestIDs = struct {
	AgentID1 id.AgentID
	AgentID2 id.AgentID
}{
	AgentID1: id.AgentID(uuid.MustParse("a9e70000-0000-0000-0000-000000000001")),
	AgentID2: id.AgentID(uuid.MustParse("a9e70000-0000-0000-0000-000000000002")),
}

// FixedNow is the clock used by fixtures. Every fixture holder is an adult at FixedNow.
var FixedNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

// Valid national ID numbers with the details they encode.
const (
	NationalIDMale1980   = "8001015009087" // 1980-01-01, male, citizen
	NationalIDFemale1990 = "9002020123086" // 1990-02-02, female, citizen
	NationalIDMale1985   = "8503155800084" // 1985-03-15, male, citizen
	NationalIDFemale1988 = "8802291234087" // 1988-02-29, female, citizen
	NationalIDFemale1975 = "7505100877084" // 1975-05-10, female, citizen
	NationalIDMinor2009  = "0906155001082" // 2009-06-15, male, under 18 at FixedNow
)

// NationalIDFor builds a valid national ID number for birth and sequence (0..9999).
// Sequences below 5000 encode female, the rest male.
func NationalIDFor(birth time.Time, sequence int) string {
	first12 := fmt.Sprintf("%s%04d08", birth.Format("060102"), sequence%10000)
	digit, err := identity.NationalIDChecksumDigit(first12)
	if err != nil {
		panic(err)
	}
	return fmt.Sprintf("%s%d", first12, digit)
}

// AgentBuilder provides a fluent interface for building test agents.
type AgentBuilder struct {
	agent *models.Agent
}

// NewAgentBuilder starts from an active SA ID holder born 1980-01-01.
func NewAgentBuilder() *AgentBuilder {
	dob := time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)
	return &AgentBuilder{
		agent: &models.Agent{
			ID: id.AgentID(uuid.New()),
			Profile: models.Profile{
				FirstName:    "Test",
				Surname:      "Agent",
				Initials:     "T",
				Gender:       identity.GenderMale,
				DateOfBirth:  &dob,
				Nationality:  "South African",
				IdentityType: identity.TypeNationalID,
				SAIDNumber:   NationalIDMale1980,
				Email:        "agent@example.com",
				Phone:        "+27821234567",
			},
			Status:    models.StatusActive,
			CreatedAt: FixedNow,
			UpdatedAt: FixedNow,
		},
	}
}

func (b *AgentBuilder) WithID(agentID id.AgentID) *AgentBuilder {
	b.agent.ID = agentID
	return b
}

func (b *AgentBuilder) WithName(firstName, surname string) *AgentBuilder {
	b.agent.FirstName = firstName
	b.agent.Surname = surname
	return b
}

func (b *AgentBuilder) WithEmail(email string) *AgentBuilder {
	b.agent.Email = email
	return b
}

// WithNationalID switches the agent to an SA ID holder and clears any passport number.
func (b *AgentBuilder) WithNationalID(number string) *AgentBuilder {
	b.agent.IdentityType = identity.TypeNationalID
	b.agent.SAIDNumber = number
	b.agent.PassportNumber = ""
	return b
}

// WithPassport switches the agent to a passport holder and clears the SA ID number.
func (b *AgentBuilder) WithPassport(number string) *AgentBuilder {
	b.agent.IdentityType = identity.TypePassport
	b.agent.PassportNumber = number
	b.agent.SAIDNumber = ""
	return b
}

func (b *AgentBuilder) WithStatus(status models.Status) *AgentBuilder {
	b.agent.Status = status
	return b
}

func (b *AgentBuilder) WithBank(bank models.BankAccount) *AgentBuilder {
	b.agent.Bank = bank
	return b
}

func (b *AgentBuilder) WithAddress(addr models.Address) *AgentBuilder {
	b.agent.Address = addr
	return b
}

func (b *AgentBuilder) WithDateOfBirth(dob *time.Time) *AgentBuilder {
	b.agent.DateOfBirth = dob
	return b
}

func (b *AgentBuilder) CreatedAt(t time.Time) *AgentBuilder {
	b.agent.CreatedAt = t
	b.agent.UpdatedAt = t
	return b
}

func (b *AgentBuilder) Build() *models.Agent {
	return b.agent.Clone()
}
