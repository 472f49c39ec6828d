package models

import (
	"fmt"
	"time"
	"unicode/utf8"

	id "fieldforce/pkg/domain"
	dErrors "fieldforce/pkg/domain-errors"
	"fieldforce/pkg/identity"
)

const (
	maxNameLength       = 100
	minAccountNumberLen = 6
	maxAccountNumberLen = 16
	branchCodeLen       = 6
)

type Address struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	Province   string `json:"province"`
	PostalCode string `json:"postal_code"`
}

// BankAccount holds the commission payout account. The zero value means no banking
// details were captured.
type BankAccount struct {
	BankName      string      `json:"bank_name"`
	AccountHolder string      `json:"account_holder"`
	AccountNumber string      `json:"account_number"`
	BranchCode    string      `json:"branch_code"`
	AccountType   AccountType `json:"account_type"`
}

func (b BankAccount) IsZero() bool {
	return b == BankAccount{}
}

// Profile is the captured, editable part of an agent record.
type Profile struct {
	FirstName      string          `json:"first_name"`
	Surname        string          `json:"surname"`
	Initials       string          `json:"initials"`
	Gender         identity.Gender `json:"gender"`
	DateOfBirth    *time.Time      `json:"date_of_birth,omitempty"`
	Nationality    string          `json:"nationality"`
	IdentityType   identity.Type   `json:"id_type"`
	SAIDNumber     string          `json:"sa_id_no,omitempty"`
	PassportNumber string          `json:"passport_no,omitempty"`
	Email          string          `json:"email"`
	Phone          string          `json:"phone"`
	Address        Address         `json:"address"`
	Bank           BankAccount     `json:"bank"`
}

// IdentityNumber returns the number stored for the active identity type.
func (p *Profile) IdentityNumber() string {
	if p.IdentityType == identity.TypePassport {
		return p.PassportNumber
	}
	return p.SAIDNumber
}

// Check enforces the record invariants. Request-level validation reports problems per
// field before this runs; a failure here means a caller skipped it.
func (p *Profile) Check(now time.Time) error {
	if err := checkName("first name", p.FirstName); err != nil {
		return err
	}
	if err := checkName("surname", p.Surname); err != nil {
		return err
	}
	if err := p.checkIdentity(); err != nil {
		return err
	}
	if p.DateOfBirth != nil {
		if p.DateOfBirth.After(now) {
			return dErrors.New(dErrors.CodeInvariantViolation, "date of birth cannot be in the future")
		}
		if !id.IsAdult(*p.DateOfBirth, now) {
			return dErrors.New(dErrors.CodeInvariantViolation, fmt.Sprintf("agent must be at least %d years old", id.AdultAge))
		}
	}
	if !p.Bank.IsZero() {
		n := len(p.Bank.AccountNumber)
		if n < minAccountNumberLen || n > maxAccountNumberLen || !allDigits(p.Bank.AccountNumber) {
			return dErrors.New(dErrors.CodeInvariantViolation, "account number must be 6 to 16 digits")
		}
		if len(p.Bank.BranchCode) != branchCodeLen || !allDigits(p.Bank.BranchCode) {
			return dErrors.New(dErrors.CodeInvariantViolation, "branch code must be 6 digits")
		}
	}
	return nil
}

func (p *Profile) checkIdentity() error {
	var active, inactive string
	switch p.IdentityType {
	case identity.TypeNationalID:
		active, inactive = p.SAIDNumber, p.PassportNumber
	case identity.TypePassport:
		active, inactive = p.PassportNumber, p.SAIDNumber
	default:
		return dErrors.New(dErrors.CodeInvariantViolation, "identity type must be sa_id or passport")
	}
	if inactive != "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "only one identity number may be set")
	}
	res := identity.Validate(p.IdentityType, active)
	if !res.Valid {
		return dErrors.New(dErrors.CodeInvariantViolation, res.ErrorMessage)
	}
	if res.NormalizedValue != active {
		return dErrors.New(dErrors.CodeInvariantViolation, "identity number must be stored normalized")
	}
	return nil
}

func checkName(label, v string) error {
	if v == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, label+" cannot be empty")
	}
	if utf8.RuneCountInString(v) > maxNameLength {
		return dErrors.New(dErrors.CodeInvariantViolation, fmt.Sprintf("%s must be %d characters or less", label, maxNameLength))
	}
	return nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Agent is a field agent record.
type Agent struct {
	ID id.AgentID `json:"id"`
	Profile
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewAgent(agentID id.AgentID, p Profile, now time.Time) (*Agent, error) {
	if agentID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "agent ID required")
	}
	if err := p.Check(now); err != nil {
		return nil, err
	}
	return &Agent{
		ID:        agentID,
		Profile:   p,
		Status:    StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (a *Agent) IsActive() bool {
	return a.Status == StatusActive
}

// ApplyProfile replaces the editable fields after checking them.
// The agent is unchanged when the new profile is rejected.
func (a *Agent) ApplyProfile(p Profile, now time.Time) error {
	if err := p.Check(now); err != nil {
		return err
	}
	a.Profile = p
	a.UpdatedAt = now
	return nil
}

// Deactivate returns an error if the agent is already inactive.
func (a *Agent) Deactivate(now time.Time) error {
	if !a.IsActive() {
		return dErrors.New(dErrors.CodeInvariantViolation, "agent is already inactive")
	}
	a.Status = StatusInactive
	a.UpdatedAt = now
	return nil
}

// Reactivate returns an error if the agent is already active.
func (a *Agent) Reactivate(now time.Time) error {
	if a.IsActive() {
		return dErrors.New(dErrors.CodeInvariantViolation, "agent is already active")
	}
	a.Status = StatusActive
	a.UpdatedAt = now
	return nil
}

// Clone returns a deep copy so stores and caches never share mutable state with callers.
func (a *Agent) Clone() *Agent {
	if a == nil {
		return nil
	}
	c := *a
	if a.DateOfBirth != nil {
		dob := *a.DateOfBirth
		c.DateOfBirth = &dob
	}
	return &c
}
