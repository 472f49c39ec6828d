package models

// Status is the lifecycle state of an agent record.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusInactive
}

// AccountType is the kind of bank account commission is paid into.
type AccountType string

const (
	AccountTypeCheque       AccountType = "cheque"
	AccountTypeSavings      AccountType = "savings"
	AccountTypeTransmission AccountType = "transmission"
)

func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeCheque, AccountTypeSavings, AccountTypeTransmission:
		return true
	}
	return false
}

// SortField is a column the agent list can be ordered by.
type SortField string

const (
	SortBySurname   SortField = "surname"
	SortByCreatedAt SortField = "created_at"
)

func (f SortField) IsValid() bool {
	return f == SortBySurname || f == SortByCreatedAt
}
