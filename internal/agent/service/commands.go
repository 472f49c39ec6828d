package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"fieldforce/internal/agent/models"
	id "fieldforce/pkg/domain"
	dErrors "fieldforce/pkg/domain-errors"
	"fieldforce/pkg/identity"
	"fieldforce/pkg/platform/validation"
	s "fieldforce/pkg/string"
)

const dateLayout = time.DateOnly

type AddressInput struct {
	Line1      string `json:"line1" validate:"max=200" jsonschema:"maxLength=200"`
	Line2      string `json:"line2" validate:"max=200" jsonschema:"maxLength=200"`
	City       string `json:"city" validate:"max=100" jsonschema:"maxLength=100"`
	Province   string `json:"province" validate:"max=100" jsonschema:"maxLength=100"`
	PostalCode string `json:"postal_code" validate:"omitempty,digits,len=4" jsonschema:"pattern=^[0-9]{4}$"`
}

// BankInput is optional as a whole. Once any field is filled, account number and
// branch code become required.
type BankInput struct {
	BankName      string `json:"bank_name" validate:"max=100" jsonschema:"maxLength=100"`
	AccountHolder string `json:"account_holder" validate:"max=100" jsonschema:"maxLength=100"`
	AccountNumber string `json:"account_number" validate:"omitempty,digits,min=6,max=16" jsonschema:"minLength=6,maxLength=16"`
	BranchCode    string `json:"branch_code" validate:"omitempty,digits,len=6" jsonschema:"pattern=^[0-9]{6}$"`
	AccountType   string `json:"account_type" validate:"omitempty,oneof=cheque savings transmission" jsonschema:"enum=cheque,enum=savings,enum=transmission"`
}

func (b BankInput) isZero() bool {
	return b == BankInput{}
}

// AgentCommand is the capture form for creating or replacing an agent profile.
// Field names double as the keys of the validation error map.
type AgentCommand struct {
	FirstName      string       `json:"first_name" validate:"required,max=100" jsonschema:"required,minLength=1,maxLength=100"`
	Surname        string       `json:"surname" validate:"required,max=100" jsonschema:"required,minLength=1,maxLength=100"`
	Initials       string       `json:"initials" validate:"max=10" jsonschema:"maxLength=10,description=Derived from first_name when empty"`
	Gender         string       `json:"gender" validate:"omitempty,oneof=female male" jsonschema:"enum=female,enum=male"`
	DateOfBirth    string       `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02" jsonschema:"format=date"`
	Nationality    string       `json:"nationality" validate:"max=100" jsonschema:"maxLength=100"`
	IDType         string       `json:"id_type" validate:"required,oneof=sa_id passport" jsonschema:"required,enum=sa_id,enum=passport"`
	SAIDNumber     string       `json:"sa_id_no" validate:"max=64" jsonschema:"pattern=^[0-9]{13}$,description=Required when id_type is sa_id"`
	PassportNumber string       `json:"passport_no" validate:"max=64" jsonschema:"maxLength=64,description=Required when id_type is passport"`
	Email          string       `json:"email" validate:"omitempty,email,max=255" jsonschema:"format=email,maxLength=255"`
	Phone          string       `json:"phone" validate:"max=20" jsonschema:"maxLength=20"`
	Address        AddressInput `json:"address"`
	Bank           BankInput    `json:"bank"`
}

// Normalize tidies free text and clears the identity field that does not belong to
// IDType. The national ID number is left exactly as entered; passport trimming is
// part of passport validation.
func (c *AgentCommand) Normalize() {
	c.FirstName = s.CollapseSpaces(c.FirstName)
	c.Surname = s.CollapseSpaces(c.Surname)
	c.Initials = strings.ToUpper(strings.ReplaceAll(s.CollapseSpaces(c.Initials), " ", ""))
	c.Nationality = s.CollapseSpaces(c.Nationality)
	c.IDType = strings.ToLower(strings.TrimSpace(c.IDType))
	c.Gender = strings.ToLower(strings.TrimSpace(c.Gender))
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Phone = s.CollapseSpaces(c.Phone)
	s.TrimStrings(&c.DateOfBirth, &c.Address.Line1, &c.Address.Line2, &c.Address.City,
		&c.Address.Province, &c.Address.PostalCode, &c.Bank.BankName, &c.Bank.AccountHolder,
		&c.Bank.AccountNumber, &c.Bank.BranchCode)
	c.Bank.AccountType = strings.ToLower(strings.TrimSpace(c.Bank.AccountType))

	switch identity.Type(c.IDType) {
	case identity.TypeNationalID:
		c.PassportNumber = ""
	case identity.TypePassport:
		c.SAIDNumber = ""
	}
}

// Profile validates the command as of now and returns the profile to store.
// Every failing field is reported in one CodeValidation error.
//
// For SA ID holders the birth date and gender encoded in the ID number replace any
// submitted values.
func (c *AgentCommand) Profile(now time.Time) (models.Profile, error) {
	fields := map[string]string{}
	if err := validation.Validate(c); err != nil {
		for k, v := range dErrors.FieldsOf(err) {
			fields[k] = v
		}
	}

	p := models.Profile{
		FirstName:   c.FirstName,
		Surname:     c.Surname,
		Initials:    c.Initials,
		Gender:      identity.Gender(c.Gender),
		Nationality: c.Nationality,
		Email:       c.Email,
		Phone:       c.Phone,
		Address: models.Address{
			Line1:      c.Address.Line1,
			Line2:      c.Address.Line2,
			City:       c.Address.City,
			Province:   c.Address.Province,
			PostalCode: c.Address.PostalCode,
		},
		Bank: models.BankAccount{
			BankName:      c.Bank.BankName,
			AccountHolder: c.Bank.AccountHolder,
			AccountNumber: c.Bank.AccountNumber,
			BranchCode:    c.Bank.BranchCode,
			AccountType:   models.AccountType(c.Bank.AccountType),
		},
	}
	if p.Initials == "" {
		p.Initials = s.Initials(c.FirstName)
	}

	if _, bad := fields["date_of_birth"]; !bad && c.DateOfBirth != "" {
		if dob, err := time.Parse(dateLayout, c.DateOfBirth); err == nil {
			p.DateOfBirth = &dob
		}
	}

	c.applyIdentity(&p, fields)

	if p.DateOfBirth != nil {
		if _, bad := fields["date_of_birth"]; !bad {
			switch {
			case p.DateOfBirth.After(now):
				fields["date_of_birth"] = "date_of_birth cannot be in the future"
			case !id.IsAdult(*p.DateOfBirth, now):
				fields["date_of_birth"] = fmt.Sprintf("agent must be at least %d years old", id.AdultAge)
			}
		}
	}

	if !c.Bank.isZero() {
		if c.Bank.AccountNumber == "" {
			fields["bank.account_number"] = "account_number is required when banking details are provided"
		}
		if c.Bank.BranchCode == "" {
			fields["bank.branch_code"] = "branch_code is required when banking details are provided"
		}
	}

	if len(fields) > 0 {
		return models.Profile{}, validationError(fields)
	}
	return p, nil
}

func (c *AgentCommand) applyIdentity(p *models.Profile, fields map[string]string) {
	t := identity.Type(c.IDType)
	if !t.IsValid() {
		return
	}
	p.IdentityType = t

	raw := c.SAIDNumber
	if t == identity.TypePassport {
		raw = c.PassportNumber
	}
	field := t.FieldName()
	if raw == "" {
		fields[field] = field + " is required"
		return
	}
	res := identity.Validate(t, raw)
	if !res.Valid {
		fields[field] = res.ErrorMessage
		return
	}

	if t == identity.TypePassport {
		p.PassportNumber = res.NormalizedValue
		return
	}
	p.SAIDNumber = res.NormalizedValue
	details, err := identity.DecodeNationalID(res.NormalizedValue)
	if err != nil {
		return
	}
	dob := details.BirthDate
	p.DateOfBirth = &dob
	p.Gender = details.Gender
	// Derived values win, so errors on the submitted ones no longer apply.
	delete(fields, "date_of_birth")
	delete(fields, "gender")
}

// validationError picks a stable summary: the sole message, or a count.
func validationError(fields map[string]string) error {
	if len(fields) == 1 {
		for _, msg := range fields {
			return dErrors.NewFields(dErrors.CodeValidation, msg, fields)
		}
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return dErrors.NewFields(dErrors.CodeValidation,
		fmt.Sprintf("%d fields are invalid: %s", len(keys), strings.Join(keys, ", ")), fields)
}
