package handler

import (
	"time"

	"fieldforce/internal/agent/models"
	"fieldforce/pkg/identity"
	"fieldforce/pkg/platform/privacy"
)

// HTTP Response DTOs

type ValidateIdentityResponse struct {
	Valid           bool   `json:"valid"`
	ErrorMessage    string `json:"error_message,omitempty"`
	NormalizedValue string `json:"normalized_value,omitempty"`
}

type AgentResponse struct {
	ID             string              `json:"id"`
	FirstName      string              `json:"first_name"`
	Surname        string              `json:"surname"`
	Initials       string              `json:"initials"`
	Gender         string              `json:"gender,omitempty"`
	DateOfBirth    string              `json:"date_of_birth,omitempty"`
	Nationality    string              `json:"nationality,omitempty"`
	IDType         string              `json:"id_type"`
	SAIDNumber     string              `json:"sa_id_no,omitempty"`
	PassportNumber string              `json:"passport_no,omitempty"`
	Email          string              `json:"email,omitempty"`
	Phone          string              `json:"phone,omitempty"`
	Address        models.Address      `json:"address"`
	Bank           *models.BankAccount `json:"bank,omitempty"`
	Status         string              `json:"status"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// AgentSummary is one list row. Identity numbers are masked in lists.
type AgentSummary struct {
	ID             string    `json:"id"`
	FirstName      string    `json:"first_name"`
	Surname        string    `json:"surname"`
	IDType         string    `json:"id_type"`
	IdentityNumber string    `json:"identity_number"`
	Email          string    `json:"email,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

type AgentListResponse struct {
	Items  []AgentSummary `json:"items"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

func toValidateIdentityResponse(res identity.Result) *ValidateIdentityResponse {
	return &ValidateIdentityResponse{
		Valid:           res.Valid,
		ErrorMessage:    res.ErrorMessage,
		NormalizedValue: res.NormalizedValue,
	}
}

func toAgentResponse(a *models.Agent) *AgentResponse {
	resp := &AgentResponse{
		ID:             a.ID.String(),
		FirstName:      a.FirstName,
		Surname:        a.Surname,
		Initials:       a.Initials,
		Gender:         string(a.Gender),
		Nationality:    a.Nationality,
		IDType:         a.IdentityType.String(),
		SAIDNumber:     a.SAIDNumber,
		PassportNumber: a.PassportNumber,
		Email:          a.Email,
		Phone:          a.Phone,
		Address:        a.Address,
		Status:         string(a.Status),
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
	}
	if a.DateOfBirth != nil {
		resp.DateOfBirth = a.DateOfBirth.Format(time.DateOnly)
	}
	if !a.Bank.IsZero() {
		bank := a.Bank
		resp.Bank = &bank
	}
	return resp
}

func toAgentListResponse(page *models.Page) *AgentListResponse {
	items := make([]AgentSummary, 0, len(page.Items))
	for _, a := range page.Items {
		items = append(items, AgentSummary{
			ID:             a.ID.String(),
			FirstName:      a.FirstName,
			Surname:        a.Surname,
			IDType:         a.IdentityType.String(),
			IdentityNumber: privacy.MaskIdentityNumber(a.IdentityNumber()),
			Email:          a.Email,
			Phone:          a.Phone,
			Status:         string(a.Status),
			CreatedAt:      a.CreatedAt,
		})
	}
	return &AgentListResponse{
		Items:  items,
		Total:  page.Total,
		Limit:  page.Limit,
		Offset: page.Offset,
	}
}
