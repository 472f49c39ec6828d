package handler

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"fieldforce/internal/agent/models"
	dErrors "fieldforce/pkg/domain-errors"
	"fieldforce/pkg/identity"
	"fieldforce/pkg/platform/validation"
)

// ValidateIdentityRequest is posted by the capture form as the user types.
type ValidateIdentityRequest struct {
	IDType string `json:"id_type"`
	Value  string `json:"value"`
}

// Normalize only touches the discriminator. Value is validated exactly as typed.
func (r *ValidateIdentityRequest) Normalize() {
	if r == nil {
		return
	}
	r.IDType = strings.ToLower(strings.TrimSpace(r.IDType))
}

func (r *ValidateIdentityRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.IDType == "" {
		return dErrors.NewFields(dErrors.CodeValidation, "id_type is required",
			map[string]string{"id_type": "id_type is required"})
	}
	if len(r.Value) > validation.MaxIdentityInputLen {
		msg := "value must be at most 64 characters"
		return dErrors.NewFields(dErrors.CodeValidation, msg, map[string]string{"value": msg})
	}
	return nil
}

// parseListFilter reads ?q=&status=&id_type=&limit=&offset=&sort=&order=.
// Status and id_type values are checked by the service.
func parseListFilter(q url.Values) (models.Filter, error) {
	f := models.Filter{
		Query:        q.Get("q"),
		Status:       models.Status(strings.ToLower(q.Get("status"))),
		IdentityType: identity.Type(strings.ToLower(q.Get("id_type"))),
	}
	fields := map[string]string{}

	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		switch {
		case err != nil:
			fields["limit"] = "limit must be an integer"
		case n < 1 || n > validation.MaxPageSize:
			fields["limit"] = fmt.Sprintf("limit must be between 1 and %d", validation.MaxPageSize)
		}
		f.Limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		switch {
		case err != nil:
			fields["offset"] = "offset must be an integer"
		case n < 0:
			fields["offset"] = "offset must not be negative"
		}
		f.Offset = n
	}
	if v := q.Get("sort"); v != "" {
		f.SortBy = models.SortField(strings.ToLower(v))
		if !f.SortBy.IsValid() {
			fields["sort"] = "sort must be one of [surname created_at]"
		}
	}
	switch strings.ToLower(q.Get("order")) {
	case "", "asc":
	case "desc":
		f.SortDesc = true
	default:
		fields["order"] = "order must be one of [asc desc]"
	}

	if len(fields) > 0 {
		return models.Filter{}, dErrors.NewFields(dErrors.CodeValidation, "invalid list parameters", fields)
	}
	return f, nil
}
