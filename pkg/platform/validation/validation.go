package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	dErrors "fieldforce/pkg/domain-errors"
	"fieldforce/pkg/identity"
	s "fieldforce/pkg/string"
)

var defaultValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Report fields by their JSON name so error maps line up with form inputs.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("digits", func(fl validator.FieldLevel) bool {
		val := fl.Field().String()
		if val == "" {
			return false
		}
		for i := 0; i < len(val); i++ {
			if val[i] < '0' || val[i] > '9' {
				return false
			}
		}
		return true
	})
	_ = v.RegisterValidation("sa_id", func(fl validator.FieldLevel) bool {
		return identity.ValidateNationalID(fl.Field().String()).Valid
	})
	_ = v.RegisterValidation("passport", func(fl validator.FieldLevel) bool {
		return identity.ValidatePassport(fl.Field().String()).Valid
	})
	return v
}

// Validate validates a struct with the shared validator.
// Failures come back as a CodeValidation domain error whose Fields map holds one message
// per failing field, keyed by the field's JSON name.
func Validate(req any) error {
	err := defaultValidator.Struct(req)
	if err == nil {
		return nil
	}
	fields := FieldErrors(err)
	if len(fields) == 0 {
		return dErrors.New(dErrors.CodeValidation, ErrorMessage(err))
	}
	return dErrors.NewFields(dErrors.CodeValidation, ErrorMessage(err), fields)
}

// FieldErrors maps every failing field to its message. Nested fields use their dotted
// JSON path below the top-level struct, e.g. "bank.branch_code".
func FieldErrors(err error) map[string]string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return nil
	}
	fields := make(map[string]string, len(validationErrs))
	for _, fe := range validationErrs {
		key := fieldPath(fe)
		if _, seen := fields[key]; seen {
			continue
		}
		fields[key] = message(fe)
	}
	return fields
}

// ErrorMessage converts a validator error into a human-readable message for its first failure.
func ErrorMessage(err error) string {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) || len(validationErrs) == 0 {
		return "invalid request body"
	}
	return message(validationErrs[0])
}

func message(fe validator.FieldError) string {
	field := fieldName(fe)

	switch fe.ActualTag() {
	case "required", "required_if", "required_with":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "uuid":
		return fmt.Sprintf("%s must be a valid uuid", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "notblank":
		return fmt.Sprintf("%s must not be blank", field)
	case "digits":
		return fmt.Sprintf("%s must contain only digits", field)
	case "datetime":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field)
	case "e164":
		return fmt.Sprintf("%s must be an international phone number (e.g. +27821234567)", field)
	case "sa_id":
		return identity.ValidateNationalID(fmt.Sprint(fe.Value())).ErrorMessage
	case "passport":
		return identity.ValidatePassport(fmt.Sprint(fe.Value())).ErrorMessage
	default:
		if field == "" {
			return "invalid request body"
		}
		return fmt.Sprintf("%s is invalid", field)
	}
}

func fieldName(fe validator.FieldError) string {
	if name := fe.Field(); name != "" {
		return name
	}
	return s.ToSnakeCase(fe.StructField())
}

// fieldPath drops the root struct name from the namespace ("createAgentRequest.bank.branch_code").
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok && rest != "" {
		return rest
	}
	return fieldName(fe)
}
