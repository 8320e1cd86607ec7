package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator wraps the go-playground validator
type Validator struct {
	validate *validator.Validate
}

// ValidationError represents a validation error for a single field
type ValidationError struct {
	Field   string `json:"field"`
	Tag     string `json:"tag"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message"`
}

// New creates a new Validator instance
func New() *Validator {
	v := validator.New()

	// Use JSON tag names in error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Register custom validations
	_ = v.RegisterValidation("job_type", validateJobType)
	_ = v.RegisterValidation("contact_channel", validateContactChannel)
	_ = v.RegisterValidation("repeat_interval_type", validateRepeatIntervalType)

	return &Validator{validate: v}
}

// Validate validates a struct and returns validation errors
func (v *Validator) Validate(i interface{}) []ValidationError {
	err := v.validate.Struct(i)
	if err == nil {
		return nil
	}

	var errors []ValidationError
	for _, err := range err.(validator.ValidationErrors) {
		errors = append(errors, ValidationError{
			Field:   err.Field(),
			Tag:     err.Tag(),
			Value:   err.Param(),
			Message: getErrorMessage(err),
		})
	}

	return errors
}

// ValidateVar validates a single variable
func (v *Validator) ValidateVar(field interface{}, tag string) error {
	return v.validate.Var(field, tag)
}

func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "min":
		return "Value is too short"
	case "max":
		return "Value is too long"
	case "gt":
		return "Value must be greater than " + err.Param()
	case "gte":
		return "Value must be greater than or equal to " + err.Param()
	case "lt":
		return "Value must be less than " + err.Param()
	case "lte":
		return "Value must be less than or equal to " + err.Param()
	case "email":
		return "Invalid email format"
	case "oneof":
		return "Value must be one of: " + err.Param()
	case "job_type":
		return "Invalid job type"
	case "contact_channel":
		return "Invalid contact channel"
	case "repeat_interval_type":
		return "Invalid repeat interval type"
	default:
		return "Invalid value"
	}
}

// Custom validators

func validateJobType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "send_invoice", "send_reminder":
		return true
	default:
		return false
	}
}

func validateContactChannel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "email", "whatsapp", "telegram":
		return true
	default:
		return false
	}
}

// validateRepeatIntervalType implements the recurrence DSL.
func validateRepeatIntervalType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "ONCE", "PERMINUTE", "HOURLY", "DAILY", "WEEKLY", "MONTHLY":
		return true
	default:
		return false
	}
}
