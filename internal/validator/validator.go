package validator

import (
	"sync"

	"github.com/go-playground/validator/v10"
	ierr "github.com/remindly/remindly/internal/errors"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// GetValidator returns the shared validator instance.
func GetValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// ValidateRequest validates a request struct against its `validate` tags and
// returns a classified validation error listing the offending fields.
func ValidateRequest(req interface{}) error {
	if req == nil {
		return nil
	}

	err := GetValidator().Struct(req)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return ierr.WithError(err).
			WithHint("Request validation failed").
			Mark(ierr.ErrValidation)
	}

	details := make(map[string]any, len(validationErrors))
	for _, fieldErr := range validationErrors {
		details[fieldErr.Field()] = fieldErr.Tag()
	}

	return ierr.NewError("request validation failed").
		WithHint("One or more request fields are invalid").
		WithReportableDetails(details).
		Mark(ierr.ErrValidation)
}
