package validator

import (
	"errors"
	"fmt"

	"silvalley/pkg/model"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return ""
	}
	return fmt.Sprintf("validation failed: %d error(s)", len(v))
}

type SpaceValidator struct {
	validate *validator.Validate
}

func NewSpaceValidator() *SpaceValidator {
	return &SpaceValidator{
		validate: validator.New(),
	}
}

func (v *SpaceValidator) Validate(space *model.Space) error {
	if err := v.validate.Struct(space); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	return v.validateBusinessRules(space)
}

func (v *SpaceValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: translateTag(err),
		})
	}

	return validationErrors
}

func translateTag(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", err.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", err.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", err.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", err.Param())
	case "url":
		return "must be a valid URL"
	case "mongodb":
		return "must be a valid object ID"
	default:
		return fmt.Sprintf("failed validation rule %q", err.Tag())
	}
}

func (v *SpaceValidator) validateBusinessRules(space *model.Space) error {
	if space.Rating > 0 && space.ReviewCount == 0 {
		return ValidationErrors{{
			Field:   "Rating",
			Message: "cannot be set without reviews",
		}}
	}

	return nil
}
