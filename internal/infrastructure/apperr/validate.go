package apperr

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FromValidationErrors converts validator failures into a bad request
// carrying one violation per failed field. Non-validator errors pass
// through unchanged.
func FromValidationErrors(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	appErr := ErrBadRequest()
	for _, fieldErr := range validationErrs {
		appErr = appErr.WithViolation(Violation{
			Field: Field(strings.ToLower(fieldErr.Field())),
			Rule:  ruleFromTag(fieldErr.Tag()),
		})
	}

	return appErr
}

func ruleFromTag(tag string) Rule {
	switch tag {
	case "required":
		return RuleRequired
	case "max":
		return RuleTooLong
	case "min":
		return RuleTooShort
	default:
		return RuleInvalidFormat
	}
}
