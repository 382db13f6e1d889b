package credentials

import (
	"github.com/a-novel/service-authentication/internal/infrastructure/apperr"
)

const (
	CodeValidationFailed  apperr.Code = "credentials/validation_failed"
	CodeNotFound          apperr.Code = "credentials/not_found"
	CodeEmailDuplicate    apperr.Code = "credentials/email_duplicate"
	CodeAlreadyRegistered apperr.Code = "credentials/already_registered"
	CodePasswordMismatch  apperr.Code = "credentials/password_mismatch"
	CodeInsufficientRole  apperr.Code = "credentials/insufficient_role"
)

const (
	FieldEmail    apperr.Field = "email"
	FieldPassword apperr.Field = "password"
	FieldUserID   apperr.Field = "user_id"
	FieldRole     apperr.Field = "role"
)

func ErrNotFound() error {
	return apperr.New("credentials not found", CodeNotFound, apperr.ClassNotFound, apperr.LogLevelWarn)
}

func ErrInvalidEmail() error {
	return apperr.New("invalid email", CodeValidationFailed, apperr.ClassBadRequest, apperr.LogLevelWarn).
		WithViolation(apperr.Violation{Field: FieldEmail, Rule: apperr.RuleInvalidFormat})
}

func ErrEmailTooLong(max int) error {
	return apperr.New("email is too long", CodeValidationFailed, apperr.ClassBadRequest, apperr.LogLevelWarn).
		WithViolation(apperr.Violation{Field: FieldEmail, Rule: apperr.RuleTooLong, Params: map[string]any{"max": max}})
}

func ErrPasswordEmpty() error {
	return apperr.New("password cannot be empty", CodeValidationFailed, apperr.ClassBadRequest, apperr.LogLevelWarn).
		WithViolation(apperr.Violation{Field: FieldPassword, Rule: apperr.RuleRequired})
}

func ErrPasswordTooLong(max int) error {
	return apperr.New("password is too long", CodeValidationFailed, apperr.ClassBadRequest, apperr.LogLevelWarn).
		WithViolation(apperr.Violation{Field: FieldPassword, Rule: apperr.RuleTooLong, Params: map[string]any{"max": max}})
}

// ErrEmailDuplicate maps a unique violation on the email column. Registration
// converts this into the permanent Forbidden guard, email updates surface it
// as a Conflict.
func ErrEmailDuplicate() error {
	return apperr.New("email already in use", CodeEmailDuplicate, apperr.ClassConflict, apperr.LogLevelWarn).
		WithViolation(apperr.Violation{Field: FieldEmail, Rule: apperr.RuleDuplicate})
}

// ErrAlreadyRegistered guards registration permanently: once a subject has
// completed a registration, every later attempt fails regardless of how
// fresh its short code is.
func ErrAlreadyRegistered() error {
	return apperr.New("email already registered", CodeAlreadyRegistered, apperr.ClassForbidden, apperr.LogLevelWarn).
		WithViolation(apperr.Violation{Field: FieldEmail, Rule: apperr.RuleForbidden})
}

func ErrPasswordMismatch() error {
	return apperr.New("password mismatch", CodePasswordMismatch, apperr.ClassForbidden, apperr.LogLevelWarn).
		WithViolation(apperr.Violation{Field: FieldPassword, Rule: apperr.RuleMismatch})
}

func ErrInsufficientRole() error {
	return apperr.New("insufficient role", CodeInsufficientRole, apperr.ClassForbidden, apperr.LogLevelWarn).
		WithViolation(apperr.Violation{Field: FieldRole, Rule: apperr.RuleForbidden})
}
