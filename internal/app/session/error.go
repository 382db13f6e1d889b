package session

import (
	"github.com/a-novel/service-authentication/internal/infrastructure/apperr"
)

const (
	CodeRefreshTokenNotFound apperr.Code = "session/refresh_token_not_found"
	CodeRefreshMismatch      apperr.Code = "session/refresh_mismatch"
	CodeValidationFailed     apperr.Code = "session/validation_failed"
)

const (
	FieldAccessToken    apperr.Field = "access_token" //nolint:gosec
	FieldRefreshToken   apperr.Field = "refresh_token"
	FieldRefreshTokenID apperr.Field = "refresh_token_id"
	FieldRole           apperr.Field = "role"
)

// ErrRefreshMismatch covers every way a (accessToken, refreshToken) pair can
// fail to match: unknown refresh token, wrong pairing, expired record.
func ErrRefreshMismatch() error {
	return apperr.New("invalid token pair", CodeRefreshMismatch, apperr.ClassForbidden, apperr.LogLevelWarn).
		WithViolation(apperr.Violation{Field: FieldRefreshToken, Rule: apperr.RuleMismatch})
}

func ErrInvalidRoleValue() error {
	return apperr.New("invalid role", CodeValidationFailed, apperr.ClassBadRequest, apperr.LogLevelWarn).
		WithViolation(apperr.Violation{Field: FieldRole, Rule: apperr.RuleInvalidFormat})
}
