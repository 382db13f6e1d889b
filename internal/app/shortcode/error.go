package shortcode

import "github.com/a-novel/service-authentication/internal/infrastructure/apperr"

const (
	CodeInvalidShortCode apperr.Code = "auth:short_code:invalid"
	CodeInvalidUsage     apperr.Code = "auth:short_code:invalid_usage"
)

const (
	FieldShortCode apperr.Field = "shortCode"
	FieldUsage     apperr.Field = "usage"
	FieldTarget    apperr.Field = "target"
)

// ErrInvalidShortCode covers every redemption failure: unknown target,
// superseded code, expired code, wrong usage. Collapsing them keeps the
// response from leaking which codes are live.
func ErrInvalidShortCode() error {
	return apperr.New("short code invalid or expired", CodeInvalidShortCode, apperr.ClassForbidden, apperr.LogLevelWarn).
		WithViolation(apperr.Violation{Field: FieldShortCode, Rule: apperr.RuleForbidden})
}

func ErrInvalidUsage() error {
	return apperr.New("unknown short code usage", CodeInvalidUsage, apperr.ClassBadRequest, apperr.LogLevelWarn).
		WithViolation(apperr.Violation{Field: FieldUsage, Rule: apperr.RuleInvalidFormat})
}

func ErrEmptyTarget() error {
	return apperr.New("short code target is required", CodeInvalidUsage, apperr.ClassBadRequest, apperr.LogLevelWarn).
		WithViolation(apperr.Violation{Field: FieldTarget, Rule: apperr.RuleRequired})
}
