package authclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Violation pins a rejected form field to the rule it broke.
type Violation struct {
	Field  string         `json:"field"`
	Rule   string         `json:"rule"`
	Params map[string]any `json:"params,omitempty"`
}

// APIError is a non-2xx answer from the service. Status is always set,
// the remaining fields depend on the service sending a JSON error body.
type APIError struct {
	Status     int         `json:"-"`
	Message    string      `json:"message"`
	Code       string      `json:"code"`
	Violations []Violation `json:"violations,omitempty"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error: status %d", e.Status)
	}

	return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
}

// SchemaError is a 2xx answer whose body does not match the shape this
// client was built against. It never overlaps with APIError: one means
// the service rejected the call, the other means the service answered
// with something this client cannot trust.
type SchemaError struct {
	cause error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("malformed response: %v", e.cause)
}

func (e *SchemaError) Unwrap() error {
	return e.cause
}

// IsSchemaError reports whether err stems from a response body that
// failed schema validation.
func IsSchemaError(err error) bool {
	var schemaErr *SchemaError
	return errors.As(err, &schemaErr)
}

func decodeAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode}

	// The error body is optional: HEAD answers and proxy errors carry none.
	var envelope struct {
		Error APIError `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err == nil {
		apiErr.Message = envelope.Error.Message
		apiErr.Code = envelope.Error.Code
		apiErr.Violations = envelope.Error.Violations
	}

	return apiErr
}

// IsStatus reports whether err is an APIError with the given HTTP status.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == status
}

func IsBadRequest(err error) bool   { return IsStatus(err, http.StatusBadRequest) }
func IsUnauthorized(err error) bool { return IsStatus(err, http.StatusUnauthorized) }
func IsForbidden(err error) bool    { return IsStatus(err, http.StatusForbidden) }
func IsNotFound(err error) bool     { return IsStatus(err, http.StatusNotFound) }
func IsConflict(err error) bool     { return IsStatus(err, http.StatusConflict) }
