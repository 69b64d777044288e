package httpclient

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is the normalized form of an error response from the FlowMastery
// backend. It carries the fields of the wire-level error envelope plus the
// HTTP status, so callers can render consistent messages without knowing the
// wire format.
type APIError struct {
	// Message is the human-readable error description.
	Message string

	// Code is the application-level error code (e.g. "VALIDATION_ERROR").
	Code string

	// Details holds structured error context, typically field-level
	// validation messages.
	Details map[string]any

	// RequestID is the backend-assigned identifier for log correlation.
	RequestID string

	// Status is the HTTP status code of the response.
	Status int
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Code != "" {
		return fmt.Sprintf("%s: %s (status %d)", e.Code, msg, e.Status)
	}
	return fmt.Sprintf("%s (status %d)", msg, e.Status)
}

// ErrUnexpectedFormat is returned when a response body is not a recognizable
// success or error envelope. This is a defensive fallback, not expected in
// normal operation.
var ErrUnexpectedFormat = errors.New("unexpected API response format")

// ErrSessionExpired wraps refresh failures. A request that fails with this
// error cannot be recovered by retrying; the user must log in again.
var ErrSessionExpired = errors.New("session expired")

// AsAPIError unwraps err into an *APIError if one is present in its chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsAuthError reports whether err represents an authentication or
// authorization failure (401/403) or an expired session.
func IsAuthError(err error) bool {
	if errors.Is(err, ErrSessionExpired) {
		return true
	}
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden
	}
	return false
}
