package api

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrUnauthorized is returned when the API rejects the request with 401.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrUnavailable is returned when the API cannot be reached at all.
	ErrUnavailable = errors.New("service unavailable")
)

// NetworkError is returned when the request never produced an HTTP response
// (DNS failure, connection refused, timeout, connection reset).
type NetworkError struct {
	// Cause is the underlying transport error.
	Cause error
}

// Error returns a human-readable description of the network failure.
func (e *NetworkError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("api unreachable: %v", e.Cause)
	}
	return "api unreachable"
}

// Unwrap returns the underlying error cause.
func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// Is reports whether this error matches the target error.
// It supports errors.Is(err, ErrUnavailable).
func (e *NetworkError) Is(target error) bool {
	return target == ErrUnavailable
}

// AuthError is returned when the API responds with 401 Unauthorized.
// The client never retries or refreshes tokens on its own; the session
// store reacts by clearing the persisted credentials.
type AuthError struct {
	// Body is the raw response body, passed through uninterpreted.
	Body []byte
}

// Error returns a human-readable description of the authorization failure.
func (e *AuthError) Error() string {
	return "api: authorization rejected (401)"
}

// Is reports whether this error matches the target error.
// It supports errors.Is(err, ErrUnauthorized).
func (e *AuthError) Is(target error) bool {
	return target == ErrUnauthorized
}

// APIError is returned for any non-2xx response other than 401.
// The body is passed through uninterpreted so callers can render
// field-level validation messages.
type APIError struct {
	// StatusCode is the HTTP status code of the response.
	StatusCode int
	// Body is the raw response body.
	Body []byte
}

// Error returns a human-readable description of the server rejection.
func (e *APIError) Error() string {
	return fmt.Sprintf("api: server returned %d", e.StatusCode)
}

// Message extracts a short user-facing message from the error body.
// It looks for the conventional "detail", "error", and "message" keys
// and falls back to the given default when none is present.
func (e *APIError) Message(fallback string) string {
	return extractMessage(e.Body, fallback)
}

// ErrorMessage extracts a short user-facing message from an adapter error
// body (AuthError or APIError), falling back to the given default for any
// other error or an uninterpretable body.
func ErrorMessage(err error, fallback string) string {
	return extractMessage(ErrorBody(err), fallback)
}

// ErrorBody returns the raw response body carried by an AuthError or
// APIError, or nil for any other error.
func ErrorBody(err error) []byte {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		return authErr.Body
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Body
	}
	return nil
}

// extractMessage pulls a human-readable message out of a JSON error body.
func extractMessage(body []byte, fallback string) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return fallback
	}
	for _, key := range []string{"detail", "error", "message"} {
		if v, ok := payload[key].(string); ok && v != "" {
			return v
		}
	}
	return fallback
}
