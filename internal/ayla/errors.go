package ayla

import (
	"errors"
	"fmt"
	"net"
)

// maxBodySnippet bounds how much of a response body is kept on an error
const maxBodySnippet = 512

var (
	ErrNotAuthenticated = errors.New("ayla: not authenticated - sign in first")
	ErrInvalidDSN       = errors.New("ayla: dsn must not be empty")
)

// AuthenticationError is returned when sign-in is rejected or its response is unusable
type AuthenticationError struct {
	Endpoint   string
	StatusCode int
	Body       string
	Err        error // underlying cause, e.g. a *DecodeError
}

func (e *AuthenticationError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("ayla: sign-in at %s failed: %v", e.Endpoint, e.Err)
	case e.StatusCode != 0 && (e.StatusCode < 200 || e.StatusCode >= 300):
		return fmt.Sprintf("ayla: sign-in at %s rejected with status %d: %s", e.Endpoint, e.StatusCode, e.Body)
	default:
		return fmt.Sprintf("ayla: sign-in at %s returned no access token: %s", e.Endpoint, e.Body)
	}
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// AuthError is returned when an authenticated call is rejected with 401.
// The held token is invalid or expired; the caller must sign in again.
type AuthError struct {
	Endpoint string
	Body     string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("ayla: %s rejected the access token (401): %s", e.Endpoint, e.Body)
}

// APIError is returned for any other non-2xx response
type APIError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ayla: %s returned status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// DecodeError is returned when a response body is not the expected JSON
type DecodeError struct {
	Endpoint string
	Body     string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("ayla: failed to decode response from %s: %v", e.Endpoint, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// NetworkError is returned when the request never produced an HTTP response
type NetworkError struct {
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("ayla: request to %s failed: %v", e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Timeout reports whether the failure was a timeout
func (e *NetworkError) Timeout() bool {
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// IsAuthError reports whether err means the token was rejected
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

func snippet(body []byte) string {
	if len(body) <= maxBodySnippet {
		return string(body)
	}
	return string(body[:maxBodySnippet]) + "..."
}
