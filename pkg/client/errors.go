package client

import (
	"errors"
	"fmt"
)

// HTTPError represents a non-2xx HTTP response from the API.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsStatus returns true if err (or any wrapped error) is an HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	return false
}

var (
	// ErrSessionExpired means the credential pair is gone: the refresh
	// credential was missing or rejected, or the refreshed access credential
	// was rejected too. The store has been cleared; the caller must send the
	// user to login.
	ErrSessionExpired = errors.New("session expired")

	// ErrInvalidCredentials is returned by Login when the server rejects
	// the username/password.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrValidation wraps input problems caught before any network call.
	ErrValidation = errors.New("validation failed")
)
