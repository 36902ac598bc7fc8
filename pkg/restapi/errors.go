package restapi

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrAuthentication marks a failed token exchange or a rejected credential
	ErrAuthentication = errors.New("authentication failed")
	// ErrUnexpectedStatus marks any other non-2xx response
	ErrUnexpectedStatus = errors.New("unexpected status")
)

// maximum number of body bytes kept in a StatusError
const maxErrorBody = 512

type StatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("GET %s returned %d", e.URL, e.StatusCode)
	}

	return fmt.Sprintf("GET %s returned %d: %s", e.URL, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden {
		return ErrAuthentication
	}

	return ErrUnexpectedStatus
}

// Retryable reports whether the request may succeed when repeated
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}
