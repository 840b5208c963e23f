package osuapi

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel error kinds for this package.
var (
	ErrMissingAPIKey = errors.New("osu! API key is not configured")
	ErrUserNotFound  = errors.New("osu! user not found")
	ErrRequest       = errors.New("osu! API request failed")
	ErrDecode        = errors.New("osu! API response could not be decoded")
)

// StatusError reports a non-2xx response that survived every retry, or one
// that is not retried at all.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("osu! API %s: HTTP %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// Unwrap lets errors.Is match ErrRequest.
func (e *StatusError) Unwrap() error { return ErrRequest }

// Retryable reports whether the status is one the client retries.
func (e *StatusError) Retryable() bool {
	return retryableStatus(e.StatusCode)
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
