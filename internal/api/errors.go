package api

import (
	"errors"
	"fmt"
)

// ErrNoRefreshToken is returned by Refresh when no refresh token is held.
var ErrNoRefreshToken = errors.New("no refresh token available")

// Error is the structured form of any non-2xx or malformed API response.
// StatusCode is zero when the failure had no usable HTTP status (for
// example a 2xx response whose body was not valid JSON).
type Error struct {
	Message    string
	StatusCode int
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("API error: %s", e.Message)
}

// AsError unwraps err into an *Error when possible.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// StatusOf returns the HTTP status carried by err, or zero.
func StatusOf(err error) int {
	if apiErr, ok := AsError(err); ok {
		return apiErr.StatusCode
	}
	return 0
}
