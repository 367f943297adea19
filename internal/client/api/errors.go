package api

import (
	"errors"
	"fmt"
)

// ErrAuthentication covers a missing or rejected token. The session has
// already been cleared by the time a caller sees it; the only sane reaction
// is a redirect to login.
var ErrAuthentication = errors.New("authentication required")

var errEmptyToken = errors.New("empty token in response")

// ErrNotFound distinguishes "no data yet" from a generic failure on list and
// detail endpoints.
var ErrNotFound = errors.New("not found")

// APIError carries a gateway-reported failure for the remaining statuses.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gateway error (%d): %s", e.StatusCode, e.Message)
}

// ParseError marks a response whose shape did not match the endpoint's
// contract, so mismatches fail loudly at the boundary instead of surfacing as
// zero-value bugs downstream.
type ParseError struct {
	Endpoint string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unexpected response from %s: %v", e.Endpoint, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
