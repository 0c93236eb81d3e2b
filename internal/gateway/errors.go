package gateway

import (
	"errors"
	"fmt"
)

// Gateway errors. Callers distinguish failure kinds with errors.Is; the
// wrapped message carries the upstream error text when the server supplied
// one.
var (
	// ErrValidation flags invalid caller input, caught before any network
	// call is made.
	ErrValidation = errors.New("invalid input")

	// ErrAuthRequired flags an operation that needs a session the caller
	// does not hold. Reported before any network call.
	ErrAuthRequired = errors.New("authentication required")

	// ErrConnectivity flags a transport-level failure (DNS, connection),
	// as opposed to a server rejection.
	ErrConnectivity = errors.New("network error")

	// ErrUnauthenticated maps upstream 401 responses.
	ErrUnauthenticated = errors.New("authentication failed")

	// ErrForbidden maps upstream 403 responses.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound maps upstream 404 responses.
	ErrNotFound = errors.New("not found")
)

// UpstreamError is a non-2xx response from the remote API. Message holds the
// server-supplied error text when present, else a per-operation default.
type UpstreamError struct {
	Status  int
	Message string
	kind    error
}

func (e *UpstreamError) Error() string {
	return e.Message
}

// Unwrap exposes the status-derived sentinel so errors.Is works on upstream
// failures.
func (e *UpstreamError) Unwrap() error {
	return e.kind
}

// NewUpstreamError builds an UpstreamError, mapping well-known statuses to
// their sentinels.
func NewUpstreamError(status int, message string) *UpstreamError {
	err := &UpstreamError{Status: status, Message: message}
	switch status {
	case 401:
		err.kind = ErrUnauthenticated
	case 403:
		err.kind = ErrForbidden
	case 404:
		err.kind = ErrNotFound
	}
	return err
}

// connectivityError wraps a transport failure so callers can tell
// "unreachable" from "server rejected".
func connectivityError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrConnectivity, op, err)
}
