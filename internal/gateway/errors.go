package gateway

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidParams marks bad local input. No request was sent.
	ErrInvalidParams = errors.New("invalid params")
	// ErrUnavailable marks a transport, HTTP or payload failure.
	ErrUnavailable = errors.New("gateway unavailable")

	ErrMissingToken = errors.New("gateway token is required")
)

// Error is the only error type Request returns. Kind is ErrInvalidParams or
// ErrUnavailable, so callers can match with errors.Is.
type Error struct {
	Kind   error
	Domain Domain
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Domain, e.Kind, e.Err)
}

func (e *Error) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

func invalidParams(d Domain, format string, args ...any) *Error {
	return &Error{Kind: ErrInvalidParams, Domain: d, Err: fmt.Errorf(format, args...)}
}

func unavailable(d Domain, err error) *Error {
	return &Error{Kind: ErrUnavailable, Domain: d, Err: err}
}
