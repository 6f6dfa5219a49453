package services

import "errors"

// Business-rule failures surfaced to the transport layer. They abort the
// current operation without retry; anything else coming out of a service is
// an internal fault.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrConflict        = errors.New("conflict")
	ErrInvalidInput    = errors.New("invalid input")
)
