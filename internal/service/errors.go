package service

import "errors"

var (
	// ErrCodeExists is returned when an issued code string collides with an
	// existing one.
	ErrCodeExists = errors.New("code already exists")

	// ErrCodeNotFound is returned when no code matches the submitted string.
	ErrCodeNotFound = errors.New("code not found")

	// ErrMalformedCode is returned when the submitted string does not parse
	// as a code at all.
	ErrMalformedCode = errors.New("malformed code")

	// ErrCodeInactive is returned when the code was administratively disabled.
	ErrCodeInactive = errors.New("code is inactive")

	// ErrCodeExpired is returned when the current time is past the code's
	// expiry cutoff.
	ErrCodeExpired = errors.New("code has expired")

	// ErrCodeExhausted is returned when the code's usage quota is spent.
	ErrCodeExhausted = errors.New("code has reached maximum uses")

	// ErrNoInventory is returned when the pool has no unused entry for the
	// requested tier.
	ErrNoInventory = errors.New("no pool inventory for this tier")

	// ErrInvalidRequest is returned when request data fails a business rule
	// the struct validator cannot express.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrHelperNotFound is returned when a helper id matches nothing.
	ErrHelperNotFound = errors.New("helper not found")

	// ErrBatchNotFound is returned when a batch id matches nothing.
	ErrBatchNotFound = errors.New("batch not found")
)
