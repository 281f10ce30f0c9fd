package acme

import "errors"

// Validation errors surfaced by request builders before any network call.
var (
	// ErrNoIdentifiers is returned when an order is serialized without any
	// identifiers.
	ErrNoIdentifiers = errors.New("acme: order has no identifiers")
	// ErrInvalidReasonCode is returned for a revocation reason outside the
	// RFC 5280 value set.
	ErrInvalidReasonCode = errors.New("acme: invalid revocation reason code")
	// ErrInvalidPEM is returned when certificate PEM data cannot be parsed.
	ErrInvalidPEM = errors.New("acme: invalid certificate PEM")
)

// ErrInvalidTimestamp is returned when a server resource carries
// a malformed RFC 3339 timestamp.
var ErrInvalidTimestamp = errors.New("acme: invalid RFC 3339 timestamp")
