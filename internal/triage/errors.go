package triage

import "errors"

var (
	// ErrParse means provider text could not be coerced into a structured
	// result even after salvage.
	ErrParse = errors.New("unparseable provider response")
	// ErrIncomplete means the provider output parsed but omitted required
	// fields; the result cannot be trusted as a partial assessment.
	ErrIncomplete = errors.New("incomplete provider response")
)

// Reason codes recorded with blocked attempts.
const (
	ReasonBlockedNoParts = "blocked_no_parts"
	ReasonSalvageFailed  = "salvage_failed"
	ReasonTransportError = "transport_error"
)
