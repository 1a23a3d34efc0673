package booking

import (
	"errors"
	"fmt"
)

// ErrSlotUnavailable means the requested start time failed re-validation at
// commit time: another booking claimed it, or the client's view was stale.
// The caller should recompute availability and offer a new pick.
var ErrSlotUnavailable = errors.New("booking: slot no longer available")

// ErrNotFound means no booking with the given id exists.
var ErrNotFound = errors.New("booking: not found")

// ErrNotAllowed means the principal may not act on this booking.
var ErrNotAllowed = errors.New("booking: not allowed")

// ValidationError reports malformed input. It is never retried; the caller
// fixes the request.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("booking: invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
