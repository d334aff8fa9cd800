package service

import (
	"errors"
	"strings"
)

// ErrNotFound signals that the referenced persona does not exist. It is a
// recoverable, caller-visible outcome, not an internal failure.
var ErrNotFound = errors.New("persona not found")

// ValidationError carries every violation found in one pass so callers can
// report all of them together.
type ValidationError struct {
	Messages []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}
