package grid

import (
	"errors"
	"fmt"
)

// ErrInvariant is wrapped by every internal invariant violation. These are
// bugs or inconsistent stage handoffs, never user input errors.
var ErrInvariant = errors.New("internal invariant violation")

// InvariantError describes which stage broke which invariant and where.
type InvariantError struct {
	Stage     string
	Invariant string
	Index     int
	Detail    string
}

func (e *InvariantError) Error() string {
	msg := fmt.Sprintf("%s: invariant %s violated", e.Stage, e.Invariant)
	if e.Index >= 0 {
		msg += fmt.Sprintf(" at index %d", e.Index)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *InvariantError) Unwrap() error { return ErrInvariant }

// Invariant builds an InvariantError with no specific tile index.
func Invariant(stage, invariant, format string, args ...any) *InvariantError {
	return &InvariantError{Stage: stage, Invariant: invariant, Index: -1, Detail: fmt.Sprintf(format, args...)}
}

// InvariantAt builds an InvariantError pinned to a tile index.
func InvariantAt(stage, invariant string, index int, format string, args ...any) *InvariantError {
	return &InvariantError{Stage: stage, Invariant: invariant, Index: index, Detail: fmt.Sprintf(format, args...)}
}

// CheckLength verifies that a map handed between stages matches the grid.
func CheckLength(stage, name string, got, want int) error {
	if got != want {
		return Invariant(stage, "map-length", "%s has %d entries, expected %d", name, got, want)
	}
	return nil
}
