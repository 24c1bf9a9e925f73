package loop

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState indicates the plant state went NaN or infinite.
	ErrInvalidState = errors.New("loop: invalid state (NaN or Inf detected)")

	// ErrDimensionMismatch indicates an initial state that does not fit the plant.
	ErrDimensionMismatch = errors.New("loop: dimension mismatch between state and plant")
)

// SimError wraps an error with the tick it happened on.
type SimError struct {
	Step    int
	Time    float64
	Wrapped error
}

func (e *SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimError) Unwrap() error {
	return e.Wrapped
}
