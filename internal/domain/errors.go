package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedInput marks ingestion problems. It aborts a whole run before any solving.
	ErrMalformedInput = errors.New("malformed input")
	// ErrInfeasible marks an order for which no deadline-respecting route exists.
	ErrInfeasible = errors.New("infeasible order")
	// ErrInvariantViolation marks a broken engine precondition such as a negative edge cost.
	ErrInvariantViolation = errors.New("internal invariant violation")
)

// InputError locates a malformed record in its source.
// Row is 1-based and zero when the problem is not tied to a row.
type InputError struct {
	Source string
	Row    int
	Field  string
	Msg    string
}

func (e *InputError) Error() string {
	loc := e.Source
	if e.Row > 0 {
		loc = fmt.Sprintf("%s row %d", loc, e.Row)
	}
	if e.Field != "" {
		loc = fmt.Sprintf("%s field %q", loc, e.Field)
	}
	if loc == "" {
		return fmt.Sprintf("malformed input: %s", e.Msg)
	}
	return fmt.Sprintf("malformed input: %s: %s", loc, e.Msg)
}

func (e *InputError) Unwrap() error { return ErrMalformedInput }

// InfeasibleError is the per-order verdict of the path solver.
type InfeasibleError struct {
	OrderID string
	Reason  string
}

func (e *InfeasibleError) Error() string {
	return fmt.Sprintf("order %s infeasible: %s", e.OrderID, e.Reason)
}

func (e *InfeasibleError) Unwrap() error { return ErrInfeasible }

// Invariantf builds an error wrapping ErrInvariantViolation.
func Invariantf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvariantViolation, fmt.Sprintf(format, args...))
}
