package services

import (
	"errors"
	"fmt"

	"github.com/RedSkyFlow/Goose/validation"
)

// ErrNotFound marks a reference to a nonexistent entity.
var ErrNotFound = errors.New("not_found")

// ValidationError reports malformed or missing required input. Deterministic;
// never retried.
type ValidationError struct {
	Violations validation.Violations
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation_failed: %v", map[string]string(e.Violations))
}

func validationErr(v validation.Violations) error {
	return &ValidationError{Violations: v}
}

// InvalidStateTransitionError reports an operation attempted from a state
// that forbids it, including version conflicts lost to a concurrent writer.
type InvalidStateTransitionError struct {
	Op   string
	From string
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("invalid_state_transition: cannot %s from %s", e.Op, e.From)
}

// GatewayError wraps an external payment call failure. The only category a
// caller may retry: the proposal stays ACCEPTED, so re-attempting Pay is safe.
type GatewayError struct {
	Err error
}

func (e *GatewayError) Error() string { return "gateway_error: " + e.Err.Error() }
func (e *GatewayError) Unwrap() error { return e.Err }
