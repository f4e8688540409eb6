package dynamo

import (
	"errors"
	"fmt"
)

// Error taxonomy for the integration engine.
var (
	// ErrConfiguration indicates an incomplete or invalid integrator setup
	// (no context attached, maximum step unset or non-positive). Fatal.
	ErrConfiguration = errors.New("stiffode: invalid integrator configuration")

	// ErrConvergence indicates the corrector could not converge and the
	// retry budget ran out. Recoverable internally; fatal once surfaced.
	ErrConvergence = errors.New("stiffode: corrector failed to converge")

	// ErrMinimumStep indicates error control wants a step below the working
	// minimum. Whether it surfaces is governed by the throw flag.
	ErrMinimumStep = errors.New("stiffode: step size below working minimum")

	// ErrUnsupportedScheme indicates a Jacobian scheme the current scalar
	// or system cannot provide. Fatal, detected at the first step attempt.
	ErrUnsupportedScheme = errors.New("stiffode: unsupported jacobian scheme")

	// ErrDimensionMismatch indicates mismatched state/system dimensions.
	ErrDimensionMismatch = errors.New("stiffode: dimension mismatch between state and system")
)

// IntegrationError wraps a sentinel with the step context it occurred in.
type IntegrationError struct {
	Time     float64
	StepSize float64
	Wrapped  error
}

func (e *IntegrationError) Error() string {
	return fmt.Sprintf("t=%.6g h=%.6g: %v", e.Time, e.StepSize, e.Wrapped)
}

func (e *IntegrationError) Unwrap() error {
	return e.Wrapped
}
