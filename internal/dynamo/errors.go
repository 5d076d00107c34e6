package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidState indicates a state vector with invalid dimensions or values.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrContextCanceled indicates the simulation was interrupted.
	ErrContextCanceled = errors.New("dynamo: simulation canceled by context")

	// ErrDimensionMismatch indicates mismatched state dimensions.
	ErrDimensionMismatch = errors.New("dynamo: dimension mismatch between state and system")

	// ErrUnknownIntegrator indicates an integrator name with no registered method.
	ErrUnknownIntegrator = errors.New("dynamo: unknown integrator")

	// ErrUnknownParam is returned by SetParam for names a model does not expose.
	ErrUnknownParam = errors.New("dynamo: unknown parameter")
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}

// DomainError reports a quantity whose value puts the model outside the
// region where its equations are defined.
type DomainError struct {
	Quantity string
	Value    float64
	Reason   string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("domain error: %s = %g: %s", e.Quantity, e.Value, e.Reason)
}

func (e *DomainError) Unwrap() error { return ErrParameterBounds }

// SingularConfigurationError reports a matrix that cannot be inverted.
type SingularConfigurationError struct {
	Matrix string
	Det    float64
}

func (e *SingularConfigurationError) Error() string {
	return fmt.Sprintf("singular configuration: %s is not invertible (det=%g)", e.Matrix, e.Det)
}

func (e *SingularConfigurationError) Unwrap() error { return ErrParameterBounds }
