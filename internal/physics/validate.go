package physics

import (
	"math"

	"github.com/san-kum/phitop/internal/dynamo"
)

// Validate checks the preconditions under which Derive is well defined for
// state x. It is never called by Derive itself. The returned error is a
// *dynamo.DomainError, a *dynamo.SingularConfigurationError, or
// dynamo.ErrInvalidState for non-finite components.
func Validate(shape Shape, params Params, x dynamo.State) error {
	if len(x) != StateDim {
		return &dynamo.DomainError{Quantity: "state length", Value: float64(len(x)), Reason: "want 13 components"}
	}
	for i, name := range []string{"a", "b", "c"} {
		if a := shape.Axes[i]; !(a > 0) || math.IsInf(a, 0) {
			return &dynamo.DomainError{Quantity: "semi-axis " + name, Value: a, Reason: "must be positive and finite"}
		}
	}
	if !(shape.Mass > 0) {
		return &dynamo.DomainError{Quantity: "mass", Value: shape.Mass, Reason: "must be positive"}
	}
	if params.Friction < 0 {
		return &dynamo.DomainError{Quantity: "friction", Value: params.Friction, Reason: "must not be negative"}
	}
	if params.RollFriction < 0 {
		return &dynamo.DomainError{Quantity: "roll friction", Value: params.RollFriction, Reason: "must not be negative"}
	}
	for _, pm := range shape.Points {
		if !(pm.Mass >= 0) || math.IsInf(pm.Mass, 0) {
			return &dynamo.DomainError{Quantity: "point mass", Value: pm.Mass, Reason: "must be finite and not negative"}
		}
	}
	if !x.IsValid() {
		return dynamo.ErrInvalidState
	}

	b := Unpack(x)
	if n := b.Orientation.Len(); n == 0 {
		return &dynamo.DomainError{Quantity: "|q|", Value: n, Reason: "orientation quaternion is zero"}
	}

	_, B := shape.World(b.Rotation())
	if singular, det := nearSingular(B); singular {
		return &dynamo.SingularConfigurationError{Matrix: "B", Det: det}
	}
	bInv := invert(B)
	if d := Up.Dot(bInv.Mul3x1(Up)); !(d > 0) {
		return &dynamo.DomainError{Quantity: "e3ᵀB⁻¹e3", Value: d, Reason: "must be positive for a lowest point to exist"}
	}
	return nil
}
