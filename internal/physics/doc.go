// Package physics models a solid ellipsoid spinning on a plane.
//
// The package has three parts:
//
//   - [NewEllipsoid]: one-shot builder of the body-frame inertia tensor I0
//     and shape tensor B0 (the ellipsoid is x'B0x = 1)
//   - [BodyState], [Unpack]: marshalling between the 13-component state
//     vector and position, orientation, velocity and angular velocity
//   - [PhiTop]: the equations of motion, implementing [dynamo.System]
//
// [PhiTop] also implements [dynamo.Hamiltonian] for energy monitoring,
// [dynamo.Configurable] and [dynamo.Projector].
//
// # Numerical failure
//
// Derive does not guard against degenerate geometry. A singular shape
// tensor or a contact point at or above the centre produces NaN or Inf,
// which then propagates through every later step. Call [Validate] before
// a run to turn these cases into errors.
//
//	shape := physics.NewEllipsoid(physics.Phi, 1, 1, 1)
//	top := physics.NewPhiTop(shape, physics.DefaultParams())
//	if err := physics.Validate(shape, top.Params(), x0); err != nil {
//	    return err
//	}
package physics
