// Package dynamo provides core simulation primitives for dynamical systems.
//
// The package defines the fundamental interfaces and types for fixed-step
// numerical simulation of ordinary differential equations (ODEs):
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X, t))
//   - [Integrator]: numerical stepper interface
//   - [Simulator]: orchestrates simulation runs
//
// # Example
//
//	top := physics.NewPhiTop(shape, physics.DefaultParams())
//	sim := dynamo.New(top, integrators.NewRK4())
//	result, _ := sim.Run(ctx, x0, cfg)
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe. For parallel simulations of
// independent initial conditions, use the [Ensemble] type.
package dynamo
