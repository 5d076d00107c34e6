// Package integrators implements fixed-step explicit ODE steppers.
//
// Each method exists in two forms: a generic function over any state type
// and derivative callable ([EulerStep], [HeunStep], [RK4Step]), and a
// [dynamo.Integrator] adapter that binds a [dynamo.System]. Steppers keep no
// state between calls and never modify the state they are given.
package integrators

import "github.com/san-kum/phitop/internal/dynamo"

// Func is the right-hand side f(t, y) of dy/dt = f(t, y).
type Func[S ~[]float64] func(t float64, y S) S

// Bind adapts a system's Derive to a Func.
func Bind(dyn dynamo.System) Func[dynamo.State] {
	return func(t float64, y dynamo.State) dynamo.State {
		return dyn.Derive(y, t)
	}
}

// axpy returns y + k*a as a new vector.
func axpy[S ~[]float64](y S, a float64, k S) S {
	out := make(S, len(y))
	for i := range y {
		out[i] = y[i] + k[i]*a
	}
	return out
}
