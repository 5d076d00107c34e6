package integrators

import "github.com/san-kum/phitop/internal/dynamo"

// RK4Step is the classical fourth-order Runge-Kutta step.
func RK4Step[S ~[]float64](f Func[S], t, h float64, y S) S {
	h2 := h / 2.0
	h3 := h / 3.0
	h6 := h / 6.0

	k1 := f(t, y)
	k2 := f(t+h2, axpy(y, h2, k1))
	k3 := f(t+h2, axpy(y, h2, k2))
	k4 := f(t+h, axpy(y, h, k3))

	result := make(S, len(y))
	for i := range y {
		result[i] = y[i] + (k1[i]+k4[i])*h6 + (k2[i]+k3[i])*h3
	}
	return result
}

type RK4 struct{}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Order() int { return 4 }

func (r *RK4) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	return RK4Step(Bind(dyn), t, dt, x)
}
