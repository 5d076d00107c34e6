package integrators

import "github.com/san-kum/phitop/internal/dynamo"

// EulerStep is the first-order explicit Euler step y + h*f(t, y).
func EulerStep[S ~[]float64](f Func[S], t, h float64, y S) S {
	k1 := f(t, y)
	return axpy(y, h, k1)
}

type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Order() int { return 1 }

func (e *Euler) Step(dyn dynamo.System, x dynamo.State, t float64, dt float64) dynamo.State {
	return EulerStep(Bind(dyn), t, dt, x)
}
