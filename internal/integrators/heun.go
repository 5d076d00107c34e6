package integrators

import "github.com/san-kum/phitop/internal/dynamo"

// HeunStep is the second-order predictor-corrector step: an Euler predictor
// at t+h, then the trapezoidal average of both slopes.
func HeunStep[S ~[]float64](f Func[S], t, h float64, y S) S {
	h2 := h / 2.0

	k1 := f(t, y)
	yp := axpy(y, h, k1)
	k2 := f(t+h, yp)

	result := make(S, len(y))
	for i := range y {
		result[i] = y[i] + (k1[i]+k2[i])*h2
	}
	return result
}

type Heun struct{}

func NewHeun() *Heun {
	return &Heun{}
}

func (h *Heun) Order() int { return 2 }

func (h *Heun) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	return HeunStep(Bind(dyn), t, dt, x)
}
