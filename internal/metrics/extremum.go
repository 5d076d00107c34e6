package metrics

import (
	"math"

	"github.com/san-kum/phitop/internal/dynamo"
)

// Observable is a scalar read off a state.
type Observable func(x dynamo.State) float64

// Extremum tracks the minimum or maximum of an observable. Until a state
// is observed the value is NaN.
type Extremum struct {
	name    string
	f       Observable
	max     bool
	value   float64
	samples int
}

func NewMin(name string, f Observable) *Extremum {
	return &Extremum{name: name, f: f, value: math.NaN()}
}

func NewMax(name string, f Observable) *Extremum {
	return &Extremum{name: name, f: f, max: true, value: math.NaN()}
}

func (e *Extremum) Name() string { return e.name }

func (e *Extremum) Observe(x dynamo.State, t float64) {
	v := e.f(x)
	e.samples++
	switch {
	case e.samples == 1:
		e.value = v
	case e.max:
		e.value = math.Max(e.value, v)
	default:
		e.value = math.Min(e.value, v)
	}
}

func (e *Extremum) Value() float64 { return e.value }

func (e *Extremum) Reset() {
	e.value = math.NaN()
	e.samples = 0
}

// Deviation is the largest |f(x) - target| seen. It measures drift of a
// quantity that should stay constant, such as a unit quaternion's norm.
type Deviation struct {
	name     string
	f        Observable
	target   float64
	maxDrift float64
}

func NewDeviation(name string, f Observable, target float64) *Deviation {
	return &Deviation{name: name, f: f, target: target}
}

func (d *Deviation) Name() string { return d.name }

func (d *Deviation) Observe(x dynamo.State, t float64) {
	d.maxDrift = math.Max(d.maxDrift, math.Abs(d.f(x)-d.target))
}

func (d *Deviation) Value() float64 { return d.maxDrift }

func (d *Deviation) Reset() { d.maxDrift = 0 }
