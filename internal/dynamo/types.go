package dynamo

import (
	"fmt"
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// System is an ODE right-hand side dx/dt = f(x, t).
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

type Hamiltonian interface {
	Energy(x State) float64
}

// Projector maps a state back onto the system's manifold after a step,
// e.g. renormalising an orientation quaternion. Only the driver applies it.
type Projector interface {
	Project(x State) State
}

type Integrator interface {
	Step(dyn System, x State, t float64, dt float64) State
}

type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(x State, t float64)
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

type Config struct {
	Dt            float64
	Duration      float64
	ValidateState bool
	Project       bool
}

func DefaultConfig() Config {
	return Config{
		Dt:       1e-3,
		Duration: 18.0,
	}
}

// Steps is the number of fixed steps covering Duration. A ratio within
// rounding of an integer counts as that integer.
func (c Config) Steps() int {
	n := c.Duration / c.Dt
	if r := math.Round(n); math.Abs(n-r) <= 1e-9*math.Max(r, 1) {
		return int(r)
	}
	return int(n)
}

type Result struct {
	States      []State
	Times       []float64
	Metrics     map[string]float64
	EnergyDrift float64
	StepsTaken  int
	Errors      []error
}

// Final returns the last recorded state, or nil for an empty result.
func (r *Result) Final() State {
	if len(r.States) == 0 {
		return nil
	}
	return r.States[len(r.States)-1]
}

type SimError struct {
	Time    float64
	Step    int
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}
