package dynamo

import (
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

type Simulator struct {
	dyn        System
	integrator Integrator
	metrics    []Metric
	observers  []Observer
	log        logrus.FieldLogger
}

func New(dyn System, integrator Integrator) *Simulator {
	return &Simulator{
		dyn:        dyn,
		integrator: integrator,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
		log:        logrus.StandardLogger(),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// SetLogger replaces the logger used for run lifecycle messages.
func (s *Simulator) SetLogger(l logrus.FieldLogger) {
	if l != nil {
		s.log = l
	}
}

// Run advances x0 with a fixed step until cfg.Duration. Every visited state,
// including x0, is recorded and handed to metrics and observers. Non-finite
// states are propagated unless cfg.ValidateState is set.
func (s *Simulator) Run(ctx context.Context, x0 State, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}
	if len(x0) != s.dyn.StateDim() {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(x0), s.dyn.StateDim())
	}

	steps := cfg.Steps()
	result := &Result{
		States:  make([]State, 0, steps+1),
		Times:   make([]float64, 0, steps+1),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	log := s.log.WithFields(logrus.Fields{"steps": steps, "dt": cfg.Dt})
	log.Debug("simulation started")

	x := x0.Clone()
	t := 0.0
	dt := cfg.Dt

	result.States = append(result.States, x.Clone())
	result.Times = append(result.Times, t)
	s.notify(x, t)

	initialEnergy := s.computeEnergy(x)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return result, &SimulationError{Step: i, Time: t, State: x, Wrapped: ErrContextCanceled}
		default:
		}

		newX := s.integrator.Step(s.dyn, x, t, dt)
		if cfg.Project {
			if p, ok := s.dyn.(Projector); ok {
				newX = p.Project(newX)
			}
		}

		if cfg.ValidateState && !newX.IsValid() {
			err := SimError{Time: t, Step: i, Message: "invalid state (NaN/Inf)"}
			result.Errors = append(result.Errors, err)
			log.WithFields(logrus.Fields{"step": i, "t": t}).Warn("stopping on non-finite state")
			break
		}

		x = newX
		t = float64(i+1) * dt
		result.StepsTaken++

		result.States = append(result.States, x.Clone())
		result.Times = append(result.Times, t)
		s.notify(x, t)
	}

	finalEnergy := s.computeEnergy(x)
	if initialEnergy != 0 {
		result.EnergyDrift = math.Abs(finalEnergy-initialEnergy) / math.Abs(initialEnergy)
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	log.WithField("taken", result.StepsTaken).Debug("simulation finished")
	return result, nil
}

func (s *Simulator) notify(x State, t float64) {
	for _, m := range s.metrics {
		m.Observe(x, t)
	}
	for _, obs := range s.observers {
		obs.OnStep(x, t)
	}
}

func (s *Simulator) validateConfig(cfg Config) error {
	if !(cfg.Dt > 0) || math.IsInf(cfg.Dt, 0) {
		return &DomainError{Quantity: "dt", Value: cfg.Dt, Reason: "must be positive and finite"}
	}
	if !(cfg.Duration > 0) || math.IsInf(cfg.Duration, 0) {
		return &DomainError{Quantity: "duration", Value: cfg.Duration, Reason: "must be positive and finite"}
	}
	return nil
}

func (s *Simulator) computeEnergy(x State) float64 {
	if ec, ok := s.dyn.(Hamiltonian); ok {
		return ec.Energy(x)
	}
	return 0
}

// RunWithCallback steps like Run without recording. The callback sees x0
// and then every new state, and may stop the run by returning false.
func (s *Simulator) RunWithCallback(ctx context.Context, x0 State, cfg Config, callback func(State, float64) bool) error {
	if err := s.validateConfig(cfg); err != nil {
		return err
	}
	if len(x0) != s.dyn.StateDim() {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(x0), s.dyn.StateDim())
	}

	x := x0.Clone()
	if !callback(x, 0) {
		return nil
	}

	steps := cfg.Steps()
	for i := 0; i < steps; i++ {
		t := float64(i) * cfg.Dt
		select {
		case <-ctx.Done():
			return &SimulationError{Step: i, Time: t, State: x, Wrapped: ErrContextCanceled}
		default:
		}

		x = s.integrator.Step(s.dyn, x, t, cfg.Dt)
		if cfg.Project {
			if p, ok := s.dyn.(Projector); ok {
				x = p.Project(x)
			}
		}

		if cfg.ValidateState && !x.IsValid() {
			return &SimulationError{Step: i, Time: t, State: x, Wrapped: ErrInvalidState}
		}
		if !callback(x, float64(i+1)*cfg.Dt) {
			return nil
		}
	}

	return nil
}
