package experiment

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/san-kum/phitop/internal/config"
	"github.com/san-kum/phitop/internal/dynamo"
	"github.com/san-kum/phitop/internal/integrators"
	"github.com/san-kum/phitop/internal/metrics"
	"github.com/san-kum/phitop/internal/physics"
)

// Experiment is one configured phi top run: the model, its start state and
// a simulator with the standard metrics attached.
type Experiment struct {
	cfg        config.Config
	top        *physics.PhiTop
	integrator integrators.Method
	x0         dynamo.State
	simulator  *dynamo.Simulator
	log        logrus.FieldLogger
}

// New builds an experiment from cfg. With cfg.ValidateState set the body
// and start state are checked by physics.Validate first.
func New(cfg *config.Config, log logrus.FieldLogger) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	integ, err := integrators.Lookup(cfg.Integrator)
	if err != nil {
		return nil, err
	}

	shape := cfg.Shape()
	params := cfg.Params()
	x0, err := cfg.InitialState(shape)
	if err != nil {
		return nil, err
	}
	if cfg.ValidateState {
		if err := physics.Validate(shape, params, x0); err != nil {
			return nil, err
		}
	}

	e := &Experiment{
		cfg:        *cfg,
		top:        physics.NewPhiTop(shape, params),
		integrator: integ,
		x0:         x0,
		log:        log.WithField("integrator", cfg.Integrator),
	}

	e.simulator = dynamo.New(e.top, integ)
	e.simulator.SetLogger(e.log)
	for _, m := range metrics.ForPhiTop(e.top) {
		e.simulator.AddMetric(m)
	}
	return e, nil
}

func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	e.log.WithFields(logrus.Fields{
		"dt":       e.cfg.Dt,
		"duration": e.cfg.Duration,
		"friction": e.cfg.Physics.Friction,
	}).Info("running")

	return e.simulator.Run(ctx, e.x0, e.cfg.SimConfig())
}

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *dynamo.Simulator {
	return e.simulator
}

func (e *Experiment) Top() *physics.PhiTop           { return e.top }
func (e *Experiment) Integrator() integrators.Method { return e.integrator }
func (e *Experiment) Initial() dynamo.State          { return e.x0.Clone() }
func (e *Experiment) Config() config.Config          { return e.cfg }
