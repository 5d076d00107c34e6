package dynamo

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Ensemble runs independent trajectories of one system concurrently. The
// system and integrator are shared and must be safe for concurrent use;
// metrics are stateful, so each run gets a fresh set from the factory.
type Ensemble struct {
	dyn        System
	integrator Integrator
	metrics    func() []Metric
	limit      int
}

func NewEnsemble(dyn System, integrator Integrator) *Ensemble {
	return &Ensemble{dyn: dyn, integrator: integrator, limit: -1}
}

func (e *Ensemble) WithMetrics(factory func() []Metric) *Ensemble {
	e.metrics = factory
	return e
}

// SetLimit bounds the number of trajectories in flight; n <= 0 means no limit.
func (e *Ensemble) SetLimit(n int) *Ensemble {
	if n <= 0 {
		n = -1
	}
	e.limit = n
	return e
}

// Run integrates every initial state with the same config. Results are in
// the order of initial; the first failing run cancels the rest.
func (e *Ensemble) Run(ctx context.Context, initial []State, cfg Config) ([]*Result, error) {
	results := make([]*Result, len(initial))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.limit)

	for i, x0 := range initial {
		g.Go(func() error {
			s := New(e.dyn, e.integrator)
			if e.metrics != nil {
				for _, m := range e.metrics() {
					s.AddMetric(m)
				}
			}

			res, err := s.Run(ctx, x0, cfg)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
