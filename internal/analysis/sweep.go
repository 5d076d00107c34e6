package analysis

import (
	"context"
	"fmt"

	"github.com/san-kum/phitop/internal/dynamo"
)

// SweepPoint holds the metric values of one run in a parameter sweep.
type SweepPoint struct {
	Param   float64
	Metrics map[string]float64
	Steps   int
}

// ParameterSweep runs x0 once for each of n evenly spaced values of the
// named parameter in [from, to], collecting fresh metrics each time. The
// parameter is restored afterwards. Runs are sequential because SetParam
// mutates the shared system.
func ParameterSweep(
	ctx context.Context,
	dyn dynamo.System,
	integ dynamo.Integrator,
	name string,
	from, to float64,
	n int,
	x0 dynamo.State,
	cfg dynamo.Config,
	metrics func() []dynamo.Metric,
) ([]SweepPoint, error) {
	tunable, ok := dyn.(dynamo.Configurable)
	if !ok {
		return nil, fmt.Errorf("system %T has no tunable parameters", dyn)
	}
	original, ok := tunable.GetParams()[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", dynamo.ErrUnknownParam, name)
	}
	defer tunable.SetParam(name, original)

	if n < 2 {
		n = 2
	}
	step := (to - from) / float64(n-1)

	points := make([]SweepPoint, 0, n)
	for i := 0; i < n; i++ {
		value := from + float64(i)*step
		if err := tunable.SetParam(name, value); err != nil {
			return points, err
		}

		sim := dynamo.New(dyn, integ)
		if metrics != nil {
			for _, m := range metrics() {
				sim.AddMetric(m)
			}
		}

		res, err := sim.Run(ctx, x0, cfg)
		if err != nil {
			return points, fmt.Errorf("%s=%g: %w", name, value, err)
		}
		points = append(points, SweepPoint{Param: value, Metrics: res.Metrics, Steps: res.StepsTaken})
	}

	return points, nil
}
