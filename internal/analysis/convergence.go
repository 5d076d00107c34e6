package analysis

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/phitop/internal/dynamo"
)

// ConvergenceOrder fits log(err) = c + p*log(h) by least squares and
// returns the slope p, the empirical order of accuracy.
func ConvergenceOrder(steps, errs []float64) (float64, error) {
	if len(steps) != len(errs) {
		return 0, fmt.Errorf("%w: %d steps, %d errors", dynamo.ErrDimensionMismatch, len(steps), len(errs))
	}
	if len(steps) < 2 {
		return 0, fmt.Errorf("need at least two step sizes, got %d", len(steps))
	}

	lx := make([]float64, len(steps))
	ly := make([]float64, len(errs))
	for i := range steps {
		if steps[i] <= 0 || errs[i] <= 0 || math.IsNaN(errs[i]) || math.IsInf(errs[i], 0) {
			return 0, fmt.Errorf("step %g with error %g cannot be fitted on a log scale", steps[i], errs[i])
		}
		lx[i] = math.Log(steps[i])
		ly[i] = math.Log(errs[i])
	}

	_, slope := stat.LinearRegression(lx, ly, nil, false)
	return slope, nil
}

// ConvergenceStudy is the outcome of StudyConvergence.
type ConvergenceStudy struct {
	Steps  []float64
	Errors []float64
	Order  float64
}

// StudyConvergence integrates x0 over duration once per step size and
// measures the distance of each final state from a reference run with
// refStep. The reference integrator should be of higher order than integ,
// and refStep well below the smallest step.
func StudyConvergence(
	ctx context.Context,
	dyn dynamo.System,
	integ, reference dynamo.Integrator,
	x0 dynamo.State,
	duration float64,
	steps []float64,
	refStep float64,
) (*ConvergenceStudy, error) {
	ref, err := finalState(ctx, dyn, reference, x0, duration, refStep)
	if err != nil {
		return nil, fmt.Errorf("reference run: %w", err)
	}

	study := &ConvergenceStudy{
		Steps:  append([]float64(nil), steps...),
		Errors: make([]float64, len(steps)),
	}
	for i, h := range steps {
		x, err := finalState(ctx, dyn, integ, x0, duration, h)
		if err != nil {
			return nil, fmt.Errorf("run with h=%g: %w", h, err)
		}
		study.Errors[i] = x.Sub(ref).Norm()
	}

	study.Order, err = ConvergenceOrder(study.Steps, study.Errors)
	if err != nil {
		return nil, err
	}
	return study, nil
}

func finalState(ctx context.Context, dyn dynamo.System, integ dynamo.Integrator, x0 dynamo.State, duration, dt float64) (dynamo.State, error) {
	cfg := dynamo.Config{Dt: dt, Duration: duration}
	if got := float64(cfg.Steps()) * dt; math.Abs(got-duration) > 1e-9*duration {
		return nil, fmt.Errorf("step %g does not divide duration %g", dt, duration)
	}

	var final dynamo.State
	err := dynamo.New(dyn, integ).RunWithCallback(ctx, x0, cfg, func(x dynamo.State, _ float64) bool {
		final = x
		return true
	})
	if err != nil {
		return nil, err
	}
	return final, nil
}
