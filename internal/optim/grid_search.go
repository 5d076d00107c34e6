// Package optim searches run settings for the best value of a metric.
package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/phitop/internal/experiment"
)

// Builder makes the experiment for one point of the grid.
type Builder func(params map[string]float64) (*experiment.Experiment, error)

// GridSearch tries every combination of the listed values.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	maximize   bool
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Maximize makes Search look for the largest metric value instead of the
// smallest.
func (g *GridSearch) Maximize() *GridSearch {
	g.maximize = true
	return g
}

// Search runs every grid point and returns the parameters with the best
// value of metricName. NaN values never win. Build and run errors abort the
// search.
func (g *GridSearch) Search(ctx context.Context, build Builder, metricName string) (map[string]float64, float64, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, fmt.Errorf("%d parameters but %d ranges", len(g.paramNames), len(g.ranges))
	}

	best := math.NaN()
	var bestParams map[string]float64

	err := g.searchRecursive(ctx, 0, map[string]float64{}, func(params map[string]float64) error {
		exp, err := build(params)
		if err != nil {
			return err
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return fmt.Errorf("%v: %w", params, err)
		}

		val, ok := result.Metrics[metricName]
		if !ok {
			return fmt.Errorf("no metric %q", metricName)
		}
		if g.better(val, best) {
			best = val
			bestParams = params
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	return bestParams, best, nil
}

func (g *GridSearch) better(val, best float64) bool {
	switch {
	case math.IsNaN(val):
		return false
	case math.IsNaN(best):
		return true
	case g.maximize:
		return val > best
	default:
		return val < best
	}
}

func (g *GridSearch) searchRecursive(ctx context.Context, depth int, current map[string]float64, visit func(map[string]float64) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		return visit(current)
	}

	name := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		next := make(map[string]float64, len(current)+1)
		for k, v := range current {
			next[k] = v
		}
		next[name] = val

		if err := g.searchRecursive(ctx, depth+1, next, visit); err != nil {
			return err
		}
	}
	return nil
}
