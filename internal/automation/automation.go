// Package automation runs scripted scenarios and randomised trial batches.
package automation

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/phitop/internal/config"
	"github.com/san-kum/phitop/internal/dynamo"
	"github.com/san-kum/phitop/internal/experiment"
	"github.com/san-kum/phitop/internal/metrics"
	"github.com/san-kum/phitop/internal/physics"
)

// Scenario is a named sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is one run: a preset with config keys laid over it.
type ScenarioStep struct {
	Name   string    `yaml:"name"`
	Preset string    `yaml:"preset"`
	Config yaml.Node `yaml:"config"`
}

// StepResult is the outcome of one scenario step.
type StepResult struct {
	Name   string
	Config *config.Config
	Result *dynamo.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("%s: scenario has no steps", path)
	}
	return &scenario, nil
}

// StepConfig resolves the configuration of a step.
func (s *ScenarioStep) StepConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if s.Preset != "" {
		if cfg = config.GetPreset(s.Preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset %q", s.Preset)
		}
	}
	if !s.Config.IsZero() {
		if err := s.Config.Decode(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// RunScenario executes the steps in order and stops at the first failure.
func RunScenario(ctx context.Context, scenario *Scenario, log logrus.FieldLogger) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step %d", i+1)
		}
		stepLog := log.WithFields(logrus.Fields{"scenario": scenario.Name, "step": name})

		cfg, err := step.StepConfig()
		if err != nil {
			return results, fmt.Errorf("%s: %w", name, err)
		}
		exp, err := experiment.New(cfg, stepLog)
		if err != nil {
			return results, fmt.Errorf("%s: %w", name, err)
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("%s run: %w", name, err)
		}

		results = append(results, StepResult{Name: name, Config: cfg, Result: result})
	}

	return results, nil
}

// MonteCarloConfig perturbs the initial angular velocity of Base by up to
// Perturbation per component.
type MonteCarloConfig struct {
	Base         *config.Config
	Perturbation float64
	NumTrials    int
	Seed         int64
	Jobs         int
}

type MonteCarloResult struct {
	TrialID         int
	AngularVelocity [3]float64
	FinalHeight     float64
	MaxHeight       float64
	EnergyDrift     float64
	// Stable means the run stayed finite with the centre above the plane.
	Stable bool
}

// RunMonteCarlo draws the trial initial conditions from Seed and runs them
// concurrently. A zero Seed uses the clock.
func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, log logrus.FieldLogger) ([]MonteCarloResult, error) {
	if cfg.NumTrials < 1 {
		return nil, fmt.Errorf("need at least one trial, got %d", cfg.NumTrials)
	}

	exp, err := experiment.New(cfg.Base, log)
	if err != nil {
		return nil, err
	}
	top := exp.Top()

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	omegas := make([][3]float64, cfg.NumTrials)
	initial := make([]dynamo.State, cfg.NumTrials)
	for trial := range initial {
		trialCfg := *cfg.Base
		for i := range trialCfg.InitState.AngularVelocity {
			trialCfg.InitState.AngularVelocity[i] += (rng.Float64() - 0.5) * 2 * cfg.Perturbation
		}
		x0, err := trialCfg.InitialState(top.Shape())
		if err != nil {
			return nil, err
		}
		omegas[trial] = trialCfg.InitState.AngularVelocity
		initial[trial] = x0
	}

	log.WithFields(logrus.Fields{"trials": cfg.NumTrials, "seed": seed}).Info("monte carlo")
	runs, err := dynamo.NewEnsemble(top, exp.Integrator()).
		WithMetrics(func() []dynamo.Metric { return metrics.ForPhiTop(top) }).
		SetLimit(cfg.Jobs).
		Run(ctx, initial, cfg.Base.SimConfig())
	if err != nil {
		return nil, err
	}

	results := make([]MonteCarloResult, len(runs))
	for trial, res := range runs {
		final := res.Final()
		results[trial] = MonteCarloResult{
			TrialID:         trial,
			AngularVelocity: omegas[trial],
			FinalHeight:     physics.Height(final),
			MaxHeight:       res.Metrics["height_max"],
			EnergyDrift:     res.Metrics["energy_drift"],
			Stable:          final.IsValid() && len(res.Errors) == 0 && res.Metrics["height_min"] > 0,
		}
	}
	return results, nil
}

// MonteCarloStats counts stable trials and gives the mean and standard
// deviation of their final heights.
func MonteCarloStats(results []MonteCarloResult) (stable, unstable int, meanHeight, stdHeight float64) {
	heights := make([]float64, 0, len(results))
	for _, r := range results {
		if r.Stable {
			stable++
			heights = append(heights, r.FinalHeight)
		} else {
			unstable++
		}
	}

	switch len(heights) {
	case 0:
		return stable, unstable, math.NaN(), math.NaN()
	case 1:
		return stable, unstable, heights[0], 0
	}
	meanHeight, stdHeight = stat.MeanStdDev(heights, nil)
	return stable, unstable, meanHeight, stdHeight
}
