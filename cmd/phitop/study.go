package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/phitop/internal/analysis"
	"github.com/san-kum/phitop/internal/dynamo"
	"github.com/san-kum/phitop/internal/experiment"
	"github.com/san-kum/phitop/internal/integrators"
	"github.com/san-kum/phitop/internal/metrics"
	"github.com/san-kum/phitop/internal/optim"
	"github.com/san-kum/phitop/internal/physics"
)

func newCompareCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "compare [integrator...]",
		Short: "run the same setup with several integrators",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			names := args
			if len(names) == 0 {
				names = integrators.Names()
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "integrator\torder\tfinal c_z\tenergy_drift\tquat_norm_drift\ttime")
			for _, name := range names {
				cfg := *base
				cfg.Integrator = name
				exp, err := experiment.New(&cfg, log)
				if err != nil {
					return err
				}

				start := time.Now()
				result, err := exp.Run(cmd.Context())
				if err != nil {
					return err
				}
				elapsed := time.Since(start)

				fmt.Fprintf(w, "%s\t%d\t%.6g\t%.3e\t%.3e\t%v\n",
					name,
					exp.Integrator().Order(),
					physics.Height(result.Final()),
					result.Metrics["energy_drift"],
					result.Metrics["quat_norm_drift"],
					elapsed.Round(time.Millisecond),
				)
			}
			return w.Flush()
		},
	}
}

func newConvergeCmd() *cobra.Command {
	var (
		span   float64
		steps  []float64
		refDt  float64
		refInt string
	)

	cmd := &cobra.Command{
		Use:   "converge",
		Short: "estimate the order of accuracy of an integrator",
		Long: "converge integrates a short span at several step sizes and fits the\n" +
			"slope of log(error) against log(h), measured from a fine reference run.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			exp, err := experiment.New(cfg, log)
			if err != nil {
				return err
			}
			reference, err := integrators.Lookup(refInt)
			if err != nil {
				return err
			}

			study, err := analysis.StudyConvergence(cmd.Context(),
				exp.Top(), exp.Integrator(), reference,
				exp.Initial(), span, steps, refDt)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "h\terror")
			for i, h := range study.Steps {
				fmt.Fprintf(w, "%g\t%.4e\n", h, study.Errors[i])
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Printf("\n%s: observed order %.2f (nominal %d)\n",
				cfg.Integrator, study.Order, exp.Integrator().Order())
			return nil
		},
	}

	cmd.Flags().Float64Var(&span, "span", 0.2, "integrated time per run")
	cmd.Flags().Float64SliceVar(&steps, "steps", []float64{0.02, 0.01, 0.005, 0.0025}, "step sizes to compare")
	cmd.Flags().Float64Var(&refDt, "ref-dt", 1e-4, "step of the reference run")
	cmd.Flags().StringVar(&refInt, "reference", "rk4", "integrator of the reference run")
	return cmd
}

func newSweepCmd() *cobra.Command {
	var (
		param    string
		from, to float64
		n        int
	)

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "vary one model parameter and tabulate the run metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			exp, err := experiment.New(cfg, log)
			if err != nil {
				return err
			}

			top := exp.Top()
			points, err := analysis.ParameterSweep(cmd.Context(),
				top, exp.Integrator(), param, from, to, n,
				exp.Initial(), cfg.SimConfig(),
				func() []dynamo.Metric { return metrics.ForPhiTop(top) })
			if err != nil {
				return err
			}
			if len(points) == 0 {
				return nil
			}

			names := sortedKeys(points[0].Metrics)
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "%s\t%s\n", param, strings.Join(names, "\t"))
			for _, p := range points {
				fmt.Fprintf(w, "%.4g", p.Param)
				for _, name := range names {
					fmt.Fprintf(w, "\t%.6g", p.Metrics[name])
				}
				fmt.Fprintln(w)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&param, "param", "friction", "parameter to vary (gravity, friction, roll_friction, reference_height, mass)")
	cmd.Flags().Float64Var(&from, "from", 0, "first value")
	cmd.Flags().Float64Var(&to, "to", 0.6, "last value")
	cmd.Flags().IntVar(&n, "n", 7, "number of values")
	return cmd
}

func newEnsembleCmd() *cobra.Command {
	var (
		spins []float64
		jobs  int
	)

	cmd := &cobra.Command{
		Use:   "ensemble",
		Short: "run several initial spin rates concurrently",
		Long: "ensemble starts the configured top with each spin rate about the body\n" +
			"z axis and reports how high the centre rises.",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			exp, err := experiment.New(base, log)
			if err != nil {
				return err
			}
			top := exp.Top()

			initial := make([]dynamo.State, len(spins))
			for i, wz := range spins {
				cfg := *base
				cfg.InitState.AngularVelocity[2] = wz
				x0, err := cfg.InitialState(top.Shape())
				if err != nil {
					return err
				}
				initial[i] = x0
			}

			ens := dynamo.NewEnsemble(top, exp.Integrator()).
				WithMetrics(func() []dynamo.Metric { return metrics.ForPhiTop(top) }).
				SetLimit(jobs)
			results, err := ens.Run(cmd.Context(), initial, base.SimConfig())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "spin\tc_z start\tc_z min\tc_z max\tc_z final\tenergy_drift")
			for i, res := range results {
				fmt.Fprintf(w, "%g\t%.4f\t%.4f\t%.4f\t%.4f\t%.3e\n",
					spins[i],
					physics.Height(initial[i]),
					res.Metrics["height_min"],
					res.Metrics["height_max"],
					physics.Height(res.Final()),
					res.Metrics["energy_drift"],
				)
			}
			return w.Flush()
		},
	}

	cmd.Flags().Float64SliceVar(&spins, "spins", []float64{5, 10, 15, 20, 25, 30}, "initial spin rates about the body z axis")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "maximum concurrent runs (0 for no limit)")
	return cmd
}

func newSearchCmd() *cobra.Command {
	var (
		grid     []string
		metric   string
		maximize bool
	)

	cmd := &cobra.Command{
		Use:   "search",
		Short: "grid search model parameters and initial spin for the best metric",
		Long: "search runs every combination of --grid values and reports the best\n" +
			"value of --metric. Grid entries look like friction=0,0.1,0.2; besides\n" +
			"the model parameters, spin sets the initial rate about the body z axis.",
		Example: "  phitop search --grid friction=0.1,0.3 --grid spin=10,20,30 --metric height_max --max",
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			names, ranges, err := parseGrid(grid)
			if err != nil {
				return err
			}
			g := optim.NewGridSearch(names, ranges)
			if maximize {
				g.Maximize()
			}

			quiet := log.WithField("search", metric)
			build := func(params map[string]float64) (*experiment.Experiment, error) {
				cfg := *base
				if spin, ok := params["spin"]; ok {
					cfg.InitState.AngularVelocity[2] = spin
				}
				exp, err := experiment.New(&cfg, quiet)
				if err != nil {
					return nil, err
				}
				for name, v := range params {
					if name == "spin" {
						continue
					}
					if err := exp.Top().SetParam(name, v); err != nil {
						return nil, err
					}
				}
				return exp, nil
			}

			best, value, err := g.Search(cmd.Context(), build, metric)
			if err != nil {
				return err
			}
			if best == nil {
				return fmt.Errorf("no finite %s found", metric)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			for _, name := range names {
				fmt.Fprintf(w, "%s\t%g\n", name, best[name])
			}
			fmt.Fprintf(w, "%s\t%.6g\n", metric, value)
			return w.Flush()
		},
	}

	cmd.Flags().StringArrayVarP(&grid, "grid", "g", nil, "name=v1,v2,... values to try (repeatable)")
	cmd.Flags().StringVarP(&metric, "metric", "m", "energy_drift", "metric to optimise")
	cmd.Flags().BoolVar(&maximize, "max", false, "maximise the metric instead of minimising it")
	return cmd
}

func parseGrid(entries []string) ([]string, [][]float64, error) {
	if len(entries) == 0 {
		return nil, nil, fmt.Errorf("at least one --grid entry is required")
	}

	names := make([]string, 0, len(entries))
	ranges := make([][]float64, 0, len(entries))
	for _, entry := range entries {
		name, list, ok := strings.Cut(entry, "=")
		if !ok || name == "" || list == "" {
			return nil, nil, fmt.Errorf("grid entry %q: want name=v1,v2,...", entry)
		}

		var values []float64
		for _, field := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("grid entry %q: %w", entry, err)
			}
			values = append(values, v)
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}
	return names, ranges, nil
}
