package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/phitop/internal/automation"
	"github.com/san-kum/phitop/internal/physics"
)

func newScenarioCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenario <file>",
		Short: "run the steps of a YAML scenario",
		Long: "scenario runs each step of the file in order. A step names a preset\n" +
			"and overrides config keys under config:.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := automation.LoadScenario(args[0])
			if err != nil {
				return err
			}

			results, err := automation.RunScenario(cmd.Context(), sc, log)
			if len(results) > 0 {
				w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "step\tintegrator\tmu\tfinal c_z\tenergy_drift")
				for _, r := range results {
					fmt.Fprintf(w, "%s\t%s\t%g\t%.6g\t%.3e\n",
						r.Name, r.Config.Integrator, r.Config.Physics.Friction,
						physics.Height(r.Result.Final()),
						r.Result.Metrics["energy_drift"])
				}
				if ferr := w.Flush(); ferr != nil && err == nil {
					err = ferr
				}
			}
			return err
		},
	}
}

func newMonteCarloCmd() *cobra.Command {
	var (
		trials  int
		perturb float64
		seed    int64
		jobs    int
	)

	cmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "run randomly perturbed initial spins and summarise the outcomes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			results, err := automation.RunMonteCarlo(cmd.Context(), &automation.MonteCarloConfig{
				Base:         cfg,
				Perturbation: perturb,
				NumTrials:    trials,
				Seed:         seed,
				Jobs:         jobs,
			}, log)
			if err != nil {
				return err
			}

			stable, unstable, mean, std := automation.MonteCarloStats(results)
			fmt.Printf("trials: %d  stable: %d  unstable: %d\n", len(results), stable, unstable)
			fmt.Printf("final c_z: %.4f ± %.4f\n", mean, std)
			return nil
		},
	}

	cmd.Flags().IntVarP(&trials, "trials", "n", 20, "number of trials")
	cmd.Flags().Float64Var(&perturb, "perturb", 0.5, "maximum change per angular velocity component")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 uses the clock)")
	cmd.Flags().IntVarP(&jobs, "jobs", "j", 0, "maximum concurrent runs (0 for no limit)")
	return cmd
}
