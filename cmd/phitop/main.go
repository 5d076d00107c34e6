package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/phitop/internal/config"
)

var (
	presetName string
	configPath string
	integrator string
	dt         float64
	duration   float64
	friction   float64
	validate   bool
	normalize  bool
	logLevel   string

	log = logrus.New()
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "phitop",
		Short: "rigid ellipsoid spinning on a plane",
		Long: "phitop integrates the motion of a solid ellipsoid spinning and rolling\n" +
			"on a horizontal plane with gravity and contact friction.",
		SilenceUsage:      true,
		PersistentPreRunE: setupLogging,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&presetName, "preset", "p", "", "start from a named preset")
	pf.StringVarP(&configPath, "config", "c", "", "YAML config file, applied over the preset")
	pf.StringVarP(&integrator, "integrator", "i", "rk4", "integration method (euler, heun, rk4)")
	pf.Float64Var(&dt, "dt", config.DefaultDt, "time step")
	pf.Float64VarP(&duration, "duration", "t", config.DefaultDuration, "simulated time")
	pf.Float64Var(&friction, "friction", config.DefaultFriction, "contact friction coefficient")
	pf.BoolVar(&validate, "validate", false, "check inputs and stop on non-finite states")
	pf.BoolVar(&normalize, "normalize", false, "renormalize the orientation quaternion after every step")
	pf.StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newRunCmd(),
		newCompareCmd(),
		newConvergeCmd(),
		newSweepCmd(),
		newEnsembleCmd(),
		newSearchCmd(),
		newScenarioCmd(),
		newMonteCarloCmd(),
		newLiveCmd(),
		newPresetsCmd(),
		newConfigCmd(),
	)
	return rootCmd
}

func setupLogging(cmd *cobra.Command, args []string) error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	log.SetOutput(os.Stderr)
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return nil
}

// loadConfig resolves the run configuration: preset, then config file, then
// any flags given explicitly on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if presetName != "" {
		cfg = config.GetPreset(presetName)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q, available: %v", presetName, config.ListPresets())
		}
	}

	if configPath != "" {
		loaded, err := config.LoadOver(cfg, configPath)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("duration") {
		cfg.Duration = duration
	}
	if flags.Changed("friction") {
		cfg.Physics.Friction = friction
	}
	if flags.Changed("validate") {
		cfg.ValidateState = validate
	}
	if flags.Changed("normalize") {
		cfg.NormalizeQuaternion = normalize
	}

	return cfg, nil
}
