package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/phitop/internal/config"
	"github.com/san-kum/phitop/internal/experiment"
	"github.com/san-kum/phitop/internal/viz"
)

func newLiveCmd() *cobra.Command {
	var stepsPerFrame int

	cmd := &cobra.Command{
		Use:   "live",
		Short: "watch the top in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			exp, err := experiment.New(cfg, log)
			if err != nil {
				return err
			}

			model := viz.NewModel(exp.Top(), exp.Integrator(), exp.Initial(), viz.Options{
				Dt:            cfg.Dt,
				Duration:      cfg.Duration,
				StepsPerFrame: stepsPerFrame,
				Normalize:     cfg.NormalizeQuaternion,
				Integrator:    cfg.Integrator,
			})

			p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}

	cmd.Flags().IntVar(&stepsPerFrame, "steps-per-frame", 10, "integrator steps per rendered frame")
	return cmd
}

var presetDescriptions = map[string]string{
	"phitop":       "golden-ratio ellipsoid spun upright with friction",
	"frictionless": "the default top on a frictionless plane",
	"sphere":       "unit sphere",
	"tilted":       "tilted start rolling without slip",
	"rattleback":   "flat ellipsoid with a skewed pair of weights",
	"tippe":        "sphere weighted below its centre, spun fast",
	"slow":         "low spin rate about a slightly tilted axis",
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "list the named presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%s\t(a=%g b=%g c=%g, mu=%g)\n",
					name, presetDescriptions[name],
					p.Body.A, p.Body.B, p.Body.C, p.Physics.Friction)
			}
			return w.Flush()
		},
	}
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "manage config files",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "write the resolved configuration as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "phitop.yaml"
			if len(args) > 0 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			log.WithField("path", path).Info("config written")
			return nil
		},
	})
	return cmd
}
