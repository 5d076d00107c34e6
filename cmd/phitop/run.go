package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/guptarohit/asciigraph"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/phitop/internal/analysis"
	"github.com/san-kum/phitop/internal/dynamo"
	"github.com/san-kum/phitop/internal/experiment"
	"github.com/san-kum/phitop/internal/export"
	"github.com/san-kum/phitop/internal/physics"
	"github.com/san-kum/phitop/internal/report"
	"github.com/san-kum/phitop/internal/viz"
)

func newRunCmd() *cobra.Command {
	var (
		format     string
		outPath    string
		plot       bool
		withStates bool
		svgPath    string
		svgAt      float64
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "integrate one trajectory and stream its states",
		Long: "run integrates the configured top and writes one record per step.\n" +
			"The text format prints the centre height and total energy per line.",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			exp, err := experiment.New(cfg, log)
			if err != nil {
				return err
			}

			var out io.Writer = os.Stdout
			if outPath != "" {
				file, err := os.Create(outPath)
				if err != nil {
					return err
				}
				defer file.Close()
				out = file
			}

			stream := report.NewStream(f, out, exp.Top().Energy)
			if stream != nil {
				exp.GetSimulator().AddObserver(stream)
			}

			result, runErr := exp.Run(cmd.Context())
			if stream != nil {
				if err := stream.Close(); err != nil {
					return err
				}
			}
			if runErr != nil && result == nil {
				return runErr
			}

			if f == report.FormatJSON {
				doc := report.NewRun(cfg.Integrator, exp.Top(), cfg.SimConfig(), result, withStates)
				if err := report.WriteJSON(out, doc); err != nil {
					return err
				}
			}

			heights := make([]float64, len(result.States))
			for i, x := range result.States {
				heights[i] = physics.Height(x)
			}

			fields := logrus.Fields{
				"steps":       result.StepsTaken,
				"nutation_hz": analysis.DominantFrequency(heights, cfg.Dt),
			}
			for name, v := range result.Metrics {
				fields[name] = v
			}
			log.WithFields(fields).Info("run finished")
			for _, e := range result.Errors {
				log.WithError(e).Warn("run stopped early")
			}

			if svgPath != "" {
				var svg string
				if cmd.Flags().Changed("svg-at") {
					svg = frameSVG(exp.Top(), result, svgAt)
				} else {
					svg = trackSVG(exp.Top(), result.States)
				}
				if svg == "" {
					return fmt.Errorf("nothing to draw for %s", svgPath)
				}
				if err := os.WriteFile(svgPath, []byte(svg), 0644); err != nil {
					return err
				}
			}

			if plot {
				fmt.Fprintln(os.Stderr, plotSeries(heights, "centre height c_z"))
			}
			return runErr
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format (text, csv, json)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write output to a file instead of stdout")
	cmd.Flags().BoolVar(&plot, "plot", false, "plot the centre height on stderr when done")
	cmd.Flags().BoolVar(&withStates, "states", false, "include every state in JSON output")
	cmd.Flags().StringVar(&svgPath, "svg", "", "draw the contact track on the plane to an SVG file")
	cmd.Flags().Float64Var(&svgAt, "svg-at", 0, "draw the body at this time instead of the track")
	return cmd
}

// plotSeries downsamples data to the plot width and renders it.
func plotSeries(data []float64, caption string) string {
	const width = 80
	if len(data) > width {
		sampled := make([]float64, width)
		for i := range sampled {
			sampled[i] = data[i*(len(data)-1)/(width-1)]
		}
		data = sampled
	}
	return asciigraph.Plot(data,
		asciigraph.Height(12),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// trackSVG draws the path of the contact point on the plane.
func trackSVG(top *physics.PhiTop, states []dynamo.State) string {
	track := make([]export.Point, len(states))
	for i, x := range states {
		p := physics.Unpack(x).Position.Add(top.Contact(x))
		track[i] = export.Point{X: p.X(), Y: p.Y()}
	}
	return export.TrajectoryToSVG(track, 600, 600, "#00ff88")
}

// frameSVG draws the wireframe body at the first recorded time not before t.
func frameSVG(top *physics.PhiTop, result *dynamo.Result, t float64) string {
	if len(result.States) == 0 {
		return ""
	}
	i := sort.SearchFloat64s(result.Times, t)
	i = min(i, len(result.States)-1)
	return export.CanvasToSVG(viz.Snapshot(top, result.States[i], viz.NewCamera(), 60, 22), 6)
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
