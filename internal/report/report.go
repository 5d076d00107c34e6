// Package report writes phi top runs as text, CSV or JSON. The stream
// writers are dynamo.Observers and emit one record per visited state.
package report

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/san-kum/phitop/internal/dynamo"
	"github.com/san-kum/phitop/internal/physics"
)

type Format string

const (
	FormatText Format = "text"
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatText, FormatCSV, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, csv or json)", s)
	}
}

// Stream is an observer that writes as the run progresses. Write errors
// stop output and are reported by Close.
type Stream interface {
	dynamo.Observer
	Close() error
}

// NewStream returns the streaming writer for f. JSON has no stream form
// and yields nil; use WriteJSON after the run.
func NewStream(f Format, w io.Writer, energy func(dynamo.State) float64) Stream {
	switch f {
	case FormatText:
		return NewText(w, energy)
	case FormatCSV:
		return NewCSV(w, energy)
	default:
		return nil
	}
}

// Text writes "c_z E" per state, six significant digits each.
type Text struct {
	w      *bufio.Writer
	energy func(dynamo.State) float64
	err    error
}

func NewText(w io.Writer, energy func(dynamo.State) float64) *Text {
	return &Text{w: bufio.NewWriter(w), energy: energy}
}

func (t *Text) OnStep(x dynamo.State, _ float64) {
	if t.err != nil {
		return
	}
	_, t.err = fmt.Fprintf(t.w, "%.6g %.6g\n", physics.Height(x), t.energy(x))
}

func (t *Text) Close() error {
	if t.err != nil {
		return t.err
	}
	return t.w.Flush()
}

var csvHeader = []string{
	"t",
	"cx", "cy", "cz",
	"qw", "qx", "qy", "qz",
	"vx", "vy", "vz",
	"wx", "wy", "wz",
	"energy",
}

// CSV writes the full state, time first and energy last.
type CSV struct {
	w      *csv.Writer
	energy func(dynamo.State) float64
	header bool
	err    error
}

func NewCSV(w io.Writer, energy func(dynamo.State) float64) *CSV {
	return &CSV{w: csv.NewWriter(w), energy: energy}
}

func (c *CSV) OnStep(x dynamo.State, t float64) {
	if c.err != nil {
		return
	}
	if !c.header {
		c.header = true
		if c.err = c.w.Write(csvHeader); c.err != nil {
			return
		}
	}

	row := make([]string, 0, len(csvHeader))
	row = append(row, strconv.FormatFloat(t, 'f', 6, 64))
	for _, v := range x {
		row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
	}
	row = append(row, strconv.FormatFloat(c.energy(x), 'g', -1, 64))
	c.err = c.w.Write(row)
}

func (c *CSV) Close() error {
	if c.err != nil {
		return c.err
	}
	c.w.Flush()
	return c.w.Error()
}

// Float encodes NaN and ±Inf as JSON null.
type Float float64

func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, v, 'g', -1, 64), nil
}

// UnmarshalJSON reads null back as NaN.
func (f *Float) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = Float(math.NaN())
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return err
	}
	*f = Float(v)
	return nil
}

// Run is the JSON document for a finished run.
type Run struct {
	Integrator string           `json:"integrator"`
	Dt         float64          `json:"dt"`
	Duration   float64          `json:"duration"`
	Friction   float64          `json:"friction"`
	Axes       [3]float64       `json:"axes"`
	Steps      int              `json:"steps"`
	Metrics    map[string]Float `json:"metrics"`
	Times      []float64        `json:"times,omitempty"`
	States     [][]Float        `json:"states,omitempty"`
	Errors     []string         `json:"errors,omitempty"`
}

// NewRun fills a Run from a result. States are included only when
// withStates is set.
func NewRun(integrator string, top *physics.PhiTop, cfg dynamo.Config, result *dynamo.Result, withStates bool) Run {
	r := Run{
		Integrator: integrator,
		Dt:         cfg.Dt,
		Duration:   cfg.Duration,
		Friction:   top.Params().Friction,
		Axes:       top.Shape().Axes,
		Steps:      result.StepsTaken,
		Metrics:    make(map[string]Float, len(result.Metrics)),
	}
	for name, v := range result.Metrics {
		r.Metrics[name] = Float(v)
	}
	if withStates {
		r.Times = result.Times
		r.States = make([][]Float, len(result.States))
		for i, s := range result.States {
			row := make([]Float, len(s))
			for j, v := range s {
				row[j] = Float(v)
			}
			r.States[i] = row
		}
	}
	for _, err := range result.Errors {
		r.Errors = append(r.Errors, err.Error())
	}
	return r
}

func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
