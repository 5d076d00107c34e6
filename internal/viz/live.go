package viz

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/phitop/internal/dynamo"
	"github.com/san-kum/phitop/internal/physics"
)

const (
	canvasWidth      = 60
	canvasHeight     = 22
	historyCapacity  = 600
	frameInterval    = time.Second / 60
	maxStepsPerFrame = 1 << 16
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Options configure a live session.
type Options struct {
	Dt       float64
	Duration float64
	// StepsPerFrame is the number of integrator steps per rendered frame.
	StepsPerFrame int
	Normalize     bool
	Integrator    string
}

// Model steps a phi top on every frame and draws it with its height and
// energy history.
type Model struct {
	top        *physics.PhiTop
	integrator dynamo.Integrator
	opts       Options

	x0, x  dynamo.State
	steps  int
	t      float64
	e0     float64
	failed bool

	running bool
	canvas  *Canvas
	camera  *Camera

	heights  []float64
	energies []float64

	params        map[string]float64
	initialParams map[string]float64
	paramKeys     []string
	selected      int
	showHelp      bool
}

func NewModel(top *physics.PhiTop, integ dynamo.Integrator, x0 dynamo.State, opts Options) Model {
	opts.StepsPerFrame = min(max(opts.StepsPerFrame, 1), maxStepsPerFrame)

	params := top.GetParams()
	initial := make(map[string]float64, len(params))
	keys := make([]string, 0, len(params))
	for k, v := range params {
		initial[k] = v
		keys = append(keys, k)
	}
	sort.Strings(keys)

	m := Model{
		top:           top,
		integrator:    integ,
		opts:          opts,
		x0:            x0.Clone(),
		running:       true,
		canvas:        NewCanvas(canvasWidth, canvasHeight),
		camera:        NewCamera(),
		params:        params,
		initialParams: initial,
		paramKeys:     keys,
	}
	m.reset()
	return m
}

func (m Model) Init() tea.Cmd { return tick() }

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.reset()
		case "n":
			m.opts.Normalize = !m.opts.Normalize
		case ">", ".":
			m.opts.StepsPerFrame = min(maxStepsPerFrame, m.opts.StepsPerFrame*2)
		case "<", ",":
			m.opts.StepsPerFrame = max(1, m.opts.StepsPerFrame/2)
		case "tab":
			if len(m.paramKeys) > 0 {
				m.selected = (m.selected + 1) % len(m.paramKeys)
			}
		case "up", "k":
			m.adjustParam(1.05)
		case "down", "j":
			m.adjustParam(0.95)
		case "left", "h":
			m.camera.Orbit(-0.1, 0)
		case "right", "l":
			m.camera.Orbit(0.1, 0)
		case "w":
			m.camera.Orbit(0, 0.1)
		case "s":
			m.camera.Orbit(0, -0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		case "?":
			m.showHelp = !m.showHelp
		}
	case TickMsg:
		if m.running {
			m.advance(m.opts.StepsPerFrame)
		}
		return m, tick()
	}
	return m, nil
}

// advance takes up to n steps, stopping at the end of the run or on a
// non-finite state.
func (m *Model) advance(n int) {
	total := dynamo.Config{Dt: m.opts.Dt, Duration: m.opts.Duration}.Steps()
	for i := 0; i < n; i++ {
		if m.steps >= total {
			m.running = false
			return
		}
		next := m.integrator.Step(m.top, m.x, m.t, m.opts.Dt)
		if m.opts.Normalize {
			next = m.top.Project(next)
		}
		if !next.IsValid() {
			m.failed = true
			m.running = false
			return
		}
		m.x = next
		m.steps++
		m.t = float64(m.steps) * m.opts.Dt
	}
	m.record()
}

func (m *Model) record() {
	m.heights = appendCapped(m.heights, physics.Height(m.x))
	m.energies = appendCapped(m.energies, m.top.Energy(m.x))
}

func appendCapped(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCapacity {
		h = h[1:]
	}
	return h
}

func (m *Model) adjustParam(factor float64) {
	if len(m.paramKeys) == 0 {
		return
	}
	key := m.paramKeys[m.selected]
	val := m.params[key] * factor
	if err := m.top.SetParam(key, val); err == nil {
		m.params[key] = val
	}
}

// reset restores the initial state and parameters.
func (m *Model) reset() {
	for k, v := range m.initialParams {
		if m.top.SetParam(k, v) == nil {
			m.params[k] = v
		}
	}
	m.x = m.x0.Clone()
	m.steps = 0
	m.t = 0
	m.failed = false
	m.e0 = m.top.Energy(m.x)
	m.heights = m.heights[:0]
	m.energies = m.energies[:0]
	m.record()
}

func (m Model) State() dynamo.State { return m.x.Clone() }
func (m Model) Time() float64       { return m.t }
func (m Model) Running() bool       { return m.running }

func (m *Model) draw() {
	m.canvas.Clear()
	b := physics.Unpack(m.x)
	m.camera.Target = b.Position
	Render(m.canvas, BodyWireframe(m.top, m.x), m.camera)
}

// View renders the TUI interface.
func (m Model) View() string {
	m.draw()

	var status string
	switch {
	case m.failed:
		status = statusFailed.Render("NON-FINITE STATE")
	case m.running:
		status = statusRunning.Render("RUNNING")
	default:
		status = statusPaused.Render("PAUSED")
	}

	var s strings.Builder
	title := "PHI TOP"
	if m.opts.Integrator != "" {
		title += " · " + strings.ToUpper(m.opts.Integrator)
	}
	s.WriteString(headerStyle.Render(title) + "\n")
	s.WriteString(status + "\n\n")

	if len(m.heights) > 1 {
		chart := asciigraph.Plot(m.heights, asciigraph.Height(5), asciigraph.Width(36), asciigraph.Caption("height c_z"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	energy := m.top.Energy(m.x)
	drift := 0.0
	if m.e0 != 0 {
		drift = math.Abs(energy-m.e0) / math.Abs(m.e0)
	}
	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.3fs / %.0fs", m.t, m.opts.Duration))
	s.WriteString(ProgressBar(m.t/m.opts.Duration, 30) + "\n")
	row("Height", fmt.Sprintf("%.4f", physics.Height(m.x)))
	row("Energy", fmt.Sprintf("%.4f", energy))
	row("Drift", fmt.Sprintf("%.2e", drift))
	row("|q|", fmt.Sprintf("%.12f", physics.QuatNorm(m.x)))
	row("Steps/frame", fmt.Sprintf("%d", m.opts.StepsPerFrame))
	row("Normalize", fmt.Sprintf("%v", m.opts.Normalize))

	s.WriteString("\nPARAMETERS\n")
	for i, k := range m.paramKeys {
		line := fmt.Sprintf("%-17s %.4g", k, m.params[k])
		if i == m.selected {
			s.WriteString(activeParamStyle.Render("> "+line) + "\n")
		} else {
			s.WriteString(valueStyle.Render("  "+line) + "\n")
		}
	}

	if m.showHelp {
		s.WriteString(helpStyle.Render(
			"space pause · r reset · n normalize · </> speed\n" +
				"tab param · ↑/↓ adjust · ←/→ w/s orbit · +/- zoom · q quit"))
	} else {
		s.WriteString(helpStyle.Render("? help · q quit"))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		canvasStyle.Render(m.canvas.String()),
		statsStyle.Render(s.String()),
	)
}
