package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/stiffode/internal/config"
	"github.com/san-kum/stiffode/internal/experiment"
	"github.com/san-kum/stiffode/internal/integrators"
	"github.com/san-kum/stiffode/internal/scalar"
)

const (
	historyCapacity = 600
	windowsPerRun   = 240
	chartWidth      = 56
	phaseCols       = 40
	phaseRows       = 12
)

var (
	chartsStyle = lipgloss.NewStyle().Padding(1, 2)
	statsStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(42)
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(14)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	phaseStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Padding(1, 0)
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Model is the live watch. Every tick advances the integration by one window
// of the horizon, then the view redraws the trajectory, the step-size history
// on a log scale, the phase trail and the cost counters.
type Model struct {
	cfg *config.Config
	reg *experiment.Registry

	eng     *integrators.ImplicitEuler[scalar.Real]
	horizon float64
	window  float64

	running bool
	done    bool
	err     error

	x0Hist   []float64
	logHHist []float64
	phase    [][2]float64
	canvas   *Canvas
}

func NewModel(cfg *config.Config, reg *experiment.Registry) (Model, error) {
	if cfg.Duration <= 0 {
		return Model{}, fmt.Errorf("duration must be positive, got %g", cfg.Duration)
	}
	eng, err := experiment.BuildEngine(cfg, reg)
	if err != nil {
		return Model{}, err
	}

	m := Model{
		cfg:     cfg,
		reg:     reg,
		eng:     eng,
		horizon: cfg.Duration,
		window:  cfg.Duration / windowsPerRun,
		running: true,
		canvas:  NewCanvas(phaseCols, phaseRows),
	}
	m.record()
	return m, nil
}

func (m Model) Init() tea.Cmd { return tick() }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.running = !m.running
		case "r":
			m.restart()
		}
	case TickMsg:
		if m.running {
			m.step()
		}
		return m, tick()
	}
	return m, nil
}

// step advances one window. An integration error freezes the watch with the
// failure on screen rather than quitting.
func (m *Model) step() {
	if m.done || m.err != nil {
		return
	}
	now := m.eng.Context().Time()
	target := math.Min(now+m.window, m.horizon)
	if target <= now {
		m.done = true
		return
	}
	if err := m.eng.IntegrateWithMultipleStepsToTime(target); err != nil {
		m.err = err
		return
	}
	m.record()
	if m.eng.Context().Time() >= m.horizon {
		m.done = true
	}
}

func (m *Model) record() {
	x := m.eng.Context().State().Float64s()
	if len(x) == 0 {
		return
	}
	m.x0Hist = append(m.x0Hist, x[0])
	if len(m.x0Hist) > historyCapacity {
		m.x0Hist = m.x0Hist[1:]
	}
	if h := m.eng.Statistics().PrevStepSize; h > 0 {
		m.logHHist = append(m.logHHist, math.Log10(h))
		if len(m.logHHist) > historyCapacity {
			m.logHHist = m.logHHist[1:]
		}
	}
	if len(x) >= 2 {
		m.phase = append(m.phase, [2]float64{x[0], x[1]})
		if len(m.phase) > historyCapacity {
			m.phase = m.phase[1:]
		}
	}
}

func (m *Model) restart() {
	eng, err := experiment.BuildEngine(m.cfg, m.reg)
	if err != nil {
		m.err = err
		return
	}
	m.eng = eng
	m.err = nil
	m.done = false
	m.running = true
	m.x0Hist = m.x0Hist[:0]
	m.logHHist = m.logHHist[:0]
	m.phase = m.phase[:0]
	m.record()
}

func (m Model) status() string {
	switch {
	case m.err != nil:
		return failStyle.Render("FAILED")
	case m.done:
		return "DONE"
	case !m.running:
		return "PAUSED"
	}
	return "RUNNING"
}

func (m Model) View() string {
	var charts strings.Builder
	charts.WriteString(headerStyle.Render(strings.ToUpper(m.cfg.Model)) + "\n")
	charts.WriteString(m.status() + "\n")

	if len(m.x0Hist) > 1 {
		chart := asciigraph.Plot(m.x0Hist, asciigraph.Height(8), asciigraph.Width(chartWidth), asciigraph.Caption("x0"))
		charts.WriteString(graphStyle.Render(chart) + "\n")
	}
	if len(m.logHHist) > 1 {
		chart := asciigraph.Plot(m.logHHist, asciigraph.Height(5), asciigraph.Width(chartWidth), asciigraph.Caption("log10 step size"))
		charts.WriteString(graphStyle.Render(chart) + "\n")
	}
	if len(m.phase) > 1 {
		m.drawPhase()
		charts.WriteString(phaseStyle.Render(m.canvas.String()))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		chartsStyle.Render(charts.String()),
		statsStyle.Render(m.statsPanel()))
}

// drawPhase fits the (x0, x1) trail into the braille canvas.
func (m *Model) drawPhase() {
	m.canvas.Clear()

	minX, maxX := m.phase[0][0], m.phase[0][0]
	minY, maxY := m.phase[0][1], m.phase[0][1]
	for _, p := range m.phase {
		minX, maxX = min(minX, p[0]), max(maxX, p[0])
		minY, maxY = min(minY, p[1]), max(maxY, p[1])
	}
	spanX, spanY := maxX-minX, maxY-minY
	if spanX == 0 {
		spanX = 1
	}
	if spanY == 0 {
		spanY = 1
	}

	dw, dh := m.canvas.DotWidth()-1, m.canvas.DotHeight()-1
	px, py := -1, -1
	for _, p := range m.phase {
		x := int((p[0] - minX) / spanX * float64(dw))
		y := dh - int((p[1]-minY)/spanY*float64(dh))
		if px >= 0 {
			m.canvas.Line(px, py, x, y)
		} else {
			m.canvas.Set(x, y)
		}
		px, py = x, y
	}
}

func (m Model) statsPanel() string {
	st := m.eng.Statistics()
	var s strings.Builder
	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}

	row("Time", fmt.Sprintf("%.4g / %.4g", m.eng.Context().Time(), m.horizon))
	row("Step size", fmt.Sprintf("%.3g", st.PrevStepSize))
	row("Largest", fmt.Sprintf("%.3g", st.LargestStepSize))
	if !math.IsNaN(st.SmallestAdaptedStepSize) {
		row("Smallest adapt", fmt.Sprintf("%.3g", st.SmallestAdaptedStepSize))
	}
	s.WriteString("\n")
	row("Steps", fmt.Sprintf("%d", st.StepsTaken))
	row("Newton iters", fmt.Sprintf("%d", st.TotalNewtonIterations()))
	row("f evals", fmt.Sprintf("%d", st.TotalDerivativeEvals()))
	row("Jacobians", fmt.Sprintf("%d", st.Primary.JacobianEvals))
	row("Factorizations", fmt.Sprintf("%d", st.Primary.Factorizations))
	row("Shrinkages", fmt.Sprintf("%d", st.ShrinkagesFromErrorControl+st.ShrinkagesFromSubstepFailures))
	row("Failures", fmt.Sprintf("%d", st.SubstepFailures))
	s.WriteString("\n")
	row("Scheme", m.eng.Scheme().String())
	row("Reuse", fmt.Sprintf("%t", m.eng.Reuse()))
	row("Accuracy", fmt.Sprintf("%.3g", m.eng.AccuracyInUse()))

	if m.err != nil {
		s.WriteString("\n" + failStyle.Render(m.err.Error()) + "\n")
	}
	s.WriteString(helpStyle.Render("\nSP:Pause  R:Restart  Q:Quit"))
	return s.String()
}
