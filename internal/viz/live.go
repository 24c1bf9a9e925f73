package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/pidlab/internal/loop"
)

const (
	historyCapacity = 300
	graphWidth      = 60
	graphHeight     = 12
)

type TickMsg time.Time

// Model drives a loop session on a timer and renders it.
type Model struct {
	sess          *loop.Session
	name          string
	frame         time.Duration
	running       bool
	last          loop.Sample
	err           error
	notice        string
	pv            []float64
	sp            []float64
	out           []float64
	params        map[string]float64
	initialParams map[string]float64
	paramKeys     []string
	selected      int
}

// NewModel returns a live view over sess redrawn fps times a second.
// Each frame advances the loop by one controller tick.
func NewModel(sess *loop.Session, name string, fps int) Model {
	if fps <= 0 {
		fps = 30
	}
	gains := sess.Controller().GetParams()
	params := map[string]float64{}
	initialParams := map[string]float64{}
	keys := []string{}
	for _, k := range []string{"kp", "ki", "kd"} {
		params[k] = gains[k]
		initialParams[k] = gains[k]
		keys = append(keys, k)
	}

	return Model{
		sess:          sess,
		name:          name,
		frame:         time.Second / time.Duration(fps),
		running:       true,
		pv:            make([]float64, 0, historyCapacity),
		sp:            make([]float64, 0, historyCapacity),
		out:           make([]float64, 0, historyCapacity),
		params:        params,
		initialParams: initialParams,
		paramKeys:     keys,
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.frame, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Update handles input events and steps the loop.
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
		case "tab":
			m.selected = (m.selected + 1) % len(m.paramKeys)
		case "up", "k":
			m.adjustParam(1.05)
		case "down", "j":
			m.adjustParam(0.95)
		}
	case TickMsg:
		if m.running && m.err == nil {
			m.step()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) step() {
	s, err := m.sess.Step()
	if err != nil {
		m.err = err
		return
	}
	if !m.sess.State().IsValid() {
		m.err = fmt.Errorf("plant diverged at t=%.2f", m.sess.Time())
	}
	m.last = s
	m.pv = push(m.pv, s.ProcessValue)
	m.sp = push(m.sp, s.Setpoint)
	m.out = push(m.out, s.Output)
}

func push(buf []float64, v float64) []float64 {
	buf = append(buf, v)
	if len(buf) > historyCapacity {
		buf = buf[1:]
	}
	return buf
}

func (m *Model) adjustParam(factor float64) {
	key := m.paramKeys[m.selected]
	val := m.params[key]
	if val == 0 {
		val = 0.01
	}
	newVal := val * factor
	if err := m.sess.Controller().SetParam(key, newVal); err != nil {
		m.notice = err.Error()
		return
	}
	m.params[key] = newVal
	m.notice = ""
}

// reset restores the initial state and gains.
func (m *Model) reset() {
	m.sess.Reset()
	m.pv = m.pv[:0]
	m.sp = m.sp[:0]
	m.out = m.out[:0]
	m.last = loop.Sample{}
	m.err = nil
	m.notice = ""
	for _, k := range m.paramKeys {
		v := m.initialParams[k]
		if err := m.sess.Controller().SetParam(k, v); err != nil {
			m.notice = err.Error()
			continue
		}
		m.params[k] = v
	}
}

// View renders the TUI interface.
func (m Model) View() string {
	var graphs strings.Builder
	if len(m.pv) > 1 {
		graphs.WriteString(asciigraph.PlotMany([][]float64{m.sp, m.pv},
			asciigraph.Height(graphHeight),
			asciigraph.Width(graphWidth),
			asciigraph.Caption("pv vs setpoint"),
		))
		graphs.WriteString("\n\n")
		graphs.WriteString(asciigraph.Plot(m.out,
			asciigraph.Height(graphHeight/2),
			asciigraph.Width(graphWidth),
			asciigraph.Caption("output"),
		))
	} else {
		graphs.WriteString("waiting for samples...")
	}

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(m.name)) + "\n")
	switch {
	case m.err != nil:
		s.WriteString(statusStopped.Render("STOPPED") + "\n" + valueStyle.Render(m.err.Error()) + "\n\n")
	case m.running:
		s.WriteString(statusRunning.Render("RUNNING") + "\n\n")
	default:
		s.WriteString(statusPaused.Render("PAUSED") + "\n\n")
	}

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", m.sess.Time()))
	row("Setpoint", fmt.Sprintf("%.3f", m.last.Setpoint))
	row("PV", fmt.Sprintf("%.3f", m.last.ProcessValue))
	row("Error", fmt.Sprintf("%.3f", m.last.Error()))
	out := fmt.Sprintf("%.3f", m.last.Output)
	if m.last.Saturated {
		out += " (sat)"
	}
	row("Output", out)
	row("P/I/D", fmt.Sprintf("%.2f / %.2f / %.2f", m.last.P, m.last.I, m.last.D))

	s.WriteString("\nGAINS\n")
	for i, k := range m.paramKeys {
		line := fmt.Sprintf("%-4s %.4f", k, m.params[k])
		if i == m.selected {
			s.WriteString(activeParamStyle.Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + labelStyle.Render(line) + "\n")
		}
	}
	if m.notice != "" {
		s.WriteString(statusPaused.Render(m.notice) + "\n")
	}
	s.WriteString(helpStyle.Render("SP:Pause R:Reset Q:Quit\nTab:Select ↑↓:Tune"))

	return lipgloss.JoinHorizontal(lipgloss.Top, graphStyle.Render(graphs.String()), statsStyle.Render(s.String()))
}
