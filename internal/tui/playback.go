package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/dpisim/internal/dynamo"
)

const (
	maxSpeed      = 64
	defaultWindow = 300
	frameInterval = 33 * time.Millisecond
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Playback replays a finished run step by step.
type Playback struct {
	name   string
	series *dynamo.Series
	limits dynamo.Limits

	pos    int
	paused bool
	speed  int
	window int

	width  int
	height int
}

func NewPlayback(name string, series *dynamo.Series, limits dynamo.Limits) *Playback {
	return &Playback{
		name:   name,
		series: series,
		limits: limits,
		speed:  1,
		window: defaultWindow,
		width:  80,
		height: 24,
	}
}

// Position is the index of the last displayed sample.
func (m *Playback) Position() int { return m.pos }
func (m *Playback) Speed() int    { return m.speed }
func (m *Playback) Paused() bool  { return m.paused }

func (m *Playback) done() bool { return m.pos >= m.series.Len()-1 }

func (m *Playback) Init() tea.Cmd { return tick() }

func (m *Playback) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
		case "+", "=":
			if m.speed < maxSpeed {
				m.speed *= 2
			}
		case "-", "_":
			if m.speed > 1 {
				m.speed /= 2
			}
		case "right", "l":
			if !m.done() {
				m.pos++
			}
		case "left", "h":
			if m.pos > 0 {
				m.pos--
			}
		case "r":
			m.pos = 0
		case "end", "G":
			m.pos = max(m.series.Len()-1, 0)
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tickMsg:
		if !m.paused && !m.done() {
			m.pos = min(m.pos+m.speed, m.series.Len()-1)
		}
		return m, tick()
	}
	return m, nil
}

func (m *Playback) View() string {
	s := m.series
	if s.Len() == 0 {
		return "empty run\n"
	}

	lo := max(0, m.pos-m.window+1)
	hi := m.pos + 1

	graphWidth := max(m.width-14, 20)
	graphHeight := max((m.height-12)/2, 4)

	var b strings.Builder
	b.WriteString(title.Render(m.name))
	b.WriteString("  ")
	switch {
	case m.done():
		b.WriteString(statusPaused.Render("finished"))
	case m.paused:
		b.WriteString(statusPaused.Render("paused"))
	default:
		b.WriteString(statusRunning.Render(fmt.Sprintf("playing x%d", m.speed)))
	}
	b.WriteString("\n\n")

	y, ref, u := s.Y[lo:hi], s.Ref[lo:hi], s.U[lo:hi]
	if len(y) == 1 {
		y, ref, u = []float64{y[0], y[0]}, []float64{ref[0], ref[0]}, []float64{u[0], u[0]}
	}

	b.WriteString(asciigraph.PlotMany([][]float64{y, ref},
		asciigraph.Width(graphWidth),
		asciigraph.Height(graphHeight),
		asciigraph.SeriesColors(asciigraph.Green, asciigraph.Yellow),
		asciigraph.Caption("y / ref"),
	))
	b.WriteString("\n\n")
	b.WriteString(asciigraph.Plot(u,
		asciigraph.Width(graphWidth),
		asciigraph.Height(graphHeight),
		asciigraph.Caption("u"),
	))
	b.WriteString("\n\n")

	k := m.pos
	line := strings.Join([]string{
		metric("k", fmt.Sprintf("%d/%d", k, s.Len()-1)),
		metric("t", fmt.Sprintf("%.2f", s.Times[k])),
		metric("ref", fmt.Sprintf("%.4f", s.Ref[k])),
		metric("y", fmt.Sprintf("%.4f", s.Y[k])),
		metric("u", fmt.Sprintf("%.4f", s.U[k])),
		metric("e", fmt.Sprintf("%.4f", s.Err[k])),
	}, "  ")
	if s.U[k] == m.limits.Min || s.U[k] == m.limits.Max {
		line += "  " + statusSaturated.Render("sat")
	}
	b.WriteString(panel.Render(line))
	b.WriteString("\n")
	b.WriteString(keyHint.Render("space pause  +/- speed  ←/→ step  r restart  q quit"))
	b.WriteString("\n")

	return b.String()
}

// Run opens the playback in the alternate screen and blocks until the user quits.
func Run(name string, series *dynamo.Series, limits dynamo.Limits) error {
	p := tea.NewProgram(NewPlayback(name, series, limits), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
