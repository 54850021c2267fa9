package tui

import (
	"bytes"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/dpisim/internal/dynamo"
)

func testSeries(n int) *dynamo.Series {
	s := dynamo.NewSeries(n, 0.1)
	for k := 0; k < n; k++ {
		s.Ref[k] = 1
		s.Y[k] = float64(k) / float64(n)
		s.U[k] = 0.5
		s.Err[k] = s.Ref[k] - s.Y[k]
	}
	return s
}

func key(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestPlaybackAdvances(t *testing.T) {
	m := NewPlayback("test", testSeries(10), dynamo.Limits{Min: 0, Max: 1})

	m.Update(tickMsg(time.Now()))
	if m.Position() != 1 {
		t.Errorf("expected position 1, got %d", m.Position())
	}

	m.Update(key("+"))
	m.Update(key("+"))
	if m.Speed() != 4 {
		t.Errorf("expected speed 4, got %d", m.Speed())
	}
	m.Update(tickMsg(time.Now()))
	if m.Position() != 5 {
		t.Errorf("expected position 5, got %d", m.Position())
	}

	for i := 0; i < 10; i++ {
		m.Update(tickMsg(time.Now()))
	}
	if m.Position() != 9 {
		t.Errorf("expected to stop at the last sample, got %d", m.Position())
	}
}

func TestPlaybackPause(t *testing.T) {
	m := NewPlayback("test", testSeries(10), dynamo.Limits{Min: 0, Max: 1})

	m.Update(key(" "))
	if !m.Paused() {
		t.Fatal("expected paused")
	}
	m.Update(tickMsg(time.Now()))
	if m.Position() != 0 {
		t.Errorf("paused playback must not advance, got %d", m.Position())
	}

	m.Update(key("right"))
	m.Update(key("right"))
	m.Update(key("left"))
	if m.Position() != 1 {
		t.Errorf("expected manual step to 1, got %d", m.Position())
	}

	m.Update(key("r"))
	if m.Position() != 0 {
		t.Errorf("expected restart at 0, got %d", m.Position())
	}
}

func TestPlaybackSpeedBounds(t *testing.T) {
	m := NewPlayback("test", testSeries(10), dynamo.Limits{Min: 0, Max: 1})

	m.Update(key("-"))
	if m.Speed() != 1 {
		t.Errorf("speed must not drop below 1, got %d", m.Speed())
	}
	for i := 0; i < 10; i++ {
		m.Update(key("+"))
	}
	if m.Speed() != maxSpeed {
		t.Errorf("expected speed capped at %d, got %d", maxSpeed, m.Speed())
	}
}

func TestPlaybackQuit(t *testing.T) {
	m := NewPlayback("test", testSeries(10), dynamo.Limits{Min: 0, Max: 1})
	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestPlaybackView(t *testing.T) {
	m := NewPlayback("demo-run", testSeries(20), dynamo.Limits{Min: 0, Max: 0.5})
	view := m.View()
	if !strings.Contains(view, "demo-run") {
		t.Error("view should contain the run name")
	}
	if !strings.Contains(view, "sat") {
		t.Error("view should flag a control value on a limit")
	}

	empty := NewPlayback("empty", dynamo.NewSeries(0, 0.1), dynamo.Limits{})
	if empty.View() != "empty run\n" {
		t.Errorf("unexpected empty view: %q", empty.View())
	}
}

func TestProgressRateLimit(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, 5, 1)
	fixed := time.Unix(0, 0)
	p.now = func() time.Time { return fixed }

	for k := 0; k < 5; k++ {
		p.OnStep(dynamo.Sample{K: k, T: float64(k) * 0.1, Y: 0.1, U: 1, Saturated: k == 4})
	}

	out := buf.String()
	if got := strings.Count(out, "\r"); got != 2 {
		t.Errorf("expected first and last frame only, got %d frames", got)
	}
	if !strings.HasSuffix(out, "sat\n") {
		t.Errorf("expected final frame to end the line, got %q", out)
	}
	if !strings.Contains(out, strings.Repeat("#", barWidth)) {
		t.Error("final frame should show a full bar")
	}
}
