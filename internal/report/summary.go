package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/dpisim/internal/storage"
)

var (
	panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444466")).
		Padding(0, 2)

	title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00ffff"))

	label = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888899")).
		Width(18)

	value = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#00ccff")).
		Bold(true)

	warn = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#ffaa00"))
)

func row(k, v string) string {
	return label.Render(k) + value.Render(v)
}

// Summary renders run parameters, discrete coefficients and metrics in a panel.
func Summary(meta storage.RunMetadata) string {
	lines := []string{
		title.Render(fmt.Sprintf("run %s", nonEmpty(meta.ID, meta.Name))),
		"",
		row("plant", meta.Plant.String()),
		row("ts", fmt.Sprintf("%g s", meta.Ts)),
		row("duration", fmt.Sprintf("%g s (%d steps)", meta.Duration, meta.Steps)),
		row("gains", fmt.Sprintf("kp=%g ti=%g", meta.Gains.Kp, meta.Gains.Ti)),
		row("limits", fmt.Sprintf("[%g, %g]", meta.Limits.Min, meta.Limits.Max)),
		row("recurrence", meta.Coefficients.String()),
		row("incremental", fmt.Sprintf("K0=%.6g K1=%.6g", meta.Controller["K0"], meta.Controller["K1"])),
	}

	if len(meta.Metrics) > 0 {
		lines = append(lines, "")
		names := make([]string, 0, len(meta.Metrics))
		for name := range meta.Metrics {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			lines = append(lines, row(name, fmt.Sprintf("%.6g", meta.Metrics[name])))
		}
	}

	if meta.Saturated > 0 {
		lines = append(lines, "", warn.Render(fmt.Sprintf("actuator saturated on %d of %d steps", meta.Saturated, meta.Steps)))
	}

	return panel.Render(strings.Join(lines, "\n"))
}

func nonEmpty(s ...string) string {
	for _, v := range s {
		if v != "" {
			return v
		}
	}
	return ""
}
