package tui

import (
	"strings"

	"tonunlock/pkg/chart"
	"tonunlock/pkg/theme"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

func tableStyles(p theme.Palette) table.Styles {
	s := table.DefaultStyles()
	s.Header = p.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(p.ChartLine).
		BorderBottom(true)
	s.Selected = p.Selected.Bold(false)
	return s
}

func metricBox(p theme.Palette, label, value string, failed bool) string {
	valueStyle := p.Accent
	if failed {
		valueStyle = p.Err
	}
	return p.Box.Width(20).Render(lipgloss.JoinVertical(lipgloss.Left,
		p.Subtle.Render(label),
		valueStyle.Render(value),
	))
}

// paintPlot renders runs of fill cells with fill and everything else with line.
func paintPlot(plot string, line, fill func(...string) string) string {
	lines := strings.Split(plot, "\n")
	for i, l := range lines {
		var b strings.Builder
		var run []rune
		inFill := false
		flush := func() {
			if len(run) == 0 {
				return
			}
			if inFill {
				b.WriteString(fill(string(run)))
			} else {
				b.WriteString(line(string(run)))
			}
			run = run[:0]
		}
		for _, r := range l {
			if isFill := r == chart.FillRune; isFill != inFill {
				flush()
				inFill = isFill
			}
			run = append(run, r)
		}
		flush()
		lines[i] = b.String()
	}
	return strings.Join(lines, "\n")
}
