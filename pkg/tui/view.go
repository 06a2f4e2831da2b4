package tui

import (
	"fmt"
	"strings"

	"tonunlock/pkg/dashboard"

	"github.com/charmbracelet/lipgloss"
)

func (m model) View() string {
	if m.showHelp {
		return m.viewHelp()
	}
	if m.showMethodology {
		return m.viewMethodology()
	}

	p := m.palette
	var sections []string

	title := p.Title.Render(fmt.Sprintf("%s Unlock Dashboard", m.cfg.Symbol))
	themeHint := p.Subtle.Render(fmt.Sprintf("  [t] %s", m.themes.Icon()))
	sections = append(sections, title+themeHint)

	if m.banner != "" {
		sections = append(sections, p.Banner.Render(m.banner))
	}
	if m.statusMessage != "" {
		sections = append(sections, p.Info.Render(m.statusMessage))
	}

	sections = append(sections, m.viewMetrics())
	sections = append(sections, m.viewChart())
	sections = append(sections, p.Box.Render(m.table.View()))
	sections = append(sections, m.viewFooter())
	sections = append(sections, m.help.ShortHelpView(m.keys.ShortHelp()))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m model) viewMetrics() string {
	var boxes []string
	for _, slot := range dashboard.MetricSlots(m.state) {
		value := slot.Value
		if m.state.MetricsPending {
			value = m.spinner.View() + " " + value
		}
		boxes = append(boxes, metricBox(m.palette, slot.Label, value, slot.Err))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, boxes...)
}

func (m model) viewChart() string {
	p := m.palette
	c := m.renderer.Current()
	if c == nil {
		if m.scheduleLoading {
			return p.Box.Render(m.spinner.View() + " Loading unlock schedule...")
		}
		return p.Box.Render(p.Subtle.Render("No chart data"))
	}

	width := max(m.width-4, 40)
	plot := paintPlot(c.Plot(width, m.chartHeight(), m.cursor),
		lipgloss.NewStyle().Foreground(p.ChartLine).Render,
		lipgloss.NewStyle().Foreground(p.ChartFill).Render)

	tooltip := ""
	if text, ok := c.TooltipAt(m.cursor); ok {
		tooltip = p.Info.Render(text)
	}
	return p.Box.Render(lipgloss.JoinVertical(lipgloss.Left, plot, tooltip))
}

func (m model) viewFooter() string {
	p := m.palette
	f := dashboard.FooterFor(m.state.Data)
	return p.Subtle.Render(fmt.Sprintf("Data as of %s • %s wallets • Methodology: press m • v%s",
		f.DataDate, f.TotalWallets, Version))
}

func (m model) viewMethodology() string {
	p := m.palette
	return lipgloss.JoinVertical(lipgloss.Left,
		p.Title.Render("Methodology"),
		p.Box.Render(m.viewport.View()),
		p.Subtle.Render(fmt.Sprintf("%3.f%% • ↑/↓ scroll • m/esc close", m.viewport.ScrollPercent()*100)),
	)
}

func (m model) viewHelp() string {
	p := m.palette
	var b strings.Builder
	b.WriteString(p.Title.Render("Keyboard Shortcuts"))
	b.WriteString("\n\n")

	cols := dashboard.Columns(m.state.Sort)
	for i, c := range cols {
		fmt.Fprintf(&b, "  %d  sort by %s\n", i+1, strings.TrimSpace(strings.TrimRight(c.Title, "↑↓")))
	}
	b.WriteString("\n")
	b.WriteString(m.help.FullHelpView(m.keys.FullHelp()))
	b.WriteString("\n\n")
	b.WriteString(p.Subtle.Render(m.systemThemeNote()))
	b.WriteString("\n")
	b.WriteString(p.Subtle.Render("Press ? or esc to close"))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, p.Box.Render(b.String()))
}

func (m model) systemThemeNote() string {
	switch {
	case m.themes.Explicit():
		return "Theme saved; system theme changes are ignored"
	case m.cfg.SystemThemePollSeconds > 0:
		return fmt.Sprintf("Following the system theme (checked every %ds)", m.cfg.SystemThemePollSeconds)
	}
	return "System theme changes are not followed; set system_theme_poll_seconds to enable"
}
