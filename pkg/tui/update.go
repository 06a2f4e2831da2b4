package tui

import (
	"fmt"
	"strconv"
	"strings"

	"tonunlock/pkg/loader"
	"tonunlock/pkg/models"
	"tonunlock/pkg/sorting"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()

	case loader.Event:
		// Keep reading from the same subscription.
		cmds = append(cmds, listenForLoader(m.sub))

		switch msg.Type {
		case loader.EventScheduleLoaded:
			if data, ok := msg.Data.(*models.AppData); ok {
				m.onScheduleLoaded(data)
			}
		case loader.EventScheduleFailed:
			cmds = append(cmds, m.onScheduleFailed())
		case loader.EventMetricsUpdated:
			if data, ok := msg.Data.(models.MarketMetrics); ok {
				m.state.Metrics = &data
				m.state.MetricsErr = ""
				m.state.MetricsPending = false
			}
		case loader.EventMetricsFailed:
			errText, _ := msg.Data.(string)
			if errText == "" {
				errText = "unknown error"
			}
			m.state.Metrics = nil
			m.state.MetricsErr = errText
			m.state.MetricsPending = false
		}

	case systemThemeMsg:
		if m.themes.SystemChanged(msg.theme) {
			m.applyTheme()
		}
		if m.cfg.SystemThemePollSeconds > 0 {
			cmds = append(cmds, pollSystemTheme(m.pollInterval(), m.probeTheme))
		}

	case clearBannerMsg:
		if msg.seq == m.bannerSeq {
			m.banner = ""
		}

	case clearStatusMsg:
		m.statusMessage = ""

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Help) {
			m.showHelp = !m.showHelp
			return m, nil
		}
		if m.showHelp {
			if msg.String() == "q" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}

		if m.showMethodology {
			switch msg.String() {
			case "q", "esc", "m":
				m.showMethodology = false
				return m, nil
			}
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Sort):
			n, _ := strconv.Atoi(msg.String())
			if n >= 1 && n <= len(sorting.Fields) {
				m.state.Sort = m.state.Sort.Toggle(sorting.Fields[n-1])
				m.applyRows()
			}

		case key.Matches(msg, m.keys.Theme):
			next, err := m.themes.Toggle()
			m.applyTheme()
			if err != nil {
				cmds = append(cmds, m.setStatus("Theme applied but not saved"))
			} else {
				cmds = append(cmds, m.setStatus(fmt.Sprintf("Switched to %s theme", next)))
			}

		case key.Matches(msg, m.keys.ChartLeft):
			m.moveCursor(-1)

		case key.Matches(msg, m.keys.ChartRight):
			m.moveCursor(1)

		case key.Matches(msg, m.keys.Copy):
			if rec, ok := m.selectedRecord(); ok {
				if err := m.copyToClipboard(rec.Address); err != nil {
					m.logger.Warn("clipboard write failed", zap.Error(err))
					cmds = append(cmds, m.setStatus("Failed to copy to clipboard"))
				} else {
					cmds = append(cmds, m.setStatus("Full address copied to clipboard!"))
				}
			}

		case key.Matches(msg, m.keys.Open):
			if rec, ok := m.selectedRecord(); ok {
				if m.cfg.ExplorerURL == "" {
					cmds = append(cmds, m.setStatus("Explorer URL not configured"))
					break
				}
				url := fmt.Sprintf("%s/%s", strings.TrimRight(m.cfg.ExplorerURL, "/"), rec.Address)
				if err := m.openURL(url); err != nil {
					cmds = append(cmds, m.setStatus(fmt.Sprintf("Failed to open browser: %v", err)))
				} else {
					cmds = append(cmds, m.setStatus("Opened in browser"))
				}
			}

		case key.Matches(msg, m.keys.Methodology):
			m.showMethodology = true
			m.viewport.SetContent(m.methodologyText())
			m.viewport.GotoTop()

		default:
			var cmd tea.Cmd
			m.table, cmd = m.table.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	if m.scheduleLoading || m.state.MetricsPending {
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}
