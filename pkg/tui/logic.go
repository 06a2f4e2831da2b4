package tui

import (
	"time"

	"tonunlock/pkg/dashboard"
	"tonunlock/pkg/loader"
	"tonunlock/pkg/models"
	"tonunlock/pkg/sorting"
	"tonunlock/pkg/theme"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

func listenForLoader(sub loader.Subscriber) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-sub
		if !ok {
			return nil
		}
		return ev
	}
}

func pollSystemTheme(every time.Duration, probe theme.Detector) tea.Cmd {
	return tea.Tick(every, func(time.Time) tea.Msg {
		return systemThemeMsg{theme: probe()}
	})
}

func tableColumns(s sorting.State) []table.Column {
	cols := dashboard.Columns(s)
	out := make([]table.Column, len(cols))
	for i, c := range cols {
		out[i] = table.Column{Title: c.Title, Width: c.Width}
	}
	return out
}

// applyRows re-sorts and replaces every table row. Without schedule data the
// table is left as it is.
func (m *model) applyRows() {
	m.table.SetColumns(tableColumns(m.state.Sort))
	rows := dashboard.TableRows(m.state.Data, m.state.Sort)
	if rows == nil {
		return
	}
	m.rows = rows
	tr := make([]table.Row, len(rows))
	for i, r := range rows {
		tr[i] = table.Row(r.Cells())
	}
	m.table.SetRows(tr)
}

func (m *model) renderChart() {
	spec, ok := dashboard.ChartSpec(m.state.Data, m.cfg.Symbol)
	if !ok {
		return
	}
	c, err := m.renderer.Render(spec)
	if err != nil {
		m.logger.Warn("chart not rendered", zap.Error(err))
		return
	}
	m.cursor = c.Len() - 1
}

func (m *model) onScheduleLoaded(data *models.AppData) {
	m.scheduleLoading = false
	m.state.Data = data
	m.applyRows()
	m.renderChart()
	m.viewport.SetContent(m.methodologyText())
}

func (m *model) onScheduleFailed() tea.Cmd {
	m.scheduleLoading = false
	return m.raiseBanner(dashboard.LoadFailedBanner)
}

func (m *model) raiseBanner(text string) tea.Cmd {
	m.banner = text
	m.bannerSeq++
	if m.cfg.ErrorBannerSeconds <= 0 {
		return nil
	}
	seq := m.bannerSeq
	return tea.Tick(time.Duration(m.cfg.ErrorBannerSeconds)*time.Second, func(time.Time) tea.Msg {
		return clearBannerMsg{seq: seq}
	})
}

func (m *model) setStatus(text string) tea.Cmd {
	m.statusMessage = text
	return tea.Tick(time.Second*2, func(t time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

func (m *model) applyTheme() {
	m.palette = theme.PaletteFor(m.themes.Current())
	m.table.SetStyles(tableStyles(m.palette))
	m.spinner.Style = m.palette.Accent
}

func (m *model) moveCursor(delta int) {
	c := m.renderer.Current()
	if c == nil {
		return
	}
	next := m.cursor + delta
	if next < 0 || next >= c.Len() {
		return
	}
	m.cursor = next
}

// selectedRecord returns the record under the table cursor.
func (m model) selectedRecord() (models.WalletRecord, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.rows) {
		return models.WalletRecord{}, false
	}
	return m.rows[i].Record, true
}

func (m model) methodologyText() string {
	if m.state.Data == nil || m.state.Data.Methodology == "" {
		return "No methodology provided."
	}
	w := m.viewport.Width
	if w <= 0 {
		return m.state.Data.Methodology
	}
	return lipgloss.NewStyle().Width(w).Render(m.state.Data.Methodology)
}

const (
	headerHeight = 6
	footerHeight = 4
)

func (m model) chartHeight() int {
	return max((m.height-headerHeight-footerHeight)/2, 10)
}

func (m *model) layout() {
	tableH := max(m.height-headerHeight-footerHeight-m.chartHeight()-4, 5)
	m.table.SetHeight(tableH)
	m.table.SetWidth(max(m.width-4, 20))
	m.viewport.Width = max(m.width-6, 20)
	m.viewport.Height = max(m.height-8, 5)
	m.viewport.SetContent(m.methodologyText())
	m.help.Width = m.width
}
