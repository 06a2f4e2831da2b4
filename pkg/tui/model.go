package tui

import (
	"time"

	"tonunlock/pkg/chart"
	"tonunlock/pkg/config"
	"tonunlock/pkg/dashboard"
	"tonunlock/pkg/loader"
	"tonunlock/pkg/logging"
	"tonunlock/pkg/sorting"
	"tonunlock/pkg/theme"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// Version is set by Start()
var Version = "dev"

// --- Messages ---

type clearStatusMsg struct{}

// clearBannerMsg expires the banner raised with the same seq.
type clearBannerMsg struct{ seq int }

type systemThemeMsg struct{ theme theme.Theme }

// --- Model ---

type model struct {
	loader *loader.Loader
	sub    loader.Subscriber
	themes *theme.Manager
	cfg    config.Config
	logger *zap.Logger

	state    dashboard.State
	rows     []dashboard.Row
	renderer *chart.Renderer
	cursor   int

	palette  theme.Palette
	table    table.Model
	spinner  spinner.Model
	viewport viewport.Model
	help     help.Model
	keys     keyMap

	width           int
	height          int
	scheduleLoading bool
	banner          string
	bannerSeq       int
	statusMessage   string
	showHelp        bool
	showMethodology bool

	copyToClipboard func(string) error
	openURL         func(string) error
	probeTheme      theme.Detector
}

func initialModel(l *loader.Loader, themes *theme.Manager, cfg config.Config, logger *zap.Logger) model {
	logger = logging.OrNop(logger)
	sortState := sorting.DefaultState()

	t := table.New(
		table.WithColumns(tableColumns(sortState)),
		table.WithFocused(true),
		table.WithHeight(10),
	)

	s := spinner.New()
	s.Spinner = spinner.Dot

	m := model{
		loader:          l,
		sub:             l.Subscribe(),
		themes:          themes,
		cfg:             cfg,
		logger:          logger,
		state:           dashboard.State{Sort: sortState, MetricsPending: true},
		renderer:        &chart.Renderer{},
		table:           t,
		spinner:         s,
		viewport:        viewport.New(0, 0),
		help:            help.New(),
		keys:            defaultKeyMap(),
		scheduleLoading: true,
		copyToClipboard: clipboard.WriteAll,
		openURL:         openBrowser,
		probeTheme:      theme.ProbeTheme,
	}
	m.applyTheme()
	return m
}

func (m model) Init() tea.Cmd {
	var cmds []tea.Cmd

	// Subscribe to loader events
	cmds = append(cmds, listenForLoader(m.sub))
	cmds = append(cmds, m.spinner.Tick)

	if m.cfg.SystemThemePollSeconds > 0 {
		cmds = append(cmds, pollSystemTheme(m.pollInterval(), m.probeTheme))
	}
	return tea.Batch(cmds...)
}

func (m model) pollInterval() time.Duration {
	return time.Duration(m.cfg.SystemThemePollSeconds) * time.Second
}
