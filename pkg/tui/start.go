package tui

import (
	"context"

	"tonunlock/pkg/config"
	"tonunlock/pkg/loader"
	"tonunlock/pkg/theme"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// Start subscribes to l, starts loading and runs the dashboard until the
// user quits.
func Start(ctx context.Context, l *loader.Loader, themes *theme.Manager, cfg config.Config, logger *zap.Logger, version string) error {
	Version = version
	m := initialModel(l, themes, cfg, logger)
	defer l.Unsubscribe(m.sub)

	l.Start(ctx)
	defer l.Stop()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}
