// Package theme tracks the light/dark preference and the styles for each.
package theme

import (
	"fmt"
	"os"
	"sync"

	"tonunlock/pkg/logging"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.uber.org/zap"
)

type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// Parse accepts "light" or "dark".
func Parse(s string) (Theme, error) {
	switch Theme(s) {
	case Light, Dark:
		return Theme(s), nil
	}
	return "", fmt.Errorf("unknown theme %q", s)
}

// Opposite returns the other theme.
func (t Theme) Opposite() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

// Store persists an explicit preference.
type Store interface {
	LoadTheme() (string, bool, error)
	SaveTheme(theme string) error
}

// Detector reports the system preference.
type Detector func() Theme

// SystemTheme asks lipgloss whether the terminal background is dark.
func SystemTheme() Theme {
	if lipgloss.HasDarkBackground() {
		return Dark
	}
	return Light
}

// ProbeTheme queries the terminal directly. It is used by the periodic poll
// since lipgloss caches its first answer.
func ProbeTheme() Theme {
	if termenv.NewOutput(os.Stdout).HasDarkBackground() {
		return Dark
	}
	return Light
}

// Manager is the light/dark state machine.
type Manager struct {
	mu       sync.Mutex
	current  Theme
	explicit bool
	store    Store
	logger   *zap.Logger
}

// NewManager picks the persisted preference if there is one, otherwise the
// detector's answer.
func NewManager(store Store, detector Detector, logger *zap.Logger) *Manager {
	logger = logging.OrNop(logger)
	if detector == nil {
		detector = SystemTheme
	}
	m := &Manager{store: store, logger: logger}

	if store != nil {
		saved, ok, err := store.LoadTheme()
		if err != nil {
			logger.Warn("failed to read theme preference", zap.Error(err))
		}
		if ok {
			if t, err := Parse(saved); err == nil {
				m.current = t
				m.explicit = true
				return m
			}
			logger.Warn("ignoring invalid theme preference", zap.String("theme", saved))
		}
	}

	m.current = detector()
	if m.current != Light && m.current != Dark {
		m.current = Light
	}
	return m
}

func (m *Manager) Current() Theme {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Explicit reports whether a theme preference has been saved.
func (m *Manager) Explicit() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.explicit
}

// Toggle flips the theme and persists it. The new theme is applied even when
// saving fails, but only a saved choice stops SystemChanged from following
// the system.
func (m *Manager) Toggle() (Theme, error) {
	m.mu.Lock()
	m.current = m.current.Opposite()
	next := m.current
	m.mu.Unlock()

	if m.store == nil {
		m.setExplicit()
		return next, nil
	}
	if err := m.store.SaveTheme(string(next)); err != nil {
		m.logger.Error("failed to persist theme", zap.String("theme", string(next)), zap.Error(err))
		return next, fmt.Errorf("save theme: %w", err)
	}
	m.setExplicit()
	m.logger.Info("theme changed", zap.String("theme", string(next)))
	return next, nil
}

func (m *Manager) setExplicit() {
	m.mu.Lock()
	m.explicit = true
	m.mu.Unlock()
}

// SystemChanged follows the system preference until a choice is saved.
// It reports whether the current theme changed.
func (m *Manager) SystemChanged(t Theme) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.explicit || t == m.current {
		return false
	}
	if t != Light && t != Dark {
		return false
	}
	m.current = t
	return true
}

// Icon is the toggle label: the sun switches to light, the moon to dark.
func (m *Manager) Icon() string {
	return IconFor(m.Current())
}

func IconFor(t Theme) string {
	if t == Dark {
		return "☀️"
	}
	return "🌙"
}
