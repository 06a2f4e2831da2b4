package theme

import "github.com/charmbracelet/lipgloss"

// Palette holds the styles for one theme.
type Palette struct {
	Title    lipgloss.Style
	Subtle   lipgloss.Style
	Info     lipgloss.Style
	Err      lipgloss.Style
	Box      lipgloss.Style
	Header   lipgloss.Style
	Accent   lipgloss.Style
	Selected lipgloss.Style
	Banner   lipgloss.Style

	ChartLine lipgloss.Color
	ChartFill lipgloss.Color
}

func PaletteFor(t Theme) Palette {
	if t == Dark {
		return darkPalette()
	}
	return lightPalette()
}

func darkPalette() Palette {
	return Palette{
		Title: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#0088CC")).
			Padding(0, 1).
			Bold(true),
		Subtle: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		Info:   lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")),
		Err:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F")),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#0098EA")).
			Padding(0, 1),
		Header: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Bold(true).
			Padding(0, 1),
		Accent: lipgloss.NewStyle().Foreground(lipgloss.Color("#33B5F5")).Bold(true),
		Selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#005A87")),
		Banner: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#B00020")).
			Padding(0, 1),
		ChartLine: lipgloss.Color("#33B5F5"),
		ChartFill: lipgloss.Color("#1B4F72"),
	}
}

func lightPalette() Palette {
	return Palette{
		Title: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#0088CC")).
			Padding(0, 1).
			Bold(true),
		Subtle: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Info:   lipgloss.NewStyle().Foreground(lipgloss.Color("#00875A")),
		Err:    lipgloss.NewStyle().Foreground(lipgloss.Color("#C62828")),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#0088CC")).
			Padding(0, 1),
		Header: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1A1A1A")).
			Bold(true).
			Padding(0, 1),
		Accent: lipgloss.NewStyle().Foreground(lipgloss.Color("#006699")).Bold(true),
		Selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1A1A1A")).
			Background(lipgloss.Color("#BDE3F7")),
		Banner: lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#C62828")).
			Padding(0, 1),
		ChartLine: lipgloss.Color("#0088CC"),
		ChartFill: lipgloss.Color("#9FD3F0"),
	}
}
