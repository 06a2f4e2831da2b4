package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Sort        key.Binding
	Theme       key.Binding
	ChartLeft   key.Binding
	ChartRight  key.Binding
	Up          key.Binding
	Down        key.Binding
	Copy        key.Binding
	Open        key.Binding
	Methodology key.Binding
	Help        key.Binding
	Quit        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Sort: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6", "7"),
			key.WithHelp("1-7", "sort by column"),
		),
		Theme: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "toggle theme"),
		),
		ChartLeft: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "previous point"),
		),
		ChartRight: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next point"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Copy: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "copy address"),
		),
		Open: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "open in explorer"),
		),
		Methodology: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "methodology"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Sort, k.Theme, k.ChartLeft, k.ChartRight, k.Copy, k.Methodology, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Sort, k.Up, k.Down, k.Copy, k.Open},
		{k.ChartLeft, k.ChartRight},
		{k.Theme, k.Methodology, k.Help, k.Quit},
	}
}
