// Package chart draws the cumulative unlock line chart in the terminal.
package chart

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/guptarohit/asciigraph"
)

const (
	DefaultMaxXTicks = 8
	FillRune         = '░'
	CursorRune       = '●'
)

var ErrEmptySeries = errors.New("chart has no data points")

// Spec describes a chart declaratively. Formatter funcs receive raw values.
type Spec struct {
	Labels    []string
	Values    []float64
	Legend    string
	XTitle    string
	YTitle    string
	MaxXTicks int
	Fill      bool
	Tooltip   func(v float64) string
	YTick     func(v float64) string
}

// Chart is one rendered instance. A destroyed chart draws nothing.
type Chart struct {
	spec      Spec
	destroyed bool
}

func New(spec Spec) (*Chart, error) {
	if len(spec.Values) == 0 {
		return nil, ErrEmptySeries
	}
	if spec.MaxXTicks <= 0 {
		spec.MaxXTicks = DefaultMaxXTicks
	}
	if spec.Tooltip == nil {
		spec.Tooltip = func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	}
	if spec.YTick == nil {
		spec.YTick = func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }
	}
	return &Chart{spec: spec}, nil
}

func (c *Chart) Len() int { return len(c.spec.Values) }

func (c *Chart) Destroy() { c.destroyed = true }

func (c *Chart) Destroyed() bool { return c.destroyed }

// Label returns the x label of point i, or "" when there is none.
func (c *Chart) Label(i int) string {
	if i < 0 || i >= len(c.spec.Labels) {
		return ""
	}
	return c.spec.Labels[i]
}

// TooltipAt formats the point under the cursor.
func (c *Chart) TooltipAt(i int) (string, bool) {
	if c.destroyed || i < 0 || i >= len(c.spec.Values) {
		return "", false
	}
	text := c.spec.Tooltip(c.spec.Values[i])
	if label := c.Label(i); label != "" {
		text = label + ": " + text
	}
	return text, true
}

// Plot draws the chart into roughly width x height cells with a marker at
// point cursor. Pass a negative cursor to omit the marker.
func (c *Chart) Plot(width, height, cursor int) string {
	if c.destroyed {
		return ""
	}
	series := c.spec.Values
	if len(series) == 1 {
		series = []float64{series[0], series[0]}
	}

	lo, hi := minMax(series)
	yLabelW := max(utf8.RuneCountInString(c.spec.YTick(lo)), utf8.RuneCountInString(c.spec.YTick(hi)))
	plotW := max(width-yLabelW-3, 2)
	plotH := max(height-5, 2)

	raw := asciigraph.Plot(series,
		asciigraph.Height(plotH),
		asciigraph.Width(plotW),
		asciigraph.Precision(3),
	)

	grid, labelW := c.relabel(strings.Split(raw, "\n"), plotW)
	if c.spec.Fill {
		fill(grid)
	}
	if cursor >= 0 && cursor < len(c.spec.Values) {
		markCursor(grid, Column(cursor, len(c.spec.Values), plotW))
	}

	var b strings.Builder
	if c.spec.Legend != "" {
		fmt.Fprintf(&b, "%s ━ %s\n", strings.Repeat(" ", labelW), c.spec.Legend)
	}
	if c.spec.YTitle != "" {
		b.WriteString(c.spec.YTitle + "\n")
	}
	for _, row := range grid {
		b.WriteString(strings.TrimRight(row.label+string(row.data), " "))
		b.WriteByte('\n')
	}
	b.WriteString(c.xAxis(labelW, plotW))
	return b.String()
}

type row struct {
	label string
	data  []rune
}

// relabel splits each asciigraph line at the y axis and rewrites the numeric
// tick through the YTick formatter.
func (c *Chart) relabel(lines []string, plotW int) ([]row, int) {
	rows := make([]row, 0, len(lines))
	labels := make([]string, 0, len(lines))
	for _, line := range lines {
		runes := []rune(line)
		axis := -1
		for i, r := range runes {
			if r == '┤' || r == '┼' {
				axis = i
				break
			}
		}
		if axis < 0 {
			continue
		}
		label := strings.TrimSpace(string(runes[:axis]))
		if v, err := strconv.ParseFloat(label, 64); err == nil {
			label = c.spec.YTick(v)
		}
		data := runes[axis:]
		for len(data) < plotW {
			data = append(data, ' ')
		}
		labels = append(labels, label)
		rows = append(rows, row{data: data})
	}

	labelW := 0
	for _, l := range labels {
		labelW = max(labelW, utf8.RuneCountInString(l))
	}
	for i := range rows {
		rows[i].label = fmt.Sprintf("%*s ", labelW, labels[i])
	}
	return rows, labelW + 1
}

// fill shades every cell below the line in each data column.
func fill(grid []row) {
	if len(grid) == 0 {
		return
	}
	for col := 1; col < len(grid[0].data); col++ {
		top := topRow(grid, col)
		if top < 0 {
			continue
		}
		for r := top + 1; r < len(grid); r++ {
			if col < len(grid[r].data) && grid[r].data[col] == ' ' {
				grid[r].data[col] = FillRune
			}
		}
	}
}

func topRow(grid []row, col int) int {
	for r := range grid {
		if col < len(grid[r].data) {
			ch := grid[r].data[col]
			if ch != ' ' && ch != FillRune {
				return r
			}
		}
	}
	return -1
}

func markCursor(grid []row, col int) {
	// Column 0 is the axis itself; the first point sits on the '┼'.
	if col == 0 {
		for r := range grid {
			if len(grid[r].data) > 0 && grid[r].data[0] == '┼' {
				grid[r].data[0] = CursorRune
				return
			}
		}
		return
	}
	if r := topRow(grid, col); r >= 0 {
		grid[r].data[col] = CursorRune
	}
}

// Column maps point i of n onto a plot of width columns.
func Column(i, n, width int) int {
	if n <= 1 || width <= 1 {
		return 0
	}
	return i * (width - 1) / (n - 1)
}

// XTicks picks at most maxTicks evenly spaced point indices, always
// including the first and last.
func XTicks(n, maxTicks int) []int {
	if n <= 0 {
		return nil
	}
	if maxTicks <= 1 {
		return []int{0}
	}
	if n <= maxTicks {
		ticks := make([]int, n)
		for i := range ticks {
			ticks[i] = i
		}
		return ticks
	}
	ticks := make([]int, 0, maxTicks)
	for i := 0; i < maxTicks; i++ {
		idx := i * (n - 1) / (maxTicks - 1)
		if len(ticks) == 0 || ticks[len(ticks)-1] != idx {
			ticks = append(ticks, idx)
		}
	}
	return ticks
}

func (c *Chart) xAxis(labelW, plotW int) string {
	n := len(c.spec.Values)
	ticks := XTicks(n, c.spec.MaxXTicks)

	axis := []rune(strings.Repeat("─", plotW))
	axis[0] = '└'
	text := []rune(strings.Repeat(" ", plotW+16))
	next := 0
	for _, idx := range ticks {
		col := Column(idx, n, plotW)
		axis[col] = '┬'
		if col == 0 {
			axis[0] = '└'
		}
		label := []rune(c.Label(idx))
		start := col - len(label)/2
		if start < next {
			start = next
		}
		if start < 0 {
			start = 0
		}
		if start+len(label) > len(text) {
			continue
		}
		copy(text[start:], label)
		next = start + len(label) + 1
	}

	pad := strings.Repeat(" ", labelW)
	var b strings.Builder
	b.WriteString(pad + string(axis) + "\n")
	b.WriteString(strings.TrimRight(pad+string(text), " ") + "\n")
	if c.spec.XTitle != "" {
		b.WriteString(pad + strings.Repeat(" ", max(plotW/2-len(c.spec.XTitle)/2, 0)) + c.spec.XTitle + "\n")
	}
	return b.String()
}

func minMax(xs []float64) (float64, float64) {
	lo, hi := xs[0], xs[0]
	for _, x := range xs[1:] {
		lo = min(lo, x)
		hi = max(hi, x)
	}
	return lo, hi
}

// Renderer keeps at most one live chart.
type Renderer struct {
	current *Chart
}

// Render destroys the previous chart and builds a new one from spec.
func (r *Renderer) Render(spec Spec) (*Chart, error) {
	if r.current != nil {
		r.current.Destroy()
		r.current = nil
	}
	c, err := New(spec)
	if err != nil {
		return nil, err
	}
	r.current = c
	return c, nil
}

func (r *Renderer) Current() *Chart {
	return r.current
}
