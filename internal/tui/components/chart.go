package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/theirongolddev/goalfinch/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Sparkline renders a unicode sparkline from values.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	peak := values[0]
	for _, v := range values[1:] {
		peak = max(peak, v)
	}
	if peak == 0 {
		peak = 1
	}

	var buf strings.Builder
	buf.Grow(len(values) * 3)
	for _, v := range values {
		idx := int(v / peak * float64(len(blocks)-1))
		buf.WriteRune(blocks[min(max(idx, 0), len(blocks)-1)])
	}

	return lipgloss.NewStyle().Foreground(color).Render(buf.String())
}

// ChartColumn is one day on a ProgressChart. Known is false for days past
// the as-of cutoff, which render empty.
type ChartColumn struct {
	Label  string
	Value  float64
	Known  bool
	Target float64
}

// ProgressChart renders cumulative values as bars with the pacing target
// drawn as a dashed mark in each column. The y-axis tops out at the larger of
// ceiling and the highest value.
func ProgressChart(cols []ChartColumn, ceiling float64, color lipgloss.Color, width, height int) string {
	if len(cols) == 0 {
		return ""
	}
	t := theme.Active

	for _, c := range cols {
		if c.Known {
			ceiling = max(ceiling, c.Value)
		}
	}
	if ceiling <= 0 {
		ceiling = 1
	}
	height = max(height, 3)

	yLabelW := max(len(formatChartLabel(ceiling))+1, 4)
	chartW := max(width-yLabelW-1, 5)

	// One cell per column when it fits, sampled down otherwise.
	if len(cols) > chartW {
		sampled := make([]ChartColumn, chartW)
		for i := range sampled {
			sampled[i] = cols[i*(len(cols)-1)/max(chartW-1, 1)]
		}
		cols = sampled
	}
	barW := max(1, min(3, chartW/len(cols)))

	blocks := []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim)
	barStyle := lipgloss.NewStyle().Foreground(color)
	targetStyle := lipgloss.NewStyle().Foreground(t.Yellow)

	var b strings.Builder
	for row := height; row >= 1; row-- {
		top := ceiling * float64(row) / float64(height)
		bottom := ceiling * float64(row-1) / float64(height)

		label := ""
		if row == height {
			label = formatChartLabel(ceiling)
		} else if row == (height+1)/2 {
			label = formatChartLabel(top)
		}
		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, label)))
		b.WriteString(axisStyle.Render("│"))

		for _, c := range cols {
			var cell string
			switch {
			case c.Known && c.Value >= top:
				cell = barStyle.Render(strings.Repeat("█", barW))
			case c.Known && c.Value > bottom:
				idx := int((c.Value - bottom) / (top - bottom) * 8)
				cell = barStyle.Render(strings.Repeat(string(blocks[min(max(idx, 1), 8)]), barW))
			case c.Target > bottom && c.Target <= top:
				cell = targetStyle.Render(strings.Repeat("┄", barW))
			default:
				cell = strings.Repeat(" ", barW)
			}
			b.WriteString(cell)
		}
		b.WriteString("\n")
	}

	axisLen := len(cols) * barW
	b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, "0")))
	b.WriteString(axisStyle.Render("└" + strings.Repeat("─", axisLen)))

	first, last := cols[0].Label, cols[len(cols)-1].Label
	if gap := axisLen - len(first) - len(last); gap > 0 {
		b.WriteString("\n")
		b.WriteString(strings.Repeat(" ", yLabelW+1))
		b.WriteString(axisStyle.Render(first + strings.Repeat(" ", gap) + last))
	}

	return b.String()
}

// formatChartLabel compacts axis values: 1200 -> "1.2k".
func formatChartLabel(v float64) string {
	switch {
	case v >= 1e6:
		if v == math.Trunc(v/1e6)*1e6 {
			return fmt.Sprintf("%.0fM", v/1e6)
		}
		return fmt.Sprintf("%.1fM", v/1e6)
	case v >= 1e3:
		if v == math.Trunc(v/1e3)*1e3 {
			return fmt.Sprintf("%.0fk", v/1e3)
		}
		return fmt.Sprintf("%.1fk", v/1e3)
	case v >= 10 || v == math.Trunc(v):
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.1f", v)
	}
}
