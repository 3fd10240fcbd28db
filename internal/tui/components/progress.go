package components

import (
	"fmt"

	"github.com/theirongolddev/goalfinch/internal/model"
	"github.com/theirongolddev/goalfinch/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// PaceBar renders progress toward goal as a bar colored by verdict, followed
// by the completed share and the share the pace calls for by now.
func PaceBar(value, target, goal float64, status model.Status, width int) string {
	t := theme.Active

	pct := clamp01(ratio(value, goal))
	want := clamp01(ratio(target, goal))

	color := t.Status(status)
	bar := progress.New(
		progress.WithSolidFill(string(color)),
		progress.WithWidth(max(width-16, 4)),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	pctStyle := lipgloss.NewStyle().Foreground(color).Bold(true)
	wantStyle := lipgloss.NewStyle().Foreground(t.TextDim)

	return bar.ViewAs(pct) + " " +
		pctStyle.Render(fmt.Sprintf("%3.0f%%", pct*100)) +
		wantStyle.Render(fmt.Sprintf(" / %3.0f%%", want*100))
}

func ratio(v, of float64) float64 {
	if of == 0 {
		if v > 0 {
			return 1
		}
		return 0
	}
	return v / of
}

func clamp01(f float64) float64 {
	return min(max(f, 0), 1)
}
