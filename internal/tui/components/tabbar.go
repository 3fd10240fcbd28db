package components

import (
	"strings"

	"github.com/theirongolddev/goalfinch/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// RenderGoalBar renders one tab per goal with the active one highlighted.
// Names are truncated so the bar fits width; if even that fails, it falls
// back to dots.
func RenderGoalBar(names []string, activeIdx int, width int) string {
	t := theme.Active

	activeStyle := lipgloss.NewStyle().
		Foreground(t.Accent).
		Bold(true).
		Underline(true)

	inactiveStyle := lipgloss.NewStyle().
		Foreground(t.TextMuted)

	limit := 16
	for ; limit >= 4; limit -= 4 {
		parts := make([]string, len(names))
		for i, name := range names {
			name = truncate(name, limit)
			if i == activeIdx {
				parts[i] = activeStyle.Render(name)
			} else {
				parts[i] = inactiveStyle.Render(name)
			}
		}
		bar := " " + strings.Join(parts, "  ")
		if lipgloss.Width(bar) <= width {
			return bar
		}
	}

	var dots strings.Builder
	dots.WriteString(" ")
	for i := range names {
		if i == activeIdx {
			dots.WriteString(activeStyle.Render("●"))
		} else {
			dots.WriteString(inactiveStyle.Render("○"))
		}
	}
	return dots.String()
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}
