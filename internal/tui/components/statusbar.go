package components

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/goalfinch/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// RenderStatusBar renders the bottom bar: key hints on the left, slide
// position and data age on the right.
func RenderStatusBar(width, slide, slides int, dataAge string, paused bool) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Width(width)

	left := " [←/→]goal  [space]pause  [r]efresh  [q]uit"
	right := fmt.Sprintf("%d/%d ", slide+1, slides)
	if paused {
		right = "paused  " + right
	}
	if dataAge != "" {
		right = fmt.Sprintf("data %s  ", dataAge) + right
	}

	padding := max(width-lipgloss.Width(left)-lipgloss.Width(right), 0)
	return style.Render(left + strings.Repeat(" ", padding) + right)
}
