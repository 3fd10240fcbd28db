package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/goalfinch/internal/cli"
	"github.com/theirongolddev/goalfinch/internal/model"
	"github.com/theirongolddev/goalfinch/internal/tui/components"
	"github.com/theirongolddev/goalfinch/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

const (
	minTerminalWidth = 60
	maxContentWidth  = 120
	chartHeight      = 10
	trendDays        = 10 // sparkline length on the progress card
)

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return fmt.Sprintf("\n  Terminal too narrow (%d cols)\n\n  goalfinch needs at least %d columns.\n",
			a.width, minTerminalWidth)
	}
	if len(a.slides) == 0 {
		return a.viewEmpty()
	}

	w := min(a.width, maxContentWidth)
	s := a.slides[a.active]

	names := make([]string, len(a.slides))
	for i, sl := range a.slides {
		names[i] = sl.goal.DisplayTitle()
	}

	var body string
	switch s.state {
	case stateLoading:
		body = a.viewLoading(s, w)
	case stateError:
		body = viewError(s, w)
	default:
		body = viewReport(s.report, s.goal.Rounding, w)
	}

	age := ""
	if !s.fetchedAt.IsZero() {
		age = time.Since(s.fetchedAt).Round(time.Second).String()
	}

	content := components.RenderGoalBar(names, a.active, w) + "\n\n" + body
	footer := components.RenderStatusBar(w, a.active, len(a.slides), age, a.paused)

	if a.height > 0 {
		gap := a.height - lipgloss.Height(content) - lipgloss.Height(footer)
		if gap > 0 {
			content += strings.Repeat("\n", gap)
		}
	}
	return content + "\n" + footer
}

func (a App) viewEmpty() string {
	t := theme.Active
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 3).
		Render(lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true).Render("◈ goalfinch") + "\n\n" +
			lipgloss.NewStyle().Foreground(t.TextMuted).Render("No goals configured. Run `goalfinch setup` to add one."))
	return lipgloss.Place(a.width, max(a.height, lipgloss.Height(card)), lipgloss.Center, lipgloss.Center, card)
}

func (a App) viewLoading(s slide, w int) string {
	t := theme.Active
	return components.ContentCard(s.goal.DisplayTitle(),
		a.spinner.View()+lipgloss.NewStyle().Foreground(t.TextMuted).Render(" Loading progress..."), w)
}

func viewError(s slide, w int) string {
	t := theme.Active
	msg := lipgloss.NewStyle().Foreground(t.Red).Render("✗ " + s.err.Error())
	hint := lipgloss.NewStyle().Foreground(t.TextDim).Render("press r to retry")
	return components.ContentCard(s.goal.DisplayTitle(), msg+"\n"+hint, w)
}

func viewReport(r *model.Report, rounding, w int) string {
	t := theme.Active

	var b strings.Builder
	b.WriteString(" ")
	b.WriteString(lipgloss.NewStyle().Foreground(t.TextPrimary).Bold(true).Render(r.Title))
	sub := " " + r.Month
	if r.AsOf != "" {
		sub += " · as of " + r.AsOf
	}
	b.WriteString(lipgloss.NewStyle().Foreground(t.TextMuted).Render(sub))
	b.WriteString("\n")

	if r.NoData {
		b.WriteString(components.ContentCard("", lipgloss.NewStyle().Foreground(t.TextMuted).Render(model.NoDataText), w))
		return b.String()
	}

	value, target := 0.0, 0.0
	days := 0
	if last, ok := r.LastKnown(); ok {
		value = *last.Value
	}
	if r.Target != nil {
		target = r.Target.To.Value
		days = r.Target.Target.TotalDays
	}

	statusColor := t.Status(r.Assessment.Status)
	trend := r.Cumulative()
	trend = trend[max(len(trend)-trendDays, 0):]
	b.WriteString(components.MetricCardRow([]components.Metric{
		{Label: "Progress", Value: cli.FormatAmount(value, rounding, r.Units), Note: components.Sparkline(trend, statusColor), Color: statusColor},
		{Label: "Pace target", Value: cli.FormatAmount(target, rounding, r.Units)},
		{Label: "Monthly goal", Value: cli.FormatAmount(r.GoalValue, rounding, r.Units), Note: fmt.Sprintf("over %d days", days)},
		{Label: "Verdict", Value: r.Assessment.Text, Color: statusColor},
	}, w))
	b.WriteString("\n ")
	b.WriteString(components.PaceBar(value, target, r.GoalValue, r.Assessment.Status, w-2))
	b.WriteString("\n\n")

	chart := components.ProgressChart(chartColumns(r), r.GoalValue, statusColor, components.CardInnerWidth(w), chartHeight)
	b.WriteString(components.ContentCard("Cumulative vs. pace", chart, w))

	if len(r.WeeklyTicks) > 0 {
		ticks := make([]string, len(r.WeeklyTicks))
		for i, v := range r.WeeklyTicks {
			ticks[i] = cli.FormatValue(v, rounding+1)
		}
		b.WriteString("\n ")
		b.WriteString(lipgloss.NewStyle().Foreground(t.TextDim).Render("weekly pace: " + strings.Join(ticks, " · ")))
	}

	return b.String()
}

// chartColumns pairs each day's cumulative value with its linear target.
func chartColumns(r *model.Report) []components.ChartColumn {
	total := max(len(r.Points)-1, 1)
	cols := make([]components.ChartColumn, len(r.Points))
	for i, p := range r.Points {
		cols[i] = components.ChartColumn{
			Label:  shortDate(p.Date),
			Known:  p.Known(),
			Target: r.GoalValue * float64(i) / float64(total),
		}
		if p.Known() {
			cols[i].Value = *p.Value
		}
	}
	return cols
}

// shortDate drops the year from an M/D/YYYY date.
func shortDate(date string) string {
	if i := strings.LastIndexByte(date, '/'); i > 0 {
		return date[:i]
	}
	return date
}
