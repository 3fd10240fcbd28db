package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/theirongolddev/goalfinch/internal/cli"
	"github.com/theirongolddev/goalfinch/internal/model"
	"github.com/theirongolddev/goalfinch/internal/pipeline"
	"github.com/theirongolddev/goalfinch/internal/source"

	"github.com/spf13/cobra"
)

var flagDailyJSON bool

var dailyCmd = &cobra.Command{
	Use:   "daily <goal>",
	Short: "Per-day cumulative table for one goal",
	Args:  cobra.ExactArgs(1),
	RunE:  runDaily,
}

func init() {
	dailyCmd.Flags().BoolVar(&flagDailyJSON, "json", false, "Print the full report as JSON")
	rootCmd.AddCommand(dailyCmd)
}

func runDaily(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	goal, err := cfg.Goal(args[0])
	if err != nil {
		return err
	}
	ref, err := refDate()
	if err != nil {
		return err
	}
	if ref.IsZero() {
		ref = time.Now()
	}

	ctx, cancel := fetchContext()
	defer cancel()

	progressf("  Fetching %s...\n", goal.DisplayTitle())
	report, err := pipeline.Run(ctx, goal, source.ForGoal(goal), ref)
	if err != nil {
		return err
	}

	if flagDailyJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("%s  %s", strings.ToUpper(report.Title), report.Month)))
	fmt.Println()

	if report.NoData {
		fmt.Println("  " + cli.RenderVerdict(report.Assessment))
		fmt.Println()
		return nil
	}

	pacing := pipeline.NewPacing(goal.Target, pipeline.MonthDays(ref))
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Date", "Day", "Added", "Total", "Pace", ""},
		Rows:    dailyRows(report, pacing, goal.Rounding),
	}))

	ticks := make([]string, len(report.WeeklyTicks))
	for i, v := range report.WeeklyTicks {
		ticks[i] = cli.FormatValue(v, goal.Rounding+1)
	}
	fmt.Println()
	fmt.Println(cli.Muted("  Weekly pace: " + strings.Join(ticks, " · ")))
	fmt.Println("  " + cli.RenderVerdict(report.Assessment))
	if last, ok := report.LastKnown(); ok && report.Target != nil {
		fmt.Println("  " + cli.RenderProgressBar(*last.Value, report.Target.To.Value, report.GoalValue, 40))
	}
	fmt.Println()
	return nil
}

// dailyRows renders one row per day. ● marks a day whose total changed and
// ◆ the day the verdict is measured on.
func dailyRows(r *model.Report, pacing pipeline.Pacing, rounding int) [][]string {
	measured := ""
	if r.Target != nil {
		measured = r.Target.From.Date
	}

	rows := make([][]string, 0, len(r.Points))
	prev := 0.0
	for _, p := range r.Points {
		day := ""
		if t, err := time.Parse(model.DayLayout, p.Date); err == nil {
			day = cli.FormatDayOfWeek(int(t.Weekday()))
		}
		pace := "-"
		if tp, err := pacing.TargetForDate(p.Date); err == nil {
			pace = cli.FormatValue(tp.TargetValue, rounding)
		}

		if !p.Known() {
			rows = append(rows, []string{p.Date, day, "", "", pace, ""})
			continue
		}

		marker := ""
		switch {
		case p.Date == measured:
			marker = "◆"
		case p.ShowPoint:
			marker = "●"
		}
		rows = append(rows, []string{
			p.Date,
			day,
			cli.FormatValue(*p.Value-prev, rounding),
			cli.FormatValue(*p.Value, rounding),
			pace,
			marker,
		})
		prev = *p.Value
	}
	return rows
}
