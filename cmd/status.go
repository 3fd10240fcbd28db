package cmd

import (
	"fmt"

	"github.com/theirongolddev/goalfinch/internal/cli"
	"github.com/theirongolddev/goalfinch/internal/pipeline"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show every goal's progress against its pace",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(cfg.Goals) == 0 {
		fmt.Println()
		fmt.Println("  No goals configured.")
		fmt.Println("  Run `goalfinch setup` to add one.")
		fmt.Println()
		return nil
	}

	ref, err := refDate()
	if err != nil {
		return err
	}

	ctx, cancel := fetchContext()
	defer cancel()

	progressf("  Fetching %d goals...\n", len(cfg.Goals))
	results := pipeline.RunAll(ctx, cfg.Goals, ref, nil)

	month := ""
	rows := make([][]string, 0, len(results))
	var failures []string
	for i, res := range results {
		goal := cfg.Goals[i]
		if res.Err != nil {
			logger.Warn("goal failed", zap.String("goal", res.Name), zap.Error(res.Err))
			failures = append(failures, cli.RenderError(res.Name, res.Error))
			rows = append(rows, []string{goal.DisplayTitle(), "-", "-", "-", cli.FormatAmount(goal.Target, goal.Rounding, goal.Units), "error", ""})
			continue
		}

		r := res.Report
		month = r.Month
		value, target, diff := "-", "-", "-"
		if last, ok := r.LastKnown(); ok {
			value = cli.FormatAmount(*last.Value, goal.Rounding, goal.Units)
		}
		if r.Target != nil {
			target = cli.FormatAmount(r.Target.To.Value, goal.Rounding, goal.Units)
			diff = cli.FormatSigned(r.Assessment.Diff, goal.Rounding)
		}
		rows = append(rows, []string{
			r.Title,
			value,
			target,
			diff,
			cli.FormatAmount(r.GoalValue, goal.Rounding, goal.Units),
			cli.RenderVerdict(r.Assessment),
			cli.RenderSparkline(r.Cumulative()),
		})
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("GOALS  " + month))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Goal", "Progress", "Pace", "vs pace", "Monthly goal", "Verdict", "Trend"},
		Rows:    rows,
	}))
	for _, f := range failures {
		fmt.Println(f)
	}
	fmt.Println()

	return nil
}
