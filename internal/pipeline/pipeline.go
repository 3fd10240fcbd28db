package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/theirongolddev/goalfinch/internal/config"
	"github.com/theirongolddev/goalfinch/internal/model"
	"github.com/theirongolddev/goalfinch/internal/source"

	"golang.org/x/sync/errgroup"
)

// SourceFunc builds the source for a goal. RunAll uses source.ForGoal unless
// a different one is supplied.
type SourceFunc func(config.Goal) source.Source

// Run evaluates one goal for the month containing ref (zero ref means now).
// The fetch is the only blocking step; everything after it is pure.
func Run(ctx context.Context, goal config.Goal, src source.Source, ref time.Time) (*model.Report, error) {
	if ref.IsZero() {
		ref = time.Now()
	}

	asOf, err := goal.AsOfTime()
	if err != nil {
		return nil, fmt.Errorf("goal %s: %w", goal.Name, err)
	}

	days := MonthDays(ref)

	batch, err := src.Fetch(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("goal %s: %w", goal.Name, err)
	}
	if !batch.AsOf.IsZero() {
		asOf = batch.AsOf
	}

	report := &model.Report{
		Goal:        goal.Name,
		Title:       goal.DisplayTitle(),
		Month:       ref.Format("2006-01"),
		Units:       goal.Units,
		GoalValue:   goal.Target,
		GeneratedAt: time.Now(),
	}
	if !asOf.IsZero() {
		report.AsOf = model.FormatDay(asOf)
	}

	if len(batch.Records) == 0 {
		report.NoData = true
		report.Assessment = model.NoDataAssessment()
		return report, nil
	}

	points := Accumulate(days, batch.Records, asOf)
	pacing := NewPacing(goal.Target, days)

	report.Points = points
	report.WeeklyTicks = pacing.WeeklyTicks()
	report.GoalLine = pacing.GoalLine()
	if seg, ok := pacing.TargetSegment(points); ok {
		report.Target = &seg
	}
	report.Assessment = Assess(points, pacing, goal.Rounding, goal.Units)

	return report, nil
}

// RunAll evaluates goals concurrently and returns one result per goal, in
// config order. A failing goal records its error without stopping the rest.
func RunAll(ctx context.Context, goals []config.Goal, ref time.Time, sources SourceFunc) []model.GoalResult {
	if sources == nil {
		sources = source.ForGoal
	}

	results := make([]model.GoalResult, len(goals))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, goal := range goals {
		g.Go(func() error {
			report, err := Run(ctx, goal, sources(goal), ref)
			results[i] = model.GoalResult{Name: goal.Name, Report: report, Err: err}
			if err != nil {
				results[i].Error = err.Error()
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// DataDir returns the platform-appropriate data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "goalfinch")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "goalfinch")
}

// EventsPath returns the default path of the event log database.
func EventsPath() string {
	return filepath.Join(DataDir(), "events.db")
}
