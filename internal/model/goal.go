// Package model defines domain types for goalfinch series, targets, and verdicts.
package model

import "time"

// DayLayout is the canonical M/D/YYYY date format. Record dates must use it
// verbatim or they never join to a calendar day.
const DayLayout = "1/2/2006"

// FormatDay renders t's calendar day in DayLayout.
func FormatDay(t time.Time) string {
	return t.Format(DayLayout)
}

// CalendarDay is one day of the month being tracked.
type CalendarDay struct {
	Date string    // canonical M/D/YYYY, the join key for RawRecord.Date
	Time time.Time // midnight UTC of the same calendar day
}

// RawRecord is one ingested contribution. Several records may share a date.
type RawRecord struct {
	Date  string
	Value float64
}

// DailyPoint is one day's aggregated state.
// Value is nil only for days after the as-of cutoff.
type DailyPoint struct {
	Date      string   `json:"date"`
	Value     *float64 `json:"value"`
	ShowPoint bool     `json:"showPoint"`
}

// Known reports whether the point carries a cumulative value.
func (p DailyPoint) Known() bool {
	return p.Value != nil
}

// GoalPoint is an endpoint of the goal line or the target segment.
type GoalPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// TargetPoint is the pacing target for a single day.
type TargetPoint struct {
	Date        string  `json:"date"`
	ElapsedDays int     `json:"elapsedDays"`
	TotalDays   int     `json:"totalDays"`
	TargetValue float64 `json:"targetValue"`
}
