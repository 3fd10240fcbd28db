// Package pipeline turns raw goal records into a dense monthly cumulative
// series, a linear pacing model, and a progress verdict.
package pipeline

import (
	"math"
	"time"

	"github.com/theirongolddev/goalfinch/internal/model"
)

// DayLayout is the canonical join key format for calendar days and records.
const DayLayout = model.DayLayout

// MonthDays returns every day of ref's month in order. A zero ref means now.
func MonthDays(ref time.Time) []model.CalendarDay {
	if ref.IsZero() {
		ref = time.Now()
	}
	y, m, _ := ref.Date()
	n := DaysInMonth(y, m)

	days := make([]model.CalendarDay, n)
	for i := range days {
		t := time.Date(y, m, i+1, 0, 0, 0, 0, time.UTC)
		days[i] = model.CalendarDay{Date: model.FormatDay(t), Time: t}
	}
	return days
}

// DaysInMonth returns the number of days in the given month.
func DaysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// daysBetween is the whole number of calendar days from a to b, rounded up.
// Both are midnight UTC so there is no DST skew.
func daysBetween(a, b time.Time) int {
	return int(math.Ceil(b.Sub(a).Hours() / 24))
}

// calendarDay truncates t to midnight UTC of its own calendar date.
func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
