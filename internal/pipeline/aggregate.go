package pipeline

import (
	"time"

	"github.com/theirongolddev/goalfinch/internal/model"
)

// Accumulate folds records onto days as a running total. Days strictly after
// asOf (when non-zero) are emitted with a nil value and never shown.
//
// The input records are not modified; matching uses exact Date equality.
func Accumulate(days []model.CalendarDay, records []model.RawRecord, asOf time.Time) []model.DailyPoint {
	byDay := make(map[string]float64, len(records))
	for _, r := range records {
		byDay[r.Date] += r.Value
	}

	cutoff := time.Time{}
	if !asOf.IsZero() {
		cutoff = calendarDay(asOf)
	}

	points := make([]model.DailyPoint, 0, len(days))
	var (
		total float64
		prev  float64
	)
	for i, d := range days {
		if !cutoff.IsZero() && d.Time.After(cutoff) {
			points = append(points, model.DailyPoint{Date: d.Date})
			continue
		}

		total += byDay[d.Date]
		value := total
		points = append(points, model.DailyPoint{
			Date:      d.Date,
			Value:     &value,
			ShowPoint: i == 0 || total != prev,
		})
		prev = total
	}

	return points
}

// LastKnown returns the index of the last point with a value, or -1.
func LastKnown(points []model.DailyPoint) int {
	for i := len(points) - 1; i >= 0; i-- {
		if points[i].Known() {
			return i
		}
	}
	return -1
}
