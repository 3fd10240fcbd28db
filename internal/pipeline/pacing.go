package pipeline

import (
	"time"

	"github.com/theirongolddev/goalfinch/internal/model"
)

// weekDays is the spacing of the pacing gridlines.
const weekDays = 7

// Pacing is the idealized linear trajectory from 0 on the first day of the
// month to Goal on the last.
type Pacing struct {
	Goal      float64
	First     model.CalendarDay
	Last      model.CalendarDay
	TotalDays int
}

// NewPacing builds the pacing model for goal over days. TotalDays is never
// below 1, so a goal of 0 (or a one-day range) cannot divide by zero.
func NewPacing(goal float64, days []model.CalendarDay) Pacing {
	p := Pacing{Goal: goal, TotalDays: 1}
	if len(days) == 0 {
		return p
	}
	p.First = days[0]
	p.Last = days[len(days)-1]
	if n := daysBetween(p.First.Time, p.Last.Time); n > 1 {
		p.TotalDays = n
	}
	return p
}

// Target returns the pacing target for the given day.
func (p Pacing) Target(day time.Time) model.TargetPoint {
	day = calendarDay(day)
	elapsed := daysBetween(p.First.Time, day)
	return model.TargetPoint{
		Date:        model.FormatDay(day),
		ElapsedDays: elapsed,
		TotalDays:   p.TotalDays,
		TargetValue: p.targetAt(elapsed),
	}
}

// TargetForDate is Target keyed by a canonical M/D/YYYY date string.
func (p Pacing) TargetForDate(date string) (model.TargetPoint, error) {
	t, err := time.Parse(DayLayout, date)
	if err != nil {
		return model.TargetPoint{}, err
	}
	return p.Target(t), nil
}

func (p Pacing) targetAt(elapsed int) float64 {
	return p.Goal * float64(elapsed) / float64(p.TotalDays)
}

// GoalLine returns the two endpoints of the ideal trajectory, for charts.
func (p Pacing) GoalLine() []model.GoalPoint {
	return []model.GoalPoint{
		{Date: p.First.Date, Value: 0},
		{Date: p.Last.Date, Value: p.Goal},
	}
}

// WeeklyTicks returns the target at elapsed days 0, 7, 14, ... up to TotalDays.
func (p Pacing) WeeklyTicks() []float64 {
	ticks := make([]float64, 0, p.TotalDays/weekDays+1)
	for elapsed := 0; elapsed <= p.TotalDays; elapsed += weekDays {
		ticks = append(ticks, p.targetAt(elapsed))
	}
	return ticks
}

// TargetSegment is the vertical comparison at the last known point: from its
// cumulative value to the target for that same day. It never extrapolates.
func (p Pacing) TargetSegment(points []model.DailyPoint) (model.TargetSegment, bool) {
	i := LastKnown(points)
	if i < 0 {
		return model.TargetSegment{}, false
	}
	last := points[i]
	target, err := p.TargetForDate(last.Date)
	if err != nil {
		return model.TargetSegment{}, false
	}
	return model.TargetSegment{
		From:   model.GoalPoint{Date: last.Date, Value: *last.Value},
		To:     model.GoalPoint{Date: last.Date, Value: target.TargetValue},
		Target: target,
	}, true
}
