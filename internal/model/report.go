package model

import "time"

// Status classifies a goal's progress against its pacing target.
type Status string

const (
	StatusAhead   Status = "ahead"
	StatusBehind  Status = "behind"
	StatusOnTrack Status = "on-track"
	StatusNoData  Status = "no-data"
)

// NoDataText is shown whenever a goal has nothing to assess.
const NoDataText = "No data available"

// Assessment is the final verdict for a goal.
type Assessment struct {
	Status    Status  `json:"status"`
	Diff      float64 `json:"diff"`
	Magnitude float64 `json:"magnitude"`
	Text      string  `json:"text"`
}

// NoDataAssessment returns the sentinel assessment for an empty series.
func NoDataAssessment() Assessment {
	return Assessment{Status: StatusNoData, Text: NoDataText}
}

// TargetSegment is the vertical comparison drawn at the last known day.
type TargetSegment struct {
	From   GoalPoint   `json:"from"`
	To     GoalPoint   `json:"to"`
	Target TargetPoint `json:"target"`
}

// Report is the full pipeline output for one goal and month.
type Report struct {
	Goal        string         `json:"goal"`
	Title       string         `json:"title,omitempty"`
	Month       string         `json:"month"`
	Units       string         `json:"units,omitempty"`
	GoalValue   float64        `json:"goalValue"`
	AsOf        string         `json:"asOf,omitempty"`
	NoData      bool           `json:"noData,omitempty"`
	Points      []DailyPoint   `json:"points,omitempty"`
	WeeklyTicks []float64      `json:"weeklyTicks,omitempty"`
	GoalLine    []GoalPoint    `json:"goalLine,omitempty"`
	Target      *TargetSegment `json:"target,omitempty"`
	Assessment  Assessment     `json:"assessment"`
	GeneratedAt time.Time      `json:"generatedAt"`
}

// LastKnown returns the last point with a cumulative value.
func (r *Report) LastKnown() (DailyPoint, bool) {
	for i := len(r.Points) - 1; i >= 0; i-- {
		if r.Points[i].Known() {
			return r.Points[i], true
		}
	}
	return DailyPoint{}, false
}

// Cumulative returns the known cumulative values in day order, for sparklines.
func (r *Report) Cumulative() []float64 {
	values := make([]float64, 0, len(r.Points))
	for _, p := range r.Points {
		if p.Known() {
			values = append(values, *p.Value)
		}
	}
	return values
}

// GoalResult pairs a goal name with its report or the error that prevented one.
type GoalResult struct {
	Name   string  `json:"name"`
	Report *Report `json:"report,omitempty"`
	Err    error   `json:"-"`
	Error  string  `json:"error,omitempty"`
}
