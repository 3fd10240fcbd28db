package pipeline

import (
	"math"
	"testing"
	"time"

	"github.com/theirongolddev/goalfinch/internal/model"
)

func TestAssess_FebruaryScenario(t *testing.T) {
	days := feb2024()
	points := Accumulate(days, scenarioRecords(), time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC))

	a := Assess(points, NewPacing(29, days), 1, "reps")

	if a.Status != model.StatusAhead {
		t.Errorf("Status = %q, want ahead", a.Status)
	}
	if math.Abs(a.Diff-(10-29.0*4/28)) > 1e-9 {
		t.Errorf("Diff = %v, want %v", a.Diff, 10-29.0*4/28)
	}
	if a.Magnitude != 5.9 {
		t.Errorf("Magnitude = %v, want 5.9", a.Magnitude)
	}
	if a.Text != "Ahead by 5.9 reps" {
		t.Errorf("Text = %q, want %q", a.Text, "Ahead by 5.9 reps")
	}
}

// series builds a known series for February ending on day `last` with the
// given final cumulative value.
func series(last int, value float64) []model.DailyPoint {
	days := feb2024()
	points := make([]model.DailyPoint, len(days))
	for i, d := range days {
		points[i].Date = d.Date
		if i < last {
			v := value
			points[i].Value = &v
		}
	}
	return points
}

func TestAssess_Classification(t *testing.T) {
	// Goal 28 over Feb 2024: target on day N is exactly N-1.
	p := NewPacing(28, feb2024())

	tests := []struct {
		name       string
		points     []model.DailyPoint
		rounding   int
		units      string
		wantStatus model.Status
		wantText   string
	}{
		{"exactly on pace", series(11, 10), 0, "km", model.StatusOnTrack, "Right on track!"},
		{"within epsilon", series(11, 10.00005), 2, "km", model.StatusOnTrack, "Right on track!"},
		{"behind", series(11, 7.5), 0, "km", model.StatusBehind, "Behind by 3 km"},
		{"behind rounding half away", series(11, 7.55), 1, "km", model.StatusBehind, "Behind by 2.5 km"},
		{"ahead no units", series(2, 4), 0, "", model.StatusAhead, "Ahead by 3"},
		{"ahead trims trailing zeros", series(1, 6), 2, "min", model.StatusAhead, "Ahead by 6 min"},
		{"half rounds up", series(1, 2.5), 0, "x", model.StatusAhead, "Ahead by 3 x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Assess(tt.points, p, tt.rounding, tt.units)
			if a.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q (diff %v)", a.Status, tt.wantStatus, a.Diff)
			}
			if a.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", a.Text, tt.wantText)
			}
		})
	}
}

func TestAssess_SignConsistency(t *testing.T) {
	p := NewPacing(29, feb2024())
	for last := 1; last <= 29; last++ {
		for _, v := range []float64{0, 1, 3.3, 14.5, 29, 40} {
			a := Assess(series(last, v), p, 2, "u")
			switch {
			case a.Diff > onTrackEpsilon:
				if a.Status != model.StatusAhead {
					t.Errorf("day %d v %v: diff %v but status %q", last, v, a.Diff, a.Status)
				}
			case a.Diff < -onTrackEpsilon:
				if a.Status != model.StatusBehind {
					t.Errorf("day %d v %v: diff %v but status %q", last, v, a.Diff, a.Status)
				}
			default:
				if a.Status != model.StatusOnTrack {
					t.Errorf("day %d v %v: diff %v but status %q", last, v, a.Diff, a.Status)
				}
			}
		}
	}
}

func TestAssess_ZeroGoal(t *testing.T) {
	p := NewPacing(0, feb2024())
	if a := Assess(series(5, 0), p, 0, "km"); a.Status != model.StatusOnTrack {
		t.Errorf("zero goal with zero progress: status %q, want on-track", a.Status)
	}
	if a := Assess(series(5, 2), p, 0, "km"); a.Text != "Ahead by 2 km" {
		t.Errorf("zero goal with progress: text %q", a.Text)
	}
}

func TestAssess_NoKnownPoints(t *testing.T) {
	a := Assess(series(0, 0), NewPacing(10, feb2024()), 0, "km")
	if a.Status != model.StatusNoData || a.Text != model.NoDataText {
		t.Errorf("got %+v, want no-data sentinel", a)
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		x      float64
		places int
		want   string
	}{
		{5.857143, 1, "5.9"},
		{5.857143, 0, "6"},
		{2.5, 0, "3"},
		{0.125, 2, "0.13"},
		{1234.5678, 3, "1234.568"},
		{7, -1, "7"},
		{1234.5678, math.MaxInt32, "1234.5678"},
	}
	for _, tt := range tests {
		if got := Round(tt.x, tt.places).String(); got != tt.want {
			t.Errorf("Round(%v, %d) = %s, want %s", tt.x, tt.places, got, tt.want)
		}
	}
}
