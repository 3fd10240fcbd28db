package pipeline

import (
	"testing"
	"time"

	"github.com/theirongolddev/goalfinch/internal/model"

	"github.com/google/go-cmp/cmp"
)

func feb2024() []model.CalendarDay {
	return MonthDays(time.Date(2024, 2, 10, 12, 0, 0, 0, time.Local))
}

func scenarioRecords() []model.RawRecord {
	return []model.RawRecord{
		{Date: "2/1/2024", Value: 3},
		{Date: "2/3/2024", Value: 2},
		{Date: "2/3/2024", Value: 1},
		{Date: "2/5/2024", Value: 4},
	}
}

func ptr(v float64) *float64 { return &v }

func TestAccumulate_FebruaryScenario(t *testing.T) {
	asOf := time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC)
	points := Accumulate(feb2024(), scenarioRecords(), asOf)

	if len(points) != 29 {
		t.Fatalf("len(points) = %d, want 29", len(points))
	}

	want := []model.DailyPoint{
		{Date: "2/1/2024", Value: ptr(3), ShowPoint: true},
		{Date: "2/2/2024", Value: ptr(3), ShowPoint: false},
		{Date: "2/3/2024", Value: ptr(6), ShowPoint: true},
		{Date: "2/4/2024", Value: ptr(6), ShowPoint: false},
		{Date: "2/5/2024", Value: ptr(10), ShowPoint: true},
	}
	if diff := cmp.Diff(want, points[:5]); diff != "" {
		t.Errorf("first five days mismatch (-want +got):\n%s", diff)
	}

	for _, p := range points[5:] {
		if p.Value != nil || p.ShowPoint {
			t.Errorf("%s after cutoff = (%v, %v), want (nil, false)", p.Date, p.Value, p.ShowPoint)
		}
	}
}

func TestAccumulate_DoesNotMutateRecords(t *testing.T) {
	records := scenarioRecords()
	before := append([]model.RawRecord(nil), records...)
	_ = Accumulate(feb2024(), records, time.Time{})
	if diff := cmp.Diff(before, records); diff != "" {
		t.Errorf("records were modified:\n%s", diff)
	}
}

func TestAccumulate_Properties(t *testing.T) {
	records := []model.RawRecord{
		{Date: "2/2/2024", Value: 1},
		{Date: "2/9/2024", Value: 0},
		{Date: "2/10/2024", Value: 2.5},
		{Date: "2/10/2024", Value: 0.5},
		{Date: "2/28/2024", Value: 7},
		{Date: "02/11/2024", Value: 100}, // padded: never joins
		{Date: "3/1/2024", Value: 100},   // other month: never joins
	}

	cutoffs := []time.Time{
		{},
		time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	}

	for _, asOf := range cutoffs {
		days := feb2024()
		points := Accumulate(days, records, asOf)

		// Completeness
		if len(points) != len(days) {
			t.Fatalf("asOf %v: %d points for %d days", asOf, len(points), len(days))
		}

		var prev *float64
		for i, p := range points {
			// Cutoff correctness
			after := !asOf.IsZero() && days[i].Time.After(asOf)
			if after && (p.Value != nil || p.ShowPoint) {
				t.Errorf("asOf %v: %s should be null and hidden", asOf, p.Date)
			}
			if !after && p.Value == nil {
				t.Errorf("asOf %v: %s should be known", asOf, p.Date)
			}
			if p.Value == nil {
				continue
			}

			// Monotonicity
			if prev != nil && *p.Value < *prev {
				t.Errorf("asOf %v: %s decreased from %v to %v", asOf, p.Date, *prev, *p.Value)
			}

			// showPoint correctness
			wantShow := i == 0 || prev == nil || *p.Value != *prev
			if p.ShowPoint != wantShow {
				t.Errorf("asOf %v: %s ShowPoint = %v, want %v", asOf, p.Date, p.ShowPoint, wantShow)
			}
			prev = p.Value
		}
	}
}

func TestAccumulate_CutoffBeforeMonthNullsEverything(t *testing.T) {
	points := Accumulate(feb2024(), scenarioRecords(), time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC))
	if i := LastKnown(points); i != -1 {
		t.Errorf("LastKnown = %d, want -1", i)
	}
}

func TestAccumulate_CutoffAfterMonthKeepsEverything(t *testing.T) {
	points := Accumulate(feb2024(), scenarioRecords(), time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC))
	if i := LastKnown(points); i != 28 {
		t.Fatalf("LastKnown = %d, want 28", i)
	}
	if got := *points[28].Value; got != 10 {
		t.Errorf("final total = %v, want 10", got)
	}
}

func TestAccumulate_CutoffTimeOfDayIgnored(t *testing.T) {
	asOf := time.Date(2024, 2, 5, 23, 59, 0, 0, time.UTC)
	points := Accumulate(feb2024(), scenarioRecords(), asOf)
	if LastKnown(points) != 4 {
		t.Errorf("a late-evening cutoff should still include 2/5")
	}
}
