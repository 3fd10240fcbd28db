package cli

import (
	"math"
	"strings"
	"testing"

	"github.com/theirongolddev/goalfinch/internal/model"
)

func TestFormatValue(t *testing.T) {
	tests := []struct {
		v      float64
		places int
		want   string
	}{
		{5.857142857, 1, "5.9"},
		{5.857142857, 0, "6"},
		{6, 2, "6"},
		{2.5, 0, "3"},
		{-2.5, 0, "-3"},
		{1234.5, 1, "1,234.5"},
		{1234567.891, 2, "1,234,567.89"},
		{0, 3, "0"},
		{math.NaN(), 1, "-"},
		{1.5, math.MaxInt32, "1.5"},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.v, tt.places); got != tt.want {
			t.Errorf("FormatValue(%v, %d) = %q, want %q", tt.v, tt.places, got, tt.want)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	if got := FormatAmount(10, 0, " reps "); got != "10 reps" {
		t.Errorf("FormatAmount = %q, want %q", got, "10 reps")
	}
	if got := FormatAmount(10, 0, ""); got != "10" {
		t.Errorf("FormatAmount without units = %q, want %q", got, "10")
	}
}

func TestFormatSigned(t *testing.T) {
	if got := FormatSigned(5.857, 1); got != "+5.9" {
		t.Errorf("FormatSigned(5.857) = %q", got)
	}
	if got := FormatSigned(-2.46, 1); got != "-2.5" {
		t.Errorf("FormatSigned(-2.46) = %q", got)
	}
}

func TestFormatNumber(t *testing.T) {
	tests := map[int64]string{0: "0", 999: "999", 1000: "1,000", 1234567: "1,234,567", -4200: "-4,200"}
	for n, want := range tests {
		if got := FormatNumber(n); got != want {
			t.Errorf("FormatNumber(%d) = %q, want %q", n, got, want)
		}
	}
}

func TestRenderSparkline(t *testing.T) {
	if got := RenderSparkline(nil); got != "" {
		t.Errorf("empty sparkline = %q", got)
	}
	got := []rune(RenderSparkline([]float64{0, 3, 6, 6, 10}))
	if len(got) != 5 {
		t.Fatalf("sparkline has %d runes, want 5", len(got))
	}
	if got[0] != '▁' || got[4] != '█' {
		t.Errorf("sparkline = %q, want it to span ▁ to █", string(got))
	}
}

func TestRenderTableAlignsRows(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Goal", "Value"},
		Rows:    [][]string{{"pushups", "10"}, {"---"}, {"run", "1,234.5"}},
	})
	if !strings.Contains(out, "pushups") || !strings.Contains(out, "1,234.5") {
		t.Fatalf("table missing cells:\n%s", out)
	}
	if got := strings.Count(out, "\n"); got != 7 {
		t.Errorf("table has %d lines, want 7:\n%s", got, out)
	}
}

func TestRenderVerdictKeepsText(t *testing.T) {
	for _, a := range []model.Assessment{
		{Status: model.StatusAhead, Text: "Ahead by 5.9 reps"},
		{Status: model.StatusBehind, Text: "Behind by 3 km"},
		model.NoDataAssessment(),
	} {
		if got := RenderVerdict(a); !strings.Contains(got, a.Text) {
			t.Errorf("RenderVerdict(%q) = %q", a.Text, got)
		}
	}
}
