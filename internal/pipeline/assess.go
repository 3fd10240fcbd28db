package pipeline

import (
	"fmt"
	"math"
	"strings"

	"github.com/theirongolddev/goalfinch/internal/config"
	"github.com/theirongolddev/goalfinch/internal/model"

	"github.com/shopspring/decimal"
)

// onTrackEpsilon is the largest |diff| still reported as on track.
const onTrackEpsilon = 0.0001

// Assess compares the last known cumulative value with its pacing target.
func Assess(points []model.DailyPoint, p Pacing, rounding int, units string) model.Assessment {
	seg, ok := p.TargetSegment(points)
	if !ok {
		return model.NoDataAssessment()
	}

	diff := seg.From.Value - seg.To.Value
	a := model.Assessment{Diff: diff}

	if math.Abs(diff) < onTrackEpsilon {
		a.Status = model.StatusOnTrack
		a.Text = "Right on track!"
		return a
	}

	mag := Round(math.Abs(diff), rounding)
	a.Magnitude = mag.InexactFloat64()

	verb := "Ahead"
	a.Status = model.StatusAhead
	if diff < 0 {
		verb = "Behind"
		a.Status = model.StatusBehind
	}
	a.Text = strings.TrimSpace(fmt.Sprintf("%s by %s %s", verb, mag.String(), strings.TrimSpace(units)))
	return a
}

// Round rounds x to the given number of decimal places, half away from zero.
// Place counts are clamped to [0, config.MaxRounding].
func Round(x float64, places int) decimal.Decimal {
	places = min(max(places, 0), config.MaxRounding)
	return decimal.NewFromFloat(x).Round(int32(places)) //nolint:gosec // clamped above
}
