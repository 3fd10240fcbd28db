package source

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/theirongolddev/goalfinch/internal/model"
)

const (
	demoDays      = 20
	demoKeepRatio = 0.7
	demoMaxValue  = 8
)

// Demo synthesizes plausible sparse records so a goal renders before a real
// source is configured.
type Demo struct {
	rng *rand.Rand
}

// NewDemo returns a demo source. A nil rng uses a time-seeded generator.
func NewDemo(rng *rand.Rand) *Demo {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	return &Demo{rng: rng}
}

// Fetch returns records for roughly 70% of the first 20 days of month,
// each with a value in [0, 8). The batch's as-of is the 20th.
func (d *Demo) Fetch(_ context.Context, month time.Time) (Batch, error) {
	if month.IsZero() {
		month = time.Now()
	}
	y, m, _ := month.Date()

	var records []model.RawRecord
	for day := 1; day <= demoDays; day++ {
		if d.rng.Float64() >= demoKeepRatio {
			continue
		}
		date := time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
		records = append(records, model.RawRecord{
			Date:  model.FormatDay(date),
			Value: float64(d.rng.IntN(demoMaxValue)),
		})
	}

	return Batch{
		Records: records,
		AsOf:    time.Date(y, m, demoDays, 0, 0, 0, 0, time.UTC),
	}, nil
}
