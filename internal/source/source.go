// Package source ingests raw goal records, either from a remote delimited
// table or from synthesized demo data.
package source

import (
	"context"
	"errors"
	"time"

	"github.com/theirongolddev/goalfinch/internal/config"
	"github.com/theirongolddev/goalfinch/internal/model"
)

var (
	// ErrUnexpectedStatus indicates the remote source answered with a non-2xx status.
	ErrUnexpectedStatus = errors.New("source: unexpected status")
	// ErrMissingColumn indicates the table header lacks a configured column.
	ErrMissingColumn = errors.New("source: missing column")
)

// Batch is the output of one ingestion.
type Batch struct {
	Records []model.RawRecord
	// AsOf, when non-zero, overrides the goal's configured cutoff.
	AsOf time.Time
}

// Source yields the raw records for the month containing the given date.
type Source interface {
	Fetch(ctx context.Context, month time.Time) (Batch, error)
}

// ColumnMapping names the table columns a Remote source reads.
type ColumnMapping struct {
	Date        string
	Value       string
	FilterBy    string
	FilterValue string
	Delimiter   rune
}

// ForGoal builds the source a goal is configured with.
func ForGoal(g config.Goal) Source {
	if g.Demo {
		return NewDemo(nil)
	}

	cols := ColumnMapping{
		Date:        g.DateColumn,
		Value:       g.ValueColumn,
		FilterBy:    g.FilterColumn,
		FilterValue: g.FilterValue,
	}
	if r := []rune(g.Delimiter); len(r) == 1 {
		cols.Delimiter = r[0]
	}
	return NewRemote(g.URL, cols, g.Headers)
}
