package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/theirongolddev/goalfinch/internal/model"
)

// ParseTable reads a header-delimited table and extracts one record per
// matching row. Cells that don't parse as numbers count as 0.
func ParseTable(r io.Reader, cols ColumnMapping) ([]model.RawRecord, error) {
	cr := csv.NewReader(r)
	if cols.Delimiter != 0 {
		cr.Comma = cols.Delimiter
	}
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("source: reading header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	dateIdx, ok := index[cols.Date]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrMissingColumn, cols.Date)
	}
	valueIdx, ok := index[cols.Value]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrMissingColumn, cols.Value)
	}
	filterIdx := -1
	if cols.FilterBy != "" {
		if filterIdx, ok = index[cols.FilterBy]; !ok {
			return nil, fmt.Errorf("%w %q", ErrMissingColumn, cols.FilterBy)
		}
	}

	var records []model.RawRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("source: reading row: %w", err)
		}

		if filterIdx >= 0 && cell(row, filterIdx) != cols.FilterValue {
			continue
		}

		records = append(records, model.RawRecord{
			Date:  cell(row, dateIdx),
			Value: parseValue(cell(row, valueIdx)),
		})
	}

	return records, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return strings.TrimSpace(row[i])
	}
	return ""
}

// parseValue never fails: anything unparseable, NaN, or infinite is 0.
func parseValue(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
