package source

import (
	"errors"
	"strings"
	"testing"

	"github.com/theirongolddev/goalfinch/internal/model"

	"github.com/google/go-cmp/cmp"
)

func TestParseTable(t *testing.T) {
	tests := []struct {
		name string
		in   string
		cols ColumnMapping
		want []model.RawRecord
	}{
		{
			name: "basic",
			in:   "date,value\n2/1/2024,3\n2/3/2024,2\n2/3/2024,1\n",
			cols: ColumnMapping{Date: "date", Value: "value"},
			want: []model.RawRecord{{Date: "2/1/2024", Value: 3}, {Date: "2/3/2024", Value: 2}, {Date: "2/3/2024", Value: 1}},
		},
		{
			name: "bad cells count as zero",
			in:   "date,value\n2/1/2024,abc\n2/2/2024,\n2/3/2024,1.5\n",
			cols: ColumnMapping{Date: "date", Value: "value"},
			want: []model.RawRecord{{Date: "2/1/2024", Value: 0}, {Date: "2/2/2024", Value: 0}, {Date: "2/3/2024", Value: 1.5}},
		},
		{
			name: "filter column",
			in:   "day,kind,reps\n2/1/2024,pushup,10\n2/1/2024,squat,20\n2/2/2024,pushup,5\n",
			cols: ColumnMapping{Date: "day", Value: "reps", FilterBy: "kind", FilterValue: "pushup"},
			want: []model.RawRecord{{Date: "2/1/2024", Value: 10}, {Date: "2/2/2024", Value: 5}},
		},
		{
			name: "tab delimited with padding",
			in:   "date\tminutes\n 2/1/2024 \t 30 \n",
			cols: ColumnMapping{Date: "date", Value: "minutes", Delimiter: '\t'},
			want: []model.RawRecord{{Date: "2/1/2024", Value: 30}},
		},
		{
			name: "short rows",
			in:   "date,value,note\n2/1/2024\n",
			cols: ColumnMapping{Date: "date", Value: "value"},
			want: []model.RawRecord{{Date: "2/1/2024", Value: 0}},
		},
		{
			name: "empty body",
			in:   "",
			cols: ColumnMapping{Date: "date", Value: "value"},
			want: nil,
		},
		{
			name: "header only",
			in:   "date,value\n",
			cols: ColumnMapping{Date: "date", Value: "value"},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTable(strings.NewReader(tt.in), tt.cols)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("records mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseTable_MissingColumn(t *testing.T) {
	for _, cols := range []ColumnMapping{
		{Date: "when", Value: "value"},
		{Date: "date", Value: "amount"},
		{Date: "date", Value: "value", FilterBy: "kind", FilterValue: "x"},
	} {
		_, err := ParseTable(strings.NewReader("date,value\n1/1/2024,1\n"), cols)
		if !errors.Is(err, ErrMissingColumn) {
			t.Errorf("cols %+v: err = %v, want ErrMissingColumn", cols, err)
		}
	}
}
