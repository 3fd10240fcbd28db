package daemon

import (
	"net/http"
	"slices"
	"strings"

	"github.com/theirongolddev/goalfinch/internal/model"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"go.uber.org/zap"
)

type goalGauge struct {
	name  string
	help  string
	value func(*model.Report) (float64, bool)
}

var goalGauges = []goalGauge{
	{
		name: "goalfinch_goal_value",
		help: "Last known cumulative value of the goal this month.",
		value: func(r *model.Report) (float64, bool) {
			p, ok := r.LastKnown()
			if !ok {
				return 0, false
			}
			return *p.Value, true
		},
	},
	{
		name: "goalfinch_goal_target",
		help: "Pacing target for the last known day.",
		value: func(r *model.Report) (float64, bool) {
			if r.Target == nil {
				return 0, false
			}
			return r.Target.To.Value, true
		},
	},
	{
		name: "goalfinch_goal_diff",
		help: "Cumulative value minus pacing target; positive is ahead.",
		value: func(r *model.Report) (float64, bool) {
			if r.Target == nil {
				return 0, false
			}
			return r.Assessment.Diff, true
		},
	},
	{
		name: "goalfinch_goal_days_total",
		help: "Whole days from the first to the last day of the month.",
		value: func(r *model.Report) (float64, bool) {
			if r.Target == nil {
				return 0, false
			}
			return float64(r.Target.Target.TotalDays), true
		},
	},
}

// metricFamilies renders the latest poll results as gauge families, one
// series per goal labelled by name.
func metricFamilies(results []model.GoalResult) []*dto.MetricFamily {
	results = slices.Clone(results)
	slices.SortFunc(results, func(a, b model.GoalResult) int {
		return strings.Compare(a.Name, b.Name)
	})

	families := make([]*dto.MetricFamily, 0, len(goalGauges))
	for _, gauge := range goalGauges {
		mf := &dto.MetricFamily{
			Name: ptr(gauge.name),
			Help: ptr(gauge.help),
			Type: dto.MetricType_GAUGE.Enum(),
		}
		for _, res := range results {
			if res.Report == nil {
				continue
			}
			v, ok := gauge.value(res.Report)
			if !ok {
				continue
			}
			mf.Metric = append(mf.Metric, &dto.Metric{
				Label: []*dto.LabelPair{{Name: ptr("goal"), Value: ptr(res.Name)}},
				Gauge: &dto.Gauge{Value: ptr(v)},
			})
		}
		if len(mf.Metric) > 0 {
			families = append(families, mf)
		}
	}
	return families
}

func (s *Service) handleMetrics(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	results := s.results
	s.mu.RUnlock()

	w.Header().Set("Content-Type", string(expfmt.NewFormat(expfmt.TypeTextPlain)))
	for _, mf := range metricFamilies(results) {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			s.logger.Warn("writing metrics", zap.Error(err))
			return
		}
	}
}

func ptr[T any](v T) *T { return &v }
