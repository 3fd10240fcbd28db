package daemon

import (
	"cmp"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/theirongolddev/goalfinch/internal/config"
	"github.com/theirongolddev/goalfinch/internal/model"
	"github.com/theirongolddev/goalfinch/internal/store"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// maxEventBody caps POST /v1/events request bodies.
const maxEventBody = 1 << 20

var errNoStore = errors.New("event log is not configured")

// eventRequest is the POST /v1/events body.
type eventRequest struct {
	EventType string         `json:"event_type"`
	Title     string         `json:"title"`
	StartTS   string         `json:"start_ts"`
	EndTS     string         `json:"end_ts"`
	Payload   map[string]any `json:"payload"`
}

func (req eventRequest) toEvent() (model.Event, error) {
	if req.EventType == "" {
		return model.Event{}, errors.New("event_type is required")
	}
	if req.EndTS == "" {
		return model.Event{}, errors.New("end_ts is required")
	}

	end, err := config.ParseTimestamp(req.EndTS)
	if err != nil {
		return model.Event{}, fmt.Errorf("end_ts: %w", err)
	}
	ev := model.Event{Type: req.EventType, Title: req.Title, EndTS: end, Payload: req.Payload}

	if req.StartTS != "" {
		start, err := config.ParseTimestamp(req.StartTS)
		if err != nil {
			return model.Event{}, fmt.Errorf("start_ts: %w", err)
		}
		ev.StartTS = &start
	}
	return ev, nil
}

func (s *Service) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	if s.events == nil {
		writeError(w, http.StatusServiceUnavailable, errNoStore)
		return
	}

	var req eventRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEventBody))
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding body: %w", err))
		return
	}
	ev, err := req.toEvent()
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	stored, err := s.events.Insert(r.Context(), ev)
	if err != nil {
		s.logger.Error("storing event", zap.String("type", ev.Type), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusCreated, stored)
}

func (s *Service) handleListEvents(w http.ResponseWriter, r *http.Request) {
	if s.events == nil {
		writeError(w, http.StatusServiceUnavailable, errNoStore)
		return
	}
	events, err := s.events.List(r.Context(), store.Filter{})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleEventsByType(w http.ResponseWriter, r *http.Request) {
	if s.events == nil {
		writeError(w, http.StatusServiceUnavailable, errNoStore)
		return
	}

	filter, err := s.typeFilter(chi.URLParam(r, "type"), r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	events, err := s.events.List(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	if r.URL.Query().Get("csv") == "true" {
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment",
			map[string]string{"filename": filter.Type + "-events.csv"}))
		w.WriteHeader(http.StatusOK)
		if err := writeEventsCSV(w, events); err != nil {
			s.logger.Warn("writing csv", zap.Error(err))
		}
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// typeFilter reads ?year=&month= (or the short y= and m=). Without both, the
// window is the last month.
func (s *Service) typeFilter(typ string, r *http.Request) (store.Filter, error) {
	q := r.URL.Query()
	ys, ms := cmp.Or(q.Get("year"), q.Get("y")), cmp.Or(q.Get("month"), q.Get("m"))
	if ys == "" && ms == "" {
		return store.Filter{Type: typ, Since: s.now().AddDate(0, -1, 0)}, nil
	}

	year, err := strconv.Atoi(ys)
	if err != nil {
		return store.Filter{}, fmt.Errorf("invalid year %q", ys)
	}
	month, err := strconv.Atoi(ms)
	if err != nil || month < 1 || month > 12 {
		return store.Filter{}, fmt.Errorf("invalid month %q", ms)
	}
	return store.MonthFilter(typ, year, time.Month(month)), nil
}

func (s *Service) now() time.Time {
	if !s.cfg.Ref.IsZero() {
		return s.cfg.Ref
	}
	return time.Now()
}

var csvBaseColumns = []string{"id", "event_type", "title", "start_ts", "end_ts", "created_at_ts", "date"}

// writeEventsCSV flattens payload keys into payload_<key> columns. The date
// column is end_ts as a canonical calendar day, so the export can feed a
// remote goal directly.
func writeEventsCSV(w io.Writer, events []model.Event) error {
	var keys []string
	seen := make(map[string]struct{})
	for _, ev := range events {
		for k := range ev.Payload {
			if _, ok := seen[k]; !ok {
				seen[k] = struct{}{}
				keys = append(keys, k)
			}
		}
	}
	slices.Sort(keys)

	cw := csv.NewWriter(w)
	header := append([]string{}, csvBaseColumns...)
	for _, k := range keys {
		header = append(header, "payload_"+k)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, ev := range events {
		start := ""
		if ev.StartTS != nil {
			start = ev.StartTS.Format(time.RFC3339)
		}
		row := []string{
			ev.ID,
			ev.Type,
			ev.Title,
			start,
			ev.EndTS.Format(time.RFC3339),
			ev.CreatedAt.Format(time.RFC3339),
			model.FormatDay(ev.EndTS.Local()),
		}
		for _, k := range keys {
			row = append(row, csvCell(ev.Payload[k]))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func csvCell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		b, err := json.Marshal(x)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
