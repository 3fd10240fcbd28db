// Package store provides a SQLite-backed event log.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/goalfinch/internal/model"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // register sqlite driver
)

// ErrNotFound is returned when an event id has no row.
var ErrNotFound = errors.New("store: event not found")

// tsLayout keeps sub-second precision and sorts lexically.
const tsLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Events is the event log.
type Events struct {
	db *sql.DB
}

// Open opens or creates the event database at the given path.
func Open(dbPath string) (*Events, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating data dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening events db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Events{db: db}, nil
}

// Close closes the database.
func (e *Events) Close() error {
	return e.db.Close()
}

// Filter narrows ListEvents. Zero fields match everything. Since is
// inclusive and Until exclusive, both compared against EndTS.
type Filter struct {
	Type  string
	Since time.Time
	Until time.Time
}

// MonthFilter selects events of typ that ended in the given month of the
// local calendar, the same calendar the CSV date column uses.
func MonthFilter(typ string, year int, month time.Month) Filter {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	return Filter{Type: typ, Since: start, Until: start.AddDate(0, 1, 0)}
}

// Insert stores ev, assigning an id and creation time when unset. The stored
// event is returned.
func (e *Events) Insert(ctx context.Context, ev model.Event) (model.Event, error) {
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now().UTC()
	}
	if ev.Payload == nil {
		ev.Payload = map[string]any{}
	}

	payload, err := json.Marshal(ev.Payload)
	if err != nil {
		return ev, fmt.Errorf("encoding payload: %w", err)
	}

	var start sql.NullString
	if ev.StartTS != nil {
		start = sql.NullString{String: formatTS(*ev.StartTS), Valid: true}
	}

	_, err = e.db.ExecContext(ctx, `INSERT INTO events
		(id, event_type, title, start_ts, end_ts, created_at_ts, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.Type, ev.Title, start, formatTS(ev.EndTS), formatTS(ev.CreatedAt), string(payload),
	)
	if err != nil {
		return ev, fmt.Errorf("inserting event: %w", err)
	}
	return ev, nil
}

// Get returns the event with the given id.
func (e *Events) Get(ctx context.Context, id string) (model.Event, error) {
	row := e.db.QueryRowContext(ctx, selectSQL+" WHERE id = ?", id)
	ev, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ev, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return ev, err
}

// List returns the events matching f, ordered by end time.
func (e *Events) List(ctx context.Context, f Filter) ([]model.Event, error) {
	query := selectSQL + " WHERE 1=1"
	var args []any
	if f.Type != "" {
		query += " AND event_type = ?"
		args = append(args, f.Type)
	}
	if !f.Since.IsZero() {
		query += " AND end_ts >= ?"
		args = append(args, formatTS(f.Since))
	}
	if !f.Until.IsZero() {
		query += " AND end_ts < ?"
		args = append(args, formatTS(f.Until))
	}
	query += " ORDER BY end_ts, created_at_ts"

	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []model.Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// Types returns the distinct event types in the log.
func (e *Events) Types(ctx context.Context) ([]string, error) {
	rows, err := e.db.QueryContext(ctx, "SELECT DISTINCT event_type FROM events ORDER BY event_type")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var types []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

const selectSQL = `SELECT id, event_type, title, start_ts, end_ts, created_at_ts, payload FROM events`

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(s scanner) (model.Event, error) {
	var (
		ev                 model.Event
		title, start       sql.NullString
		end, created, body string
	)
	if err := s.Scan(&ev.ID, &ev.Type, &title, &start, &end, &created, &body); err != nil {
		return ev, err
	}

	ev.Title = title.String
	if start.Valid && start.String != "" {
		if t, err := time.Parse(tsLayout, start.String); err == nil {
			ev.StartTS = &t
		}
	}
	ev.EndTS, _ = time.Parse(tsLayout, end)
	ev.CreatedAt, _ = time.Parse(tsLayout, created)

	if err := json.Unmarshal([]byte(body), &ev.Payload); err != nil {
		return ev, fmt.Errorf("decoding payload of %s: %w", ev.ID, err)
	}
	return ev, nil
}

func formatTS(t time.Time) string {
	return t.UTC().Format(tsLayout)
}
