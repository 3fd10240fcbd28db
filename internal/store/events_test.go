package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/theirongolddev/goalfinch/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Events {
	t.Helper()
	ev, err := Open(filepath.Join(t.TempDir(), "nested", "events.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ev.Close() })
	return ev
}

// useLocal swaps time.Local for the duration of the test.
func useLocal(t *testing.T, loc *time.Location) {
	t.Helper()
	prev := time.Local
	time.Local = loc
	t.Cleanup(func() { time.Local = prev })
}

func at(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func TestInsertAndGet(t *testing.T) {
	db := openTemp(t)
	ctx := context.Background()

	start := at(2024, 2, 3, 7)
	stored, err := db.Insert(ctx, model.Event{
		Type:    "run",
		Title:   "Morning run",
		StartTS: &start,
		EndTS:   at(2024, 2, 3, 8),
		Payload: map[string]any{"value": 5.5, "route": "river"},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, stored.ID)
	assert.False(t, stored.CreatedAt.IsZero())

	got, err := db.Get(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, "run", got.Type)
	assert.Equal(t, "Morning run", got.Title)
	require.NotNil(t, got.StartTS)
	assert.True(t, got.StartTS.Equal(start))
	assert.True(t, got.EndTS.Equal(at(2024, 2, 3, 8)))
	assert.Equal(t, 5.5, got.Payload["value"])
	assert.Equal(t, "river", got.Payload["route"])
}

func TestGetMissing(t *testing.T) {
	db := openTemp(t)
	_, err := db.Get(context.Background(), "nope")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListFilters(t *testing.T) {
	useLocal(t, time.UTC)
	db := openTemp(t)
	ctx := context.Background()

	for _, ev := range []model.Event{
		{Type: "run", EndTS: at(2024, 2, 10, 9)},
		{Type: "run", EndTS: at(2024, 2, 1, 0)},
		{Type: "run", EndTS: at(2024, 3, 1, 0)},
		{Type: "swim", EndTS: at(2024, 2, 15, 12)},
		{Type: "run", EndTS: at(2024, 1, 31, 23)},
	} {
		_, err := db.Insert(ctx, ev)
		require.NoError(t, err)
	}

	all, err := db.List(ctx, Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 5)

	feb, err := db.List(ctx, MonthFilter("run", 2024, time.February))
	require.NoError(t, err)
	require.Len(t, feb, 2)
	assert.True(t, feb[0].EndTS.Equal(at(2024, 2, 1, 0)), "ordered by end time")
	assert.True(t, feb[1].EndTS.Equal(at(2024, 2, 10, 9)))
	assert.NotNil(t, feb[0].Payload)

	types, err := db.Types(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"run", "swim"}, types)
}

func TestDuplicateIDFails(t *testing.T) {
	db := openTemp(t)
	ctx := context.Background()

	_, err := db.Insert(ctx, model.Event{ID: "x", Type: "run", EndTS: at(2024, 2, 1, 0)})
	require.NoError(t, err)
	_, err = db.Insert(ctx, model.Event{ID: "x", Type: "run", EndTS: at(2024, 2, 1, 0)})
	require.Error(t, err)
}

func TestMonthFilterUsesLocalCalendar(t *testing.T) {
	mountain := time.FixedZone("MST", -7*60*60)
	useLocal(t, mountain)
	db := openTemp(t)
	ctx := context.Background()

	// 8pm on Feb 29 in Denver is already March 1 in UTC.
	lastEvening := time.Date(2024, 2, 29, 20, 0, 0, 0, mountain)
	firstMorning := time.Date(2024, 3, 1, 6, 0, 0, 0, mountain)
	for _, end := range []time.Time{lastEvening, firstMorning} {
		_, err := db.Insert(ctx, model.Event{Type: "run", EndTS: end})
		require.NoError(t, err)
	}

	feb, err := db.List(ctx, MonthFilter("run", 2024, time.February))
	require.NoError(t, err)
	require.Len(t, feb, 1)
	assert.True(t, feb[0].EndTS.Equal(lastEvening))

	mar, err := db.List(ctx, MonthFilter("run", 2024, time.March))
	require.NoError(t, err)
	require.Len(t, mar, 1)
	assert.True(t, mar[0].EndTS.Equal(firstMorning))
}
