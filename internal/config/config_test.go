package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/theirongolddev/goalfinch/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFile_MissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadFile_TOML(t *testing.T) {
	path := writeFile(t, "config.toml", `
[general]
theme = "tokyo-night"

[[goals]]
name = "pushups"
url = "https://example.com/log.csv"
date_column = "day"
value_column = "reps"
filter_column = "kind"
filter_value = "pushup"
as_of = "2024-02-05"
goal = 29
rounding = 1
units = "reps"

[[goals]]
name = "cardio"
demo = true
goal = 80
units = "km"
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, cfg.Goals, 2)

	g := cfg.Goals[0]
	assert.Equal(t, "day", g.DateColumn)
	assert.Equal(t, 29.0, g.Target)
	assert.Equal(t, 1, g.Rounding)
	assert.Equal(t, "tokyo-night", cfg.General.Theme)
	assert.Equal(t, 10, cfg.General.RotateSeconds, "unset rotate_seconds falls back to default")

	asOf, err := g.AsOfTime()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC), asOf)

	assert.True(t, cfg.Goals[1].Demo)
}

func TestLoadFile_YAML(t *testing.T) {
	path := writeFile(t, "goals.yaml", `
goals:
  - name: sleep
    url: https://example.com/sleep.csv
    date_column: date
    value_column: minutes
    goal: 2480
    units: min
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, cfg.Goals, 1)
	assert.Equal(t, "minutes", cfg.Goals[0].ValueColumn)
	assert.Equal(t, 2480.0, cfg.Goals[0].Target)
}

func TestLoadFile_LegacyDemoSentinel(t *testing.T) {
	path := writeFile(t, "config.toml", `
[[goals]]
name = "strength"
url = "SPREADSHEET_URL_2"
goal = 62
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.True(t, cfg.Goals[0].Demo)
	assert.Empty(t, cfg.Goals[0].URL)
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := Config{Goals: []Goal{
		{Name: "a", URL: "https://x"},
		{Name: "a", Demo: true, Rounding: -1},
		{Demo: true, AsOf: "yesterday"},
		{Name: "b", Demo: true, Rounding: math.MaxInt32},
	}}

	err := cfg.Validate()
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "date_column and value_column are required")
	assert.Contains(t, msg, "duplicate name")
	assert.Contains(t, msg, "goal a: rounding must be between 0 and 12")
	assert.Contains(t, msg, "goal b: rounding must be between 0 and 12")
	assert.Contains(t, msg, "name is required")
	assert.Contains(t, msg, "as_of")
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2024-02-05", "2/5/2024", " 2/5/2024 "} {
		got, err := ParseDate(in)
		if err != nil {
			t.Fatalf("ParseDate(%q): %v", in, err)
		}
		if !got.Equal(want) {
			t.Errorf("ParseDate(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseDate("Feb fifth"); err == nil {
		t.Error("expected error for free-form date")
	}
}

func TestParseTimestamp(t *testing.T) {
	prev := time.Local
	time.Local = time.FixedZone("MST", -7*60*60)
	t.Cleanup(func() { time.Local = prev })

	got, err := ParseTimestamp("2024-02-05T08:30:00Z")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2024, 2, 5, 8, 30, 0, 0, time.UTC)))

	// A bare date keeps its calendar day west of UTC.
	for _, in := range []string{"2024-02-05", "2/5/2024"} {
		got, err := ParseTimestamp(in)
		require.NoError(t, err)
		assert.Equal(t, "2/5/2024", model.FormatDay(got.Local()), in)
		assert.Equal(t, 12, got.Local().Hour(), in)
	}

	_, err = ParseTimestamp("soon")
	assert.Error(t, err)
}

func TestGoalLookup(t *testing.T) {
	cfg := Config{Goals: []Goal{{Name: "cardio", Demo: true}}}

	g, err := cfg.Goal("cardio")
	require.NoError(t, err)
	assert.Equal(t, "cardio", g.DisplayTitle())

	_, err = cfg.Goal("swim")
	assert.True(t, errors.Is(err, ErrGoalNotFound))
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	SetPath(path)
	defer SetPath("")

	cfg := DefaultConfig()
	cfg.Goals = []Goal{{Name: "cardio", Demo: true, Target: 80, Units: "km"}}
	require.NoError(t, Save(cfg))
	assert.True(t, Exists())

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, cfg.Goals, loaded.Goals)
}

func TestGetToken_EnvWins(t *testing.T) {
	t.Setenv("GOALFINCH_TOKEN", "from-env")
	assert.Equal(t, "from-env", GetToken(Config{Server: ServerConfig{Token: "from-file"}}))
}
