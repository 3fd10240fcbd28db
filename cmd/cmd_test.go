package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/theirongolddev/goalfinch/internal/daemon"
	"github.com/theirongolddev/goalfinch/internal/model"
	"github.com/theirongolddev/goalfinch/internal/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFields(t *testing.T) {
	got, err := parseFields([]string{"reps=12", "note=after work", "empty="})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"reps": 12.0, "note": "after work", "empty": ""}, got)

	_, err = parseFields([]string{"novalue"})
	assert.Error(t, err)
	_, err = parseFields([]string{"=3"})
	assert.Error(t, err)
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "abcd****wxyz", maskToken("abcdefghijklmnopqrstuvwxyz"))
	assert.Equal(t, "****", maskToken("short"))
}

func TestFilterDetachArg(t *testing.T) {
	got := filterDetachArg([]string{"serve", "--detach", "--addr", "x", "--detach=true"})
	assert.Equal(t, []string{"serve", "--addr", "x"}, got)
}

func TestPIDAndStateFiles(t *testing.T) {
	pidFile := filepath.Join(t.TempDir(), "goalfinchd.pid")

	_, err := readPID(pidFile)
	require.Error(t, err)
	require.NoError(t, ensureDaemonNotRunning(pidFile))

	require.NoError(t, writePID(pidFile, 4242))
	pid, err := readPID(pidFile)
	require.NoError(t, err)
	assert.Equal(t, 4242, pid)

	st := serveRuntimeState{PID: 4242, Addr: "127.0.0.1:9999", ConfigPath: "/tmp/c.toml"}
	require.NoError(t, writeState(statePath(pidFile), st))
	got, err := readState(statePath(pidFile))
	require.NoError(t, err)
	assert.Equal(t, st.Addr, got.Addr)
	assert.Equal(t, st.ConfigPath, got.ConfigPath)
}

func TestDailyRows(t *testing.T) {
	v := func(f float64) *float64 { return &f }
	days := pipeline.MonthDays(time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC))
	pacing := pipeline.NewPacing(29, days)

	r := &model.Report{
		Points: []model.DailyPoint{
			{Date: "2/1/2024", Value: v(3), ShowPoint: true},
			{Date: "2/2/2024", Value: v(3)},
			{Date: "2/3/2024", Value: v(5.5), ShowPoint: true},
			{Date: "2/4/2024"},
		},
		Target: &model.TargetSegment{From: model.GoalPoint{Date: "2/3/2024", Value: 5.5}},
	}

	rows := dailyRows(r, pacing, 1)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"2/1/2024", "Thu", "3", "3", "0", "●"}, rows[0])
	assert.Equal(t, []string{"2/2/2024", "Fri", "0", "3", "1", ""}, rows[1])
	assert.Equal(t, []string{"2/3/2024", "Sat", "2.5", "5.5", "2.1", "◆"}, rows[2])
	assert.Equal(t, "", rows[3][3])
}

func TestPrintServeStatus(t *testing.T) {
	now := time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC)
	state := serveRuntimeState{
		PID:        4242,
		Addr:       "127.0.0.1:8787",
		StartedAt:  now.Add(-90 * time.Minute),
		ConfigPath: "/home/me/.config/goalfinch/config.toml",
		EventsDB:   "/home/me/.local/share/goalfinch/events.db",
		AuthEvents: true,
	}
	st := &daemon.Status{
		Goals:           3,
		FailingGoals:    1,
		PollCount:       7,
		PollIntervalSec: 60,
		LastPollAt:      now.Add(-30 * time.Second),
		ReloadError:     "goal a: duplicate name",
	}

	var buf bytes.Buffer
	printServeStatus(&buf, state, st, nil, now)
	out := buf.String()
	assert.Contains(t, out, "running (pid 4242)")
	assert.Contains(t, out, "Uptime:     1h30m0s")
	assert.Contains(t, out, "events.db (token required)")
	assert.Contains(t, out, "3 tracked, 1 failing")
	assert.Contains(t, out, "30s ago, 7 times (every 60s)")
	assert.Contains(t, out, "still serving the previous goals: goal a: duplicate name")

	buf.Reset()
	printServeStatus(&buf, serveRuntimeState{PID: 1, Addr: "x"}, nil, errors.New("connection refused"), now)
	assert.Contains(t, buf.String(), "API unreachable (connection refused)")
	assert.NotContains(t, buf.String(), "Uptime")
}

func TestStopDaemon(t *testing.T) {
	pidFile := filepath.Join(t.TempDir(), "goalfinchd.pid")

	_, err := stopDaemon(pidFile, time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not running")

	// A pid beyond the kernel's default pid_max is never alive.
	require.NoError(t, writePID(pidFile, 1<<22+1))
	require.NoError(t, writeState(statePath(pidFile), serveRuntimeState{PID: 1<<22 + 1}))
	_, err = stopDaemon(pidFile, time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stale pid file")

	_, statErr := os.Stat(pidFile)
	assert.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(statePath(pidFile))
	assert.True(t, os.IsNotExist(statErr))
}
