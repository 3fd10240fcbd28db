package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type reloads struct {
	mu   sync.Mutex
	cfgs []Config
	errs []error
}

func (r *reloads) record(cfg Config, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cfgs = append(r.cfgs, cfg)
	r.errs = append(r.errs, err)
}

func (r *reloads) last() (Config, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := len(r.cfgs)
	if n == 0 {
		return Config{}, 0, nil
	}
	return r.cfgs[n-1], n, r.errs[n-1]
}

func TestWatchReloadsAndReportsErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[[goals]]\nname = \"a\"\ndemo = true\ngoal = 10\n"), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	var rec reloads
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, path, zap.NewNop(), rec.record) }()

	// The watcher registers asynchronously; keep rewriting until it notices.
	good := []byte("[[goals]]\nname = \"a\"\ndemo = true\ngoal = 10\n\n[[goals]]\nname = \"b\"\ndemo = true\ngoal = 5\n")
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, good, 0o600)
		cfg, n, err := rec.last()
		return n > 0 && err == nil && len(cfg.Goals) == 2
	}, 5*time.Second, 50*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("[[goals]]\nname = \"\"\n"), 0o600))
	require.Eventually(t, func() bool {
		_, _, err := rec.last()
		return err != nil
	}, 5*time.Second, 20*time.Millisecond)

	// Unrelated files in the directory are ignored.
	time.Sleep(100 * time.Millisecond)
	_, before, _ := rec.last()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o600))
	time.Sleep(100 * time.Millisecond)
	_, after, _ := rec.last()
	assert.Equal(t, before, after)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}
