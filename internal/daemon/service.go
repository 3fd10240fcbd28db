// Package daemon serves goal reports, the event log, and metrics over HTTP.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/theirongolddev/goalfinch/internal/config"
	"github.com/theirongolddev/goalfinch/internal/model"
	"github.com/theirongolddev/goalfinch/internal/pipeline"
	"github.com/theirongolddev/goalfinch/internal/store"

	"go.uber.org/zap"
)

// Config controls the daemon runtime behavior.
type Config struct {
	Addr     string
	Token    string
	Goals    []config.Goal
	Interval time.Duration
	// Ref pins the evaluation month. Zero means now.
	Ref time.Time
	// Sources overrides how goal sources are built, for tests.
	Sources pipeline.SourceFunc
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time `json:"started_at"`
	LastPollAt      time.Time `json:"last_poll_at"`
	PollIntervalSec int       `json:"poll_interval_sec"`
	PollCount       int64     `json:"poll_count"`
	Goals           int       `json:"goals"`
	FailingGoals    int       `json:"failing_goals"`
	LastReloadAt    time.Time `json:"last_reload_at,omitempty"`
	ReloadError     string    `json:"reload_error,omitempty"`
}

// Service provides the daemon runtime and HTTP API.
type Service struct {
	cfg    Config
	events *store.Events
	logger *zap.Logger

	mu           sync.RWMutex
	goals        []config.Goal
	startedAt    time.Time
	lastPollAt   time.Time
	pollCount    int64
	lastReloadAt time.Time
	reloadError  string
	results      []model.GoalResult
}

// New returns a daemon service. events may be nil, in which case the event
// endpoints answer 503.
func New(cfg Config, events *store.Events, logger *zap.Logger) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = time.Minute
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8787"
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		cfg:       cfg,
		events:    events,
		logger:    logger,
		goals:     cfg.Goals,
		startedAt: time.Now(),
	}
}

// Reload swaps in the goals of a freshly loaded config. A non-nil err keeps
// the current goals and is reported at /v1/status.
func (s *Service) Reload(cfg config.Config, err error) {
	s.mu.Lock()
	s.lastReloadAt = time.Now()
	if err != nil {
		s.reloadError = err.Error()
		s.mu.Unlock()
		return
	}
	s.reloadError = ""
	s.goals = cfg.Goals
	s.mu.Unlock()
}

// Run starts HTTP endpoints and polling until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	s.logger.Info("daemon listening", zap.String("addr", s.cfg.Addr))

	// Seed results so /metrics is useful immediately.
	s.pollOnce(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.pollOnce(ctx)
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

func (s *Service) currentGoals() []config.Goal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.goals
}

func (s *Service) evaluate(ctx context.Context, goals []config.Goal) []model.GoalResult {
	return pipeline.RunAll(ctx, goals, s.cfg.Ref, s.cfg.Sources)
}

func (s *Service) pollOnce(ctx context.Context) {
	results := s.evaluate(ctx, s.currentGoals())
	for _, r := range results {
		if r.Err != nil {
			s.logger.Warn("goal evaluation failed", zap.String("goal", r.Name), zap.Error(r.Err))
		}
	}

	s.mu.Lock()
	s.results = results
	s.lastPollAt = time.Now()
	s.pollCount++
	s.mu.Unlock()
}

func (s *Service) snapshotStatus() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	failing := 0
	for _, r := range s.results {
		if r.Err != nil {
			failing++
		}
	}

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		Goals:           len(s.goals),
		FailingGoals:    failing,
		LastReloadAt:    s.lastReloadAt,
		ReloadError:     s.reloadError,
	}
}
