package cmd

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/theirongolddev/goalfinch/internal/config"
	"github.com/theirongolddev/goalfinch/internal/daemon"
	"github.com/theirongolddev/goalfinch/internal/pipeline"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// serveRuntimeState is written next to the pid file so `serve status` can
// find a daemon started with non-default flags.
type serveRuntimeState struct {
	PID        int       `json:"pid"`
	Addr       string    `json:"addr"`
	StartedAt  time.Time `json:"started_at"`
	ConfigPath string    `json:"config_path"`
	EventsDB   string    `json:"events_db"`
	Interval   string    `json:"interval"`
	AuthEvents bool      `json:"auth_events"`
}

var (
	flagServeAddr     string
	flagServeInterval time.Duration
	flagServeDetach   bool
	flagServePIDFile  string
	flagServeLogFile  string
	flagServeEnvFile  string
	flagServeChild    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP daemon for goal reports and the event log",
	RunE:  runServe,
}

var serveStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon process and API status",
	RunE:  runServeStatus,
}

var serveStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running daemon",
	RunE:  runServeStop,
}

func init() {
	defaultPID := filepath.Join(pipeline.DataDir(), "goalfinchd.pid")
	defaultLog := filepath.Join(pipeline.DataDir(), "goalfinchd.log")

	serveCmd.PersistentFlags().StringVar(&flagServeAddr, "addr", "", "HTTP listen address (default from config)")
	serveCmd.PersistentFlags().StringVar(&flagServePIDFile, "pid-file", defaultPID, "PID file path")

	serveCmd.Flags().DurationVar(&flagServeInterval, "interval", time.Minute, "Goal polling interval")
	serveCmd.Flags().StringVar(&flagServeLogFile, "log-file", defaultLog, "Log file path for detached mode")
	serveCmd.Flags().StringVar(&flagServeEnvFile, "env-file", ".env", "Dotenv file loaded before reading the token")
	serveCmd.Flags().BoolVar(&flagServeDetach, "detach", false, "Run the daemon as a background process")
	serveCmd.Flags().BoolVar(&flagServeChild, "child", false, "Internal: mark detached child process")
	_ = serveCmd.Flags().MarkHidden("child")

	serveCmd.AddCommand(serveStatusCmd)
	serveCmd.AddCommand(serveStopCmd)
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	if flagServeDetach && flagServeChild {
		return errors.New("invalid daemon launch mode")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagServeAddr == "" {
		flagServeAddr = cfg.Server.Addr
	}

	if flagServeDetach {
		return startServeDetached()
	}
	return runServeForeground(cfg)
}

func startServeDetached() error {
	if err := ensureDaemonNotRunning(flagServePIDFile); err != nil {
		return err
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	args := filterDetachArg(os.Args[1:])
	args = append(args, "--child")

	if err := os.MkdirAll(filepath.Dir(flagServePIDFile), 0o750); err != nil {
		return fmt.Errorf("create daemon directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(flagServeLogFile), 0o750); err != nil {
		return fmt.Errorf("create daemon log directory: %w", err)
	}

	//nolint:gosec // daemon log path is configured by the local user
	logf, err := os.OpenFile(flagServeLogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open daemon log file: %w", err)
	}
	defer func() { _ = logf.Close() }()

	cmd := exec.Command(exe, args...) //nolint:gosec // exe/args come from current process invocation
	cmd.Stdout = logf
	cmd.Stderr = logf
	cmd.Stdin = nil
	cmd.Env = os.Environ()

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start detached daemon: %w", err)
	}

	fmt.Printf("  Started daemon (pid %d)\n", cmd.Process.Pid)
	fmt.Printf("  PID file: %s\n", flagServePIDFile)
	fmt.Printf("  API: http://%s/v1/status\n", flagServeAddr)
	fmt.Printf("  Log: %s\n", flagServeLogFile)
	return nil
}

func runServeForeground(cfg config.Config) error {
	if err := ensureDaemonNotRunning(flagServePIDFile); err != nil {
		return err
	}

	if err := godotenv.Load(flagServeEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading %s: %w", flagServeEnvFile, err)
	}

	ref, err := refDate()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(flagServePIDFile), 0o750); err != nil {
		return fmt.Errorf("create daemon directory: %w", err)
	}

	pid := os.Getpid()
	if err := writePID(flagServePIDFile, pid); err != nil {
		return err
	}
	defer func() { _ = os.Remove(flagServePIDFile) }()

	events, eventsPath, err := openEvents(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = events.Close() }()

	token := config.GetToken(cfg)
	state := serveRuntimeState{
		PID:        pid,
		Addr:       flagServeAddr,
		StartedAt:  time.Now(),
		ConfigPath: config.Path(),
		EventsDB:   eventsPath,
		Interval:   flagServeInterval.String(),
		AuthEvents: token != "",
	}
	if err := writeState(statePath(flagServePIDFile), state); err != nil {
		logger.Warn("writing daemon state", zap.Error(err))
	}
	defer func() { _ = os.Remove(statePath(flagServePIDFile)) }()

	svc := daemon.New(daemon.Config{
		Addr:     flagServeAddr,
		Token:    token,
		Goals:    cfg.Goals,
		Interval: flagServeInterval,
		Ref:      ref,
	}, events, logger)

	fmt.Printf("  goalfinch daemon listening on http://%s\n", flagServeAddr)
	fmt.Printf("  Tracking %d goals, polling every %s\n", len(cfg.Goals), flagServeInterval)
	fmt.Printf("  Event log: %s\n", eventsPath)
	fmt.Printf("  Stop with: goalfinch serve stop --pid-file %s\n", flagServePIDFile)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return svc.Run(ctx)
	})
	if config.Exists() {
		g.Go(func() error {
			return config.Watch(ctx, config.Path(), logger, svc.Reload)
		})
	} else {
		logger.Info("no config file, hot reload disabled", zap.String("path", config.Path()))
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runServeStatus(_ *cobra.Command, _ []string) error {
	pid, err := readPID(flagServePIDFile)
	if err != nil {
		fmt.Println("  goalfinch daemon: not running")
		fmt.Println("  Start it with `goalfinch serve --detach`.")
		return nil
	}
	if !processAlive(pid) {
		fmt.Printf("  goalfinch daemon: stale pid file %s (pid %d is gone)\n", flagServePIDFile, pid)
		return nil
	}

	state, err := readState(statePath(flagServePIDFile))
	if err != nil {
		state = serveRuntimeState{PID: pid}
	}
	state.Addr = cmp.Or(state.Addr, flagServeAddr, config.DefaultConfig().Server.Addr)

	st, apiErr := fetchStatus(state.Addr)
	printServeStatus(os.Stdout, state, st, apiErr, time.Now())
	return nil
}

// fetchStatus fetches /v1/status from a running daemon.
func fetchStatus(addr string) (*daemon.Status, error) {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get("http://" + addr + "/v1/status") //nolint:noctx // short status check
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	var st daemon.Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return nil, fmt.Errorf("malformed response: %w", err)
	}
	return &st, nil
}

// printServeStatus reports the process side from the state file and the goal
// side from /v1/status. st is nil when the API could not be reached.
func printServeStatus(w io.Writer, state serveRuntimeState, st *daemon.Status, apiErr error, now time.Time) {
	fmt.Fprintf(w, "  goalfinch daemon: running (pid %d)\n", state.PID)
	fmt.Fprintf(w, "  API:        http://%s\n", state.Addr)
	if !state.StartedAt.IsZero() {
		fmt.Fprintf(w, "  Uptime:     %s\n", now.Sub(state.StartedAt).Round(time.Second))
	}
	if state.ConfigPath != "" {
		fmt.Fprintf(w, "  Config:     %s\n", state.ConfigPath)
	}
	if state.EventsDB != "" {
		auth := "open"
		if state.AuthEvents {
			auth = "token required"
		}
		fmt.Fprintf(w, "  Event log:  %s (%s)\n", state.EventsDB, auth)
	}

	if st == nil {
		fmt.Fprintf(w, "  Goals:      unknown, API unreachable (%v)\n", apiErr)
		return
	}

	fmt.Fprintf(w, "  Goals:      %d tracked, %d failing\n", st.Goals, st.FailingGoals)
	if st.LastPollAt.IsZero() {
		fmt.Fprintf(w, "  Evaluated:  pending (every %ds)\n", st.PollIntervalSec)
	} else {
		fmt.Fprintf(w, "  Evaluated:  %s ago, %d times (every %ds)\n",
			now.Sub(st.LastPollAt).Round(time.Second), st.PollCount, st.PollIntervalSec)
	}
	switch {
	case st.ReloadError != "":
		fmt.Fprintf(w, "  Config reload failed, still serving the previous goals: %s\n", st.ReloadError)
	case !st.LastReloadAt.IsZero():
		fmt.Fprintf(w, "  Config reloaded %s ago\n", now.Sub(st.LastReloadAt).Round(time.Second))
	}
}

func runServeStop(_ *cobra.Command, _ []string) error {
	pid, err := stopDaemon(flagServePIDFile, 8*time.Second)
	if err != nil {
		return err
	}
	fmt.Printf("  Stopped goalfinch daemon (pid %d)\n", pid)
	return nil
}

// stopDaemon sends SIGTERM to the daemon recorded in pidFile and waits for it
// to exit. A stale pid file is cleaned up and reported as not running.
func stopDaemon(pidFile string, wait time.Duration) (int, error) {
	pid, err := readPID(pidFile)
	if err != nil {
		return 0, errors.New("goalfinch daemon is not running")
	}
	cleanup := func() {
		_ = os.Remove(pidFile)
		_ = os.Remove(statePath(pidFile))
	}
	if !processAlive(pid) {
		cleanup()
		return pid, fmt.Errorf("goalfinch daemon is not running (removed stale pid file for %d)", pid)
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return pid, fmt.Errorf("find daemon process: %w", err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return pid, fmt.Errorf("signal daemon process: %w", err)
	}

	deadline := time.Now().Add(wait)
	for time.Now().Before(deadline) {
		if !processAlive(pid) {
			cleanup()
			return pid, nil
		}
		time.Sleep(150 * time.Millisecond)
	}
	return pid, fmt.Errorf("goalfinch daemon (pid %d) did not exit within %s", pid, wait)
}

func filterDetachArg(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if a == "--detach" || strings.HasPrefix(a, "--detach=") {
			continue
		}
		out = append(out, a)
	}
	return out
}

func ensureDaemonNotRunning(pidFile string) error {
	pid, err := readPID(pidFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if processAlive(pid) {
		return fmt.Errorf("daemon already running (pid %d)", pid)
	}
	_ = os.Remove(pidFile)
	_ = os.Remove(statePath(pidFile))
	return nil
}

func writePID(path string, pid int) error {
	return os.WriteFile(path, []byte(strconv.Itoa(pid)+"\n"), 0o600)
}

func readPID(path string) (int, error) {
	//nolint:gosec // daemon pid path is configured by the local user
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid in %s", path)
	}
	return pid, nil
}

func processAlive(pid int) bool {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}

func statePath(pidFile string) string {
	return pidFile + ".json"
}

func writeState(path string, st serveRuntimeState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

func readState(path string) (serveRuntimeState, error) {
	var st serveRuntimeState
	//nolint:gosec // daemon state path is configured by the local user
	data, err := os.ReadFile(path)
	if err != nil {
		return st, err
	}
	if err := json.Unmarshal(data, &st); err != nil {
		return st, err
	}
	return st, nil
}
