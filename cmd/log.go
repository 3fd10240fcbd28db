package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/goalfinch/internal/config"
	"github.com/theirongolddev/goalfinch/internal/model"
	"github.com/theirongolddev/goalfinch/internal/pipeline"
	"github.com/theirongolddev/goalfinch/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	flagLogValue  float64
	flagLogTitle  string
	flagLogAt     string
	flagLogFields []string
)

var logCmd = &cobra.Command{
	Use:   "log <event-type>",
	Short: "Append an event to the local event log",
	Long: `Append an event to the local event log.

The value is stored as payload_value in CSV exports, so a goal can track an
event type with url = http://<addr>/v1/events/<type>?csv=true,
date_column = "date" and value_column = "payload_value".`,
	Args: cobra.ExactArgs(1),
	RunE: runLog,
}

var logTypesCmd = &cobra.Command{
	Use:   "types",
	Short: "List the event types recorded so far",
	Args:  cobra.NoArgs,
	RunE:  runLogTypes,
}

func init() {
	logCmd.AddCommand(logTypesCmd)
	logCmd.Flags().Float64Var(&flagLogValue, "value", 1, "Amount contributed by this event")
	logCmd.Flags().StringVar(&flagLogTitle, "title", "", "Short description")
	logCmd.Flags().StringVar(&flagLogAt, "at", "", "When it happened (RFC 3339 or date; default now)")
	logCmd.Flags().StringArrayVar(&flagLogFields, "field", nil, "Extra payload field as key=value (repeatable)")
	rootCmd.AddCommand(logCmd)
}

func runLog(_ *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	at := time.Now()
	if flagLogAt != "" {
		if at, err = config.ParseTimestamp(flagLogAt); err != nil {
			return fmt.Errorf("--at: %w", err)
		}
	}

	payload, err := parseFields(flagLogFields)
	if err != nil {
		return err
	}
	payload["value"] = flagLogValue

	events, path, err := openEvents(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = events.Close() }()

	ev, err := events.Insert(context.Background(), model.Event{
		Type:    args[0],
		Title:   flagLogTitle,
		EndTS:   at,
		Payload: payload,
	})
	if err != nil {
		return err
	}
	logger.Debug("event logged", zap.String("id", ev.ID), zap.String("type", ev.Type), zap.String("db", path))

	progressf("  Logged %s %s on %s\n", ev.Type, strconv.FormatFloat(flagLogValue, 'f', -1, 64), model.FormatDay(ev.EndTS.Local()))
	return nil
}

// parseFields turns key=value pairs into a payload. Numeric values are stored
// as numbers.
func parseFields(fields []string) (map[string]any, error) {
	payload := make(map[string]any, len(fields)+1)
	for _, f := range fields {
		k, v, ok := strings.Cut(f, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("--field %q: want key=value", f)
		}
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			payload[k] = n
		} else {
			payload[k] = v
		}
	}
	return payload, nil
}

func runLogTypes(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	events, _, err := openEvents(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = events.Close() }()

	types, err := events.Types(context.Background())
	if err != nil {
		return err
	}
	if len(types) == 0 {
		progressf("  No events logged yet.\n")
		return nil
	}
	for _, t := range types {
		fmt.Println(t)
	}
	return nil
}

// openEvents opens the configured event log, or the default one.
func openEvents(cfg config.Config) (*store.Events, string, error) {
	path := cfg.Server.EventsDB
	if path == "" {
		path = pipeline.EventsPath()
	}
	events, err := store.Open(path)
	return events, path, err
}
