// Package config loads, validates, and saves goalfinch configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/theirongolddev/goalfinch/internal/model"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// legacyDemoPrefix marks sources from older configs that meant "demo data".
const legacyDemoPrefix = "SPREADSHEET_URL"

// MaxRounding is the most decimal places a goal may round its verdict to.
const MaxRounding = 12

// ErrGoalNotFound is returned when a goal name has no entry in the config.
var ErrGoalNotFound = errors.New("goal not found")

// Config holds all goalfinch configuration.
type Config struct {
	General GeneralConfig `toml:"general" yaml:"general"`
	Server  ServerConfig  `toml:"server" yaml:"server"`
	Goals   []Goal        `toml:"goals" yaml:"goals"`
}

// GeneralConfig holds display preferences.
type GeneralConfig struct {
	Theme         string `toml:"theme" yaml:"theme"`
	RotateSeconds int    `toml:"rotate_seconds" yaml:"rotate_seconds"`
}

// ServerConfig holds daemon settings.
type ServerConfig struct {
	Addr     string `toml:"addr" yaml:"addr"`
	EventsDB string `toml:"events_db,omitempty" yaml:"events_db,omitempty"`
	Token    string `toml:"token,omitempty" yaml:"token,omitempty"`
}

// Goal configures one tracked goal: where its records come from and how
// progress is judged.
type Goal struct {
	Name  string `toml:"name" yaml:"name"`
	Title string `toml:"title,omitempty" yaml:"title,omitempty"`

	// Exactly one of Demo or URL selects the source.
	Demo bool   `toml:"demo,omitempty" yaml:"demo,omitempty"`
	URL  string `toml:"url,omitempty" yaml:"url,omitempty"`

	DateColumn   string            `toml:"date_column,omitempty" yaml:"date_column,omitempty"`
	ValueColumn  string            `toml:"value_column,omitempty" yaml:"value_column,omitempty"`
	FilterColumn string            `toml:"filter_column,omitempty" yaml:"filter_column,omitempty"`
	FilterValue  string            `toml:"filter_value,omitempty" yaml:"filter_value,omitempty"`
	Delimiter    string            `toml:"delimiter,omitempty" yaml:"delimiter,omitempty"`
	Headers      map[string]string `toml:"headers,omitempty" yaml:"headers,omitempty"`

	AsOf     string  `toml:"as_of,omitempty" yaml:"as_of,omitempty"`
	Target   float64 `toml:"goal" yaml:"goal"`
	Rounding int     `toml:"rounding" yaml:"rounding"`
	Units    string  `toml:"units,omitempty" yaml:"units,omitempty"`
}

// DisplayTitle returns the title, falling back to the name.
func (g Goal) DisplayTitle() string {
	if g.Title != "" {
		return g.Title
	}
	return g.Name
}

// AsOfTime parses the goal's as-of cutoff. A blank value yields the zero time.
func (g Goal) AsOfTime() (time.Time, error) {
	if strings.TrimSpace(g.AsOf) == "" {
		return time.Time{}, nil
	}
	return ParseDate(g.AsOf)
}

// ParseDate accepts ISO-8601 dates, RFC 3339 timestamps, and the canonical
// M/D/YYYY layout. The result is midnight UTC of the named calendar day.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02", model.DayLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		y, m, d := t.Local().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q (want YYYY-MM-DD or M/D/YYYY)", s)
}

// ParseTimestamp parses an event time. RFC 3339 timestamps are taken as
// given. A bare date becomes noon on that day in the local zone, so its
// local calendar day is the one named.
func ParseTimestamp(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(s)); err == nil {
		return t, nil
	}
	d, err := ParseDate(s)
	if err != nil {
		return d, err
	}
	return time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, time.Local), nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			Theme:         "flexoki-dark",
			RotateSeconds: 10,
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8787",
		},
	}
}

var pathOverride string

// SetPath points Load and Save at a specific file instead of the XDG default.
func SetPath(path string) {
	pathOverride = path
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "goalfinch")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "goalfinch")
}

// Path returns the full path to the config file.
func Path() string {
	if pathOverride != "" {
		return pathOverride
	}
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFile(Path())
}

// LoadFile reads a TOML or YAML config from path.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // path is chosen by the local user
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if isYAML(path) {
		err = yaml.Unmarshal(data, &cfg)
	} else {
		err = toml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// normalize resolves legacy source strings once, at load time.
func (c *Config) normalize() {
	for i := range c.Goals {
		g := &c.Goals[i]
		if strings.HasPrefix(g.URL, legacyDemoPrefix) {
			g.URL = ""
			g.Demo = true
		}
	}
	if c.General.RotateSeconds <= 0 {
		c.General.RotateSeconds = 10
	}
}

// Validate reports every configuration problem at once.
func (c Config) Validate() error {
	var errs []error
	seen := make(map[string]struct{}, len(c.Goals))

	for i, g := range c.Goals {
		label := g.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i+1)
			errs = append(errs, fmt.Errorf("goal %s: name is required", label))
		} else if _, dup := seen[g.Name]; dup {
			errs = append(errs, fmt.Errorf("goal %s: duplicate name", label))
		}
		seen[g.Name] = struct{}{}

		switch {
		case g.Demo && g.URL != "":
			errs = append(errs, fmt.Errorf("goal %s: set either demo or url, not both", label))
		case !g.Demo && g.URL == "":
			errs = append(errs, fmt.Errorf("goal %s: url is required unless demo = true", label))
		case !g.Demo:
			if g.DateColumn == "" || g.ValueColumn == "" {
				errs = append(errs, fmt.Errorf("goal %s: date_column and value_column are required", label))
			}
			if (g.FilterColumn == "") != (g.FilterValue == "") {
				errs = append(errs, fmt.Errorf("goal %s: filter_column and filter_value go together", label))
			}
			if len([]rune(g.Delimiter)) > 1 {
				errs = append(errs, fmt.Errorf("goal %s: delimiter must be a single character", label))
			}
		}

		if g.Rounding < 0 || g.Rounding > MaxRounding {
			errs = append(errs, fmt.Errorf("goal %s: rounding must be between 0 and %d", label, MaxRounding))
		}
		if _, err := g.AsOfTime(); err != nil {
			errs = append(errs, fmt.Errorf("goal %s: as_of: %w", label, err))
		}
	}

	return errors.Join(errs...)
}

// Goal looks up a goal by name.
func (c Config) Goal(name string) (Goal, error) {
	for _, g := range c.Goals {
		if g.Name == name {
			return g, nil
		}
	}
	return Goal{}, fmt.Errorf("%w: %q", ErrGoalNotFound, name)
}

// Save writes the config to disk as TOML (or YAML for .yaml/.yml paths).
func Save(cfg Config) error {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // user-chosen path
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if isYAML(path) {
		enc := yaml.NewEncoder(f)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	}
	return toml.NewEncoder(f).Encode(cfg)
}

// GetToken returns the daemon token from env var or config, in that order.
func GetToken(cfg Config) string {
	if tok := os.Getenv("GOALFINCH_TOKEN"); tok != "" {
		return tok
	}
	return cfg.Server.Token
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
