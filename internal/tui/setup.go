package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/theirongolddev/goalfinch/internal/config"
	"github.com/theirongolddev/goalfinch/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

const (
	sourceDemo   = "demo"
	sourceRemote = "remote"
)

// GoalValues holds the answers of the setup form. Numbers stay strings
// until Goal() so the inputs can validate them as typed.
type GoalValues struct {
	Name        string
	Title       string
	Source      string
	URL         string
	DateColumn  string
	ValueColumn string
	Target      string
	Units       string
	Rounding    string
	Theme       string
}

// NewGoalValues seeds the form with sensible defaults.
func NewGoalValues(cfg config.Config) *GoalValues {
	return &GoalValues{
		Source:      sourceDemo,
		DateColumn:  "date",
		ValueColumn: "value",
		Rounding:    "1",
		Theme:       cfg.General.Theme,
	}
}

// NewGoalForm builds the wizard that adds one goal. existing names are
// rejected so the saved config stays valid.
func NewGoalForm(v *GoalValues, existing []string) *huh.Form {
	taken := make(map[string]bool, len(existing))
	for _, n := range existing {
		taken[n] = true
	}

	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, name := range theme.Names() {
		themeOpts = append(themeOpts, huh.NewOption(name, name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Goal name").
				Description("Short identifier, used by `goalfinch daily <name>`.").
				Value(&v.Name).
				Validate(func(s string) error {
					s = strings.TrimSpace(s)
					if s == "" {
						return errors.New("name is required")
					}
					if taken[s] {
						return fmt.Errorf("a goal named %q already exists", s)
					}
					return nil
				}),
			huh.NewInput().
				Title("Title").
				Description("Shown on the dashboard. Leave blank to use the name.").
				Value(&v.Title),
			huh.NewSelect[string]().
				Title("Data source").
				Options(
					huh.NewOption("Demo data", sourceDemo),
					huh.NewOption("Remote CSV table", sourceRemote),
				).
				Value(&v.Source),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Table URL").
				Value(&v.URL).
				Validate(func(s string) error {
					if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
						return errors.New("must be an http(s) URL")
					}
					return nil
				}),
			huh.NewInput().Title("Date column").Value(&v.DateColumn).Validate(required("date column")),
			huh.NewInput().Title("Value column").Value(&v.ValueColumn).Validate(required("value column")),
		).WithHideFunc(func() bool { return v.Source != sourceRemote }),
		huh.NewGroup(
			huh.NewInput().
				Title("Monthly goal").
				Value(&v.Target).
				Validate(func(s string) error {
					f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
					if err != nil || f < 0 {
						return errors.New("enter a non-negative number")
					}
					return nil
				}),
			huh.NewInput().Title("Units").Placeholder("reps, km, pages").Value(&v.Units),
			huh.NewInput().
				Title("Decimal places").
				Value(&v.Rounding).
				Validate(func(s string) error {
					n, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil || n < 0 || n > 6 {
						return errors.New("enter 0-6")
					}
					return nil
				}),
			huh.NewSelect[string]().
				Title("Dashboard theme").
				Options(themeOpts...).
				Value(&v.Theme),
		),
	)
}

func required(what string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", what)
		}
		return nil
	}
}

// Goal converts the answers into a config goal.
func (v *GoalValues) Goal() (config.Goal, error) {
	target, err := strconv.ParseFloat(strings.TrimSpace(v.Target), 64)
	if err != nil {
		return config.Goal{}, fmt.Errorf("monthly goal: %w", err)
	}
	rounding, err := strconv.Atoi(strings.TrimSpace(v.Rounding))
	if err != nil {
		return config.Goal{}, fmt.Errorf("decimal places: %w", err)
	}

	g := config.Goal{
		Name:     strings.TrimSpace(v.Name),
		Title:    strings.TrimSpace(v.Title),
		Target:   target,
		Rounding: rounding,
		Units:    strings.TrimSpace(v.Units),
	}
	if v.Source == sourceRemote {
		g.URL = strings.TrimSpace(v.URL)
		g.DateColumn = strings.TrimSpace(v.DateColumn)
		g.ValueColumn = strings.TrimSpace(v.ValueColumn)
	} else {
		g.Demo = true
	}
	return g, nil
}
