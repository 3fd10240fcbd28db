package cmd

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/goalfinch/internal/config"
	"github.com/theirongolddev/goalfinch/internal/tui"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Add a goal with an interactive wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	existing := make([]string, len(cfg.Goals))
	for i, g := range cfg.Goals {
		existing[i] = g.Name
	}

	values := tui.NewGoalValues(cfg)
	if err := tui.NewGoalForm(values, existing).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup canceled, nothing saved.")
			return nil
		}
		return err
	}

	goal, err := values.Goal()
	if err != nil {
		return err
	}
	cfg.Goals = append(cfg.Goals, goal)
	cfg.General.Theme = values.Theme

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	logger.Debug("goal added", zap.String("goal", goal.Name), zap.Bool("demo", goal.Demo))

	fmt.Println()
	fmt.Printf("  Added goal %q to %s\n", goal.Name, config.Path())
	fmt.Printf("  Run `goalfinch daily %s` to see it.\n", goal.Name)
	fmt.Println()
	return nil
}
