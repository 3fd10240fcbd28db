package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/theirongolddev/goalfinch/internal/tui"
	"github.com/theirongolddev/goalfinch/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"tui"},
	Short:   "Rotating full-screen progress dashboard",
	RunE:    runDashboard,
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ref, err := refDate()
	if err != nil {
		return err
	}

	theme.SetActive(cfg.General.Theme)

	// Force TrueColor so card backgrounds render even when the terminal
	// profile can't be detected.
	lipgloss.SetColorProfile(termenv.TrueColor)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app := tui.NewApp(ctx, tui.Options{
		Goals:  cfg.Goals,
		Rotate: time.Duration(cfg.General.RotateSeconds) * time.Second,
		Ref:    ref,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("dashboard error: %w", err)
	}
	return nil
}
