// Package cmd implements the goalfinch CLI commands.
package cmd

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/goalfinch/internal/cli"
	"github.com/theirongolddev/goalfinch/internal/config"
	"github.com/theirongolddev/goalfinch/internal/pipeline"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Theme:           %s\n", cfg.General.Theme)
	fmt.Printf("    Rotate seconds:  %d\n", cfg.General.RotateSeconds)
	fmt.Println()

	eventsDB := cfg.Server.EventsDB
	if eventsDB == "" {
		eventsDB = pipeline.EventsPath() + " (default)"
	}
	fmt.Println("  [Server]")
	fmt.Printf("    Address:         %s\n", cfg.Server.Addr)
	fmt.Printf("    Events DB:       %s\n", eventsDB)
	if tok := config.GetToken(cfg); tok != "" {
		fmt.Printf("    Token:           %s\n", maskToken(tok))
	} else {
		fmt.Println("    Token:           not configured")
	}
	fmt.Println()

	if len(cfg.Goals) == 0 {
		fmt.Println("  No goals configured. Run `goalfinch setup` to add one.")
		return nil
	}

	rows := make([][]string, len(cfg.Goals))
	for i, g := range cfg.Goals {
		src := "demo"
		if !g.Demo {
			src = g.URL
		}
		asOf := g.AsOf
		if asOf == "" {
			asOf = "-"
		}
		rows[i] = []string{
			g.Name,
			g.DisplayTitle(),
			cli.FormatAmount(g.Target, g.Rounding, g.Units),
			asOf,
			src,
		}
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Goals",
		Headers: []string{"Name", "Title", "Monthly goal", "As of", "Source"},
		Rows:    rows,
	}))
	return nil
}

func maskToken(tok string) string {
	if len(tok) > 12 {
		return tok[:4] + strings.Repeat("*", 4) + tok[len(tok)-4:]
	}
	return "****"
}
