// Package cmd implements the dayline CLI commands.
package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"github.com/theirongolddev/dayline/internal/config"
	"github.com/theirongolddev/dayline/internal/pipeline"
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
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    User ID:      %s\n", cfg.General.UserID)
	fmt.Printf("    Default days: %d\n", cfg.General.DefaultDays)
	tz := cfg.General.Timezone
	if tz == "" {
		tz = "system local"
	}
	fmt.Printf("    Time zone:    %s\n", tz)
	dbPath := cfg.General.DBPath
	if dbPath == "" {
		dbPath = pipeline.DBPath() + " (default)"
	}
	fmt.Printf("    Database:     %s\n", dbPath)
	fmt.Println()

	fmt.Println("  [Timeline]")
	fmt.Printf("    Source timeout: %s\n", cfg.CollaboratorTimeout())
	fmt.Printf("    Due soon days:  %d\n", cfg.Timeline.DueSoonDays)
	if len(cfg.Timeline.Colors) > 0 {
		kinds := make([]string, 0, len(cfg.Timeline.Colors))
		for k := range cfg.Timeline.Colors {
			kinds = append(kinds, k)
		}
		sort.Strings(kinds)
		for _, k := range kinds {
			fmt.Printf("    Color %-12s %s\n", k+":", cfg.Timeline.Colors[k])
		}
	}
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address:  %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Schedule: %s\n", cfg.Daemon.Schedule)
	fmt.Printf("    Events:   %d\n", cfg.Daemon.EventsBuffer)
	fmt.Println()

	fmt.Println("  [Remote]")
	if cfg.Remote.BaseURL != "" {
		fmt.Printf("    Base URL: %s\n", cfg.Remote.BaseURL)
		if tok := config.GetRemoteToken(cfg); tok != "" {
			fmt.Printf("    Token:    %s\n", maskToken(tok))
		} else {
			fmt.Println("    Token:    not configured")
		}
	} else {
		fmt.Println("    Not configured (shifts and appointments come from the local database)")
	}
	fmt.Println()

	fmt.Println("  [Log]")
	fmt.Printf("    Level:  %s\n", cfg.Log.Level)
	fmt.Printf("    Format: %s\n", cfg.Log.Format)
	fmt.Println()

	fmt.Println("  Run `dayline setup` to reconfigure.")
	return nil
}
