package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/theirongolddev/dayline/internal/config"
	"github.com/theirongolddev/dayline/internal/source"
)

var setupCmd = &cobra.Command{
	Use:   "setup [export-dir]",
	Short: "First-time setup wizard",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, args []string) error {
	reader := bufio.NewReader(os.Stdin)

	// Load existing config or defaults
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}

	fmt.Println()
	fmt.Println("  Welcome to dayline!")
	fmt.Println()
	if len(args) == 1 {
		files, _ := source.ScanDir(args[0])
		if len(files) > 0 {
			fmt.Printf("  Found %s exports in %s (%d users)\n\n",
				formatNumber(int64(len(files))), args[0], source.CountUsers(files))
		}
	}

	// 1. User
	fmt.Println("  1. User ID")
	fmt.Println("     Records are scoped to this user.")
	fmt.Printf("     Current: %s\n", cfg.General.UserID)
	if v := prompt(reader); v != "" {
		cfg.General.UserID = v
	}
	fmt.Println()

	// 2. Time zone
	fmt.Println("  2. Time zone (IANA name, blank for system local)")
	if cfg.General.Timezone != "" {
		fmt.Printf("     Current: %s\n", cfg.General.Timezone)
	}
	for {
		v := prompt(reader)
		if v == "" {
			break
		}
		if _, err := time.LoadLocation(v); err != nil {
			fmt.Printf("     Unknown time zone %q, try again\n", v)
			continue
		}
		cfg.General.Timezone = v
		break
	}
	fmt.Println()

	// 3. Default window
	fmt.Println("  3. Default window")
	fmt.Println("     (1) 7 days")
	fmt.Println("     (2) 14 days [default]")
	fmt.Println("     (3) 30 days")
	switch prompt(reader) {
	case "1":
		cfg.General.DefaultDays = 7
	case "3":
		cfg.General.DefaultDays = 30
	default:
		cfg.General.DefaultDays = 14
	}
	fmt.Println()

	// 4. Due soon
	fmt.Printf("  4. Days before a due date to flag bills as due soon [%d]\n", cfg.Timeline.DueSoonDays)
	if v := prompt(reader); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			fmt.Println("     Keeping the current value")
		} else {
			cfg.Timeline.DueSoonDays = n
		}
	}
	fmt.Println()

	// 5. Remote schedule service
	fmt.Println("  5. Remote shift/appointment service URL (blank to use local data)")
	if cfg.Remote.BaseURL != "" {
		fmt.Printf("     Current: %s\n", cfg.Remote.BaseURL)
	}
	if v := prompt(reader); v != "" {
		cfg.Remote.BaseURL = v
		fmt.Println("     API token:")
		if existing := config.GetRemoteToken(cfg); existing != "" {
			fmt.Printf("     Current: %s\n", maskToken(existing))
		}
		if tok := prompt(reader); tok != "" {
			cfg.Remote.Token = tok
		}
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.ConfigPath())
	fmt.Println("  Run `dayline setup` anytime to reconfigure.")
	fmt.Println()

	return nil
}

func prompt(reader *bufio.Reader) string {
	fmt.Print("     > ")
	v, _ := reader.ReadString('\n')
	return strings.TrimSpace(v)
}

func maskToken(key string) string {
	if len(key) > 16 {
		return key[:8] + "..." + key[len(key)-4:]
	}
	if len(key) > 4 {
		return key[:4] + "..."
	}
	return "****"
}
