package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/theirongolddev/dayline/internal/calendar"
	"github.com/theirongolddev/dayline/internal/cli"
	"github.com/theirongolddev/dayline/internal/store"
	"github.com/theirongolddev/dayline/internal/streak"
)

var toggleCmd = &cobra.Command{
	Use:   "toggle <item> [day]",
	Short: "Flip a habit or devotional completion for a day (default today)",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runToggle,
}

func init() {
	rootCmd.AddCommand(toggleCmd)
}

func runToggle(cmd *cobra.Command, args []string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	day := a.today()
	if len(args) == 2 {
		if day, err = calendar.Parse(args[1]); err != nil {
			return fmt.Errorf("day: %w", err)
		}
	}

	ctx := contextOf(cmd)
	c, err := a.store.Toggle(ctx, args[0], day)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("no habit or devotional activity with id %q", args[0])
	}
	if err != nil {
		return err
	}

	item, err := a.store.GetTrackable(ctx, args[0])
	if err != nil {
		return err
	}

	state := "not done"
	if c.Completed {
		state = "done"
	}
	r := streak.Compute(item, a.today())
	fmt.Printf("  %s: %s on %s\n", item.Label, state, cli.FormatDay(day))
	fmt.Printf("  Current streak: %s  (best %s)\n", cli.FormatStreak(r.Current), cli.FormatStreak(r.Best))
	return nil
}
