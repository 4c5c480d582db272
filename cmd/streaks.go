package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/theirongolddev/dayline/internal/cli"
	"github.com/theirongolddev/dayline/internal/model"
	"github.com/theirongolddev/dayline/internal/streak"
)

var flagStreakKind string

var streaksCmd = &cobra.Command{
	Use:   "streaks",
	Short: "Current and best streaks for habits and devotional activities",
	RunE:  runStreaks,
}

func init() {
	streaksCmd.Flags().StringVarP(&flagStreakKind, "kind", "k", "", "Only habit or devotional items")
	rootCmd.AddCommand(streaksCmd)
}

func runStreaks(cmd *cobra.Command, _ []string) error {
	kind := model.TrackableKind(flagStreakKind)
	switch kind {
	case "", model.KindHabit, model.KindDevotional:
	default:
		return fmt.Errorf("unknown kind %q (want habit or devotional)", flagStreakKind)
	}

	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	logs, err := a.store.ListTrackables(contextOf(cmd), a.user, kind)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("STREAKS  " + cli.FormatDay(a.today())))
	fmt.Println()

	if len(logs) == 0 {
		fmt.Println("  No habits or devotional activities yet.")
		fmt.Println("  Import some with `dayline import <dir>`.")
		return nil
	}

	today := a.today()
	rows := make([][]string, 0, len(logs))
	for _, t := range logs {
		r := streak.Compute(t, today)
		rows = append(rows, []string{
			t.Label,
			string(t.Kind),
			cli.FormatStreak(r.Current),
			strconv.Itoa(r.Best),
			fmt.Sprintf("%d/%d", r.ActiveDaysInWindow, streak.WindowDays),
			cli.RenderStreakBar(r.Current, streak.TargetDays, 30),
		})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Item", "Kind", "Current", "Best", "Last 30d", "Streak"},
		Rows:    rows,
	}))

	best := streak.ComputeBest(logs)
	if best.Best > 0 {
		fmt.Printf("\n  Best streak: %s (%s)\n", cli.FormatStreak(best.Best), best.OwnerLabel)
	}
	return nil
}
