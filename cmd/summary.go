package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/theirongolddev/dayline/internal/cli"
	"github.com/theirongolddev/dayline/internal/model"
	"github.com/theirongolddev/dayline/internal/pipeline"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Day-by-day overview with money due and streak totals",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := contextOf(cmd)
	start, end := a.window()
	res, err := a.agg.Collect(ctx, a.user, start, end)
	if err != nil {
		return err
	}
	logs, err := a.store.ListTrackables(ctx, a.user, "")
	if err != nil {
		return err
	}

	sum := pipeline.Summarize(res.Events, logs, a.today(), a.loc)
	days := pipeline.AggregateDays(res.Events, start, end, a.loc)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("DAYLINE  Next %dd", a.days)))
	fmt.Println()

	if sum.Events == 0 && sum.Trackables == 0 {
		fmt.Println("  No records found.")
		fmt.Println("  Import exports with `dayline import <dir>`, then come back!")
		return nil
	}

	rows := [][]string{
		{"Events", cli.FormatNumber(int64(sum.Events))},
		{"Busy days", fmt.Sprintf("%d/%d", sum.ActiveDays, a.days)},
	}
	for _, k := range model.EventKinds {
		if n := sum.ByKind[k]; n > 0 {
			rows = append(rows, []string{"  " + string(k), cli.FormatNumber(int64(n))})
		}
	}
	rows = append(rows,
		[]string{"---"},
		[]string{"Overdue", fmt.Sprintf("%d  (%s)", sum.Overdue, cli.FormatMoney(sum.OverdueAmount))},
		[]string{"Due soon", cli.FormatNumber(int64(sum.DueSoon))},
		[]string{"Pending", cli.FormatNumber(int64(sum.Pending))},
		[]string{"Amount due", cli.FormatMoney(sum.AmountDue)},
		[]string{"---"},
		[]string{"Habits & devotionals", cli.FormatNumber(int64(sum.Trackables))},
		[]string{"Active streaks", cli.FormatNumber(int64(sum.ActiveStreaks))},
		[]string{"Targets met", cli.FormatNumber(int64(sum.TargetsMet))},
	)
	if sum.BestStreak > 0 {
		rows = append(rows, []string{"Best streak", fmt.Sprintf("%s (%s)", cli.FormatStreak(sum.BestStreak), sum.BestOwner)})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))

	// Days come newest first; show them in calendar order.
	dayRows := make([][]string, 0, len(days))
	counts := make([]float64, 0, len(days))
	for i := len(days) - 1; i >= 0; i-- {
		d := days[i]
		counts = append(counts, float64(d.Events))
		due := ""
		if !d.AmountDue.IsZero() {
			due = cli.FormatMoney(d.AmountDue)
		}
		dayRows = append(dayRows, []string{
			cli.FormatDay(d.Date),
			cli.FormatNumber(int64(d.Events)),
			due,
			dayFlag(d),
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Load  " + cli.RenderSparkline(counts),
		Headers: []string{"Day", "Events", "Due", "Flags"},
		Rows:    dayRows,
	}))

	warnDegraded(res.Degraded)
	return nil
}

func dayFlag(d model.DaySummary) string {
	switch {
	case d.Overdue > 0:
		return cli.RenderStatus(model.StatusOverdue)
	case d.DueSoon > 0:
		return cli.RenderStatus(model.StatusDueSoon)
	case d.Pending > 0:
		return cli.RenderStatus(model.StatusPending)
	default:
		return ""
	}
}
