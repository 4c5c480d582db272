package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/theirongolddev/dayline/internal/calendar"
	"github.com/theirongolddev/dayline/internal/cli"
	"github.com/theirongolddev/dayline/internal/model"
	"github.com/theirongolddev/dayline/internal/pipeline"
)

var (
	flagTimelineFrom   string
	flagTimelineKinds  []string
	flagTimelineStatus []string
)

var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Merged timeline of events, shifts, tasks, appointments, invoices and ledger entries",
	RunE:  runTimeline,
}

func init() {
	timelineCmd.Flags().StringVar(&flagTimelineFrom, "from", "", "First day of the window (default today)")
	timelineCmd.Flags().StringSliceVarP(&flagTimelineKinds, "kind", "k", nil, "Only these kinds (manual, shift, task, appointment, invoice, ledger)")
	timelineCmd.Flags().StringSliceVar(&flagTimelineStatus, "status", nil, "Only these financial statuses (overdue, dueSoon, pending)")
	rootCmd.AddCommand(timelineCmd)
}

func runTimeline(cmd *cobra.Command, _ []string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	start, end := a.window()
	if flagTimelineFrom != "" {
		d, err := calendar.Parse(flagTimelineFrom)
		if err != nil {
			return fmt.Errorf("--from: %w", err)
		}
		start, end = d.In(a.loc), d.AddDays(a.days).In(a.loc)
	}

	res, err := a.agg.Collect(contextOf(cmd), a.user, start, end)
	if err != nil {
		return err
	}

	events := res.Events
	if len(flagTimelineKinds) > 0 {
		kinds := make([]model.EventKind, len(flagTimelineKinds))
		for i, k := range flagTimelineKinds {
			kinds[i] = model.EventKind(k)
		}
		events = pipeline.FilterByKind(events, kinds...)
	}
	if len(flagTimelineStatus) > 0 {
		statuses := make([]model.FinancialStatus, len(flagTimelineStatus))
		for i, s := range flagTimelineStatus {
			statuses[i] = model.FinancialStatus(s)
		}
		events = pipeline.FilterByStatus(events, statuses...)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("TIMELINE  %s  +%dd", calendar.FromTime(start).String(), a.days)))
	fmt.Println()

	if len(events) == 0 {
		fmt.Println("  Nothing scheduled in this window.")
		warnDegraded(res.Degraded)
		return nil
	}

	fmt.Print(cli.RenderTable(eventTable(events, a)))
	warnDegraded(res.Degraded)
	return nil
}

// eventTable lays events out one per row, with a separator between days.
func eventTable(events []model.Event, a *app) cli.Table {
	rows := make([][]string, 0, len(events))
	var lastDay calendar.Date
	for i, ev := range events {
		day := calendar.FromTime(ev.Start.In(a.loc))
		dayCell := ""
		if i == 0 || day != lastDay {
			if i > 0 {
				rows = append(rows, []string{"---"})
			}
			dayCell = cli.FormatDay(day)
			lastDay = day
		}
		rows = append(rows, []string{
			dayCell,
			cli.FormatWhen(ev, a.loc),
			string(ev.Kind),
			ev.Title,
			cli.FormatAmount(ev.Amount),
			cli.RenderStatus(ev.Status),
		})
	}
	return cli.Table{
		Headers: []string{"Day", "When", "Kind", "Title", "Amount", "Status"},
		Rows:    rows,
	}
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
