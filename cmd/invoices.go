package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/theirongolddev/dayline/internal/calendar"
	"github.com/theirongolddev/dayline/internal/cli"
	"github.com/theirongolddev/dayline/internal/model"
	"github.com/theirongolddev/dayline/internal/pipeline"
	"github.com/theirongolddev/dayline/internal/timeline"
)

var (
	flagInvoiceMonths int
	flagInvoicePast   int
)

var invoicesCmd = &cobra.Command{
	Use:   "invoices",
	Short: "Card statements and pending ledger entries with their due status",
	RunE:  runInvoices,
}

func init() {
	invoicesCmd.Flags().IntVar(&flagInvoiceMonths, "months", 3, "Months ahead to include")
	invoicesCmd.Flags().IntVar(&flagInvoicePast, "past", 1, "Months back to include, for overdue items")
	rootCmd.AddCommand(invoicesCmd)
}

func runInvoices(cmd *cobra.Command, _ []string) error {
	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	today := a.today()
	from := calendar.AddMonthsClamped(today, -flagInvoicePast)
	to := calendar.AddMonthsClamped(today, flagInvoiceMonths)

	res, err := a.agg.Collect(contextOf(cmd), a.user, from.In(a.loc), to.In(a.loc))
	if err != nil {
		return err
	}
	events := pipeline.FilterByKind(res.Events, model.EventInvoice, model.EventLedger)
	events = pipeline.FilterByStatus(events, model.StatusOverdue, model.StatusDueSoon, model.StatusPending)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("BILLS  %s to %s", from, to)))
	fmt.Println()

	if len(events) == 0 {
		fmt.Println("  Nothing due.")
		warnDegraded(res.Degraded)
		return nil
	}

	rows := make([][]string, 0, len(events))
	for _, ev := range events {
		rows = append(rows, []string{
			cli.FormatDay(calendar.FromTime(ev.Start.In(a.loc))),
			ev.Title,
			cli.FormatAmount(ev.Amount),
			cli.RenderStatus(ev.Status),
		})
	}
	rows = append(rows, []string{"---"})
	for _, st := range []model.FinancialStatus{model.StatusOverdue, model.StatusDueSoon, model.StatusPending} {
		rows = append(rows, []string{"", "Total " + cli.FormatStatus(st), cli.FormatMoney(timeline.TotalDue(events, st)), ""})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Due", "Item", "Amount", "Status"},
		Rows:    rows,
	}))
	warnDegraded(res.Degraded)
	return nil
}
