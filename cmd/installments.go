package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/theirongolddev/dayline/internal/billing"
	"github.com/theirongolddev/dayline/internal/calendar"
	"github.com/theirongolddev/dayline/internal/cli"
	"github.com/theirongolddev/dayline/internal/model"
	"github.com/theirongolddev/dayline/internal/store"
)

var (
	flagInstAmount  string
	flagInstCount   int
	flagInstDate    string
	flagInstCard    string
	flagInstClosing int
	flagInstDue     int
)

var installmentsCmd = &cobra.Command{
	Use:   "installments",
	Short: "Project a purchase into monthly installments on a card's billing cycles",
	Example: `  dayline installments --amount 100 --count 3 --date 2025-01-20 --closing 15 --due 25
  dayline installments --amount 1200 --count 12 --card visa`,
	RunE: runInstallments,
}

func init() {
	installmentsCmd.Flags().StringVar(&flagInstAmount, "amount", "", "Purchase total")
	installmentsCmd.Flags().IntVar(&flagInstCount, "count", 1, "Number of installments")
	installmentsCmd.Flags().StringVar(&flagInstDate, "date", "", "Purchase day (default today)")
	installmentsCmd.Flags().StringVar(&flagInstCard, "card", "", "Take closing and due days from this stored card")
	installmentsCmd.Flags().IntVar(&flagInstClosing, "closing", 0, "Statement closing day of month")
	installmentsCmd.Flags().IntVar(&flagInstDue, "due", 0, "Payment due day of month")
	_ = installmentsCmd.MarkFlagRequired("amount")
	rootCmd.AddCommand(installmentsCmd)
}

func runInstallments(cmd *cobra.Command, _ []string) error {
	amount, err := decimal.NewFromString(flagInstAmount)
	if err != nil {
		return fmt.Errorf("--amount: %w", err)
	}

	a, err := openApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	date := a.today()
	if flagInstDate != "" {
		if date, err = calendar.Parse(flagInstDate); err != nil {
			return fmt.Errorf("--date: %w", err)
		}
	}

	terms := model.CardTerms{ClosingDay: flagInstClosing, DueDay: flagInstDue}
	title := "INSTALLMENTS"
	if flagInstCard != "" {
		card, err := a.store.GetCard(contextOf(cmd), flagInstCard)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no card with id %q", flagInstCard)
		}
		if err != nil {
			return err
		}
		terms = card.Terms
		title += "  " + card.Name
	}

	rows, err := billing.Project(model.Purchase{
		TotalAmount:      amount,
		InstallmentCount: flagInstCount,
		PurchaseDate:     date,
	}, terms)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(title))
	fmt.Println()

	table := cli.Table{Headers: []string{"#", "Cycle", "Due", "Amount"}}
	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.Amount)
		table.Rows = append(table.Rows, []string{
			strconv.Itoa(r.Index),
			r.Cycle.String(),
			cli.FormatDay(r.DueDate),
			cli.FormatMoney(r.Amount),
		})
	}
	table.Rows = append(table.Rows, []string{"---"}, []string{"", "", "Total", cli.FormatMoney(total)})
	fmt.Print(cli.RenderTable(table))

	fmt.Printf("\n  Bought %s, closing day %d, due day %d\n", cli.FormatDay(date), terms.ClosingDay, terms.DueDay)
	return nil
}
