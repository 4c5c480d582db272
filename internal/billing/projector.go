// Package billing splits card purchases into monthly installments and assigns
// each to its statement cycle and payment due date.
package billing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/theirongolddev/dayline/internal/calendar"
	"github.com/theirongolddev/dayline/internal/model"
)

// ValidationError reports an input rejected before any computation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("billing: invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// CycleTotal is the amount a card bills in one statement cycle.
type CycleTotal struct {
	CardID  string          `json:"card_id"`
	Cycle   calendar.Cycle  `json:"cycle"`
	DueDate calendar.Date   `json:"due_date"`
	Total   decimal.Decimal `json:"total"`
	Count   int             `json:"count"`
	Skipped int             `json:"skipped,omitempty"`
}

// HomeCycle returns the statement a purchase posts to: a purchase made after
// the closing day belongs to the next month's statement.
func HomeCycle(purchaseDate calendar.Date, terms model.CardTerms) calendar.Cycle {
	c := purchaseDate.Cycle()
	if purchaseDate.Day > terms.ClosingDay {
		c = c.Add(1)
	}
	return c
}

// DueDate returns the payment due date for a cycle, clamping the due day to
// the month length.
func DueDate(cycle calendar.Cycle, terms model.CardTerms) calendar.Date {
	return cycle.Day(terms.DueDay)
}

// ValidateTerms checks that closing and due days are real days of a month.
func ValidateTerms(terms model.CardTerms) error {
	if terms.ClosingDay < 1 || terms.ClosingDay > 31 {
		return &ValidationError{Field: "closing_day", Reason: fmt.Sprintf("%d is outside 1..31", terms.ClosingDay)}
	}
	if terms.DueDay < 1 || terms.DueDay > 31 {
		return &ValidationError{Field: "due_day", Reason: fmt.Sprintf("%d is outside 1..31", terms.DueDay)}
	}
	return nil
}

// ValidatePurchase checks amount, installment count and date.
func ValidatePurchase(p model.Purchase) error {
	if p.InstallmentCount < 1 {
		return &ValidationError{Field: "installment_count", Reason: fmt.Sprintf("%d is less than 1", p.InstallmentCount)}
	}
	if !p.TotalAmount.IsPositive() {
		return &ValidationError{Field: "total_amount", Reason: fmt.Sprintf("%s is not positive", p.TotalAmount)}
	}
	if p.PurchaseDate.IsZero() {
		return &ValidationError{Field: "purchase_date", Reason: "missing"}
	}
	return nil
}

// Project splits a purchase into installment rows. Rows 1..N-1 carry the
// amount rounded to cents and row N carries the remainder, so the rows always
// sum to the purchase total exactly.
func Project(p model.Purchase, terms model.CardTerms) ([]model.InstallmentRow, error) {
	if err := ValidatePurchase(p); err != nil {
		return nil, err
	}
	if err := ValidateTerms(terms); err != nil {
		return nil, err
	}

	n := p.InstallmentCount
	home := HomeCycle(p.PurchaseDate, terms)
	share := p.TotalAmount.DivRound(decimal.NewFromInt(int64(n)), 2)

	rows := make([]model.InstallmentRow, 0, n)
	allocated := decimal.Zero
	for i := 1; i <= n; i++ {
		amount := share
		if i == n {
			amount = p.TotalAmount.Sub(allocated)
		}
		allocated = allocated.Add(amount)

		cycle := home.Add(i - 1)
		rows = append(rows, model.InstallmentRow{
			Index:   i,
			Amount:  amount,
			Cycle:   cycle,
			DueDate: DueDate(cycle, terms),
		})
	}
	return rows, nil
}

// AggregateCycleTotals sums every installment row that the card's purchases
// bill in the given cycle. Purchases on other cards are ignored; purchases
// that fail validation are skipped and counted.
func AggregateCycleTotals(purchases []model.CardPurchase, cardID string, terms model.CardTerms, cycle calendar.Cycle) CycleTotal {
	total := CycleTotal{
		CardID:  cardID,
		Cycle:   cycle,
		DueDate: DueDate(cycle, terms),
		Total:   decimal.Zero,
	}

	for _, cp := range purchases {
		if cp.CardID != cardID {
			continue
		}
		// Cheap range check before projecting every row.
		offset := HomeCycle(cp.PurchaseDate, terms).MonthsUntil(cycle)
		if cp.InstallmentCount >= 1 && (offset < 0 || offset >= cp.InstallmentCount) {
			continue
		}

		rows, err := Project(cp.Purchase, terms)
		if err != nil {
			total.Skipped++
			continue
		}
		for _, r := range rows {
			if r.Cycle == cycle {
				total.Total = total.Total.Add(r.Amount)
				total.Count++
			}
		}
	}
	return total
}

// CyclesDueBetween lists the cycles whose due date falls in [from, to).
func CyclesDueBetween(terms model.CardTerms, from, to calendar.Date) []calendar.Cycle {
	if !from.Before(to) {
		return nil
	}
	var cycles []calendar.Cycle
	for c := from.Cycle().Add(-1); !c.Day(1).After(to); c = c.Add(1) {
		due := DueDate(c, terms)
		if !due.Before(from) && due.Before(to) {
			cycles = append(cycles, c)
		}
	}
	return cycles
}
