// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/theirongolddev/dayline/internal/calendar"
	"github.com/theirongolddev/dayline/internal/model"
)

// FormatMoney formats an amount with two decimals and thousands separators.
// e.g., 1234.5 -> "1,234.50", -3 -> "-3.00"
func FormatMoney(d decimal.Decimal) string {
	neg := d.IsNegative()
	s := d.Abs().StringFixed(2)
	whole, frac, _ := strings.Cut(s, ".")

	n, err := strconv.ParseInt(whole, 10, 64)
	if err == nil {
		whole = FormatNumber(n)
	}
	out := whole + "." + frac
	if neg {
		return "-" + out
	}
	return out
}

// FormatAmount formats an optional amount, rendering nil as a dash.
func FormatAmount(d *decimal.Decimal) string {
	if d == nil {
		return "-"
	}
	return FormatMoney(*d)
}

// FormatNumber adds comma separators to an integer.
// e.g., 1234567 -> "1,234,567"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}

	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatStatus returns a short label for a financial status.
func FormatStatus(s model.FinancialStatus) string {
	switch s {
	case model.StatusOverdue:
		return "OVERDUE"
	case model.StatusDueSoon:
		return "due soon"
	case model.StatusPending:
		return "pending"
	default:
		return ""
	}
}

// FormatDay formats a day with its weekday, e.g. "Sun 2025-03-02".
func FormatDay(d calendar.Date) string {
	if d.IsZero() {
		return "-"
	}
	return FormatDayOfWeek(int(d.In(time.UTC).Weekday())) + " " + d.String()
}

// FormatWhen formats an event's time span in loc.
// All-day events show "all day"; others show "15:04-16:04".
func FormatWhen(ev model.Event, loc *time.Location) string {
	if ev.AllDay {
		return "all day"
	}
	start := ev.Start.In(loc)
	if ev.End.IsZero() || ev.End.Equal(ev.Start) {
		return start.Format("15:04")
	}
	end := ev.End.In(loc)
	if calendar.FromTime(end) != calendar.FromTime(start) {
		return fmt.Sprintf("%s-%s (+%dd)", start.Format("15:04"), end.Format("15:04"), calendar.FromTime(end).DaysSince(calendar.FromTime(start)))
	}
	return start.Format("15:04") + "-" + end.Format("15:04")
}

// FormatStreak formats a streak length, e.g. 1 -> "1 day", 5 -> "5 days".
func FormatStreak(days int) string {
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}

// FormatDayOfWeek returns a 3-letter day abbreviation from a weekday number.
func FormatDayOfWeek(weekday int) string {
	days := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
	if weekday >= 0 && weekday < 7 {
		return days[weekday]
	}
	return "???"
}
