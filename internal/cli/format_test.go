package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/theirongolddev/dayline/internal/calendar"
	"github.com/theirongolddev/dayline/internal/model"
)

func TestFormatMoney(t *testing.T) {
	cases := map[string]string{
		"0":           "0.00",
		"3":           "3.00",
		"1234.5":      "1,234.50",
		"1234567.891": "1,234,567.89",
		"-950":        "-950.00",
		"-1000.1":     "-1,000.10",
	}
	for in, want := range cases {
		assert.Equal(t, want, FormatMoney(decimal.RequireFromString(in)), in)
	}
	assert.Equal(t, "-", FormatAmount(nil))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "999", FormatNumber(999))
	assert.Equal(t, "1,000", FormatNumber(1000))
	assert.Equal(t, "-12,345", FormatNumber(-12345))
}

func TestFormatStatusAndDay(t *testing.T) {
	assert.Equal(t, "OVERDUE", FormatStatus(model.StatusOverdue))
	assert.Equal(t, "due soon", FormatStatus(model.StatusDueSoon))
	assert.Equal(t, "", FormatStatus(model.StatusNone))
	assert.Equal(t, "Sun 2025-03-02", FormatDay(calendar.MustParse("2025-03-02")))
	assert.Equal(t, "-", FormatDay(calendar.Date{}))
}

func TestFormatWhen(t *testing.T) {
	start := time.Date(2025, 3, 2, 19, 0, 0, 0, time.UTC)
	assert.Equal(t, "all day", FormatWhen(model.Event{AllDay: true, Start: start}, time.UTC))
	assert.Equal(t, "19:00", FormatWhen(model.Event{Start: start, End: start}, time.UTC))
	assert.Equal(t, "19:00-20:00", FormatWhen(model.Event{Start: start, End: start.Add(time.Hour)}, time.UTC))
	assert.Equal(t, "19:00-07:00 (+1d)", FormatWhen(model.Event{Start: start, End: start.Add(12 * time.Hour)}, time.UTC))
}

func TestFormatStreak(t *testing.T) {
	assert.Equal(t, "1 day", FormatStreak(1))
	assert.Equal(t, "0 days", FormatStreak(0))
}

func TestRenderTable_PadsByDisplayWidth(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"Item", "Status"},
		Rows: [][]string{
			{"Rent", RenderStatus(model.StatusOverdue)},
			{"Water", "pending"},
		},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 6)
	for _, l := range lines[1:] {
		assert.Equal(t, lipgloss.Width(lines[0]), lipgloss.Width(l))
	}
	assert.Empty(t, RenderTable(Table{}))
}

func TestRenderStreakBar(t *testing.T) {
	assert.Contains(t, RenderStreakBar(8, 7, 20), "✓")
	assert.NotContains(t, RenderStreakBar(3, 7, 20), "✓")
	assert.Equal(t, "", RenderStreakBar(3, 0, 20))
}

func TestRenderProgressBar(t *testing.T) {
	assert.Equal(t, "", RenderProgressBar(1, 0, 10))
	out := RenderProgressBar(3, 6, 10)
	assert.Contains(t, out, "3/6")
	assert.Equal(t, 5, strings.Count(out, "█"))
	assert.Equal(t, 10, strings.Count(RenderProgressBar(9, 6, 10), "█"))
}

func TestRenderSparkline(t *testing.T) {
	assert.Equal(t, "", RenderSparkline(nil))
	assert.Equal(t, "▁█", RenderSparkline([]float64{0, 4}))
	assert.Equal(t, "▁▁", RenderSparkline([]float64{0, 0}))
}
