package timeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/theirongolddev/dayline/internal/calendar"
	"github.com/theirongolddev/dayline/internal/model"
)

// fakeSource implements every source interface through optional Func fields.
// A nil Func returns no records.
type fakeSource struct {
	ManualFunc      func(ctx context.Context) ([]model.ManualEvent, error)
	ShiftsFunc      func(ctx context.Context) ([]model.Shift, error)
	TasksFunc       func(ctx context.Context) ([]model.Task, error)
	AppointmentFunc func(ctx context.Context) ([]model.Appointment, error)
	CardsFunc       func(ctx context.Context) ([]model.CardActivity, error)
	LedgerFunc      func(ctx context.Context) ([]model.LedgerEntry, error)
}

func (f *fakeSource) ListManualEvents(ctx context.Context, _ string, _, _ time.Time) ([]model.ManualEvent, error) {
	if f.ManualFunc == nil {
		return nil, nil
	}
	return f.ManualFunc(ctx)
}

func (f *fakeSource) ListShifts(ctx context.Context, _ string, _, _ time.Time) ([]model.Shift, error) {
	if f.ShiftsFunc == nil {
		return nil, nil
	}
	return f.ShiftsFunc(ctx)
}

func (f *fakeSource) ListTasks(ctx context.Context, _ string, _, _ time.Time) ([]model.Task, error) {
	if f.TasksFunc == nil {
		return nil, nil
	}
	return f.TasksFunc(ctx)
}

func (f *fakeSource) ListAppointments(ctx context.Context, _ string, _, _ time.Time) ([]model.Appointment, error) {
	if f.AppointmentFunc == nil {
		return nil, nil
	}
	return f.AppointmentFunc(ctx)
}

func (f *fakeSource) ListCardActivity(ctx context.Context, _ string, _, _ time.Time) ([]model.CardActivity, error) {
	if f.CardsFunc == nil {
		return nil, nil
	}
	return f.CardsFunc(ctx)
}

func (f *fakeSource) ListLedgerEntries(ctx context.Context, _ string, _, _ time.Time) ([]model.LedgerEntry, error) {
	if f.LedgerFunc == nil {
		return nil, nil
	}
	return f.LedgerFunc(ctx)
}

func (f *fakeSource) all() Sources {
	return Sources{Manual: f, Shifts: f, Tasks: f, Appointments: f, Cards: f, Ledger: f}
}

var (
	utc   = time.UTC
	now   = time.Date(2025, 3, 10, 9, 0, 0, 0, utc)
	clock = func() time.Time { return now }
)

func at(day string, hour int) time.Time {
	return calendar.MustParse(day).In(utc).Add(time.Duration(hour) * time.Hour)
}

func newTestAggregator(src Sources, opts ...Option) *Aggregator {
	base := []Option{WithClock(clock), WithLocation(utc), WithTimeout(200 * time.Millisecond)}
	return New(src, append(base, opts...)...)
}

func visa(purchases ...model.CardPurchase) model.CardActivity {
	return model.CardActivity{
		Card:      model.Card{ID: "visa", Name: "Visa", Terms: model.CardTerms{ClosingDay: 1, DueDay: 5}},
		Purchases: purchases,
	}
}

func cardPurchase(id, amount string, n int, day string) model.CardPurchase {
	return model.CardPurchase{
		ID:     id,
		CardID: "visa",
		Purchase: model.Purchase{
			TotalAmount:      decimal.RequireFromString(amount),
			InstallmentCount: n,
			PurchaseDate:     calendar.MustParse(day),
		},
	}
}

func TestAggregate_MergesAndSortsByStart(t *testing.T) {
	src := &fakeSource{
		ManualFunc: func(context.Context) ([]model.ManualEvent, error) {
			return []model.ManualEvent{{ID: "m1", Title: "Dinner", Start: at("2025-03-03", 10), End: at("2025-03-03", 11)}}, nil
		},
		ShiftsFunc: func(context.Context) ([]model.Shift, error) {
			return []model.Shift{{ID: "s1", Title: "Night", Start: at("2025-03-02", 8)}}, nil
		},
		CardsFunc: func(context.Context) ([]model.CardActivity, error) {
			// Home cycle Mar (closing day 1 passed in Feb), due 2025-03-05 < today.
			return []model.CardActivity{visa(cardPurchase("p1", "250", 1, "2025-02-10"))}, nil
		},
	}

	events, err := newTestAggregator(src.all()).Aggregate(context.Background(), "u1", at("2025-03-01", 0), at("2025-03-08", 0))
	require.NoError(t, err)
	require.Len(t, events, 3)

	assert.Equal(t, "shift-s1", events[0].ID)
	assert.Equal(t, at("2025-03-02", 20), events[0].End)
	assert.False(t, events[0].Editable)

	assert.Equal(t, "m1", events[1].ID)
	assert.True(t, events[1].Editable)

	inv := events[2]
	assert.Equal(t, "invoice-visa-2025-03", inv.ID)
	assert.Equal(t, model.EventInvoice, inv.Kind)
	assert.Equal(t, model.StatusOverdue, inv.Status)
	require.NotNil(t, inv.Amount)
	assert.Equal(t, "250.00", inv.Amount.StringFixed(2))
	assert.True(t, inv.AllDay)
}

func TestAggregate_ShiftFailureLeavesOthersIntact(t *testing.T) {
	src := &fakeSource{
		ManualFunc: func(context.Context) ([]model.ManualEvent, error) {
			return []model.ManualEvent{{ID: "m1", Start: at("2025-03-03", 10)}}, nil
		},
		ShiftsFunc: func(context.Context) ([]model.Shift, error) {
			return nil, errors.New("shift service down")
		},
		TasksFunc: func(context.Context) ([]model.Task, error) {
			return []model.Task{{ID: "t1", Title: "Taxes", Deadline: at("2025-03-04", 17)}}, nil
		},
	}

	res, err := newTestAggregator(src.all()).Collect(context.Background(), "u1", at("2025-03-01", 0), at("2025-03-08", 0))
	require.NoError(t, err)
	require.Len(t, res.Events, 2)
	assert.Equal(t, []model.EventKind{model.EventShift}, res.Degraded)

	task := res.Events[1]
	assert.Equal(t, "task-t1", task.ID)
	assert.Equal(t, task.Start, task.End)
	assert.True(t, task.AllDay)
}

func TestAggregate_SlowSourceTimesOut(t *testing.T) {
	src := &fakeSource{
		AppointmentFunc: func(ctx context.Context) ([]model.Appointment, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
		ManualFunc: func(context.Context) ([]model.ManualEvent, error) {
			return []model.ManualEvent{{ID: "m1", Start: at("2025-03-03", 10)}}, nil
		},
	}

	agg := newTestAggregator(src.all(), WithTimeout(20*time.Millisecond))
	res, err := agg.Collect(context.Background(), "u1", at("2025-03-01", 0), at("2025-03-08", 0))
	require.NoError(t, err)
	assert.Len(t, res.Events, 1)
	assert.Equal(t, []model.EventKind{model.EventAppointment}, res.Degraded)
}

func TestAggregate_PanickingSourceIsIsolated(t *testing.T) {
	src := &fakeSource{
		LedgerFunc: func(context.Context) ([]model.LedgerEntry, error) {
			panic("nil map")
		},
		AppointmentFunc: func(context.Context) ([]model.Appointment, error) {
			return []model.Appointment{{ID: "a1", Title: "Dentist", Start: at("2025-03-05", 14)}}, nil
		},
	}

	res, err := newTestAggregator(src.all()).Collect(context.Background(), "u1", at("2025-03-01", 0), at("2025-03-08", 0))
	require.NoError(t, err)
	require.Len(t, res.Events, 1)
	assert.Equal(t, at("2025-03-05", 15), res.Events[0].End)
	assert.Equal(t, []model.EventKind{model.EventLedger}, res.Degraded)
}

func TestAggregate_NilSourcesContributeNothing(t *testing.T) {
	events, err := newTestAggregator(Sources{}).Aggregate(context.Background(), "u1", at("2025-03-01", 0), at("2025-03-08", 0))
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.NotNil(t, events)
}

func TestAggregate_Validation(t *testing.T) {
	agg := newTestAggregator(Sources{})

	_, err := agg.Aggregate(context.Background(), "", at("2025-03-01", 0), at("2025-03-08", 0))
	assert.True(t, IsValidation(err))

	_, err = agg.Aggregate(context.Background(), "u1", at("2025-03-08", 0), at("2025-03-08", 0))
	assert.True(t, IsValidation(err))

	_, err = agg.Aggregate(context.Background(), "u1", at("2025-03-08", 0), at("2025-03-01", 0))
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "window", ve.Field)
}

func TestAggregate_LedgerStatusAndFiltering(t *testing.T) {
	src := &fakeSource{
		LedgerFunc: func(context.Context) ([]model.LedgerEntry, error) {
			amt := decimal.NewFromInt(80)
			return []model.LedgerEntry{
				{ID: "past", Description: "Rent", Amount: amt, Day: calendar.MustParse("2025-03-09"), Pending: true},
				{ID: "today", Description: "Water", Amount: amt, Day: calendar.MustParse("2025-03-10"), Pending: true},
				{ID: "edge", Description: "Gym", Amount: amt, Day: calendar.MustParse("2025-03-15"), Pending: true},
				{ID: "later", Description: "Insurance", Amount: amt, Day: calendar.MustParse("2025-03-16"), Pending: true},
				{ID: "paid", Description: "Phone", Amount: amt, Day: calendar.MustParse("2025-03-11")},
				{ID: "card", Description: "Card line", Amount: amt, Day: calendar.MustParse("2025-03-11"), Pending: true, CardID: "visa"},
				{ID: "outside", Description: "Old", Amount: amt, Day: calendar.MustParse("2025-02-01"), Pending: true},
			}, nil
		},
	}

	events, err := newTestAggregator(src.all()).Aggregate(context.Background(), "u1", at("2025-03-01", 0), at("2025-04-01", 0))
	require.NoError(t, err)

	got := map[string]model.FinancialStatus{}
	for _, ev := range events {
		got[ev.ID] = ev.Status
	}
	assert.Equal(t, map[string]model.FinancialStatus{
		"ledger-past":  model.StatusOverdue,
		"ledger-today": model.StatusDueSoon,
		"ledger-edge":  model.StatusDueSoon,
		"ledger-later": model.StatusPending,
	}, got)
}

func TestAggregate_InvoiceMergesPurchasesOnSameCycle(t *testing.T) {
	src := &fakeSource{
		CardsFunc: func(context.Context) ([]model.CardActivity, error) {
			return []model.CardActivity{visa(
				cardPurchase("p1", "300", 3, "2025-02-15"), // Mar, Apr, May
				cardPurchase("p2", "45.50", 1, "2025-03-01"), // Mar
			)}, nil
		},
	}

	events, err := newTestAggregator(src.all()).Aggregate(context.Background(), "u1", at("2025-03-01", 0), at("2025-06-01", 0))
	require.NoError(t, err)
	require.Len(t, events, 3)

	assert.Equal(t, "invoice-visa-2025-03", events[0].ID)
	assert.Equal(t, "145.50", events[0].Amount.StringFixed(2))
	assert.Equal(t, "invoice-visa-2025-04", events[1].ID)
	assert.Equal(t, "100.00", events[1].Amount.StringFixed(2))
	assert.Equal(t, model.StatusPending, events[2].Status)

	assert.Equal(t, "200.00", TotalDue(events, model.StatusPending).StringFixed(2))
	assert.Equal(t, "145.50", TotalDue(events, model.StatusOverdue).StringFixed(2))
}

func TestAggregate_StableOrderOnEqualStart(t *testing.T) {
	same := at("2025-03-04", 9)
	src := &fakeSource{
		ManualFunc: func(context.Context) ([]model.ManualEvent, error) {
			return []model.ManualEvent{{ID: "m1", Start: same}}, nil
		},
		AppointmentFunc: func(context.Context) ([]model.Appointment, error) {
			return []model.Appointment{{ID: "a1", Start: same}}, nil
		},
		ShiftsFunc: func(context.Context) ([]model.Shift, error) {
			return []model.Shift{{ID: "s1", Start: same}}, nil
		},
	}

	events, err := newTestAggregator(src.all()).Aggregate(context.Background(), "u1", at("2025-03-01", 0), at("2025-03-08", 0))
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, []string{"m1", "shift-s1", "appointment-a1"}, []string{events[0].ID, events[1].ID, events[2].ID})
}

func TestAggregate_DefaultColorsAndOverrides(t *testing.T) {
	src := &fakeSource{
		ManualFunc: func(context.Context) ([]model.ManualEvent, error) {
			return []model.ManualEvent{
				{ID: "m1", Start: at("2025-03-03", 10), Color: "#000000"},
				{ID: "m2", Start: at("2025-03-03", 11)},
			}, nil
		},
	}

	agg := newTestAggregator(src.all(), WithColors(map[model.EventKind]string{model.EventManual: "#FFFFFF"}))
	events, err := agg.Aggregate(context.Background(), "u1", at("2025-03-01", 0), at("2025-03-08", 0))
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "#000000", events[0].Color)
	assert.Equal(t, "#FFFFFF", events[1].Color)
	assert.Equal(t, "personal", events[1].Category)
}
