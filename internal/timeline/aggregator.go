// Package timeline merges calendar entries, shifts, tasks, appointments, card
// statements and pending ledger entries into one time-ordered view.
package timeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/theirongolddev/dayline/internal/billing"
	"github.com/theirongolddev/dayline/internal/calendar"
	"github.com/theirongolddev/dayline/internal/model"
)

const (
	DefaultTimeout           = 3 * time.Second
	DefaultDueSoonDays       = 5
	DefaultShiftLength       = 12 * time.Hour
	DefaultAppointmentLength = time.Hour
)

// DefaultColors are the per-kind display colors used when an event has none.
var DefaultColors = map[model.EventKind]string{
	model.EventManual:      "#3B82F6",
	model.EventShift:       "#8B5CF6",
	model.EventTask:        "#F59E0B",
	model.EventAppointment: "#10B981",
	model.EventInvoice:     "#EF4444",
	model.EventLedger:      "#EC4899",
}

// DefaultCategories are the per-kind categories used when an event has none.
var DefaultCategories = map[model.EventKind]string{
	model.EventManual:      "personal",
	model.EventShift:       "work",
	model.EventTask:        "task",
	model.EventAppointment: "appointment",
	model.EventInvoice:     "finance",
	model.EventLedger:      "finance",
}

// ValidationError reports a rejected aggregation request.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("timeline: invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Result is a merged timeline plus the kinds whose source failed.
type Result struct {
	Events   []model.Event     `json:"events"`
	Degraded []model.EventKind `json:"degraded,omitempty"`
}

// Aggregator builds timelines. It holds no per-request state and is safe for
// concurrent use.
type Aggregator struct {
	sources     Sources
	now         func() time.Time
	log         logrus.FieldLogger
	timeout     time.Duration
	dueSoonDays int
	shiftLen    time.Duration
	apptLen     time.Duration
	colors      map[model.EventKind]string
	categories  map[model.EventKind]string
	loc         *time.Location
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

// WithLogger sets the logger for degraded-source warnings.
func WithLogger(log logrus.FieldLogger) Option {
	return func(a *Aggregator) {
		if log != nil {
			a.log = log
		}
	}
}

// WithTimeout sets the per-collaborator deadline.
func WithTimeout(d time.Duration) Option {
	return func(a *Aggregator) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithDueSoon sets how many days before its due date a financial event turns dueSoon.
func WithDueSoon(days int) Option {
	return func(a *Aggregator) {
		if days >= 0 {
			a.dueSoonDays = days
		}
	}
}

// WithShiftLength sets the synthetic shift duration.
func WithShiftLength(d time.Duration) Option {
	return func(a *Aggregator) {
		if d > 0 {
			a.shiftLen = d
		}
	}
}

// WithAppointmentLength sets the synthetic appointment duration.
func WithAppointmentLength(d time.Duration) Option {
	return func(a *Aggregator) {
		if d > 0 {
			a.apptLen = d
		}
	}
}

// WithColors overrides display colors for the given kinds.
func WithColors(colors map[model.EventKind]string) Option {
	return func(a *Aggregator) {
		for k, v := range colors {
			a.colors[k] = v
		}
	}
}

// WithCategories overrides categories for the given kinds.
func WithCategories(categories map[model.EventKind]string) Option {
	return func(a *Aggregator) {
		for k, v := range categories {
			a.categories[k] = v
		}
	}
}

// WithLocation sets the zone used for due dates and day comparisons.
func WithLocation(loc *time.Location) Option {
	return func(a *Aggregator) {
		if loc != nil {
			a.loc = loc
		}
	}
}

// New creates an Aggregator over the given sources.
func New(sources Sources, opts ...Option) *Aggregator {
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	a := &Aggregator{
		sources:     sources,
		now:         time.Now,
		log:         discard,
		timeout:     DefaultTimeout,
		dueSoonDays: DefaultDueSoonDays,
		shiftLen:    DefaultShiftLength,
		apptLen:     DefaultAppointmentLength,
		colors:      make(map[model.EventKind]string, len(DefaultColors)),
		categories:  make(map[model.EventKind]string, len(DefaultCategories)),
		loc:         time.Local,
	}
	for k, v := range DefaultColors {
		a.colors[k] = v
	}
	for k, v := range DefaultCategories {
		a.categories[k] = v
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Location returns the zone the aggregator evaluates days in.
func (a *Aggregator) Location() *time.Location { return a.loc }

// Aggregate returns the merged, time-ordered events for userID in [start, end).
// Only invalid arguments produce an error; a failing source is left out.
func (a *Aggregator) Aggregate(ctx context.Context, userID string, start, end time.Time) ([]model.Event, error) {
	res, err := a.Collect(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	return res.Events, nil
}

// Collect is Aggregate that also reports which kinds were degraded.
func (a *Aggregator) Collect(ctx context.Context, userID string, start, end time.Time) (*Result, error) {
	if userID == "" {
		return nil, &ValidationError{Field: "user_id", Reason: "empty"}
	}
	if !end.After(start) {
		return nil, &ValidationError{Field: "window", Reason: fmt.Sprintf("end %s is not after start %s", end.Format(time.RFC3339), start.Format(time.RFC3339))}
	}

	log := a.log.WithField("user", userID)
	today := calendar.FromTime(a.now().In(a.loc))

	// One slot per kind, in merge order.
	slots := make([][]model.Event, len(model.EventKinds))
	failed := make([]bool, len(model.EventKinds))
	var wg sync.WaitGroup

	run := func(idx int, derive func(context.Context) ([]model.Event, error)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cctx, cancel := context.WithTimeout(ctx, a.timeout)
			defer cancel()
			c := fetch(cctx, log, model.EventKinds[idx], derive)
			slots[idx] = c.Records
			failed[idx] = c.Err != nil
		}()
	}

	if s := a.sources.Manual; s != nil {
		run(0, func(ctx context.Context) ([]model.Event, error) {
			recs, err := s.ListManualEvents(ctx, userID, start, end)
			if err != nil {
				return nil, err
			}
			return a.manualEvents(recs), nil
		})
	}
	if s := a.sources.Shifts; s != nil {
		run(1, func(ctx context.Context) ([]model.Event, error) {
			recs, err := s.ListShifts(ctx, userID, start, end)
			if err != nil {
				return nil, err
			}
			return a.shiftEvents(recs), nil
		})
	}
	if s := a.sources.Tasks; s != nil {
		run(2, func(ctx context.Context) ([]model.Event, error) {
			recs, err := s.ListTasks(ctx, userID, start, end)
			if err != nil {
				return nil, err
			}
			return a.taskEvents(recs), nil
		})
	}
	if s := a.sources.Appointments; s != nil {
		run(3, func(ctx context.Context) ([]model.Event, error) {
			recs, err := s.ListAppointments(ctx, userID, start, end)
			if err != nil {
				return nil, err
			}
			return a.appointmentEvents(recs), nil
		})
	}
	if s := a.sources.Cards; s != nil {
		run(4, func(ctx context.Context) ([]model.Event, error) {
			recs, err := s.ListCardActivity(ctx, userID, start, end)
			if err != nil {
				return nil, err
			}
			return a.invoiceEvents(recs, start, end, today), nil
		})
	}
	if s := a.sources.Ledger; s != nil {
		run(5, func(ctx context.Context) ([]model.Event, error) {
			recs, err := s.ListLedgerEntries(ctx, userID, start, end)
			if err != nil {
				return nil, err
			}
			return a.ledgerEvents(recs, start, end, today), nil
		})
	}
	wg.Wait()

	res := &Result{Events: []model.Event{}}
	for i, evs := range slots {
		res.Events = append(res.Events, evs...)
		if failed[i] {
			res.Degraded = append(res.Degraded, model.EventKinds[i])
		}
	}
	sort.SliceStable(res.Events, func(i, j int) bool {
		return res.Events[i].Start.Before(res.Events[j].Start)
	})
	return res, nil
}

func (a *Aggregator) manualEvents(recs []model.ManualEvent) []model.Event {
	out := make([]model.Event, 0, len(recs))
	for _, m := range recs {
		ev := model.Event{
			ID:       m.ID,
			Kind:     model.EventManual,
			Title:    m.Title,
			Start:    m.Start,
			End:      m.End,
			AllDay:   m.AllDay,
			Category: m.Category,
			Color:    m.Color,
			Editable: true,
		}
		if ev.End.IsZero() {
			ev.End = ev.Start
		}
		a.decorate(&ev)
		out = append(out, ev)
	}
	return out
}

func (a *Aggregator) shiftEvents(recs []model.Shift) []model.Event {
	out := make([]model.Event, 0, len(recs))
	for _, s := range recs {
		ev := model.Event{
			ID:    "shift-" + s.ID,
			Kind:  model.EventShift,
			Title: s.Title,
			Start: s.Start,
			End:   s.Start.Add(a.shiftLen),
		}
		a.decorate(&ev)
		out = append(out, ev)
	}
	return out
}

func (a *Aggregator) taskEvents(recs []model.Task) []model.Event {
	out := make([]model.Event, 0, len(recs))
	for _, t := range recs {
		ev := model.Event{
			ID:     "task-" + t.ID,
			Kind:   model.EventTask,
			Title:  t.Title,
			Start:  t.Deadline,
			End:    t.Deadline,
			AllDay: true,
		}
		a.decorate(&ev)
		out = append(out, ev)
	}
	return out
}

func (a *Aggregator) appointmentEvents(recs []model.Appointment) []model.Event {
	out := make([]model.Event, 0, len(recs))
	for _, ap := range recs {
		ev := model.Event{
			ID:    "appointment-" + ap.ID,
			Kind:  model.EventAppointment,
			Title: ap.Title,
			Start: ap.Start,
			End:   ap.Start.Add(a.apptLen),
		}
		a.decorate(&ev)
		out = append(out, ev)
	}
	return out
}

// invoiceEvents emits one event per (card, cycle) with a non-zero total whose
// due date falls in [start, end).
func (a *Aggregator) invoiceEvents(activity []model.CardActivity, start, end time.Time, today calendar.Date) []model.Event {
	from := calendar.FromTime(start.In(a.loc))
	to := calendar.FromTime(end.In(a.loc)).AddDays(1)

	var out []model.Event
	for _, act := range activity {
		card := act.Card
		if billing.ValidateTerms(card.Terms) != nil {
			a.log.WithField("card", card.ID).Warn("card has invalid terms, skipping statements")
			continue
		}
		for _, cycle := range billing.CyclesDueBetween(card.Terms, from, to) {
			total := billing.AggregateCycleTotals(act.Purchases, card.ID, card.Terms, cycle)
			if total.Total.IsZero() {
				continue
			}
			at := total.DueDate.In(a.loc)
			if at.Before(start) || !at.Before(end) {
				continue
			}
			amount := total.Total
			ev := model.Event{
				ID:     fmt.Sprintf("invoice-%s-%s", card.ID, cycle.Key()),
				Kind:   model.EventInvoice,
				Title:  invoiceTitle(card, cycle),
				Start:  at,
				End:    at,
				AllDay: true,
				Amount: &amount,
				Status: a.status(total.DueDate, today),
			}
			a.decorate(&ev)
			out = append(out, ev)
		}
	}
	return out
}

// ledgerEvents emits pending entries not linked to a card.
func (a *Aggregator) ledgerEvents(entries []model.LedgerEntry, start, end time.Time, today calendar.Date) []model.Event {
	var out []model.Event
	for _, e := range entries {
		if !e.Pending || e.CardID != "" || e.Day.IsZero() {
			continue
		}
		at := e.Day.In(a.loc)
		if at.Before(start) || !at.Before(end) {
			continue
		}
		amount := e.Amount
		ev := model.Event{
			ID:     "ledger-" + e.ID,
			Kind:   model.EventLedger,
			Title:  e.Description,
			Start:  at,
			End:    at,
			AllDay: true,
			Amount: &amount,
			Status: a.status(e.Day, today),
		}
		a.decorate(&ev)
		out = append(out, ev)
	}
	return out
}

// status classifies a financial due date against today.
func (a *Aggregator) status(due, today calendar.Date) model.FinancialStatus {
	switch {
	case due.Before(today):
		return model.StatusOverdue
	case due.DaysSince(today) <= a.dueSoonDays:
		return model.StatusDueSoon
	default:
		return model.StatusPending
	}
}

func (a *Aggregator) decorate(ev *model.Event) {
	if ev.Color == "" {
		ev.Color = a.colors[ev.Kind]
	}
	if ev.Category == "" {
		ev.Category = a.categories[ev.Kind]
	}
}

func invoiceTitle(card model.Card, cycle calendar.Cycle) string {
	name := card.Name
	if name == "" {
		name = card.ID
	}
	return fmt.Sprintf("%s statement %s", name, cycle.Key())
}

// TotalDue sums the amounts of events with the given status.
func TotalDue(events []model.Event, status model.FinancialStatus) decimal.Decimal {
	sum := decimal.Zero
	for _, ev := range events {
		if ev.Amount != nil && ev.Status == status {
			sum = sum.Add(*ev.Amount)
		}
	}
	return sum
}
