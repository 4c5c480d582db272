package pipeline

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"github.com/theirongolddev/dayline/internal/calendar"
	"github.com/theirongolddev/dayline/internal/model"
	"github.com/theirongolddev/dayline/internal/streak"
)

// AggregateDays computes per-day statistics for events starting in
// [since, until), evaluated in loc. Every day in the range is present so
// gaps show as zeros. Most recent day first.
func AggregateDays(events []model.Event, since, until time.Time, loc *time.Location) []model.DaySummary {
	if loc == nil {
		loc = time.Local
	}
	dayMap := make(map[calendar.Date]*model.DaySummary)

	for _, ev := range FilterByTime(events, since, until) {
		key := calendar.FromTime(ev.Start.In(loc))
		ds, ok := dayMap[key]
		if !ok {
			ds = newDay(key)
			dayMap[key] = ds
		}
		ds.Events++
		ds.ByKind[ev.Kind]++
		switch ev.Status {
		case model.StatusOverdue:
			ds.Overdue++
		case model.StatusDueSoon:
			ds.DueSoon++
		case model.StatusPending:
			ds.Pending++
		}
		if ev.Amount != nil && ev.Status != model.StatusNone {
			ds.AmountDue = ds.AmountDue.Add(*ev.Amount)
		}
	}

	first := calendar.FromTime(since.In(loc))
	last := calendar.FromTime(until.Add(-time.Nanosecond).In(loc))
	for d := first; !d.After(last); d = d.AddDays(1) {
		if _, ok := dayMap[d]; !ok {
			dayMap[d] = newDay(d)
		}
	}

	days := make([]model.DaySummary, 0, len(dayMap))
	for _, ds := range dayMap {
		days = append(days, *ds)
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date.After(days[j].Date)
	})
	return days
}

func newDay(d calendar.Date) *model.DaySummary {
	return &model.DaySummary{Date: d, ByKind: make(map[model.EventKind]int), AmountDue: decimal.Zero}
}

// Summarize computes window totals from events and the streak state of logs.
func Summarize(events []model.Event, logs []model.Trackable, today calendar.Date, loc *time.Location) model.Summary {
	if loc == nil {
		loc = time.Local
	}
	s := model.Summary{
		ByKind:        make(map[model.EventKind]int),
		AmountDue:     decimal.Zero,
		OverdueAmount: decimal.Zero,
	}

	activeDays := make(map[calendar.Date]struct{})
	for _, ev := range events {
		s.Events++
		s.ByKind[ev.Kind]++
		activeDays[calendar.FromTime(ev.Start.In(loc))] = struct{}{}

		switch ev.Status {
		case model.StatusOverdue:
			s.Overdue++
			if ev.Amount != nil {
				s.OverdueAmount = s.OverdueAmount.Add(*ev.Amount)
			}
		case model.StatusDueSoon:
			s.DueSoon++
		case model.StatusPending:
			s.Pending++
		}
		if ev.Amount != nil && ev.Status != model.StatusNone {
			s.AmountDue = s.AmountDue.Add(*ev.Amount)
		}
	}
	s.ActiveDays = len(activeDays)

	s.Trackables = len(logs)
	for _, r := range streak.ComputeAll(logs, today) {
		if r.Current > 0 {
			s.ActiveStreaks++
		}
		if r.MetTargetStreak {
			s.TargetsMet++
		}
	}
	best := streak.ComputeBest(logs)
	s.BestStreak = best.Best
	s.BestOwner = best.OwnerLabel
	return s
}

// FilterByTime returns events starting in [since, until).
func FilterByTime(events []model.Event, since, until time.Time) []model.Event {
	var out []model.Event
	for _, ev := range events {
		if ev.Start.Before(since) || !ev.Start.Before(until) {
			continue
		}
		out = append(out, ev)
	}
	return out
}

// FilterByKind returns events of the given kinds. No kinds returns events unchanged.
func FilterByKind(events []model.Event, kinds ...model.EventKind) []model.Event {
	if len(kinds) == 0 {
		return events
	}
	want := make(map[model.EventKind]bool, len(kinds))
	for _, k := range kinds {
		want[k] = true
	}
	var out []model.Event
	for _, ev := range events {
		if want[ev.Kind] {
			out = append(out, ev)
		}
	}
	return out
}

// FilterByStatus returns money-bearing events with one of the given statuses.
func FilterByStatus(events []model.Event, statuses ...model.FinancialStatus) []model.Event {
	want := make(map[model.FinancialStatus]bool, len(statuses))
	for _, st := range statuses {
		want[st] = true
	}
	var out []model.Event
	for _, ev := range events {
		if ev.Status != model.StatusNone && want[ev.Status] {
			out = append(out, ev)
		}
	}
	return out
}
