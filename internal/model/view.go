package model

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/theirongolddev/dayline/internal/calendar"
)

// StreakResult holds the derived streak statistics for one completion log.
type StreakResult struct {
	ItemID             string `json:"item_id,omitempty"`
	Current            int    `json:"current"`
	Best               int    `json:"best"`
	BestOwnerLabel     string `json:"best_owner_label"`
	ActiveDaysInWindow int    `json:"active_days_in_window"`
	MetTargetStreak    bool   `json:"met_target_streak"`
}

// InstallmentRow is one scheduled slice of a purchase.
type InstallmentRow struct {
	Index   int             `json:"index"`
	Amount  decimal.Decimal `json:"amount"`
	Cycle   calendar.Cycle  `json:"cycle"`
	DueDate calendar.Date   `json:"due_date"`
}

// EventKind identifies which record collection an event came from.
type EventKind string

const (
	EventManual      EventKind = "manual"
	EventShift       EventKind = "shift"
	EventTask        EventKind = "task"
	EventAppointment EventKind = "appointment"
	EventInvoice     EventKind = "invoice"
	EventLedger      EventKind = "ledger"
)

// EventKinds lists every kind in merge order.
var EventKinds = []EventKind{
	EventManual, EventShift, EventTask, EventAppointment, EventInvoice, EventLedger,
}

// FinancialStatus annotates money-bearing events.
type FinancialStatus string

const (
	StatusNone    FinancialStatus = ""
	StatusPending FinancialStatus = "pending"
	StatusDueSoon FinancialStatus = "dueSoon"
	StatusOverdue FinancialStatus = "overdue"
)

// Event is one normalized entry in the merged timeline. Never persisted.
type Event struct {
	ID       string           `json:"id"`
	Kind     EventKind        `json:"kind"`
	Title    string           `json:"title"`
	Start    time.Time        `json:"start"`
	End      time.Time        `json:"end"`
	AllDay   bool             `json:"all_day"`
	Category string           `json:"category"`
	Color    string           `json:"color"`
	Editable bool             `json:"editable"`
	Amount   *decimal.Decimal `json:"amount,omitempty"`
	Status   FinancialStatus  `json:"financial_status,omitempty"`
}

// DaySummary aggregates the timeline events starting on one calendar day.
type DaySummary struct {
	Date      calendar.Date     `json:"date"`
	Events    int               `json:"events"`
	ByKind    map[EventKind]int `json:"by_kind,omitempty"`
	AmountDue decimal.Decimal   `json:"amount_due"`
	Overdue   int               `json:"overdue"`
	DueSoon   int               `json:"due_soon"`
	Pending   int               `json:"pending"`
}

// Summary aggregates a whole window of events and streaks.
type Summary struct {
	Events        int               `json:"events"`
	ActiveDays    int               `json:"active_days"`
	ByKind        map[EventKind]int `json:"by_kind"`
	Overdue       int               `json:"overdue"`
	DueSoon       int               `json:"due_soon"`
	Pending       int               `json:"pending"`
	AmountDue     decimal.Decimal   `json:"amount_due"`
	OverdueAmount decimal.Decimal   `json:"overdue_amount"`
	Trackables    int               `json:"trackables"`
	ActiveStreaks int               `json:"active_streaks"`
	TargetsMet    int               `json:"targets_met"`
	BestStreak    int               `json:"best_streak"`
	BestOwner     string            `json:"best_owner,omitempty"`
}
