// Package model defines dayline's durable records and derived view types.
package model

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/theirongolddev/dayline/internal/calendar"
)

// TrackableKind separates the two completion-log owners.
type TrackableKind string

const (
	KindHabit      TrackableKind = "habit"
	KindDevotional TrackableKind = "devotional"
)

// Completion is one day's entry in a trackable item's completion log.
type Completion struct {
	ItemID    string        `json:"item_id"`
	Day       calendar.Date `json:"day"`
	Completed bool          `json:"completed"`
	Value     float64       `json:"value"`
}

// Trackable is a habit or devotional activity together with its completion log.
type Trackable struct {
	ID          string        `json:"id"`
	UserID      string        `json:"user_id"`
	Kind        TrackableKind `json:"kind"`
	Label       string        `json:"label"`
	Completions []Completion  `json:"completions,omitempty"`
}

// Entries returns the completion log.
func (t Trackable) Entries() []Completion {
	return t.Completions
}

// Name returns the display label used for best-streak attribution.
func (t Trackable) Name() string {
	return t.Label
}

// ManualEvent is a user-created calendar entry.
type ManualEvent struct {
	ID       string    `json:"id"`
	UserID   string    `json:"user_id"`
	Title    string    `json:"title"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	AllDay   bool      `json:"all_day"`
	Category string    `json:"category"`
	Color    string    `json:"color"`
}

// Shift is a scheduled work shift. Only the start is recorded.
type Shift struct {
	ID     string    `json:"id"`
	UserID string    `json:"user_id"`
	Title  string    `json:"title"`
	Start  time.Time `json:"start"`
}

// Task is a to-do with a deadline.
type Task struct {
	ID       string    `json:"id"`
	UserID   string    `json:"user_id"`
	Title    string    `json:"title"`
	Deadline time.Time `json:"deadline"`
	Done     bool      `json:"done"`
}

// Appointment is a booked appointment. Only the start is recorded.
type Appointment struct {
	ID       string    `json:"id"`
	UserID   string    `json:"user_id"`
	Title    string    `json:"title"`
	Start    time.Time `json:"start"`
	Location string    `json:"location,omitempty"`
}

// CardTerms holds a credit card's statement closing and payment due days.
type CardTerms struct {
	ClosingDay int `json:"closing_day"`
	DueDay     int `json:"due_day"`
}

// Card is a credit account.
type Card struct {
	ID     string    `json:"id"`
	UserID string    `json:"user_id"`
	Name   string    `json:"name"`
	Terms  CardTerms `json:"terms"`
}

// Purchase is an amount split into monthly installments.
type Purchase struct {
	TotalAmount      decimal.Decimal `json:"total_amount"`
	InstallmentCount int             `json:"installment_count"`
	PurchaseDate     calendar.Date   `json:"purchase_date"`
}

// CardPurchase is a purchase charged to a card.
type CardPurchase struct {
	ID          string `json:"id"`
	CardID      string `json:"card_id"`
	Description string `json:"description"`
	Purchase
}

// CardActivity pairs a card with the purchases that may bill inside a window.
type CardActivity struct {
	Card      Card           `json:"card"`
	Purchases []CardPurchase `json:"purchases"`
}

// LedgerEntry is a manual income or expense line.
type LedgerEntry struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Day         calendar.Date   `json:"day"`
	Pending     bool            `json:"pending"`
	CardID      string          `json:"card_id,omitempty"`
}

// Batch is a set of records imported together.
type Batch struct {
	Trackables   []Trackable    `json:"trackables,omitempty"`
	Completions  []Completion   `json:"completions,omitempty"`
	ManualEvents []ManualEvent  `json:"manual_events,omitempty"`
	Shifts       []Shift        `json:"shifts,omitempty"`
	Tasks        []Task         `json:"tasks,omitempty"`
	Appointments []Appointment  `json:"appointments,omitempty"`
	Cards        []Card         `json:"cards,omitempty"`
	Purchases    []CardPurchase `json:"purchases,omitempty"`
	Ledger       []LedgerEntry  `json:"ledger,omitempty"`
}

// Len returns the number of records in the batch.
func (b Batch) Len() int {
	return len(b.Trackables) + len(b.Completions) + len(b.ManualEvents) + len(b.Shifts) +
		len(b.Tasks) + len(b.Appointments) + len(b.Cards) + len(b.Purchases) + len(b.Ledger)
}
