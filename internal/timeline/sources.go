package timeline

import (
	"context"
	"time"

	"github.com/theirongolddev/dayline/internal/model"
)

// ManualEventSource lists user-created calendar entries overlapping a window.
// Implementations: store.Store
type ManualEventSource interface {
	ListManualEvents(ctx context.Context, userID string, start, end time.Time) ([]model.ManualEvent, error)
}

// ShiftSource lists work shifts starting inside a window.
// Implementations: store.Store, remote.Client
type ShiftSource interface {
	ListShifts(ctx context.Context, userID string, start, end time.Time) ([]model.Shift, error)
}

// TaskSource lists tasks whose deadline falls inside a window.
// Implementations: store.Store
type TaskSource interface {
	ListTasks(ctx context.Context, userID string, start, end time.Time) ([]model.Task, error)
}

// AppointmentSource lists appointments starting inside a window.
// Implementations: store.Store, remote.Client
type AppointmentSource interface {
	ListAppointments(ctx context.Context, userID string, start, end time.Time) ([]model.Appointment, error)
}

// CardActivitySource lists the user's cards with every purchase that may bill
// an installment inside a window.
// Implementations: store.Store
type CardActivitySource interface {
	ListCardActivity(ctx context.Context, userID string, start, end time.Time) ([]model.CardActivity, error)
}

// LedgerSource lists ledger entries dated inside a window.
// Implementations: store.Store
type LedgerSource interface {
	ListLedgerEntries(ctx context.Context, userID string, start, end time.Time) ([]model.LedgerEntry, error)
}

// Sources groups the collaborators the aggregator reads from. Any field may be
// nil; a nil source contributes nothing.
type Sources struct {
	Manual       ManualEventSource
	Shifts       ShiftSource
	Tasks        TaskSource
	Appointments AppointmentSource
	Cards        CardActivitySource
	Ledger       LedgerSource
}
