package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/theirongolddev/dayline/internal/calendar"
	"github.com/theirongolddev/dayline/internal/model"
)

// ListManualEvents returns the user's manual events overlapping [start, end).
func (s *Store) ListManualEvents(ctx context.Context, userID string, start, end time.Time) ([]model.ManualEvent, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, user_id, title, start_time, end_time, all_day, category, color
		FROM manual_events
		WHERE user_id = ? AND start_time < ? AND COALESCE(NULLIF(end_time, ''), start_time) >= ?
		ORDER BY start_time`,
		userID, formatTime(end), formatTime(start))
	if err != nil {
		return nil, fmt.Errorf("listing manual events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.ManualEvent
	for rows.Next() {
		var e model.ManualEvent
		var startStr, endStr, category, color sql.NullString
		var allDay int
		if err := rows.Scan(&e.ID, &e.UserID, &e.Title, &startStr, &endStr, &allDay, &category, &color); err != nil {
			return nil, err
		}
		e.Start = parseTime(startStr)
		e.End = parseTime(endStr)
		e.AllDay = allDay != 0
		e.Category = category.String
		e.Color = color.String
		out = append(out, e)
	}
	return out, rows.Err()
}

// CreateManualEvent stores a new manual event, assigning an ID when empty.
func (s *Store) CreateManualEvent(ctx context.Context, e model.ManualEvent) (model.ManualEvent, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if err := saveManualEvent(ctx, s.db, e); err != nil {
		return model.ManualEvent{}, err
	}
	return e, nil
}

// ListShifts returns the user's shifts starting in [start, end).
func (s *Store) ListShifts(ctx context.Context, userID string, start, end time.Time) ([]model.Shift, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, user_id, title, start_time FROM shifts
		WHERE user_id = ? AND start_time >= ? AND start_time < ? ORDER BY start_time`,
		userID, formatTime(start), formatTime(end))
	if err != nil {
		return nil, fmt.Errorf("listing shifts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Shift
	for rows.Next() {
		var sh model.Shift
		var startStr sql.NullString
		if err := rows.Scan(&sh.ID, &sh.UserID, &sh.Title, &startStr); err != nil {
			return nil, err
		}
		sh.Start = parseTime(startStr)
		out = append(out, sh)
	}
	return out, rows.Err()
}

// ListTasks returns the user's open tasks with a deadline in [start, end).
func (s *Store) ListTasks(ctx context.Context, userID string, start, end time.Time) ([]model.Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, user_id, title, deadline, done FROM tasks
		WHERE user_id = ? AND done = 0 AND deadline >= ? AND deadline < ? ORDER BY deadline`,
		userID, formatTime(start), formatTime(end))
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Task
	for rows.Next() {
		var t model.Task
		var deadline sql.NullString
		var done int
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &deadline, &done); err != nil {
			return nil, err
		}
		t.Deadline = parseTime(deadline)
		t.Done = done != 0
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListAppointments returns the user's appointments starting in [start, end).
func (s *Store) ListAppointments(ctx context.Context, userID string, start, end time.Time) ([]model.Appointment, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, user_id, title, start_time, location FROM appointments
		WHERE user_id = ? AND start_time >= ? AND start_time < ? ORDER BY start_time`,
		userID, formatTime(start), formatTime(end))
	if err != nil {
		return nil, fmt.Errorf("listing appointments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Appointment
	for rows.Next() {
		var a model.Appointment
		var startStr, location sql.NullString
		if err := rows.Scan(&a.ID, &a.UserID, &a.Title, &startStr, &location); err != nil {
			return nil, err
		}
		a.Start = parseTime(startStr)
		a.Location = location.String
		out = append(out, a)
	}
	return out, rows.Err()
}

// ListCards returns the user's cards.
func (s *Store) ListCards(ctx context.Context, userID string) ([]model.Card, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, user_id, name, closing_day, due_day FROM cards
		WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing cards: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Card
	for rows.Next() {
		var c model.Card
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Terms.ClosingDay, &c.Terms.DueDay); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetCard returns one card by ID.
func (s *Store) GetCard(ctx context.Context, cardID string) (model.Card, error) {
	var c model.Card
	err := s.db.QueryRowContext(ctx, `SELECT id, user_id, name, closing_day, due_day FROM cards WHERE id = ?`, cardID).
		Scan(&c.ID, &c.UserID, &c.Name, &c.Terms.ClosingDay, &c.Terms.DueDay)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Card{}, fmt.Errorf("card %s: %w", cardID, ErrNotFound)
	}
	return c, err
}

// ListPurchases returns the card's purchases made before the given day.
// A zero before returns them all.
func (s *Store) ListPurchases(ctx context.Context, cardID string, before calendar.Date) ([]model.CardPurchase, error) {
	query := `SELECT id, card_id, description, total_amount, installment_count, purchase_date
		FROM card_purchases WHERE card_id = ?`
	args := []any{cardID}
	if !before.IsZero() {
		query += " AND purchase_date < ?"
		args = append(args, before.String())
	}
	query += " ORDER BY purchase_date, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing purchases: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.CardPurchase
	for rows.Next() {
		var p model.CardPurchase
		var desc sql.NullString
		var day string
		if err := rows.Scan(&p.ID, &p.CardID, &desc, &p.TotalAmount, &p.InstallmentCount, &day); err != nil {
			return nil, err
		}
		p.Description = desc.String
		p.PurchaseDate = parseDay(day)
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListCardActivity returns every card of the user with the purchases made
// before the window ends. Older purchases are kept because their later
// installments may still bill inside the window.
func (s *Store) ListCardActivity(ctx context.Context, userID string, _, end time.Time) ([]model.CardActivity, error) {
	cards, err := s.ListCards(ctx, userID)
	if err != nil {
		return nil, err
	}
	before := calendar.FromTime(end.UTC()).AddDays(1)

	out := make([]model.CardActivity, 0, len(cards))
	for _, c := range cards {
		purchases, err := s.ListPurchases(ctx, c.ID, before)
		if err != nil {
			return nil, err
		}
		out = append(out, model.CardActivity{Card: c, Purchases: purchases})
	}
	return out, nil
}

// ListLedgerEntries returns the user's ledger entries dated within [start, end].
// Boundary filtering at instant precision is left to the caller.
func (s *Store) ListLedgerEntries(ctx context.Context, userID string, start, end time.Time) ([]model.LedgerEntry, error) {
	from := calendar.FromTime(start.UTC()).AddDays(-1)
	to := calendar.FromTime(end.UTC()).AddDays(1)

	rows, err := s.db.QueryContext(ctx, `SELECT id, user_id, description, amount, day, pending, card_id
		FROM ledger_entries WHERE user_id = ? AND day >= ? AND day <= ? ORDER BY day, id`,
		userID, from.String(), to.String())
	if err != nil {
		return nil, fmt.Errorf("listing ledger entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.LedgerEntry
	for rows.Next() {
		var l model.LedgerEntry
		var desc, cardID sql.NullString
		var day string
		var pending int
		if err := rows.Scan(&l.ID, &l.UserID, &desc, &l.Amount, &day, &pending, &cardID); err != nil {
			return nil, err
		}
		l.Description = desc.String
		l.Day = parseDay(day)
		l.Pending = pending != 0
		l.CardID = cardID.String
		out = append(out, l)
	}
	return out, rows.Err()
}
