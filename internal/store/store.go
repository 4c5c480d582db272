// Package store provides the SQLite-backed record store that feeds the
// timeline, the streak engine and the import pipeline.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/dayline/internal/calendar"
	"github.com/theirongolddev/dayline/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// ErrNotFound is returned when a referenced record does not exist.
var ErrNotFound = errors.New("store: not found")

// Times are stored as UTC RFC 3339 text so that string order is time order.
const timeLayout = time.RFC3339

// Store is a SQLite record store. It is safe for concurrent use.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at the given path.
func Open(dbPath string) (*Store, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening store db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// FileInfo holds the tracked mtime and size for an imported file.
type FileInfo struct {
	MtimeNs   int64
	SizeBytes int64
}

// GetTrackedFiles returns a map of file_path -> FileInfo for all imported files.
func (s *Store) GetTrackedFiles(ctx context.Context) (map[string]FileInfo, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT file_path, mtime_ns, size_bytes FROM file_tracker")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	result := make(map[string]FileInfo)
	for rows.Next() {
		var path string
		var fi FileInfo
		if err := rows.Scan(&path, &fi.MtimeNs, &fi.SizeBytes); err != nil {
			return nil, err
		}
		result[path] = fi
	}
	return result, rows.Err()
}

// DeleteFileTracker forgets an imported file so the next import reads it again.
func (s *Store) DeleteFileTracker(ctx context.Context, filePath string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM file_tracker WHERE file_path = ?", filePath)
	return err
}

// SaveBatch upserts every record in b and records the file's tracking info in
// one transaction. An empty filePath skips file tracking.
func (s *Store) SaveBatch(ctx context.Context, filePath string, b model.Batch, fi FileInfo) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, t := range b.Trackables {
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO trackables (id, user_id, kind, label)
			VALUES (?, ?, ?, ?)`, t.ID, t.UserID, string(t.Kind), t.Label); err != nil {
			return fmt.Errorf("saving trackable %s: %w", t.ID, err)
		}
		for _, c := range t.Completions {
			if c.ItemID == "" {
				c.ItemID = t.ID
			}
			if err := saveCompletion(ctx, tx, c); err != nil {
				return err
			}
		}
	}
	for _, c := range b.Completions {
		if err := saveCompletion(ctx, tx, c); err != nil {
			return err
		}
	}
	for _, e := range b.ManualEvents {
		if err := saveManualEvent(ctx, tx, e); err != nil {
			return err
		}
	}
	for _, sh := range b.Shifts {
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO shifts (id, user_id, title, start_time)
			VALUES (?, ?, ?, ?)`, sh.ID, sh.UserID, sh.Title, formatTime(sh.Start)); err != nil {
			return fmt.Errorf("saving shift %s: %w", sh.ID, err)
		}
	}
	for _, t := range b.Tasks {
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO tasks (id, user_id, title, deadline, done)
			VALUES (?, ?, ?, ?, ?)`, t.ID, t.UserID, t.Title, formatTime(t.Deadline), boolInt(t.Done)); err != nil {
			return fmt.Errorf("saving task %s: %w", t.ID, err)
		}
	}
	for _, a := range b.Appointments {
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO appointments (id, user_id, title, start_time, location)
			VALUES (?, ?, ?, ?, ?)`, a.ID, a.UserID, a.Title, formatTime(a.Start), a.Location); err != nil {
			return fmt.Errorf("saving appointment %s: %w", a.ID, err)
		}
	}
	for _, c := range b.Cards {
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO cards (id, user_id, name, closing_day, due_day)
			VALUES (?, ?, ?, ?, ?)`, c.ID, c.UserID, c.Name, c.Terms.ClosingDay, c.Terms.DueDay); err != nil {
			return fmt.Errorf("saving card %s: %w", c.ID, err)
		}
	}
	for _, p := range b.Purchases {
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO card_purchases
			(id, card_id, description, total_amount, installment_count, purchase_date)
			VALUES (?, ?, ?, ?, ?, ?)`,
			p.ID, p.CardID, p.Description, p.TotalAmount.String(), p.InstallmentCount, p.PurchaseDate.String()); err != nil {
			return fmt.Errorf("saving purchase %s: %w", p.ID, err)
		}
	}
	for _, l := range b.Ledger {
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO ledger_entries
			(id, user_id, description, amount, day, pending, card_id)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			l.ID, l.UserID, l.Description, l.Amount.String(), l.Day.String(), boolInt(l.Pending), l.CardID); err != nil {
			return fmt.Errorf("saving ledger entry %s: %w", l.ID, err)
		}
	}

	if filePath != "" {
		if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO file_tracker (file_path, mtime_ns, size_bytes)
			VALUES (?, ?, ?)`, filePath, fi.MtimeNs, fi.SizeBytes); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Counts returns the number of rows per record table.
func (s *Store) Counts(ctx context.Context) (map[string]int, error) {
	tables := []string{"trackables", "completions", "manual_events", "shifts", "tasks",
		"appointments", "cards", "card_purchases", "ledger_entries"}
	out := make(map[string]int, len(tables))
	for _, t := range tables {
		var n int
		//nolint:gosec // table names come from the fixed list above
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+t).Scan(&n); err != nil {
			return nil, fmt.Errorf("counting %s: %w", t, err)
		}
		out[t] = n
	}
	return out, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func saveCompletion(ctx context.Context, db execer, c model.Completion) error {
	_, err := db.ExecContext(ctx, `INSERT INTO completions (item_id, day, completed, value)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (item_id, day) DO UPDATE SET completed = excluded.completed, value = excluded.value`,
		c.ItemID, c.Day.String(), boolInt(c.Completed), c.Value)
	if err != nil {
		return fmt.Errorf("saving completion %s/%s: %w", c.ItemID, c.Day, err)
	}
	return nil
}

func saveManualEvent(ctx context.Context, db execer, e model.ManualEvent) error {
	_, err := db.ExecContext(ctx, `INSERT OR REPLACE INTO manual_events
		(id, user_id, title, start_time, end_time, all_day, category, color)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.Title, formatTime(e.Start), formatTime(e.End), boolInt(e.AllDay), e.Category, e.Color)
	if err != nil {
		return fmt.Errorf("saving manual event %s: %w", e.ID, err)
	}
	return nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

func parseTime(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	t, _ := time.Parse(timeLayout, s.String)
	return t
}

func parseDay(s string) calendar.Date {
	d, _ := calendar.Parse(s)
	return d
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
