package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/theirongolddev/dayline/internal/calendar"
	"github.com/theirongolddev/dayline/internal/model"
)

// ListTrackables returns the user's habits and devotional activities with
// their completion logs. An empty kind returns both.
func (s *Store) ListTrackables(ctx context.Context, userID string, kind model.TrackableKind) ([]model.Trackable, error) {
	query := `SELECT id, user_id, kind, label FROM trackables WHERE user_id = ?`
	args := []any{userID}
	if kind != "" {
		query += " AND kind = ?"
		args = append(args, string(kind))
	}
	query += " ORDER BY kind, label, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing trackables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []model.Trackable
	for rows.Next() {
		var t model.Trackable
		var k string
		if err := rows.Scan(&t.ID, &t.UserID, &k, &t.Label); err != nil {
			return nil, err
		}
		t.Kind = model.TrackableKind(k)
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return items, nil
	}

	// Batch-load completions
	compRows, err := s.db.QueryContext(ctx, `SELECT c.item_id, c.day, c.completed, c.value
		FROM completions c JOIN trackables t ON t.id = c.item_id
		WHERE t.user_id = ? ORDER BY c.day`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing completions: %w", err)
	}
	defer func() { _ = compRows.Close() }()

	idx := make(map[string]int, len(items))
	for i, t := range items {
		idx[t.ID] = i
	}
	for compRows.Next() {
		var c model.Completion
		var day string
		var completed int
		if err := compRows.Scan(&c.ItemID, &day, &completed, &c.Value); err != nil {
			return nil, err
		}
		c.Day = parseDay(day)
		c.Completed = completed != 0
		if i, ok := idx[c.ItemID]; ok {
			items[i].Completions = append(items[i].Completions, c)
		}
	}
	return items, compRows.Err()
}

// GetTrackable returns one trackable with its completion log.
func (s *Store) GetTrackable(ctx context.Context, itemID string) (model.Trackable, error) {
	var t model.Trackable
	var k string
	err := s.db.QueryRowContext(ctx, `SELECT id, user_id, kind, label FROM trackables WHERE id = ?`, itemID).
		Scan(&t.ID, &t.UserID, &k, &t.Label)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Trackable{}, fmt.Errorf("trackable %s: %w", itemID, ErrNotFound)
	}
	if err != nil {
		return model.Trackable{}, fmt.Errorf("loading trackable %s: %w", itemID, err)
	}
	t.Kind = model.TrackableKind(k)

	rows, err := s.db.QueryContext(ctx, `SELECT item_id, day, completed, value FROM completions
		WHERE item_id = ? ORDER BY day`, itemID)
	if err != nil {
		return model.Trackable{}, fmt.Errorf("loading completions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var c model.Completion
		var day string
		var completed int
		if err := rows.Scan(&c.ItemID, &day, &completed, &c.Value); err != nil {
			return model.Trackable{}, err
		}
		c.Day = parseDay(day)
		c.Completed = completed != 0
		t.Completions = append(t.Completions, c)
	}
	return t, rows.Err()
}

// Toggle flips the completion state of itemID on day and returns the new
// entry. The flip is a single upsert on (item_id, day), so concurrent toggles
// serialize in the database and never produce duplicate entries.
func (s *Store) Toggle(ctx context.Context, itemID string, day calendar.Date) (model.Completion, error) {
	if day.IsZero() {
		return model.Completion{}, errors.New("toggle completion: missing day")
	}

	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM trackables WHERE id = ?`, itemID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Completion{}, fmt.Errorf("toggle completion %s: %w", itemID, ErrNotFound)
	}
	if err != nil {
		return model.Completion{}, fmt.Errorf("toggle completion: %w", err)
	}

	c := model.Completion{ItemID: itemID, Day: day}
	var completed int
	err = s.db.QueryRowContext(ctx, `INSERT INTO completions (item_id, day, completed, value)
		VALUES (?, ?, 1, 1)
		ON CONFLICT (item_id, day) DO UPDATE SET
			completed = 1 - completions.completed,
			value = CASE WHEN completions.completed = 1 THEN 0 ELSE 1 END
		RETURNING completed, value`, itemID, day.String()).Scan(&completed, &c.Value)
	if err != nil {
		return model.Completion{}, fmt.Errorf("toggle completion: %w", err)
	}
	c.Completed = completed != 0
	return c, nil
}
