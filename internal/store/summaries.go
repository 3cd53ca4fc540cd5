package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Summary object types.
const (
	ObjectPublication = "publication"
	ObjectSection     = "section"
	ObjectItem        = "item"
)

// Summary is a markdown summary attached to a publication, section or item.
type Summary struct {
	ID         int64     `json:"id"`
	ObjectType string    `json:"object_type"`
	ObjectID   int64     `json:"object_id"`
	Text       string    `json:"summary_text"`
	Model      string    `json:"model"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

const summaryColumns = `id, object_type, object_id, summary_text, model, created_at, updated_at`

func scanSummary(row interface{ Scan(...any) error }) (*Summary, error) {
	var (
		sm               Summary
		created, updated int64
	)
	if err := row.Scan(&sm.ID, &sm.ObjectType, &sm.ObjectID, &sm.Text, &sm.Model, &created, &updated); err != nil {
		return nil, err
	}
	sm.CreatedAt = time.UnixMilli(created).UTC()
	sm.UpdatedAt = time.UnixMilli(updated).UTC()
	return &sm, nil
}

// CreateSummary inserts sm and fills in its id and timestamps.
func (s *Store) CreateSummary(ctx context.Context, sm *Summary) error {
	now := time.Now().UTC().Truncate(time.Millisecond)
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO summaries (object_type, object_id, summary_text, model, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sm.ObjectType, sm.ObjectID, sm.Text, sm.Model, now.UnixMilli(), now.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert summary: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert summary: %w", err)
	}
	sm.ID, sm.CreatedAt, sm.UpdatedAt = id, now, now
	return nil
}

func (s *Store) GetSummary(ctx context.Context, id int64) (*Summary, error) {
	sm, err := scanSummary(s.db.QueryRowContext(ctx,
		`SELECT `+summaryColumns+` FROM summaries WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query summary %d: %w", id, err)
	}
	return sm, nil
}

// LatestSummary returns the most recently created summary for an object.
func (s *Store) LatestSummary(ctx context.Context, objectType string, objectID int64) (*Summary, error) {
	sm, err := scanSummary(s.db.QueryRowContext(ctx, `
		SELECT `+summaryColumns+` FROM summaries
		WHERE object_type = ? AND object_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1`, objectType, objectID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query latest summary: %w", err)
	}
	return sm, nil
}

// ListSummaries returns every summary of an object, newest first.
func (s *Store) ListSummaries(ctx context.Context, objectType string, objectID int64) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+summaryColumns+` FROM summaries
		WHERE object_type = ? AND object_id = ?
		ORDER BY created_at DESC, id DESC`, objectType, objectID)
	if err != nil {
		return nil, fmt.Errorf("query summaries: %w", err)
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		sm, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		out = append(out, *sm)
	}
	return out, rows.Err()
}

// UpdateSummary replaces the text and model of a summary.
func (s *Store) UpdateSummary(ctx context.Context, id int64, text, model string) (*Summary, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE summaries SET summary_text = ?, model = ?, updated_at = ?
		WHERE id = ?`, text, model, time.Now().UTC().UnixMilli(), id)
	if err != nil {
		return nil, fmt.Errorf("update summary %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, fmt.Errorf("update summary %d: %w", id, err)
	} else if n == 0 {
		return nil, ErrNotFound
	}
	return s.GetSummary(ctx, id)
}

func (s *Store) DeleteSummary(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM summaries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete summary %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete summary %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
