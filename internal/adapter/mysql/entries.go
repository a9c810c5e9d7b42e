package mysql

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"time-tracker/internal/domain"
)

type entryRow struct {
	ID          string         `db:"id"`
	UserID      string         `db:"user_id"`
	Title       string         `db:"title"`
	CategoryID  sql.NullString `db:"category_id"`
	StartTime   time.Time      `db:"start_time"`
	EndTime     sql.NullTime   `db:"end_time"`
	DurationSec sql.NullInt64  `db:"duration_sec"`
	PausedAt    sql.NullTime   `db:"paused_at"`
	ResumedAt   sql.NullTime   `db:"resumed_at"`
	PausedUs    int64          `db:"paused_us"`
	CreatedAt   time.Time      `db:"created_at"`

	CatName  sql.NullString `db:"cat_name"`
	CatColor sql.NullString `db:"cat_color"`
	CatIcon  sql.NullString `db:"cat_icon"`
}

func (r entryRow) domain() domain.TimeEntry {
	e := domain.TimeEntry{
		ID:          r.ID,
		UserID:      r.UserID,
		Title:       r.Title,
		CategoryID:  stringPtr(r.CategoryID),
		Start:       r.StartTime.UTC(),
		End:         timePtr(r.EndTime),
		DurationSec: int64Ptr(r.DurationSec),
		PausedAt:    timePtr(r.PausedAt),
		ResumedAt:   timePtr(r.ResumedAt),
		Paused:      time.Duration(r.PausedUs) * time.Microsecond,
		CreatedAt:   r.CreatedAt.UTC(),
	}
	if r.CategoryID.Valid && r.CatName.Valid {
		e.Category = &domain.Category{
			ID:     r.CategoryID.String,
			UserID: r.UserID,
			Name:   r.CatName.String,
			Color:  r.CatColor.String,
			Icon:   r.CatIcon.String,
		}
	}
	return e
}

const entrySelect = `
SELECT e.id, e.user_id, e.title, e.category_id, e.start_time, e.end_time,
       e.duration_sec, e.paused_at, e.resumed_at, e.paused_us, e.created_at,
       c.name AS cat_name, c.color AS cat_color, c.icon AS cat_icon
FROM time_entries e
LEFT JOIN categories c ON c.id = e.category_id
`

// CreateEntry inserts an open entry. The uq_time_entries_one_open key
// rejects a second open entry for the same user.
func (c *Client) CreateEntry(ctx context.Context, e domain.TimeEntry) error {
	_, err := c.db.ExecContext(ctx, `
INSERT INTO time_entries
  (id, user_id, title, category_id, start_time, end_time, duration_sec, paused_at, resumed_at, paused_us, created_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.Title, nullString(e.CategoryID), e.Start.UTC(),
		nullTime(e.End), e.DurationSec, nullTime(e.PausedAt), nullTime(e.ResumedAt), e.Paused.Microseconds(), e.CreatedAt.UTC())
	if err != nil {
		return duplicate(err, "an open time entry already exists")
	}
	c.log.Debug("mysql created entry", slog.String("entry_id", e.ID), slog.String("user_id", e.UserID))
	return nil
}

func (c *Client) GetEntry(ctx context.Context, userID, id string) (domain.TimeEntry, error) {
	var r entryRow
	if err := c.db.GetContext(ctx, &r, entrySelect+`WHERE e.id = ? AND e.user_id = ?`, id, userID); err != nil {
		return domain.TimeEntry{}, notFound(err, "time entry")
	}
	return r.domain(), nil
}

// FinalizeEntry sets end and duration on an open entry.
func (c *Client) FinalizeEntry(ctx context.Context, userID, id string, end time.Time, durationSec int64) (domain.TimeEntry, error) {
	res, err := c.db.ExecContext(ctx, `
UPDATE time_entries
SET end_time = ?, duration_sec = ?
WHERE id = ? AND user_id = ? AND end_time IS NULL`,
		end.UTC(), durationSec, id, userID)
	if err != nil {
		return domain.TimeEntry{}, err
	}
	if err := c.checkOpenUpdate(ctx, res, userID, id); err != nil {
		return domain.TimeEntry{}, err
	}
	return c.GetEntry(ctx, userID, id)
}

// SetPause stores the pause bookkeeping of an open entry. Pause time is kept
// in microseconds, the precision of DATETIME(6).
func (c *Client) SetPause(ctx context.Context, userID, id string, pausedAt, resumedAt *time.Time, paused time.Duration) (domain.TimeEntry, error) {
	res, err := c.db.ExecContext(ctx, `
UPDATE time_entries
SET paused_at = ?, resumed_at = ?, paused_us = ?
WHERE id = ? AND user_id = ? AND end_time IS NULL`,
		nullTime(pausedAt), nullTime(resumedAt), paused.Microseconds(), id, userID)
	if err != nil {
		return domain.TimeEntry{}, err
	}
	if err := c.checkOpenUpdate(ctx, res, userID, id); err != nil {
		return domain.TimeEntry{}, err
	}
	return c.GetEntry(ctx, userID, id)
}

// checkOpenUpdate explains an UPDATE guarded by "end_time IS NULL" that
// touched no row: the entry is missing, foreign, or already finalized.
// MySQL reports changed rather than matched rows, so an open entry whose
// values did not change is not an error.
func (c *Client) checkOpenUpdate(ctx context.Context, res sql.Result, userID, id string) error {
	if n, err := res.RowsAffected(); err != nil || n > 0 {
		return err
	}
	e, err := c.GetEntry(ctx, userID, id)
	if err != nil {
		return err
	}
	if !e.IsOpen() {
		return domain.Conflict("time entry is already stopped")
	}
	return nil
}

// ListRecent returns the most recently created entries.
func (c *Client) ListRecent(ctx context.Context, userID string, limit int) ([]domain.TimeEntry, error) {
	return c.selectEntries(ctx, entrySelect+`WHERE e.user_id = ? ORDER BY e.created_at DESC LIMIT ?`, userID, limit)
}

// ListOpen returns entries without an end time, most recently started first.
func (c *Client) ListOpen(ctx context.Context, userID string) ([]domain.TimeEntry, error) {
	return c.selectEntries(ctx, entrySelect+`WHERE e.user_id = ? AND e.end_time IS NULL ORDER BY e.start_time DESC`, userID)
}

func (c *Client) ListRange(ctx context.Context, userID string, from, to time.Time) ([]domain.TimeEntry, error) {
	return c.selectEntries(ctx, entrySelect+`
WHERE e.user_id = ? AND e.start_time >= ? AND e.start_time < ?
ORDER BY e.start_time ASC`, userID, from.UTC(), to.UTC())
}

func (c *Client) selectEntries(ctx context.Context, q string, args ...any) ([]domain.TimeEntry, error) {
	var rows []entryRow
	if err := c.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	out := make([]domain.TimeEntry, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.domain())
	}
	return out, nil
}
