package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"time-tracker/internal/domain"
	"time-tracker/internal/ports"
)

const DefaultRecentLimit = 10

// MaxClockSkew is how far ahead of the server clock a client-supplied start
// may lie.
const MaxClockSkew = time.Minute

// EntryUseCase owns the server side of the timer lifecycle: creating open
// entries, pausing and resuming them, and finalizing them exactly once.
// Durations are always computed from the server-recorded start.
type EntryUseCase struct {
	Log        *slog.Logger
	Entries    ports.EntryStore
	Categories ports.CategoryStore
	Now        func() time.Time
}

// Create opens a new entry. The store rejects it with domain.ErrConflict
// when the user already has an open entry.
func (uc *EntryUseCase) Create(ctx context.Context, userID, title string, categoryID *string, start *time.Time) (domain.TimeEntry, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.TimeEntry{}, domain.Invalid("title is required")
	}
	if categoryID != nil && *categoryID == "" {
		categoryID = nil
	}
	if categoryID != nil {
		if _, err := uc.Categories.GetCategory(ctx, userID, *categoryID); err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return domain.TimeEntry{}, domain.Invalid("unknown category")
			}
			return domain.TimeEntry{}, err
		}
	}
	now := uc.Now().UTC()
	startAt := now
	if start != nil && !start.IsZero() {
		startAt = start.UTC()
	}
	if startAt.After(now.Add(MaxClockSkew)) {
		return domain.TimeEntry{}, domain.Invalid("start time is in the future")
	}

	entry := domain.TimeEntry{
		ID:         uuid.NewString(),
		UserID:     userID,
		Title:      title,
		CategoryID: categoryID,
		Start:      startAt,
		CreatedAt:  now,
	}
	if err := uc.Entries.CreateEntry(ctx, entry); err != nil {
		return domain.TimeEntry{}, err
	}
	uc.Log.Info("time entry started", slog.String("user_id", userID), slog.String("entry_id", entry.ID))
	return uc.Entries.GetEntry(ctx, userID, entry.ID)
}

// Stop finalizes an open entry at end (default: now). An explicit end before
// the start is rejected; any other end earlier than the entry's last
// transition is clamped to it, so an open entry can always be stopped.
func (uc *EntryUseCase) Stop(ctx context.Context, userID, id string, end *time.Time) (domain.TimeEntry, error) {
	e, err := uc.open(ctx, userID, id)
	if err != nil {
		return domain.TimeEntry{}, err
	}
	endAt := uc.at(end)
	if end != nil && !end.IsZero() && endAt.Before(e.Start) {
		return domain.TimeEntry{}, domain.Invalid("end time is before start time")
	}
	if mark := e.LastMark(); endAt.Before(mark) {
		endAt = mark
	}
	duration := e.ElapsedAt(endAt)
	out, err := uc.Entries.FinalizeEntry(ctx, userID, id, endAt, duration)
	if err != nil {
		return domain.TimeEntry{}, err
	}
	uc.Log.Info("time entry stopped",
		slog.String("user_id", userID),
		slog.String("entry_id", id),
		slog.Int64("duration_sec", duration),
	)
	return out, nil
}

// Pause freezes the elapsed time of a running entry. A pause instant earlier
// than the start or the latest resume is clamped to it.
func (uc *EntryUseCase) Pause(ctx context.Context, userID, id string, at *time.Time) (domain.TimeEntry, error) {
	e, err := uc.open(ctx, userID, id)
	if err != nil {
		return domain.TimeEntry{}, err
	}
	if e.PausedAt != nil {
		return domain.TimeEntry{}, domain.Conflict("time entry is already paused")
	}
	pausedAt := uc.at(at)
	if mark := e.LastMark(); pausedAt.Before(mark) {
		pausedAt = mark
	}
	return uc.Entries.SetPause(ctx, userID, id, &pausedAt, e.ResumedAt, e.Paused)
}

// Resume folds the current pause into the accumulated pause time.
func (uc *EntryUseCase) Resume(ctx context.Context, userID, id string, at *time.Time) (domain.TimeEntry, error) {
	e, err := uc.open(ctx, userID, id)
	if err != nil {
		return domain.TimeEntry{}, err
	}
	if e.PausedAt == nil {
		return domain.TimeEntry{}, domain.Conflict("time entry is not paused")
	}
	resumedAt := uc.at(at)
	if resumedAt.Before(*e.PausedAt) {
		resumedAt = *e.PausedAt
	}
	paused := e.Paused + resumedAt.Sub(*e.PausedAt)
	return uc.Entries.SetPause(ctx, userID, id, nil, &resumedAt, paused)
}

// Recent returns the latest entries, newest first.
func (uc *EntryUseCase) Recent(ctx context.Context, userID string, limit int) ([]domain.TimeEntry, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	return uc.Entries.ListRecent(ctx, userID, limit)
}

// Open returns the user's open entries, most recently started first.
// More than one indicates data predating the one-open-entry constraint.
func (uc *EntryUseCase) Open(ctx context.Context, userID string) ([]domain.TimeEntry, error) {
	entries, err := uc.Entries.ListOpen(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(entries) > 1 {
		uc.Log.Warn("user has more than one open time entry",
			slog.String("user_id", userID), slog.Int("count", len(entries)))
	}
	return entries, nil
}

func (uc *EntryUseCase) open(ctx context.Context, userID, id string) (domain.TimeEntry, error) {
	e, err := uc.Entries.GetEntry(ctx, userID, id)
	if err != nil {
		return domain.TimeEntry{}, err
	}
	if !e.IsOpen() {
		return domain.TimeEntry{}, domain.Conflict("time entry is already stopped")
	}
	return e, nil
}

func (uc *EntryUseCase) at(t *time.Time) time.Time {
	if t == nil || t.IsZero() {
		return uc.Now().UTC()
	}
	return t.UTC()
}
