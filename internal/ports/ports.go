package ports

import (
	"context"
	"time"

	"time-tracker/internal/domain"
)

// UserStore persists accounts.
type UserStore interface {
	// CreateUser inserts the user together with its initial categories in
	// one atomic step. A duplicate email yields domain.ErrConflict.
	CreateUser(ctx context.Context, user domain.User, categories []domain.Category) error
	GetUserByID(ctx context.Context, id string) (domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)
	UpdateProfile(ctx context.Context, id, fullName, email string, updatedAt time.Time) (domain.User, error)
}

// CategoryStore reads a user's categories.
type CategoryStore interface {
	ListCategories(ctx context.Context, userID string) ([]domain.Category, error)
	GetCategory(ctx context.Context, userID, id string) (domain.Category, error)
}

// EntryStore persists time entries. Every method is scoped by the owning
// user; an id that belongs to another user behaves as domain.ErrNotFound.
// Implementations must reject a second open entry for the same user with
// domain.ErrConflict.
type EntryStore interface {
	CreateEntry(ctx context.Context, entry domain.TimeEntry) error
	GetEntry(ctx context.Context, userID, id string) (domain.TimeEntry, error)
	// FinalizeEntry sets end and duration on an open entry. Finalizing an
	// entry that already has an end yields domain.ErrConflict.
	FinalizeEntry(ctx context.Context, userID, id string, end time.Time, durationSec int64) (domain.TimeEntry, error)
	// SetPause stores the pause marker, the latest resume and the
	// accumulated pause time of an open entry.
	SetPause(ctx context.Context, userID, id string, pausedAt, resumedAt *time.Time, paused time.Duration) (domain.TimeEntry, error)
	ListRecent(ctx context.Context, userID string, limit int) ([]domain.TimeEntry, error)
	ListOpen(ctx context.Context, userID string) ([]domain.TimeEntry, error)
	// ListRange returns entries whose start lies in [from, to), joined with
	// their categories, ordered by start.
	ListRange(ctx context.Context, userID string, from, to time.Time) ([]domain.TimeEntry, error)
}

// SessionStore persists login sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, session domain.AuthSession) error
	GetSession(ctx context.Context, token string) (domain.AuthSession, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Store bundles every persistence port a backend provides.
type Store interface {
	UserStore
	CategoryStore
	EntryStore
	SessionStore
	Close() error
}
