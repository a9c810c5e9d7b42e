package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"time-tracker/internal/domain"
	"time-tracker/internal/ports"
)

var _ ports.Store = (*Store)(nil)

func TestOneOpenEntryPerUser(t *testing.T) {
	ctx := context.Background()
	s := New()
	t0 := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	require.NoError(t, s.CreateEntry(ctx, domain.TimeEntry{ID: "a", UserID: "u1", Title: "A", Start: t0}))
	err := s.CreateEntry(ctx, domain.TimeEntry{ID: "b", UserID: "u1", Title: "B", Start: t0})
	assert.ErrorIs(t, err, domain.ErrConflict)

	// Another user is unaffected.
	require.NoError(t, s.CreateEntry(ctx, domain.TimeEntry{ID: "c", UserID: "u2", Title: "C", Start: t0}))

	_, err = s.FinalizeEntry(ctx, "u1", "a", t0.Add(time.Minute), 60)
	require.NoError(t, err)
	require.NoError(t, s.CreateEntry(ctx, domain.TimeEntry{ID: "b", UserID: "u1", Title: "B", Start: t0.Add(time.Hour)}))
}

func TestFinalizeOnce(t *testing.T) {
	ctx := context.Background()
	s := New()
	t0 := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	require.NoError(t, s.CreateEntry(ctx, domain.TimeEntry{ID: "a", UserID: "u1", Title: "A", Start: t0}))

	e, err := s.FinalizeEntry(ctx, "u1", "a", t0.Add(125*time.Second), 125)
	require.NoError(t, err)
	assert.Equal(t, int64(125), *e.DurationSec)

	_, err = s.FinalizeEntry(ctx, "u1", "a", t0.Add(time.Hour), 3600)
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = s.FinalizeEntry(ctx, "u2", "a", t0.Add(time.Hour), 3600)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListsJoinCategories(t *testing.T) {
	ctx := context.Background()
	s := New()
	t0 := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	require.NoError(t, s.CreateUser(ctx, domain.User{ID: "u1", Email: "a@b.c"}, []domain.Category{
		{ID: "work", Name: "Work"}, {ID: "rest", Name: "Rest"},
	}))
	work := "work"
	end := t0.Add(time.Minute)
	d := int64(60)
	require.NoError(t, s.CreateEntry(ctx, domain.TimeEntry{ID: "e1", UserID: "u1", Title: "x", CategoryID: &work, Start: t0, End: &end, DurationSec: &d, CreatedAt: t0}))
	require.NoError(t, s.CreateEntry(ctx, domain.TimeEntry{ID: "e2", UserID: "u1", Title: "y", Start: t0.Add(time.Hour), CreatedAt: t0.Add(time.Hour)}))

	recent, err := s.ListRecent(ctx, "u1", 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "e2", recent[0].ID)
	require.NotNil(t, recent[1].Category)
	assert.Equal(t, "Work", recent[1].Category.Name)

	open, err := s.ListOpen(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "e2", open[0].ID)

	inRange, err := s.ListRange(ctx, "u1", t0, t0.Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, inRange, 1)

	cats, err := s.ListCategories(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Rest", cats[0].Name)

	_, err = s.GetCategory(ctx, "u2", "work")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s := New()
	require.NoError(t, s.CreateUser(ctx, domain.User{ID: "u1", Email: "a@b.c"}, nil))
	assert.ErrorIs(t, s.CreateUser(ctx, domain.User{ID: "u2", Email: "A@b.c"}, nil), domain.ErrConflict)
}

func TestDeleteExpired(t *testing.T) {
	ctx := context.Background()
	s := New()
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	require.NoError(t, s.CreateSession(ctx, domain.AuthSession{Token: "old", ExpiresAt: now.Add(-time.Second)}))
	require.NoError(t, s.CreateSession(ctx, domain.AuthSession{Token: "new", ExpiresAt: now.Add(time.Hour)}))

	n, err := s.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	_, err = s.GetSession(ctx, "old")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
