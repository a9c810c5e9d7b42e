package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"time-tracker/internal/domain"
)

func TestRegisterCreatesDefaultCategories(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	u, err := f.auth.Register(ctx, " Ann@Example.com ", "secret1", "Ann")
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", u.Email)
	assert.NotEqual(t, "secret1", u.PasswordHash)

	cats, err := f.store.ListCategories(ctx, u.ID)
	require.NoError(t, err)
	names := make([]string, 0, len(cats))
	for _, c := range cats {
		names = append(names, c.Name)
	}
	assert.ElementsMatch(t, []string{"Work", "Study", "Sport", "Rest", "Other"}, names)
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	_, err := f.auth.Register(ctx, "ann@example.com", "secret1", "Ann")
	require.NoError(t, err)

	tests := []struct {
		name                      string
		email, password, fullName string
		want                      error
	}{
		{"missing fields", "", "secret1", "Ann", domain.ErrValidation},
		{"short password", "bob@example.com", "12345", "Bob", domain.ErrValidation},
		{"bad email", "not-an-email", "secret1", "Bob", domain.ErrValidation},
		{"duplicate", "ANN@example.com", "secret1", "Ann", domain.ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.auth.Register(ctx, tt.email, tt.password, tt.fullName)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoginAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	u, err := f.auth.Register(ctx, "ann@example.com", "secret1", "Ann")
	require.NoError(t, err)

	_, _, err = f.auth.Login(ctx, "ann@example.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, _, err = f.auth.Login(ctx, "nobody@example.com", "secret1")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, session, err := f.auth.Login(ctx, "ann@example.com", "secret1")
	require.NoError(t, err)
	assert.Len(t, session.Token, 64)
	assert.Equal(t, f.clock.Now().Add(7*24*time.Hour), session.ExpiresAt)

	got, err := f.auth.Authenticate(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = f.auth.Authenticate(ctx, "")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = f.auth.Authenticate(ctx, "bogus")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	f.clock.Advance(8 * 24 * time.Hour)
	_, err = f.auth.Authenticate(ctx, session.Token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogoutAndSweep(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	_, err := f.auth.Register(ctx, "ann@example.com", "secret1", "Ann")
	require.NoError(t, err)

	_, s1, err := f.auth.Login(ctx, "ann@example.com", "secret1")
	require.NoError(t, err)
	require.NoError(t, f.auth.Logout(ctx, s1.Token))
	_, err = f.auth.Authenticate(ctx, s1.Token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, s2, err := f.auth.Login(ctx, "ann@example.com", "secret1")
	require.NoError(t, err)
	f.clock.Advance(7 * 24 * time.Hour)
	require.NoError(t, f.auth.SweepSessions(ctx))
	_, err = f.store.GetSession(ctx, s2.Token)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	ann, err := f.auth.Register(ctx, "ann@example.com", "secret1", "Ann")
	require.NoError(t, err)
	_, err = f.auth.Register(ctx, "bob@example.com", "secret1", "Bob")
	require.NoError(t, err)

	f.clock.Advance(time.Hour)
	u, err := f.auth.UpdateProfile(ctx, ann.ID, "Ann Lee", "ann.lee@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ann Lee", u.FullName)
	assert.Equal(t, f.clock.Now(), u.UpdatedAt)
	assert.Equal(t, ann.CreatedAt, u.CreatedAt)

	_, err = f.auth.UpdateProfile(ctx, ann.ID, "Ann", "bob@example.com")
	assert.ErrorIs(t, err, domain.ErrConflict)
	_, err = f.auth.UpdateProfile(ctx, ann.ID, "", "ann@example.com")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	require.NoError(t, f.auth.Seed(ctx))
	require.NoError(t, f.auth.Seed(ctx))
	_, _, err := f.auth.Login(ctx, DemoEmail, DemoPassword)
	assert.NoError(t, err)
}
