package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"time-tracker/internal/config"
	"time-tracker/internal/domain"
	"time-tracker/internal/ports"
)

const (
	minPasswordLen = 6
	bcryptCost     = 10

	DemoEmail    = "demo@example.com"
	DemoPassword = "password123"
)

// CatalogSource yields the current category catalog.
type CatalogSource interface {
	Get() config.Catalog
}

// AuthUseCase registers accounts and issues bearer sessions.
type AuthUseCase struct {
	Log      *slog.Logger
	Users    ports.UserStore
	Sessions ports.SessionStore
	Catalog  CatalogSource
	TTL      time.Duration
	Now      func() time.Time
}

// Register creates an account together with the catalog's default categories.
func (uc *AuthUseCase) Register(ctx context.Context, email, password, fullName string) (domain.User, error) {
	email = normalizeEmail(email)
	fullName = strings.TrimSpace(fullName)
	if email == "" || password == "" || fullName == "" {
		return domain.User{}, domain.Invalid("email, password and full name are required")
	}
	if err := validateEmail(email); err != nil {
		return domain.User{}, err
	}
	if len(password) < minPasswordLen {
		return domain.User{}, domain.Invalid("password must be at least %d characters", minPasswordLen)
	}
	if _, err := uc.Users.GetUserByEmail(ctx, email); err == nil {
		return domain.User{}, domain.Conflict("a user with this email already exists")
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	now := uc.Now().UTC()
	user := domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		FullName:     fullName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	defaults := uc.Catalog.Get().Defaults
	categories := make([]domain.Category, 0, len(defaults))
	for _, d := range defaults {
		categories = append(categories, domain.Category{
			ID:        uuid.NewString(),
			UserID:    user.ID,
			Name:      d.Name,
			Color:     d.Color,
			Icon:      d.Icon,
			CreatedAt: now,
		})
	}
	if err := uc.Users.CreateUser(ctx, user, categories); err != nil {
		return domain.User{}, err
	}
	uc.Log.Info("user registered", slog.String("user_id", user.ID), slog.Int("categories", len(categories)))
	return user, nil
}

// Login verifies credentials and persists a new session.
func (uc *AuthUseCase) Login(ctx context.Context, email, password string) (domain.User, domain.AuthSession, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return domain.User{}, domain.AuthSession{}, domain.Invalid("email and password are required")
	}
	user, err := uc.Users.GetUserByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, domain.AuthSession{}, fmt.Errorf("%w: invalid email or password", domain.ErrUnauthorized)
	}
	if err != nil {
		return domain.User{}, domain.AuthSession{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, domain.AuthSession{}, fmt.Errorf("%w: invalid email or password", domain.ErrUnauthorized)
	}

	token, err := newToken()
	if err != nil {
		return domain.User{}, domain.AuthSession{}, err
	}
	now := uc.Now().UTC()
	session := domain.AuthSession{Token: token, UserID: user.ID, ExpiresAt: now.Add(uc.TTL), CreatedAt: now}
	if err := uc.Sessions.CreateSession(ctx, session); err != nil {
		return domain.User{}, domain.AuthSession{}, err
	}
	uc.Log.Info("user logged in", slog.String("user_id", user.ID))
	return user, session, nil
}

// Authenticate resolves a bearer token to its user.
func (uc *AuthUseCase) Authenticate(ctx context.Context, token string) (domain.User, error) {
	if token == "" {
		return domain.User{}, fmt.Errorf("%w: missing token", domain.ErrUnauthorized)
	}
	session, err := uc.Sessions.GetSession(ctx, token)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, fmt.Errorf("%w: unknown token", domain.ErrUnauthorized)
	}
	if err != nil {
		return domain.User{}, err
	}
	if session.Expired(uc.Now()) {
		_ = uc.Sessions.DeleteSession(ctx, token)
		return domain.User{}, fmt.Errorf("%w: session expired", domain.ErrUnauthorized)
	}
	user, err := uc.Users.GetUserByID(ctx, session.UserID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, fmt.Errorf("%w: user not found", domain.ErrUnauthorized)
	}
	return user, err
}

func (uc *AuthUseCase) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return uc.Sessions.DeleteSession(ctx, token)
}

func (uc *AuthUseCase) UpdateProfile(ctx context.Context, userID, fullName, email string) (domain.User, error) {
	email = normalizeEmail(email)
	fullName = strings.TrimSpace(fullName)
	if email == "" || fullName == "" {
		return domain.User{}, domain.Invalid("email and full name are required")
	}
	if err := validateEmail(email); err != nil {
		return domain.User{}, err
	}
	return uc.Users.UpdateProfile(ctx, userID, fullName, email, uc.Now())
}

// Seed creates the demo account unless it already exists.
func (uc *AuthUseCase) Seed(ctx context.Context) error {
	_, err := uc.Users.GetUserByEmail(ctx, DemoEmail)
	if err == nil {
		uc.Log.Info("demo user already present", slog.String("email", DemoEmail))
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	_, err = uc.Register(ctx, DemoEmail, DemoPassword, "Demo User")
	return err
}

// SweepSessions deletes expired sessions.
func (uc *AuthUseCase) SweepSessions(ctx context.Context) error {
	n, err := uc.Sessions.DeleteExpired(ctx, uc.Now())
	if err != nil {
		return err
	}
	if n > 0 {
		uc.Log.Info("expired sessions removed", slog.Int64("count", n))
	}
	return nil
}

// RunSweeper calls SweepSessions every interval until ctx is done.
func (uc *AuthUseCase) RunSweeper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := uc.SweepSessions(ctx); err != nil {
				uc.Log.Error("session sweep failed", slog.String("error", err.Error()))
			}
		}
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return domain.Invalid("invalid email address")
	}
	return nil
}

// newToken returns 32 random bytes, hex encoded.
func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
