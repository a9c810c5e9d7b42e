package domain

import "time"

// User is an account that owns categories and time entries.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	FullName     string
	AvatarURL    *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AuthSession is an opaque bearer token issued at login.
type AuthSession struct {
	Token     string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired reports whether the session is no longer valid at t.
func (s AuthSession) Expired(t time.Time) bool { return !t.Before(s.ExpiresAt) }
