package mysql

import (
	"context"
	"time"

	"time-tracker/internal/domain"
)

type sessionRow struct {
	Token     string    `db:"token"`
	UserID    string    `db:"user_id"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

func (c *Client) CreateSession(ctx context.Context, s domain.AuthSession) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO auth_sessions (token, user_id, expires_at, created_at) VALUES (?, ?, ?, ?)`,
		s.Token, s.UserID, s.ExpiresAt.UTC(), s.CreatedAt.UTC())
	return err
}

func (c *Client) GetSession(ctx context.Context, token string) (domain.AuthSession, error) {
	var r sessionRow
	err := c.db.GetContext(ctx, &r,
		`SELECT token, user_id, expires_at, created_at FROM auth_sessions WHERE token = ?`, token)
	if err != nil {
		return domain.AuthSession{}, notFound(err, "session")
	}
	return domain.AuthSession{
		Token:     r.Token,
		UserID:    r.UserID,
		ExpiresAt: r.ExpiresAt.UTC(),
		CreatedAt: r.CreatedAt.UTC(),
	}, nil
}

func (c *Client) DeleteSession(ctx context.Context, token string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM auth_sessions WHERE token = ?`, token)
	return err
}

// DeleteExpired removes sessions that expired at or before now.
func (c *Client) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := c.db.ExecContext(ctx, `DELETE FROM auth_sessions WHERE expires_at <= ?`, now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
