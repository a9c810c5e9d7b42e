package mysql

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"time-tracker/internal/domain"
)

type userRow struct {
	ID           string         `db:"id"`
	Email        string         `db:"email"`
	PasswordHash string         `db:"password_hash"`
	FullName     string         `db:"full_name"`
	AvatarURL    sql.NullString `db:"avatar_url"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func (r userRow) domain() domain.User {
	return domain.User{
		ID:           r.ID,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		FullName:     r.FullName,
		AvatarURL:    stringPtr(r.AvatarURL),
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
}

const userColumns = `id, email, password_hash, full_name, avatar_url, created_at, updated_at`

// CreateUser inserts the user and its initial categories in one transaction.
func (c *Client) CreateUser(ctx context.Context, u domain.User, categories []domain.Category) error {
	tx, err := c.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
INSERT INTO users (`+userColumns+`)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, u.FullName, nullString(u.AvatarURL), u.CreatedAt.UTC(), u.UpdatedAt.UTC())
	if err != nil {
		tx.Rollback()
		return duplicate(err, "a user with this email already exists")
	}

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO categories (id, user_id, name, color, icon, created_at)
VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, cat := range categories {
		if _, err := stmt.ExecContext(ctx, cat.ID, u.ID, cat.Name, cat.Color, cat.Icon, cat.CreatedAt.UTC()); err != nil {
			tx.Rollback()
			return duplicate(err, "duplicate category name")
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	c.log.Debug("mysql created user", slog.String("user_id", u.ID), slog.Int("categories", len(categories)))
	return nil
}

func (c *Client) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	var r userRow
	err := c.db.GetContext(ctx, &r, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	if err != nil {
		return domain.User{}, notFound(err, "user")
	}
	return r.domain(), nil
}

func (c *Client) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	var r userRow
	err := c.db.GetContext(ctx, &r, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	if err != nil {
		return domain.User{}, notFound(err, "user")
	}
	return r.domain(), nil
}

func (c *Client) UpdateProfile(ctx context.Context, id, fullName, email string, updatedAt time.Time) (domain.User, error) {
	res, err := c.db.ExecContext(ctx,
		`UPDATE users SET full_name = ?, email = ?, updated_at = ? WHERE id = ?`,
		fullName, email, updatedAt.UTC(), id)
	if err != nil {
		return domain.User{}, duplicate(err, "a user with this email already exists")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.User{}, notFound(sql.ErrNoRows, "user")
	}
	return c.GetUserByID(ctx, id)
}
