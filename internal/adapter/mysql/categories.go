package mysql

import (
	"context"
	"time"

	"time-tracker/internal/domain"
)

type categoryRow struct {
	ID        string    `db:"id"`
	UserID    string    `db:"user_id"`
	Name      string    `db:"name"`
	Color     string    `db:"color"`
	Icon      string    `db:"icon"`
	CreatedAt time.Time `db:"created_at"`
}

func (r categoryRow) domain() domain.Category {
	return domain.Category{
		ID:        r.ID,
		UserID:    r.UserID,
		Name:      r.Name,
		Color:     r.Color,
		Icon:      r.Icon,
		CreatedAt: r.CreatedAt.UTC(),
	}
}

// ListCategories returns the user's categories ordered by name.
func (c *Client) ListCategories(ctx context.Context, userID string) ([]domain.Category, error) {
	var rows []categoryRow
	err := c.db.SelectContext(ctx, &rows, `
SELECT id, user_id, name, color, icon, created_at
FROM categories
WHERE user_id = ?
ORDER BY name ASC`, userID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Category, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.domain())
	}
	return out, nil
}

func (c *Client) GetCategory(ctx context.Context, userID, id string) (domain.Category, error) {
	var r categoryRow
	err := c.db.GetContext(ctx, &r, `
SELECT id, user_id, name, color, icon, created_at
FROM categories
WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return domain.Category{}, notFound(err, "category")
	}
	return r.domain(), nil
}
