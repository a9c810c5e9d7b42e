package domain

import "time"

// Category groups entries for statistics; names are unique per user.
type Category struct {
	ID        string
	UserID    string
	Name      string
	Color     string // hex, used by charts
	Icon      string
	CreatedAt time.Time
}
