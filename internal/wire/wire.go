// Package wire holds the JSON shapes exchanged between the HTTP API and its
// clients. Entries and users use camelCase keys; statistics use snake_case.
package wire

import (
	"time"

	"time-tracker/internal/domain"
	"time-tracker/internal/stats"
)

type User struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	FullName  string  `json:"fullName"`
	AvatarURL *string `json:"avatarUrl"`
}

type Category struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

type TimeEntry struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	CategoryID *string    `json:"categoryId"`
	StartTime  time.Time  `json:"startTime"`
	EndTime    *time.Time `json:"endTime"`
	Duration   *int64     `json:"duration"`
	PausedAt   *time.Time `json:"pausedAt,omitempty"`
	ResumedAt  *time.Time `json:"resumedAt,omitempty"`
	PausedMs   int64      `json:"pausedMs"`
	CreatedAt  time.Time  `json:"createdAt"`
	Category   *Category  `json:"category,omitempty"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User      User      `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type ProfileRequest struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

type CreateEntryRequest struct {
	Title      string     `json:"title"`
	CategoryID *string    `json:"categoryId"`
	StartTime  *time.Time `json:"startTime"`
}

// StopEntryRequest finalizes an entry. The server computes the duration from
// its own recorded start; EndTime defaults to the server's clock.
type StopEntryRequest struct {
	EndTime *time.Time `json:"endTime"`
}

type PauseRequest struct {
	At *time.Time `json:"at"`
}

type Message struct {
	Message string `json:"message"`
}

type Error struct {
	Error string `json:"error"`
}

type CategoryStat struct {
	Name          string  `json:"category_name"`
	Icon          string  `json:"category_icon"`
	Color         string  `json:"category_color"`
	TotalDuration int64   `json:"total_duration"`
	EntryCount    int     `json:"entry_count"`
	Percent       float64 `json:"percent"`
}

type DayTotal struct {
	Date       string           `json:"date"`
	Total      int64            `json:"total"`
	ByCategory map[string]int64 `json:"by_category"`
}

type Summary struct {
	From             time.Time      `json:"from"`
	To               time.Time      `json:"to"`
	TotalTime        int64          `json:"total_time"`
	Categories       []CategoryStat `json:"categories"`
	MostUsed         *CategoryStat  `json:"most_used_category"`
	LeastUsed        *CategoryStat  `json:"least_used_category"`
	WorkStudyTime    int64          `json:"work_study_time"`
	WorkStudyPercent float64        `json:"work_study_percent"`
	UnproductiveTime int64          `json:"unproductive_time"`
	AverageSession   float64        `json:"average_session"`
	MedianSession    float64        `json:"median_session"`
	Days             []DayTotal     `json:"days,omitempty"`
}

func FromUser(u domain.User) User {
	return User{ID: u.ID, Email: u.Email, FullName: u.FullName, AvatarURL: u.AvatarURL}
}

func (u User) Domain() domain.User {
	return domain.User{ID: u.ID, Email: u.Email, FullName: u.FullName, AvatarURL: u.AvatarURL}
}

func FromCategory(c domain.Category) Category {
	return Category{ID: c.ID, Name: c.Name, Color: c.Color, Icon: c.Icon}
}

func FromCategories(cs []domain.Category) []Category {
	out := make([]Category, 0, len(cs))
	for _, c := range cs {
		out = append(out, FromCategory(c))
	}
	return out
}

func (c Category) Domain() domain.Category {
	return domain.Category{ID: c.ID, Name: c.Name, Color: c.Color, Icon: c.Icon}
}

func FromEntry(e domain.TimeEntry) TimeEntry {
	out := TimeEntry{
		ID:         e.ID,
		Title:      e.Title,
		CategoryID: e.CategoryID,
		StartTime:  e.Start,
		EndTime:    e.End,
		Duration:   e.DurationSec,
		PausedAt:   e.PausedAt,
		ResumedAt:  e.ResumedAt,
		PausedMs:   e.Paused.Milliseconds(),
		CreatedAt:  e.CreatedAt,
	}
	if e.Category != nil {
		c := FromCategory(*e.Category)
		out.Category = &c
	}
	return out
}

func FromEntries(es []domain.TimeEntry) []TimeEntry {
	out := make([]TimeEntry, 0, len(es))
	for _, e := range es {
		out = append(out, FromEntry(e))
	}
	return out
}

func (e TimeEntry) Domain() domain.TimeEntry {
	out := domain.TimeEntry{
		ID:          e.ID,
		Title:       e.Title,
		CategoryID:  e.CategoryID,
		Start:       e.StartTime,
		End:         e.EndTime,
		DurationSec: e.Duration,
		PausedAt:    e.PausedAt,
		ResumedAt:   e.ResumedAt,
		Paused:      time.Duration(e.PausedMs) * time.Millisecond,
		CreatedAt:   e.CreatedAt,
	}
	if e.Category != nil {
		c := e.Category.Domain()
		out.Category = &c
	}
	return out
}

func fromStat(s stats.CategoryStat) CategoryStat {
	return CategoryStat{
		Name:          s.Name,
		Icon:          s.Icon,
		Color:         s.Color,
		TotalDuration: s.TotalDuration,
		EntryCount:    s.EntryCount,
		Percent:       s.Percent,
	}
}

// FromSummary converts a reduced summary and its optional per-day breakdown.
func FromSummary(w stats.Window, s stats.Summary, days []stats.DayTotal) Summary {
	out := Summary{
		From:             w.From,
		To:               w.To,
		TotalTime:        s.TotalTime,
		Categories:       make([]CategoryStat, 0, len(s.Categories)),
		WorkStudyTime:    s.WorkStudyTime,
		WorkStudyPercent: s.WorkStudyPercent,
		UnproductiveTime: s.UnproductiveTime,
		AverageSession:   s.AverageSession,
		MedianSession:    s.MedianSession,
	}
	for _, c := range s.Categories {
		out.Categories = append(out.Categories, fromStat(c))
	}
	if s.MostUsed != nil {
		m := fromStat(*s.MostUsed)
		out.MostUsed = &m
	}
	if s.LeastUsed != nil {
		l := fromStat(*s.LeastUsed)
		out.LeastUsed = &l
	}
	for _, d := range days {
		out.Days = append(out.Days, DayTotal{
			Date:       d.Date.Format("2006-01-02"),
			Total:      d.Total,
			ByCategory: d.ByCategory,
		})
	}
	return out
}
