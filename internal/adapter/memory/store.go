// Package memory is an in-process implementation of ports.Store. It honours
// the same constraints as the MySQL backend (unique emails, unique category
// names per user, one open entry per user) and is used for local runs and
// tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"time-tracker/internal/domain"
)

type Store struct {
	mu         sync.RWMutex
	users      map[string]domain.User
	categories map[string]domain.Category
	entries    map[string]domain.TimeEntry
	sessions   map[string]domain.AuthSession
}

func New() *Store {
	return &Store{
		users:      make(map[string]domain.User),
		categories: make(map[string]domain.Category),
		entries:    make(map[string]domain.TimeEntry),
		sessions:   make(map[string]domain.AuthSession),
	}
}

func (s *Store) Close() error { return nil }

func notFound(what string) error { return fmt.Errorf("%w: %s", domain.ErrNotFound, what) }

func (s *Store) CreateUser(_ context.Context, u domain.User, categories []domain.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return domain.Conflict("a user with this email already exists")
		}
	}
	names := make(map[string]bool, len(categories))
	for _, c := range categories {
		if names[c.Name] {
			return domain.Conflict("duplicate category name")
		}
		names[c.Name] = true
	}
	s.users[u.ID] = u
	for _, c := range categories {
		c.UserID = u.ID
		s.categories[c.ID] = c
	}
	return nil
}

func (s *Store) GetUserByID(_ context.Context, id string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return domain.User{}, notFound("user")
	}
	return u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return domain.User{}, notFound("user")
}

func (s *Store) UpdateProfile(_ context.Context, id, fullName, email string, updatedAt time.Time) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return domain.User{}, notFound("user")
	}
	for _, other := range s.users {
		if other.ID != id && strings.EqualFold(other.Email, email) {
			return domain.User{}, domain.Conflict("a user with this email already exists")
		}
	}
	u.FullName, u.Email, u.UpdatedAt = fullName, email, updatedAt.UTC()
	s.users[id] = u
	return u, nil
}

func (s *Store) ListCategories(_ context.Context, userID string) ([]domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Category
	for _, c := range s.categories {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) GetCategory(_ context.Context, userID, id string) (domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.categories[id]
	if !ok || c.UserID != userID {
		return domain.Category{}, notFound("category")
	}
	return c, nil
}

func (s *Store) CreateEntry(_ context.Context, e domain.TimeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.IsOpen() {
		for _, other := range s.entries {
			if other.UserID == e.UserID && other.IsOpen() {
				return domain.Conflict("an open time entry already exists")
			}
		}
	}
	e.Category = nil
	s.entries[e.ID] = e
	return nil
}

func (s *Store) GetEntry(_ context.Context, userID, id string) (domain.TimeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok || e.UserID != userID {
		return domain.TimeEntry{}, notFound("time entry")
	}
	return s.withCategory(e), nil
}

func (s *Store) FinalizeEntry(_ context.Context, userID, id string, end time.Time, durationSec int64) (domain.TimeEntry, error) {
	return s.updateOpen(userID, id, func(e *domain.TimeEntry) {
		e.End = &end
		e.DurationSec = &durationSec
	})
}

func (s *Store) SetPause(_ context.Context, userID, id string, pausedAt, resumedAt *time.Time, paused time.Duration) (domain.TimeEntry, error) {
	return s.updateOpen(userID, id, func(e *domain.TimeEntry) {
		e.PausedAt = pausedAt
		e.ResumedAt = resumedAt
		e.Paused = paused
	})
}

func (s *Store) updateOpen(userID, id string, apply func(*domain.TimeEntry)) (domain.TimeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok || e.UserID != userID {
		return domain.TimeEntry{}, notFound("time entry")
	}
	if !e.IsOpen() {
		return domain.TimeEntry{}, domain.Conflict("time entry is already stopped")
	}
	apply(&e)
	s.entries[id] = e
	return s.withCategory(e), nil
}

func (s *Store) ListRecent(_ context.Context, userID string, limit int) ([]domain.TimeEntry, error) {
	out := s.filter(userID, func(domain.TimeEntry) bool { return true })
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) ListOpen(_ context.Context, userID string) ([]domain.TimeEntry, error) {
	out := s.filter(userID, domain.TimeEntry.IsOpen)
	sort.Slice(out, func(i, j int) bool { return out[i].Start.After(out[j].Start) })
	return out, nil
}

func (s *Store) ListRange(_ context.Context, userID string, from, to time.Time) ([]domain.TimeEntry, error) {
	out := s.filter(userID, func(e domain.TimeEntry) bool {
		return !e.Start.Before(from) && e.Start.Before(to)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (s *Store) filter(userID string, keep func(domain.TimeEntry) bool) []domain.TimeEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.TimeEntry
	for _, e := range s.entries {
		if e.UserID == userID && keep(e) {
			out = append(out, s.withCategory(e))
		}
	}
	return out
}

// withCategory joins the entry's category; callers hold the lock.
func (s *Store) withCategory(e domain.TimeEntry) domain.TimeEntry {
	if e.CategoryID == nil {
		return e
	}
	if c, ok := s.categories[*e.CategoryID]; ok {
		e.Category = &c
	}
	return e
}

func (s *Store) CreateSession(_ context.Context, sess domain.AuthSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.Token] = sess
	return nil
}

func (s *Store) GetSession(_ context.Context, token string) (domain.AuthSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[token]
	if !ok {
		return domain.AuthSession{}, notFound("session")
	}
	return sess, nil
}

func (s *Store) DeleteSession(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

func (s *Store) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for token, sess := range s.sessions {
		if sess.Expired(now) {
			delete(s.sessions, token)
			n++
		}
	}
	return n, nil
}
