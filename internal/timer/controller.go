// Package timer drives the client side of the timer lifecycle. The controller
// holds at most one active session, derived from the server's open entry, and
// computes elapsed time from absolute timestamps.
package timer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"time-tracker/internal/domain"
)

type State int

const (
	Idle State = iota
	Running
	Paused
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	default:
		return "idle"
	}
}

var (
	ErrEmptyTitle    = fmt.Errorf("%w: title is required", domain.ErrValidation)
	ErrAlreadyActive = errors.New("a timer is already active")
	ErrNoActiveEntry = errors.New("no active timer")
	ErrNotRunning    = errors.New("timer is not running")
	ErrNotPaused     = errors.New("timer is not paused")
	ErrCreateFailed  = errors.New("could not create time entry")
	ErrUpdateFailed  = errors.New("could not update time entry")
)

// EntryStore is the remote side the controller persists through.
type EntryStore interface {
	Create(ctx context.Context, title string, categoryID *string, start time.Time) (domain.TimeEntry, error)
	Stop(ctx context.Context, id string, end time.Time) (domain.TimeEntry, error)
	Pause(ctx context.Context, id string, at time.Time) (domain.TimeEntry, error)
	Resume(ctx context.Context, id string, at time.Time) (domain.TimeEntry, error)
	ListOpen(ctx context.Context) ([]domain.TimeEntry, error)
}

// Session is the controller's view of the open entry.
type Session struct {
	EntryID    string
	Title      string
	CategoryID *string
	StartedAt  time.Time
	Paused     time.Duration
	PausedAt   *time.Time
}

func sessionOf(e domain.TimeEntry) *Session {
	return &Session{
		EntryID:    e.ID,
		Title:      e.Title,
		CategoryID: e.CategoryID,
		StartedAt:  e.Start,
		Paused:     e.Paused,
		PausedAt:   e.PausedAt,
	}
}

// Elapsed returns whole seconds of running time at now.
func (s *Session) Elapsed(now time.Time) int64 {
	e := domain.TimeEntry{Start: s.StartedAt, Paused: s.Paused, PausedAt: s.PausedAt}
	return e.ElapsedAt(now)
}

// Snapshot is a consistent read of the controller.
type Snapshot struct {
	State   State
	Session *Session
	Elapsed int64
}

type Controller struct {
	store EntryStore
	now   func() time.Time
	log   *slog.Logger

	// op serializes state transitions; mu guards the fields below it.
	op      sync.Mutex
	mu      sync.RWMutex
	state   State
	session *Session
}

func NewController(store EntryStore, now func() time.Time, log *slog.Logger) *Controller {
	if now == nil {
		now = time.Now
	}
	return &Controller{store: store, now: now, log: log}
}

func (c *Controller) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// Session returns a copy of the active session, or nil when idle.
func (c *Controller) Session() *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return nil
	}
	s := *c.session
	return &s
}

func (c *Controller) Elapsed(now time.Time) int64 {
	return c.Snapshot(now).Elapsed
}

func (c *Controller) Snapshot(now time.Time) Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return Snapshot{State: c.state}
	}
	s := *c.session
	return Snapshot{State: c.state, Session: &s, Elapsed: s.Elapsed(now)}
}

// Start opens a new entry. The controller turns Running before the store
// answers and rolls back to Idle if the create fails.
func (c *Controller) Start(ctx context.Context, title string, categoryID *string) (*Session, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	c.op.Lock()
	defer c.op.Unlock()

	start := c.now()
	c.mu.Lock()
	if c.session != nil {
		c.mu.Unlock()
		return nil, ErrAlreadyActive
	}
	c.state = Running
	c.session = &Session{Title: title, CategoryID: categoryID, StartedAt: start}
	c.mu.Unlock()

	e, err := c.store.Create(ctx, title, categoryID, start)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state, c.session = Idle, nil
		c.log.Error("timer start failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %w", ErrCreateFailed, err)
	}
	c.session = sessionOf(e)
	c.log.Info("timer started", slog.String("entry_id", e.ID), slog.String("title", e.Title))
	s := *c.session
	return &s, nil
}

func (c *Controller) Pause(ctx context.Context) error {
	c.op.Lock()
	defer c.op.Unlock()

	id, err := c.require(Running, ErrNotRunning)
	if err != nil {
		return err
	}
	e, err := c.store.Pause(ctx, id, c.now())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUpdateFailed, err)
	}
	c.adopt(e)
	c.log.Info("timer paused", slog.String("entry_id", id))
	return nil
}

func (c *Controller) Resume(ctx context.Context) error {
	c.op.Lock()
	defer c.op.Unlock()

	id, err := c.require(Paused, ErrNotPaused)
	if err != nil {
		return err
	}
	e, err := c.store.Resume(ctx, id, c.now())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUpdateFailed, err)
	}
	c.adopt(e)
	c.log.Info("timer resumed", slog.String("entry_id", id))
	return nil
}

// Stop finalizes the active entry. Local state is cleared even when the
// store rejects the update; the next Reconcile picks up a surviving entry.
func (c *Controller) Stop(ctx context.Context) (domain.TimeEntry, error) {
	c.op.Lock()
	defer c.op.Unlock()

	c.mu.Lock()
	if c.session == nil {
		c.mu.Unlock()
		return domain.TimeEntry{}, ErrNoActiveEntry
	}
	id := c.session.EntryID
	c.state, c.session = Idle, nil
	c.mu.Unlock()

	e, err := c.store.Stop(ctx, id, c.now())
	if err != nil {
		c.log.Error("timer stop failed", slog.String("entry_id", id), slog.String("error", err.Error()))
		return domain.TimeEntry{}, fmt.Errorf("%w: %w", ErrUpdateFailed, err)
	}
	var d int64
	if e.DurationSec != nil {
		d = *e.DurationSec
	}
	c.log.Info("timer stopped", slog.String("entry_id", id), slog.Int64("duration_sec", d))
	return e, nil
}

// Reconcile replaces local state with the server's open entry. With several
// open entries it adopts the most recently started one.
func (c *Controller) Reconcile(ctx context.Context) (State, error) {
	c.op.Lock()
	defer c.op.Unlock()

	open, err := c.store.ListOpen(ctx)
	if err != nil {
		return c.State(), err
	}
	if len(open) > 1 {
		c.log.Warn("more than one open time entry", slog.Int("count", len(open)))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(open) == 0 {
		c.state, c.session = Idle, nil
		return Idle, nil
	}
	latest := open[0]
	for _, e := range open[1:] {
		if e.Start.After(latest.Start) {
			latest = e
		}
	}
	c.setLocked(latest)
	c.log.Debug("timer reconciled", slog.String("entry_id", latest.ID), slog.String("state", c.state.String()))
	return c.state, nil
}

func (c *Controller) require(want State, wrong error) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return "", ErrNoActiveEntry
	}
	if c.state != want {
		return "", wrong
	}
	return c.session.EntryID, nil
}

func (c *Controller) adopt(e domain.TimeEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setLocked(e)
}

func (c *Controller) setLocked(e domain.TimeEntry) {
	c.session = sessionOf(e)
	if e.PausedAt != nil {
		c.state = Paused
	} else {
		c.state = Running
	}
}
