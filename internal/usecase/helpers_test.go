package usecase

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"time-tracker/internal/adapter/memory"
	"time-tracker/internal/config"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type staticCatalog struct{ c config.Catalog }

func (s staticCatalog) Get() config.Catalog { return s.c }

type fixture struct {
	clock   *fakeClock
	store   *memory.Store
	auth    *AuthUseCase
	entries *EntryUseCase
	stats   *StatsUseCase
}

func newFixture() *fixture {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	clock := &fakeClock{t: time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)} // a Wednesday
	store := memory.New()
	catalog := staticCatalog{config.DefaultCatalog()}
	return &fixture{
		clock: clock,
		store: store,
		auth: &AuthUseCase{
			Log: log, Users: store, Sessions: store, Catalog: catalog,
			TTL: 7 * 24 * time.Hour, Now: clock.Now,
		},
		entries: &EntryUseCase{Log: log, Entries: store, Categories: store, Now: clock.Now},
		stats: &StatsUseCase{
			Log: log, Entries: store, Catalog: catalog, Location: time.UTC, Now: clock.Now,
		},
	}
}
