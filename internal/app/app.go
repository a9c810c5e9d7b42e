package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"time-tracker/internal/adapter/memory"
	msql "time-tracker/internal/adapter/mysql"
	"time-tracker/internal/config"
	"time-tracker/internal/migrate"
	"time-tracker/internal/ports"
	"time-tracker/internal/usecase"
)

// App wires adapters and use cases.
type App struct {
	log     *slog.Logger
	cfg     config.Config
	store   ports.Store
	catalog *config.CatalogHolder

	auth    *usecase.AuthUseCase
	entries *usecase.EntryUseCase
	stats   *usecase.StatsUseCase
}

// New opens the configured backend. The MySQL backend is migrated before use.
func New(ctx context.Context, log *slog.Logger, cfg config.Config) (*App, error) {
	catalog, err := config.NewCatalogHolder(cfg.CategoriesFile, log)
	if err != nil {
		return nil, err
	}

	var store ports.Store
	switch cfg.Store.Backend {
	case config.BackendMemory:
		log.Warn("using in-memory store, data is lost on exit")
		store = memory.New()
	default:
		if err := migrate.Run(ctx, cfg.MySQL.DSN, log); err != nil {
			return nil, err
		}
		store, err = msql.NewClient(ctx, cfg.MySQL.DSN, log)
		if err != nil {
			return nil, err
		}
	}
	return NewWithStore(log, cfg, store, catalog, time.Now), nil
}

// NewWithStore wires use cases over an already opened store.
func NewWithStore(log *slog.Logger, cfg config.Config, store ports.Store, catalog *config.CatalogHolder, now func() time.Time) *App {
	ttl := cfg.Session.TTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &App{
		log:     log,
		cfg:     cfg,
		store:   store,
		catalog: catalog,
		auth: &usecase.AuthUseCase{
			Log:      log,
			Users:    store,
			Sessions: store,
			Catalog:  catalog,
			TTL:      ttl,
			Now:      now,
		},
		entries: &usecase.EntryUseCase{
			Log:        log,
			Entries:    store,
			Categories: store,
			Now:        now,
		},
		stats: &usecase.StatsUseCase{
			Log:      log,
			Entries:  store,
			Catalog:  catalog,
			Location: cfg.Location(),
			Now:      now,
		},
	}
}

func (a *App) Close() error { return a.store.Close() }

// Seed creates the demo account.
func (a *App) Seed(ctx context.Context) error { return a.auth.Seed(ctx) }

// Serve runs the HTTP server, the session sweeper and the catalog watcher
// until ctx is cancelled, then shuts the server down gracefully.
func (a *App) Serve(ctx context.Context) error {
	srv := a.HTTPServer(a.cfg.HTTP.Addr)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.log.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.log.Info("shutting down http server")
		return srv.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		interval := a.cfg.Session.SweepInterval
		if interval <= 0 {
			interval = time.Hour
		}
		return a.auth.RunSweeper(ctx, interval)
	})
	g.Go(func() error {
		return a.catalog.Watch(ctx)
	})
	return g.Wait()
}
