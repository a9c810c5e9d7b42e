package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"time-tracker/internal/domain"
	"time-tracker/internal/stats"
	"time-tracker/internal/usecase"
	"time-tracker/internal/wire"
)

const (
	tokenCookie  = "token"
	maxBodyBytes = 1 << 20
	maxListLimit = 100
	xlsxMIME     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type ctxKey int

const (
	userKey ctxKey = iota
	tokenKey
)

// HTTPServer returns a configured http.Server exposing the REST API.
// Call ListenAndServe on the returned server in a goroutine and Shutdown it on exit.
func (a *App) HTTPServer(addr string) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	a.log.Info("http server configured", slog.String("addr", addr))
	return srv
}

// Handler builds the router.
func (a *App) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(loggingMiddleware(a.log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", a.handleRegister)
		r.Post("/auth/login", a.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(a.requireAuth)

			r.Post("/auth/logout", a.handleLogout)
			r.Get("/auth/me", a.handleMe)
			r.Patch("/auth/me", a.handleUpdateProfile)

			r.Get("/categories", a.handleCategories)

			r.Get("/time-entries", a.handleListEntries)
			r.Post("/time-entries", a.handleCreateEntry)
			r.Patch("/time-entries/{id}", a.handleStopEntry)
			r.Post("/time-entries/{id}/pause", a.handlePauseEntry)
			r.Post("/time-entries/{id}/resume", a.handleResumeEntry)

			r.Get("/statistics/weekly", a.handleWeekly)
			r.Get("/statistics/daily", a.handleDaily)
			r.Get("/statistics/range", a.handleRange)
			r.Get("/statistics/export", a.handleExport)
		})
	})
	return r
}

// loggingMiddleware provides basic request logging.
func loggingMiddleware(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info("http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.String("remote", r.RemoteAddr),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.Duration("dur", time.Since(start)),
			)
		})
	}
}

// requireAuth resolves the bearer token or the token cookie to a user.
func (a *App) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := tokenFrom(r)
		user, err := a.auth.Authenticate(r.Context(), token)
		if err != nil {
			a.writeError(w, r, err)
			return
		}
		ctx := context.WithValue(r.Context(), userKey, user)
		ctx = context.WithValue(ctx, tokenKey, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func tokenFrom(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(tokenCookie); err == nil {
		return c.Value
	}
	return ""
}

func userFrom(r *http.Request) domain.User {
	u, _ := r.Context().Value(userKey).(domain.User)
	return u
}

func (a *App) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req wire.RegisterRequest
	if err := decode(r, &req, false); err != nil {
		a.writeError(w, r, err)
		return
	}
	u, err := a.auth.Register(r.Context(), req.Email, req.Password, req.FullName)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, wire.FromUser(u))
}

func (a *App) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req wire.LoginRequest
	if err := decode(r, &req, false); err != nil {
		a.writeError(w, r, err)
		return
	}
	u, session, err := a.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    session.Token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		Secure:   a.cfg.HTTP.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	a.writeJSON(w, http.StatusOK, wire.LoginResponse{
		User:      wire.FromUser(u),
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	})
}

func (a *App) handleLogout(w http.ResponseWriter, r *http.Request) {
	token, _ := r.Context().Value(tokenKey).(string)
	if err := a.auth.Logout(r.Context(), token); err != nil {
		a.writeError(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     tokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.cfg.HTTP.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	a.writeJSON(w, http.StatusOK, wire.Message{Message: "logged out"})
}

func (a *App) handleMe(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, wire.FromUser(userFrom(r)))
}

func (a *App) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req wire.ProfileRequest
	if err := decode(r, &req, false); err != nil {
		a.writeError(w, r, err)
		return
	}
	u, err := a.auth.UpdateProfile(r.Context(), userFrom(r).ID, req.FullName, req.Email)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, wire.FromUser(u))
}

func (a *App) handleCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := a.store.ListCategories(r.Context(), userFrom(r).ID)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, wire.FromCategories(cats))
}

// handleListEntries serves ?open=true (open entries) or ?limit=N (recent).
func (a *App) handleListEntries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userID := userFrom(r).ID
	var (
		entries []domain.TimeEntry
		err     error
	)
	if open, _ := strconv.ParseBool(q.Get("open")); open {
		entries, err = a.entries.Open(r.Context(), userID)
	} else {
		limit := usecase.DefaultRecentLimit
		if s := q.Get("limit"); s != "" {
			limit, err = strconv.Atoi(s)
			if err != nil || limit <= 0 || limit > maxListLimit {
				a.writeError(w, r, domain.Invalid("limit must be between 1 and %d", maxListLimit))
				return
			}
		}
		entries, err = a.entries.Recent(r.Context(), userID, limit)
	}
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, wire.FromEntries(entries))
}

func (a *App) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	var req wire.CreateEntryRequest
	if err := decode(r, &req, false); err != nil {
		a.writeError(w, r, err)
		return
	}
	e, err := a.entries.Create(r.Context(), userFrom(r).ID, req.Title, req.CategoryID, req.StartTime)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, wire.FromEntry(e))
}

func (a *App) handleStopEntry(w http.ResponseWriter, r *http.Request) {
	var req wire.StopEntryRequest
	if err := decode(r, &req, true); err != nil {
		a.writeError(w, r, err)
		return
	}
	e, err := a.entries.Stop(r.Context(), userFrom(r).ID, chi.URLParam(r, "id"), req.EndTime)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, wire.FromEntry(e))
}

func (a *App) handlePauseEntry(w http.ResponseWriter, r *http.Request) {
	a.pauseOrResume(w, r, a.entries.Pause)
}

func (a *App) handleResumeEntry(w http.ResponseWriter, r *http.Request) {
	a.pauseOrResume(w, r, a.entries.Resume)
}

func (a *App) pauseOrResume(w http.ResponseWriter, r *http.Request, op func(context.Context, string, string, *time.Time) (domain.TimeEntry, error)) {
	var req wire.PauseRequest
	if err := decode(r, &req, true); err != nil {
		a.writeError(w, r, err)
		return
	}
	e, err := op(r.Context(), userFrom(r).ID, chi.URLParam(r, "id"), req.At)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeJSON(w, http.StatusOK, wire.FromEntry(e))
}

func (a *App) handleWeekly(w http.ResponseWriter, r *http.Request) {
	a.writeReport(w, r)(a.stats.Weekly(r.Context(), userFrom(r).ID))
}

// handleDaily serves ?date=YYYY-MM-DD, defaulting to today.
func (a *App) handleDaily(w http.ResponseWriter, r *http.Request) {
	var day time.Time
	if s := r.URL.Query().Get("date"); s != "" {
		d, err := time.ParseInLocation(time.DateOnly, s, a.stats.Location)
		if err != nil {
			a.writeError(w, r, domain.Invalid("date must be YYYY-MM-DD"))
			return
		}
		day = d
	}
	a.writeReport(w, r)(a.stats.Daily(r.Context(), userFrom(r).ID, day))
}

func (a *App) handleRange(w http.ResponseWriter, r *http.Request) {
	win, err := a.window(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	a.writeReport(w, r)(a.stats.Range(r.Context(), userFrom(r).ID, win))
}

func (a *App) handleExport(w http.ResponseWriter, r *http.Request) {
	win, err := a.window(r)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := a.stats.Export(r.Context(), userFrom(r).ID, win, &buf); err != nil {
		a.writeError(w, r, err)
		return
	}
	name := fmt.Sprintf("time-entries_%s_%s.xlsx", win.From.Format(time.DateOnly), win.To.Format(time.DateOnly))
	w.Header().Set("Content-Type", xlsxMIME)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (a *App) writeReport(w http.ResponseWriter, r *http.Request) func(usecase.Report, error) {
	return func(rep usecase.Report, err error) {
		if err != nil {
			a.writeError(w, r, err)
			return
		}
		a.writeJSON(w, http.StatusOK, wire.FromSummary(rep.Window, rep.Summary, rep.Days))
	}
}

// window reads the required from/to query parameters.
func (a *App) window(r *http.Request) (stats.Window, error) {
	q := r.URL.Query()
	loc := a.stats.Location
	from, err := parseStartHTTP(q.Get("from"), loc)
	if err != nil {
		return stats.Window{}, err
	}
	to, err := parseEndHTTP(q.Get("to"), loc)
	if err != nil {
		return stats.Window{}, err
	}
	return stats.Window{From: from, To: to}, nil
}

// parseStartHTTP parses a start boundary that may be RFC3339 or YYYY-MM-DD.
// Date-only form is midnight in loc.
func parseStartHTTP(val string, loc *time.Location) (time.Time, error) {
	if val == "" {
		return time.Time{}, domain.Invalid("from is required")
	}
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return t, nil
	}
	if d, err := time.ParseInLocation(time.DateOnly, val, loc); err == nil {
		return d, nil
	}
	return time.Time{}, domain.Invalid("from must be RFC3339 or YYYY-MM-DD")
}

// parseEndHTTP parses an end boundary that may be RFC3339 or YYYY-MM-DD.
// Date-only form is treated as inclusive by converting to next-day 00:00 in loc.
func parseEndHTTP(val string, loc *time.Location) (time.Time, error) {
	if val == "" {
		return time.Time{}, domain.Invalid("to is required")
	}
	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return t, nil
	}
	if d, err := time.ParseInLocation(time.DateOnly, val, loc); err == nil {
		return d.AddDate(0, 0, 1), nil
	}
	return time.Time{}, domain.Invalid("to must be RFC3339 or YYYY-MM-DD")
}

// decode reads a JSON body into v. An empty body is accepted when optional.
func decode(r *http.Request, v any, optional bool) error {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return domain.Invalid("could not read request body")
	}
	if len(bytes.TrimSpace(data)) == 0 {
		if optional {
			return nil
		}
		return domain.Invalid("request body is required")
	}
	if err := sonic.Unmarshal(data, v); err != nil {
		return domain.Invalid("invalid JSON body")
	}
	return nil
}

func (a *App) writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := sonic.Marshal(v)
	if err != nil {
		a.log.Error("encode response", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError is the only place domain errors become status codes.
func (a *App) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		a.log.Error("request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		msg = "internal server error"
	}
	a.writeJSON(w, status, wire.Error{Error: msg})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
