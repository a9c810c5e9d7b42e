package app

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"time-tracker/internal/adapter/memory"
	"time-tracker/internal/config"
	"time-tracker/internal/wire"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type testServer struct {
	t     *testing.T
	h     http.Handler
	clock *testClock
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	catalog, err := config.NewCatalogHolder("", log)
	require.NoError(t, err)
	var cfg config.Config
	cfg.Store.Backend = config.BackendMemory
	cfg.Stats.Timezone = "UTC"
	cfg.Session.TTL = time.Hour
	clock := &testClock{t: time.Date(2025, 3, 12, 9, 0, 0, 0, time.UTC)}
	a := NewWithStore(log, cfg, memory.New(), catalog, clock.Now)
	return &testServer{t: t, h: a.Handler(), clock: clock}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := sonic.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (s *testServer) login() string {
	s.t.Helper()
	rec := s.do(http.MethodPost, "/api/auth/register", "", wire.RegisterRequest{
		Email: "ann@example.com", Password: "secret1", FullName: "Ann",
	})
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	rec = s.do(http.MethodPost, "/api/auth/login", "", wire.LoginRequest{Email: "ann@example.com", Password: "secret1"})
	require.Equal(s.t, http.StatusOK, rec.Code, rec.Body.String())
	return decodeBody[wire.LoginResponse](s.t, rec).Token
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	token := s.login()
	rec = s.do(http.MethodGet, "/api/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ann@example.com", decodeBody[wire.User](t, rec).Email)

	rec = s.do(http.MethodPost, "/api/auth/register", "", wire.RegisterRequest{
		Email: "ann@example.com", Password: "secret1", FullName: "Ann",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodPatch, "/api/auth/me", token, wire.ProfileRequest{FullName: "Ann Lee", Email: "ann@example.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ann Lee", decodeBody[wire.User](t, rec).FullName)

	rec = s.do(http.MethodPost, "/api/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = s.do(http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginSetsCookie(t *testing.T) {
	s := newTestServer(t)
	token := s.login()

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: tokenCookie, Value: token})
	rec := httptest.NewRecorder()
	s.h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodPost, "/api/auth/login", "", wire.LoginRequest{Email: "ann@example.com", Password: "secret1"})
	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, tokenCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
}

func TestCategoriesSortedByName(t *testing.T) {
	s := newTestServer(t)
	token := s.login()

	rec := s.do(http.MethodGet, "/api/categories", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cats := decodeBody[[]wire.Category](t, rec)
	names := make([]string, 0, len(cats))
	for _, c := range cats {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Other", "Rest", "Sport", "Study", "Work"}, names)
}

func TestTimeEntryLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := s.login()

	rec := s.do(http.MethodPost, "/api/time-entries", token, wire.CreateEntryRequest{Title: "  "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	ahead := s.clock.Now().Add(24 * time.Hour)
	rec = s.do(http.MethodPost, "/api/time-entries", token, wire.CreateEntryRequest{Title: "Ahead", StartTime: &ahead})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/api/time-entries", token, wire.CreateEntryRequest{Title: "Write report"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	e := decodeBody[wire.TimeEntry](t, rec)
	assert.Nil(t, e.EndTime)
	assert.Nil(t, e.Duration)

	rec = s.do(http.MethodPost, "/api/time-entries", token, wire.CreateEntryRequest{Title: "Second"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodGet, "/api/time-entries?open=true", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]wire.TimeEntry](t, rec), 1)

	s.clock.Advance(60 * time.Second)
	rec = s.do(http.MethodPost, "/api/time-entries/"+e.ID+"/pause", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotNil(t, decodeBody[wire.TimeEntry](t, rec).PausedAt)

	s.clock.Advance(10 * time.Minute)
	rec = s.do(http.MethodPost, "/api/time-entries/"+e.ID+"/resume", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(600_000), decodeBody[wire.TimeEntry](t, rec).PausedMs)

	s.clock.Advance(65 * time.Second)
	rec = s.do(http.MethodPatch, "/api/time-entries/"+e.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	stopped := decodeBody[wire.TimeEntry](t, rec)
	require.NotNil(t, stopped.Duration)
	assert.Equal(t, int64(125), *stopped.Duration)

	rec = s.do(http.MethodPatch, "/api/time-entries/"+e.ID, token, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodPatch, "/api/time-entries/missing", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/api/time-entries?limit=0", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(http.MethodGet, "/api/time-entries", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]wire.TimeEntry](t, rec), 1)
}

func TestStatisticsEndpoints(t *testing.T) {
	s := newTestServer(t)
	token := s.login()

	rec := s.do(http.MethodGet, "/api/categories", token, nil)
	var work string
	for _, c := range decodeBody[[]wire.Category](t, rec) {
		if c.Name == "Work" {
			work = c.ID
		}
	}
	require.NotEmpty(t, work)

	rec = s.do(http.MethodPost, "/api/time-entries", token, wire.CreateEntryRequest{Title: "Report", CategoryID: &work})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeBody[wire.TimeEntry](t, rec).ID
	s.clock.Advance(2 * time.Hour)
	rec = s.do(http.MethodPatch, "/api/time-entries/"+id, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(http.MethodGet, "/api/statistics/weekly", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	weekly := decodeBody[wire.Summary](t, rec)
	assert.Equal(t, int64(7200), weekly.TotalTime)
	assert.Equal(t, int64(7200), weekly.WorkStudyTime)
	assert.InDelta(t, 100.0, weekly.WorkStudyPercent, 0.001)
	require.NotNil(t, weekly.MostUsed)
	assert.Equal(t, "Work", weekly.MostUsed.Name)
	assert.Nil(t, weekly.LeastUsed)
	assert.Len(t, weekly.Days, 7)
	assert.Contains(t, rec.Body.String(), `"total_time":7200`)

	rec = s.do(http.MethodGet, "/api/statistics/daily?date=2025-03-11", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, decodeBody[wire.Summary](t, rec).TotalTime)

	rec = s.do(http.MethodGet, "/api/statistics/daily?date=yesterday", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/api/statistics/range?from=2025-03-12&to=2025-03-12", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(7200), decodeBody[wire.Summary](t, rec).TotalTime)

	rec = s.do(http.MethodGet, "/api/statistics/range?from=2025-03-12", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/api/statistics/range?from=0001-01-01&to=9999-12-31", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = s.do(http.MethodGet, "/api/statistics/export?from=2025-01-01&to=2026-12-31", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodGet, "/api/statistics/export?from=2025-03-10&to=2025-03-16", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxMIME, rec.Header().Get("Content-Type"))
	book, err := excelize.OpenReader(rec.Body)
	require.NoError(t, err)
	defer book.Close()
	rows, err := book.GetRows("Entries")
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestParseHTTPBoundaries(t *testing.T) {
	from, err := parseStartHTTP("2025-03-10", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), from)

	to, err := parseEndHTTP("2025-03-10", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC), to)

	at, err := parseEndHTTP("2025-03-10T12:00:00Z", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 12, at.Hour())

	_, err = parseStartHTTP("", time.UTC)
	assert.Error(t, err)
	_, err = parseEndHTTP("soon", time.UTC)
	assert.Error(t, err)
}
