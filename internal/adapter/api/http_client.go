// Package api is the HTTP client of the time-tracker REST API.
package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bytedance/sonic"

	"time-tracker/internal/domain"
	"time-tracker/internal/wire"
)

// Client implements timer.EntryStore and the remaining API calls against a
// running server. Status codes are mapped back to the domain sentinels.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     *slog.Logger
}

func NewClient(baseURL, token string, log *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

func (c *Client) Token() string { return c.token }

func (c *Client) SetToken(token string) { c.token = token }

func (c *Client) Register(ctx context.Context, email, password, fullName string) (domain.User, error) {
	var out wire.User
	req := wire.RegisterRequest{Email: email, Password: password, FullName: fullName}
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", nil, req, &out, false); err != nil {
		return domain.User{}, err
	}
	return out.Domain(), nil
}

// Login stores the returned token on the client.
func (c *Client) Login(ctx context.Context, email, password string) (wire.LoginResponse, error) {
	var out wire.LoginResponse
	req := wire.LoginRequest{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, req, &out, false); err != nil {
		return wire.LoginResponse{}, err
	}
	c.token = out.Token
	return out, nil
}

func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, nil, true); err != nil {
		return err
	}
	c.token = ""
	return nil
}

func (c *Client) Me(ctx context.Context) (domain.User, error) {
	var out wire.User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, nil, &out, true); err != nil {
		return domain.User{}, err
	}
	return out.Domain(), nil
}

func (c *Client) UpdateProfile(ctx context.Context, fullName, email string) (domain.User, error) {
	var out wire.User
	req := wire.ProfileRequest{FullName: fullName, Email: email}
	if err := c.do(ctx, http.MethodPatch, "/api/auth/me", nil, req, &out, true); err != nil {
		return domain.User{}, err
	}
	return out.Domain(), nil
}

func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	var raw []wire.Category
	if err := c.do(ctx, http.MethodGet, "/api/categories", nil, nil, &raw, true); err != nil {
		return nil, err
	}
	out := make([]domain.Category, 0, len(raw))
	for _, r := range raw {
		out = append(out, r.Domain())
	}
	return out, nil
}

// Recent returns the latest entries; limit <= 0 leaves the server default.
func (c *Client) Recent(ctx context.Context, limit int) ([]domain.TimeEntry, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return c.listEntries(ctx, q)
}

func (c *Client) ListOpen(ctx context.Context) ([]domain.TimeEntry, error) {
	return c.listEntries(ctx, url.Values{"open": {"true"}})
}

func (c *Client) listEntries(ctx context.Context, q url.Values) ([]domain.TimeEntry, error) {
	var raw []wire.TimeEntry
	if err := c.do(ctx, http.MethodGet, "/api/time-entries", q, nil, &raw, true); err != nil {
		return nil, err
	}
	out := make([]domain.TimeEntry, 0, len(raw))
	for _, r := range raw {
		out = append(out, r.Domain())
	}
	return out, nil
}

func (c *Client) Create(ctx context.Context, title string, categoryID *string, start time.Time) (domain.TimeEntry, error) {
	req := wire.CreateEntryRequest{Title: title, CategoryID: categoryID}
	if !start.IsZero() {
		req.StartTime = &start
	}
	return c.entry(ctx, http.MethodPost, "/api/time-entries", req)
}

func (c *Client) Stop(ctx context.Context, id string, end time.Time) (domain.TimeEntry, error) {
	req := wire.StopEntryRequest{}
	if !end.IsZero() {
		req.EndTime = &end
	}
	return c.entry(ctx, http.MethodPatch, "/api/time-entries/"+url.PathEscape(id), req)
}

func (c *Client) Pause(ctx context.Context, id string, at time.Time) (domain.TimeEntry, error) {
	return c.entry(ctx, http.MethodPost, "/api/time-entries/"+url.PathEscape(id)+"/pause", pauseRequest(at))
}

func (c *Client) Resume(ctx context.Context, id string, at time.Time) (domain.TimeEntry, error) {
	return c.entry(ctx, http.MethodPost, "/api/time-entries/"+url.PathEscape(id)+"/resume", pauseRequest(at))
}

func pauseRequest(at time.Time) wire.PauseRequest {
	if at.IsZero() {
		return wire.PauseRequest{}
	}
	return wire.PauseRequest{At: &at}
}

func (c *Client) entry(ctx context.Context, method, path string, body any) (domain.TimeEntry, error) {
	var out wire.TimeEntry
	if err := c.do(ctx, method, path, nil, body, &out, true); err != nil {
		return domain.TimeEntry{}, err
	}
	return out.Domain(), nil
}

func (c *Client) Weekly(ctx context.Context) (wire.Summary, error) {
	var out wire.Summary
	err := c.do(ctx, http.MethodGet, "/api/statistics/weekly", nil, nil, &out, true)
	return out, err
}

// Daily reports one calendar day; an empty date means today on the server.
func (c *Client) Daily(ctx context.Context, date string) (wire.Summary, error) {
	q := url.Values{}
	if date != "" {
		q.Set("date", date)
	}
	var out wire.Summary
	err := c.do(ctx, http.MethodGet, "/api/statistics/daily", q, nil, &out, true)
	return out, err
}

func (c *Client) Range(ctx context.Context, from, to string) (wire.Summary, error) {
	var out wire.Summary
	err := c.do(ctx, http.MethodGet, "/api/statistics/range", url.Values{"from": {from}, "to": {to}}, nil, &out, true)
	return out, err
}

// Export streams the XLSX workbook for [from, to) into w.
func (c *Client) Export(ctx context.Context, from, to string, w io.Writer) error {
	resp, err := c.send(ctx, http.MethodGet, "/api/statistics/export", url.Values{"from": {from}, "to": {to}}, nil, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, err = io.Copy(w, resp.Body)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, q url.Values, body, out any, auth bool) error {
	resp, err := c.send(ctx, method, path, q, body, auth)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if out == nil {
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if err := sonic.Unmarshal(data, out); err != nil {
		return fmt.Errorf("api: decode %s %s: %w", method, path, err)
	}
	return nil
}

// send performs the request and returns the response of a 2xx answer; any
// other status is turned into an error and the body is closed.
func (c *Client) send(ctx context.Context, method, path string, q url.Values, body any, auth bool) (*http.Response, error) {
	if auth && c.token == "" {
		return nil, fmt.Errorf("%w: not logged in", domain.ErrUnauthorized)
	}
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, err
	}
	u.Path = path
	if len(q) > 0 {
		u.RawQuery = q.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := sonic.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if auth {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	c.log.Debug("api request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("dur", time.Since(start)),
	)
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return resp, nil
	}
	defer resp.Body.Close()
	return nil, statusError(resp)
}

func statusError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	msg := string(data)
	var e wire.Error
	if sonic.Unmarshal(data, &e) == nil && e.Error != "" {
		msg = e.Error
	}
	var sentinel error
	switch resp.StatusCode {
	case http.StatusBadRequest:
		sentinel = domain.ErrValidation
	case http.StatusUnauthorized:
		sentinel = domain.ErrUnauthorized
	case http.StatusNotFound:
		sentinel = domain.ErrNotFound
	case http.StatusConflict:
		sentinel = domain.ErrConflict
	default:
		return fmt.Errorf("api: unexpected status %d: %s", resp.StatusCode, msg)
	}
	return &Error{Status: resp.StatusCode, Message: msg, kind: sentinel}
}

// Error is a non-2xx API answer. It matches its domain sentinel with errors.Is.
type Error struct {
	Status  int
	Message string
	kind    error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Is(target error) bool { return errors.Is(e.kind, target) }
