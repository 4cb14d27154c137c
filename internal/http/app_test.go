package handlers_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"

	"torta/internal/config"
	"torta/internal/http/server"
	"torta/internal/metrics"
	"torta/internal/repos"
)

type fakeRelay struct {
	mu         sync.Mutex
	configured bool
	err        error
	texts      []string
}

func (f *fakeRelay) Configured() bool { return f.configured }

func (f *fakeRelay) SendMessage(_ context.Context, text string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	if f.err != nil {
		return 0, f.err
	}
	return int64(len(f.texts)), nil
}

func (f *fakeRelay) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.texts)
}

var errRelayDown = errors.New("chat api error: Bad Gateway")

type testApp struct {
	app     *fiber.App
	relay   *fakeRelay
	metrics *metrics.Metrics
}

func newTestApp(t *testing.T, opts ...func(*server.Options)) *testApp {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	relay := &fakeRelay{configured: true}
	m := metrics.New()
	o := server.Options{
		Config: config.Config{
			SiteURL:        "https://torta.test",
			RateLimitStore: "memory",
		},
		DB:          db,
		Relay:       relay,
		Metrics:     m,
		GlobalLimit: 1000,
		Now:         func() time.Time { return time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC) },
	}
	for _, f := range opts {
		f(&o)
	}
	app, err := server.New(o)
	require.NoError(t, err)
	return &testApp{app: app, relay: relay, metrics: m}
}

func (a *testApp) do(t *testing.T, req *http.Request) *http.Response {
	t.Helper()
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (a *testApp) get(t *testing.T, path string, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return a.do(t, req)
}

// csrf fetches a page to obtain a token cookie.
func (a *testApp) csrf(t *testing.T) *http.Cookie {
	t.Helper()
	resp := a.get(t, "/login")
	c := cookie(resp, "csrf_")
	require.NotNil(t, c, "csrf cookie missing")
	return c
}

// postForm submits form with the csrf token and cookies attached.
func (a *testApp) postForm(t *testing.T, path string, form url.Values, cookies ...*http.Cookie) *http.Response {
	t.Helper()
	tok := a.csrf(t)
	form.Set("csrf", tok.Value)
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(tok)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return a.do(t, req)
}

func (a *testApp) postJSON(t *testing.T, path, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return a.do(t, req)
}

func cookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}
