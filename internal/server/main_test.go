package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"msvblog/internal/config"
	"msvblog/internal/database"
	"msvblog/internal/mail"
	"msvblog/internal/session"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// mailRecorder is a mail.Mailer that keeps sent messages in memory.
type mailRecorder struct {
	mu   sync.Mutex
	sent []*mail.Message
	err  error
}

func (m *mailRecorder) Send(_ context.Context, msg *mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *mailRecorder) messages() []*mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*mail.Message(nil), m.sent...)
}

type testEnv struct {
	server *Server
	app    *fiber.App
	db     *gorm.DB
	redis  *miniredis.Miniredis
	mailer *mailRecorder
}

func testConfig() *config.Config {
	return &config.Config{
		Env:                "test",
		AppName:            "MSV Blog",
		Port:               "0",
		SecretKey:          "test-secret-key-for-handlers-0123456789",
		DatabaseURL:        "sqlite://:memory:",
		SessionTTLHours:    1,
		PasswordScheme:     "pbkdf2",
		PasswordIterations: 1000,
		MailDefaultSender:  "blog@example.com",
		AdminEmail:         "admin@example.com",
		MailDebugEndpoint:  true,
	}
}

func newTestEnv(t *testing.T, mutate ...func(*config.Config)) *testEnv {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	cfg := testConfig()
	for _, m := range mutate {
		m(cfg)
	}

	db, err := database.Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	mailer := &mailRecorder{}
	s, err := NewServerWithDeps(cfg, db, rdb, mailer)
	require.NoError(t, err)

	return &testEnv{
		server: s,
		app:    s.NewApp(),
		db:     db,
		redis:  mr,
		mailer: mailer,
	}
}

// browser replays cookies between requests like a real client.
type browser struct {
	t       *testing.T
	app     *fiber.App
	cookies map[string]string
}

func (e *testEnv) browser(t *testing.T) *browser {
	return &browser{t: t, app: e.app, cookies: map[string]string{}}
}

// do sends a request. Form posts carry the CSRF token the way the rendered
// forms do, fetching one first if the browser has none yet.
func (b *browser) do(method, path string, form url.Values) *http.Response {
	b.t.Helper()
	if method == http.MethodPost && form != nil {
		form = b.withCSRF(form)
	}
	return b.send(method, path, form)
}

func (b *browser) withCSRF(form url.Values) url.Values {
	b.t.Helper()
	if b.cookies[csrfCookieName] == "" {
		resp := b.send(http.MethodGet, "/health/live", nil)
		require.Equal(b.t, http.StatusOK, resp.StatusCode)
		require.NotEmpty(b.t, b.cookies[csrfCookieName])
	}
	out := url.Values{}
	for k, v := range form {
		out[k] = v
	}
	out.Set(csrfField, b.cookies[csrfCookieName])
	return out
}

// send replays cookies and records the ones the response sets.
func (b *browser) send(method, path string, form url.Values) *http.Response {
	b.t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for name, value := range b.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}

	resp, err := b.app.Test(req, -1)
	require.NoError(b.t, err)

	for _, ck := range resp.Cookies() {
		expired := !ck.Expires.IsZero() && ck.Expires.Before(time.Now())
		if ck.Value == "" || expired || ck.MaxAge < 0 {
			delete(b.cookies, ck.Name)
			continue
		}
		b.cookies[ck.Name] = ck.Value
	}
	return resp
}

func (b *browser) get(path string) *http.Response {
	return b.do(http.MethodGet, path, nil)
}

func (b *browser) post(path string, form url.Values) *http.Response {
	return b.do(http.MethodPost, path, form)
}

// follow GETs the redirect target of resp.
func (b *browser) follow(resp *http.Response) *http.Response {
	b.t.Helper()
	require.Equal(b.t, http.StatusFound, resp.StatusCode)
	return b.get(resp.Header.Get("Location"))
}

func (b *browser) loggedIn() bool {
	return b.cookies[session.CookieName] != ""
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func (b *browser) register(name, email, password string) *http.Response {
	return b.post("/register", url.Values{"name": {name}, "email": {email}, "password": {password}})
}

func (b *browser) login(email, password string) *http.Response {
	return b.post("/login", url.Values{"email": {email}, "password": {password}})
}

func postForm(title string) url.Values {
	return url.Values{
		"title":    {title},
		"subtitle": {"subtitle of " + title},
		"img_url":  {"https://example.com/" + strings.ReplaceAll(title, " ", "-") + ".jpg"},
		"body":     {"<p>body of " + title + "</p>"},
	}
}

// newAdmin registers the first account, which becomes user 1.
func (e *testEnv) newAdmin(t *testing.T) *browser {
	t.Helper()
	b := e.browser(t)
	resp := b.register("Admin", "admin@example.com", "admin-pass")
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.True(t, b.loggedIn())
	return b
}
