package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"testing"

	"msvblog/internal/config"
	"msvblog/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contactForm() url.Values {
	return url.Values{
		"name":    {"Visitor"},
		"email":   {"visitor@example.com"},
		"phone":   {"555-0100"},
		"message": {"Hello there"},
	}
}

func TestStaticPages(t *testing.T) {
	env := newTestEnv(t)
	b := env.browser(t)

	for _, path := range []string{"/", "/about", "/contact", "/login", "/register"} {
		t.Run(path, func(t *testing.T) {
			resp := b.get(path)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
			assert.Contains(t, readBody(t, resp), "MSV Blog")
		})
	}

	assert.Equal(t, http.StatusNotFound, b.get("/nope").StatusCode)
}

func TestContact(t *testing.T) {
	t.Run("sends to admin", func(t *testing.T) {
		env := newTestEnv(t)
		b := env.browser(t)

		resp := b.post("/contact", contactForm())
		require.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/contact", resp.Header.Get("Location"))
		assert.Contains(t, readBody(t, b.follow(resp)), service.MsgMailSent)

		sent := env.mailer.messages()
		require.Len(t, sent, 1)
		assert.Equal(t, service.ContactSubject, sent[0].Subject)
		assert.Equal(t, []string{"admin@example.com"}, sent[0].To)
		assert.Equal(t, "blog@example.com", sent[0].From)
		assert.Equal(t, "visitor@example.com", sent[0].ReplyTo)
		assert.Contains(t, sent[0].HTML, "Hello there")
		assert.Contains(t, sent[0].HTML, "555-0100")
	})

	t.Run("transport failure is flashed", func(t *testing.T) {
		env := newTestEnv(t)
		env.mailer.err = errors.New("535 authentication failed")
		b := env.browser(t)

		resp := b.post("/contact", contactForm())
		require.Equal(t, http.StatusFound, resp.StatusCode)
		body := readBody(t, b.follow(resp))
		assert.Contains(t, body, "the email wasn")
		assert.NotContains(t, body, "535")
	})

	t.Run("invalid form", func(t *testing.T) {
		env := newTestEnv(t)
		form := contactForm()
		form.Set("email", "nope")

		resp := env.browser(t).post("/contact", form)
		assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
		assert.Contains(t, readBody(t, resp), `value="Visitor"`)
		assert.Empty(t, env.mailer.messages())
	})
}

func TestSendMail(t *testing.T) {
	secret := func(cfg *config.Config) {
		cfg.MailUsername = "relay-user@example.com"
		cfg.MailPassword = "hunter2-relay-password"
	}

	t.Run("sends admin to admin", func(t *testing.T) {
		env := newTestEnv(t, secret)
		resp := env.browser(t).post("/sendmail", contactForm())
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, service.MsgMailSent, readBody(t, resp))

		sent := env.mailer.messages()
		require.Len(t, sent, 1)
		assert.Equal(t, "admin@example.com", sent[0].From)
		assert.Equal(t, []string{"admin@example.com"}, sent[0].To)
	})

	t.Run("failure never echoes credentials", func(t *testing.T) {
		env := newTestEnv(t, secret)
		env.mailer.err = errors.New("dial tcp: connection refused")

		resp := env.browser(t).post("/sendmail", contactForm())
		require.Equal(t, http.StatusBadGateway, resp.StatusCode)
		body := readBody(t, resp)
		assert.Equal(t, service.MsgMailFailed, body)
		assert.NotContains(t, body, "hunter2")
		assert.NotContains(t, body, "relay-user")
	})

	t.Run("GET redirects to contact", func(t *testing.T) {
		env := newTestEnv(t)
		resp := env.browser(t).get("/sendmail")
		require.Equal(t, http.StatusFound, resp.StatusCode)
		assert.Equal(t, "/contact", resp.Header.Get("Location"))
	})

	t.Run("disabled", func(t *testing.T) {
		env := newTestEnv(t, func(cfg *config.Config) { cfg.MailDebugEndpoint = false })
		b := env.browser(t)
		assert.Equal(t, http.StatusNotFound, b.post("/sendmail", contactForm()).StatusCode)
		assert.Equal(t, http.StatusNotFound, b.get("/sendmail").StatusCode)
		assert.Empty(t, env.mailer.messages())
	})
}

func TestHealthAndMetrics(t *testing.T) {
	env := newTestEnv(t)
	b := env.browser(t)

	assert.Equal(t, http.StatusOK, b.get("/health/live").StatusCode)

	resp := b.get("/health/ready")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var payload struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "healthy", payload.Status)
	assert.Equal(t, "healthy", payload.Checks["database"])
	assert.Equal(t, "healthy", payload.Checks["redis"])

	env.redis.Close()
	resp = b.get("/health/ready")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, "degraded", payload.Status)

	metrics := b.get("/metrics")
	assert.Equal(t, http.StatusOK, metrics.StatusCode)
	assert.Contains(t, readBody(t, metrics), "msvblog")
}
