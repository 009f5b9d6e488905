package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct{}

func (failingStore) Allow(context.Context, string, int, time.Duration) (Decision, error) {
	return Decision{}, errors.New("redis unavailable")
}

func newLimitedApp(store Store, limit int) *fiber.App {
	app := fiber.New()
	app.Post("/api/claim", Middleware(store, limit, time.Minute, ByClientIP("claim")), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusAccepted)
	})
	return app
}

func post(t *testing.T, app *fiber.App, ip string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/claim", nil)
	req.Header.Set("X-Forwarded-For", ip+", 10.0.0.1")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestMiddlewareReturns429OverLimit(t *testing.T) {
	app := newLimitedApp(NewMemoryStore(), 2)

	assert.Equal(t, fiber.StatusAccepted, post(t, app, "198.51.100.1").StatusCode)
	assert.Equal(t, fiber.StatusAccepted, post(t, app, "198.51.100.1").StatusCode)

	resp := post(t, app, "198.51.100.1")
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderRetryAfter))

	assert.Equal(t, fiber.StatusAccepted, post(t, app, "198.51.100.2").StatusCode)
}

func TestMiddlewareFailsOpen(t *testing.T) {
	app := newLimitedApp(failingStore{}, 1)

	assert.Equal(t, fiber.StatusAccepted, post(t, app, "198.51.100.1").StatusCode)
	assert.Equal(t, fiber.StatusAccepted, post(t, app, "198.51.100.1").StatusCode)
}

func TestClientIPHeaderPrecedence(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString(ClientIP(c)) })

	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"cloudflare wins", map[string]string{"CF-Connecting-IP": "1.1.1.1", "X-Forwarded-For": "2.2.2.2", "X-Real-IP": "3.3.3.3"}, "1.1.1.1"},
		{"first forwarded hop", map[string]string{"X-Forwarded-For": " 2.2.2.2 , 4.4.4.4", "X-Real-IP": "3.3.3.3"}, "2.2.2.2"},
		{"real ip", map[string]string{"X-Real-IP": "3.3.3.3"}, "3.3.3.3"},
		{"socket", nil, "0.0.0.0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			buf := make([]byte, 64)
			n, _ := resp.Body.Read(buf)
			assert.Equal(t, tt.want, string(buf[:n]))
		})
	}
}
