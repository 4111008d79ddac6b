package middleware_test

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"useraccounts/internal/accounts/adapters/http/middleware"
	"useraccounts/pkg/logger"
)

func newApp(handler fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Use(middleware.NewRequestIDMiddleware())
	app.Use(middleware.NewLoggerMiddleware())
	app.Use(middleware.NewRecoveryMiddleware())
	app.Get("/", handler)
	return app
}

func TestRequestIDPropagated(t *testing.T) {
	var seen string
	app := newApp(func(c fiber.Ctx) error {
		seen = logger.RequestIDFrom(middleware.RequestContext(c))
		return c.SendStatus(fiber.StatusNoContent)
	})

	req := httptest.NewRequest(fiber.MethodGet, "/", nil)
	req.Header.Set(middleware.HeaderRequestID, "req-123")

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "req-123", resp.Header.Get(middleware.HeaderRequestID))
	assert.Equal(t, "req-123", seen)
}

func TestRequestIDGenerated(t *testing.T) {
	app := newApp(func(c fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.NotEmpty(t, resp.Header.Get(middleware.HeaderRequestID))
}

func TestRequestIDTooLongReplaced(t *testing.T) {
	app := newApp(func(c fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	long := strings.Repeat("a", 129)
	req := httptest.NewRequest(fiber.MethodGet, "/", nil)
	req.Header.Set(middleware.HeaderRequestID, long)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	got := resp.Header.Get(middleware.HeaderRequestID)
	assert.NotEmpty(t, got)
	assert.NotEqual(t, long, got)
}

func TestRecoveryReturns500(t *testing.T) {
	app := newApp(func(_ fiber.Ctx) error {
		panic("boom")
	})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}
