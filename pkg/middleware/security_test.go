package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/NeuralTrust/LearnGate/pkg/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecurityHeaders(t *testing.T) {
	logger := logrus.New()
	app := fiber.New()
	app.Use(middleware.NewSecurityMiddleware(logger).Middleware())
	app.Get("/ok", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderXPoweredBy, "Express")
		return c.SendString("ok")
	})
	app.Get("/rejected", func(c *fiber.Ctx) error {
		return middleware.Reject(c, fiber.StatusBadRequest, "nope", "SECURITY_VIOLATION")
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTeapot, "teapot")
	})

	tests := []struct {
		path   string
		status int
	}{
		{"/ok", fiber.StatusOK},
		{"/rejected", fiber.StatusBadRequest},
		{"/boom", fiber.StatusTeapot},
		{"/missing", fiber.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			for name, value := range middleware.SecurityHeaders {
				assert.Equal(t, value, resp.Header.Get(name), name)
			}
			assert.Empty(t, resp.Header.Get(fiber.HeaderXPoweredBy))
		})
	}
}

func TestPanicRecover(t *testing.T) {
	logger := logrus.New()
	app := fiber.New()
	app.Use(middleware.NewPanicRecoverMiddleware(logger).Middleware())
	app.Get("/panic", func(c *fiber.Ctx) error {
		panic("unexpected")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/panic", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "INTERNAL_ERROR", decode(t, resp)["code"])
}
