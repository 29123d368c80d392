package server_test

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/NeuralTrust/LearnGate/pkg/config"
	"github.com/NeuralTrust/LearnGate/pkg/handlers/http"
	"github.com/NeuralTrust/LearnGate/pkg/infra/metrics"
	"github.com/NeuralTrust/LearnGate/pkg/middleware"
	"github.com/NeuralTrust/LearnGate/pkg/pipeline"
	"github.com/NeuralTrust/LearnGate/pkg/policy"
	"github.com/NeuralTrust/LearnGate/pkg/server"
	"github.com/NeuralTrust/LearnGate/pkg/server/router"
	"github.com/NeuralTrust/LearnGate/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoHandler struct{}

// Handle answers with the path parameters the security filter saw.
func (echoHandler) Handle(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"route": c.Route().Path, "path": c.Path()})
}

func newProxy(t *testing.T, bodyLimit int) *server.ProxyServer {
	t.Helper()
	logger := logrus.New()
	worker := metrics.NewWorker(logger, nil, metrics.WorkerOptions{})
	t.Cleanup(worker.Shutdown)

	transport := middleware.Transport{
		SecurityHeadersMiddleware: middleware.NewSecurityMiddleware(logger),
		PanicRecoverMiddleware:    middleware.NewPanicRecoverMiddleware(logger),
		MetricsMiddleware:         middleware.NewMetricsMiddleware(logger, worker),
		SecurityFilterMiddleware:  middleware.NewSecurityFilterMiddleware(logger, pipeline.New(logger, policy.Default())),
	}
	cfg := &config.Config{}
	return server.NewProxyServer(server.ProxyServerDI{
		Config:    cfg,
		Logger:    logger,
		BodyLimit: bodyLimit,
		Routers: []router.ServerRouter{
			router.NewProxyRouter(transport, http.HandlerTransport{ForwardedHandler: echoHandler{}}, []string{"/api/courses/:courseId"}),
		},
	})
}

func assertSecurityHeaders(t *testing.T, get func(string) string) {
	t.Helper()
	for name, value := range middleware.SecurityHeaders {
		assert.Equal(t, value, get(name), name)
	}
}

func TestProxyServer_HealthBypassesPipeline(t *testing.T) {
	s := newProxy(t, 0)

	for _, path := range []string{router.HealthPath, router.PingPath} {
		resp, err := s.Router.Test(httptest.NewRequest("GET", path, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode, path)
		assert.Empty(t, resp.Header.Get("X-Trace-Id"), path)
		assertSecurityHeaders(t, resp.Header.Get)
	}
}

func TestProxyServer_RoutesReachFilterAndHandler(t *testing.T) {
	s := newProxy(t, 0)

	tests := []struct {
		path  string
		route string
	}{
		{"/api/courses/12", "/api/courses/:courseId"},
		{"/api/unknown/thing", "/*"},
	}
	for _, tt := range tests {
		resp, err := s.Router.Test(httptest.NewRequest("GET", tt.path, nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.NotEmpty(t, resp.Header.Get("X-Trace-Id"))
		assertSecurityHeaders(t, resp.Header.Get)

		var out map[string]string
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Equal(t, tt.route, out["route"])
		resp.Body.Close()
	}
}

func TestProxyServer_RejectionKeepsSecurityHeaders(t *testing.T) {
	s := newProxy(t, 0)

	req := httptest.NewRequest("POST", "/api/courses/1", strings.NewReader(`{"title":"1 UNION SELECT pw FROM users"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.Router.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assertSecurityHeaders(t, resp.Header.Get)
}

func TestErrorHandler_BodyLimit(t *testing.T) {
	s := newProxy(t, 64)

	req := httptest.NewRequest("POST", "/api/courses", strings.NewReader(`{"title":"`+strings.Repeat("a", 256)+`"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.Router.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusRequestEntityTooLarge, resp.StatusCode)
	var payload types.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, types.CodeRequestTooLarge, payload.Code)
	assertSecurityHeaders(t, resp.Header.Get)
}

func TestErrorHandler_NotFound(t *testing.T) {
	logger := logrus.New()
	app := fiber.New(fiber.Config{ErrorHandler: server.ErrorHandler(logger)})

	resp, err := app.Test(httptest.NewRequest("GET", "/missing", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	var payload types.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, types.CodeNotFound, payload.Code)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
}
