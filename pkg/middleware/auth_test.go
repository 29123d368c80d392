package middleware_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/NeuralTrust/LearnGate/pkg/common"
	"github.com/NeuralTrust/LearnGate/pkg/infra/auth/jwt"
	"github.com/NeuralTrust/LearnGate/pkg/middleware"
	"github.com/NeuralTrust/LearnGate/pkg/types"
	"github.com/gofiber/fiber/v2"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "lms-secret"

func signToken(t *testing.T, claims *jwt.Claims) string {
	t.Helper()
	if claims.ExpiresAt == nil {
		claims.ExpiresAt = jwtlib.NewNumericDate(time.Now().Add(time.Hour))
	}
	token, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func TestAuthMiddleware(t *testing.T) {
	logger := logrus.New()
	auth := middleware.NewAuthMiddleware(logger, jwt.NewJwtManager(testSecret), []string{"/api/auth", "/api/public"})

	app := fiber.New()
	app.Use(auth.Middleware())
	app.All("/*", func(c *fiber.Ctx) error {
		userID, _ := c.Locals(common.UserIDKey).(string)
		return c.SendString(userID)
	})

	expired := signToken(t, &jwt.Claims{UserID: "1", RegisteredClaims: jwtlib.RegisteredClaims{
		ExpiresAt: jwtlib.NewNumericDate(time.Now().Add(-time.Minute)),
	}})

	tests := []struct {
		name    string
		path    string
		header  string
		status  int
		message string
	}{
		{name: "public prefix", path: "/api/auth/login", status: fiber.StatusOK},
		{name: "missing token", path: "/api/courses", status: fiber.StatusUnauthorized, message: "Authorization required"},
		{name: "wrong scheme", path: "/api/courses", header: "Basic abc", status: fiber.StatusUnauthorized, message: "Authorization required"},
		{name: "bad token", path: "/api/courses", header: "Bearer x.y.z", status: fiber.StatusUnauthorized, message: "Invalid token"},
		{name: "expired token", path: "/api/courses", header: "Bearer " + expired, status: fiber.StatusUnauthorized, message: "Token expired"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			if tt.message != "" {
				out := decode(t, resp)
				assert.Equal(t, types.CodeUnauthorized, out["code"])
				assert.Equal(t, tt.message, out["message"])
			}
		})
	}

	t.Run("valid token exposes identity", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/courses", nil)
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+signToken(t, &jwt.Claims{UserID: "42"}))
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, "42", string(body))
	})
}

func TestAdminAuthMiddleware(t *testing.T) {
	logger := logrus.New()
	app := fiber.New()
	app.Use(middleware.NewAdminAuthMiddleware(logger, jwt.NewJwtManager(testSecret)).Middleware())
	app.Get("/api/v1/policy", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})

	tests := []struct {
		name   string
		claims *jwt.Claims
		status int
	}{
		{"no token", nil, fiber.StatusUnauthorized},
		{"student token", &jwt.Claims{UserID: "7", Role: "student"}, fiber.StatusForbidden},
		{"admin token", &jwt.Claims{UserID: "1", Role: jwt.RoleAdmin}, fiber.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/policy", nil)
			if tt.claims != nil {
				req.Header.Set(fiber.HeaderAuthorization, "Bearer "+signToken(t, tt.claims))
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}
