package middleware

import (
	"errors"
	"strings"

	"github.com/NeuralTrust/LearnGate/pkg/common"
	"github.com/NeuralTrust/LearnGate/pkg/infra/auth/jwt"
	"github.com/NeuralTrust/LearnGate/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const AuthStageName = "auth"

type authMiddleware struct {
	logger         *logrus.Logger
	jwtManager     jwt.Manager
	publicPrefixes []string
}

// NewAuthMiddleware verifies the LMS bearer token on every path outside the
// public prefixes and exposes the caller identity to later handlers.
func NewAuthMiddleware(
	logger *logrus.Logger,
	jwtManager jwt.Manager,
	publicPrefixes []string,
) Middleware {
	return &authMiddleware{
		logger:         logger,
		jwtManager:     jwtManager,
		publicPrefixes: publicPrefixes,
	}
}

func (m *authMiddleware) Middleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if m.isPublic(ctx.Path()) {
			return ctx.Next()
		}

		claims, err := authenticate(ctx, m.jwtManager)
		if err != nil {
			m.logger.WithError(err).WithField("path", ctx.Path()).Debug("request not authenticated")
			publishRejection(ctx, AuthStageName, types.CodeUnauthorized, err)
			return Reject(ctx, fiber.StatusUnauthorized, unauthorizedMessage(err), types.CodeUnauthorized)
		}

		ctx.Locals(common.ClaimsKey, claims)
		ctx.Locals(common.UserIDKey, claims.Identity())
		return ctx.Next()
	}
}

func (m *authMiddleware) isPublic(path string) bool {
	for _, p := range m.publicPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func authenticate(ctx *fiber.Ctx, manager jwt.Manager) (*jwt.Claims, error) {
	token, err := jwt.BearerToken(ctx.Get(fiber.HeaderAuthorization))
	if err != nil {
		return nil, err
	}
	return manager.Validate(token)
}

func unauthorizedMessage(err error) string {
	switch {
	case errors.Is(err, jwt.ErrMissingToken):
		return "Authorization required"
	case errors.Is(err, jwt.ErrExpiredToken):
		return "Token expired"
	default:
		return "Invalid token"
	}
}
