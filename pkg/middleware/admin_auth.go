package middleware

import (
	"github.com/NeuralTrust/LearnGate/pkg/common"
	"github.com/NeuralTrust/LearnGate/pkg/infra/auth/jwt"
	"github.com/NeuralTrust/LearnGate/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type adminAuthMiddleware struct {
	logger     *logrus.Logger
	jwtManager jwt.Manager
}

func NewAdminAuthMiddleware(
	logger *logrus.Logger,
	jwtManager jwt.Manager,
) Middleware {
	return &adminAuthMiddleware{
		logger:     logger,
		jwtManager: jwtManager,
	}
}

func (m *adminAuthMiddleware) Middleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		claims, err := authenticate(ctx, m.jwtManager)
		if err != nil {
			m.logger.WithError(err).Debug("invalid admin token")
			return Reject(ctx, fiber.StatusUnauthorized, unauthorizedMessage(err), types.CodeUnauthorized)
		}
		if !claims.IsAdmin() {
			m.logger.WithField("user_id", claims.Identity()).Warn("admin route requested without admin role")
			return Reject(ctx, fiber.StatusForbidden, "Admin role required", types.CodeForbidden)
		}
		ctx.Locals(common.ClaimsKey, claims)
		ctx.Locals(common.UserIDKey, claims.Identity())
		return ctx.Next()
	}
}
