package middleware

import (
	"runtime/debug"

	"github.com/NeuralTrust/LearnGate/pkg/common"
	"github.com/NeuralTrust/LearnGate/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type panicRecoverMiddleware struct {
	logger *logrus.Logger
}

func NewPanicRecoverMiddleware(logger *logrus.Logger) Middleware {
	return &panicRecoverMiddleware{logger: logger}
}

// Middleware turns a panic further down the chain into a 500 INTERNAL_ERROR
// rejection.
func (m *panicRecoverMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			fields := logrus.Fields{
				"panic":  r,
				"method": c.Method(),
				"path":   c.Path(),
				"stack":  string(debug.Stack()),
			}
			if traceID, ok := c.Locals(common.TraceIdKey).(string); ok {
				fields["trace_id"] = traceID
			}
			m.logger.WithFields(fields).Error("panic recovered while handling request")
			err = Reject(c, fiber.StatusInternalServerError, "Internal server error", types.CodeInternalError)
		}()
		return c.Next()
	}
}
