package middleware

import (
	"github.com/NeuralTrust/LearnGate/pkg/common"
	"github.com/NeuralTrust/LearnGate/pkg/types"
	"github.com/gofiber/fiber/v2"
)

type Middleware interface {
	Middleware() fiber.Handler
}

// Transport groups the proxy middlewares. Security headers are mounted ahead
// of the system routes and the security filter is mounted per route so that
// path parameters are resolved when it runs.
type Transport struct {
	SecurityHeadersMiddleware Middleware
	PanicRecoverMiddleware    Middleware
	MetricsMiddleware         Middleware
	RateLimitMiddleware       Middleware
	AuthMiddleware            Middleware
	SecurityFilterMiddleware  Middleware
}

// Handlers returns the app wide middlewares that follow the system routes,
// in mount order.
func (t Transport) Handlers() []fiber.Handler {
	ordered := []Middleware{
		t.PanicRecoverMiddleware,
		t.MetricsMiddleware,
		t.RateLimitMiddleware,
		t.AuthMiddleware,
	}
	out := make([]fiber.Handler, 0, len(ordered))
	for _, m := range ordered {
		if m != nil {
			out = append(out, m.Middleware())
		}
	}
	return out
}

// Reject answers the request with the gateway error payload and records the
// code for telemetry.
func Reject(c *fiber.Ctx, status int, message, code string) error {
	c.Locals(common.RejectionCodeKey, code)
	return c.Status(status).JSON(types.NewErrorResponse(message, code))
}
