package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// SecurityHeaders are set on every proxy and admin response.
var SecurityHeaders = map[string]string{
	"X-Content-Type-Options":    "nosniff",
	"X-Frame-Options":           "DENY",
	"Strict-Transport-Security": "max-age=31536000; includeSubDomains",
	"Referrer-Policy":           "strict-origin-when-cross-origin",
	"Permissions-Policy":        "geolocation=(), camera=(), microphone=(), payment=()",
	"X-XSS-Protection":          "0",
}

type securityMiddleware struct {
	logger *logrus.Logger
}

func NewSecurityMiddleware(logger *logrus.Logger) Middleware {
	return &securityMiddleware{
		logger: logger,
	}
}

// Middleware sets the headers after the rest of the chain has run, so a
// handler or error handler cannot drop them.
func (m *securityMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				m.logger.WithError(herr).Error("error handler failed")
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		ApplySecurityHeaders(c)
		return nil
	}
}

func ApplySecurityHeaders(c *fiber.Ctx) {
	for name, value := range SecurityHeaders {
		c.Set(name, value)
	}
	c.Response().Header.Del(fiber.HeaderXPoweredBy)
	c.Response().Header.Del(fiber.HeaderServer)
}
