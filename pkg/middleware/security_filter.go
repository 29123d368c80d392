package middleware

import (
	"errors"
	"strings"

	"github.com/NeuralTrust/LearnGate/pkg/common"
	"github.com/NeuralTrust/LearnGate/pkg/infra/metrics"
	"github.com/NeuralTrust/LearnGate/pkg/pipeline"
	"github.com/NeuralTrust/LearnGate/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const ExtractionStageName = "extraction"

type securityFilterMiddleware struct {
	logger   *logrus.Logger
	pipeline pipeline.Manager
}

// NewSecurityFilterMiddleware runs the sanitization pipeline over every
// request routed through it. Allowed requests continue with the sanitized
// envelope in locals; rejected ones are answered here and never forwarded.
func NewSecurityFilterMiddleware(logger *logrus.Logger, manager pipeline.Manager) Middleware {
	return &securityFilterMiddleware{
		logger:   logger,
		pipeline: manager,
	}
}

func (m *securityFilterMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := RequestContextFrom(c)
		req.Context = c.UserContext()
		if route := c.Route().Path; !strings.Contains(route, "*") {
			req.Route = route
			c.Locals(common.RouteKey, route)
		}

		env, err := ExtractEnvelope(c, req, m.pipeline.Policy().Limits().MaxBodyBytes)
		if err != nil {
			return m.rejectExtraction(c, err)
		}

		collector, _ := c.Locals(metrics.CollectorKey).(*metrics.Collector)
		outcome := m.pipeline.Run(c.UserContext(), req, env, collector)
		if !outcome.Allowed() {
			rejection := outcome.Rejection
			c.Locals(common.RejectionStageKey, rejection.Stage)
			m.logger.WithFields(logrus.Fields{
				"trace_id": req.TraceID,
				"stage":    rejection.Stage,
				"code":     rejection.Code,
				"path":     req.Path,
			}).Info("request rejected")
			c.Locals(common.RejectionCodeKey, rejection.Code)
			return c.Status(rejection.StatusCode).JSON(rejection.Payload())
		}

		c.Locals(common.EnvelopeKey, outcome.Envelope)
		return c.Next()
	}
}

func (m *securityFilterMiddleware) rejectExtraction(c *fiber.Ctx, err error) error {
	m.logger.WithError(err).WithField("path", c.Path()).Info("request body could not be extracted")
	if errors.Is(err, ErrBodyTooLarge) {
		publishRejection(c, ExtractionStageName, types.CodeRequestTooLarge, err)
		return Reject(c, fiber.StatusRequestEntityTooLarge, "Request entity too large", types.CodeRequestTooLarge)
	}
	publishRejection(c, ExtractionStageName, types.CodeMalformedBody, err)
	return Reject(c, fiber.StatusBadRequest, "Malformed request body", types.CodeMalformedBody)
}
