package middleware

import (
	"errors"
	"time"

	"github.com/NeuralTrust/LearnGate/pkg/common"
	"github.com/NeuralTrust/LearnGate/pkg/infra/metrics"
	"github.com/gofiber/fiber/v2"
	fiberutils "github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type metricsMiddleware struct {
	logger *logrus.Logger
	worker metrics.Worker
}

// NewMetricsMiddleware attaches a trace id and an event collector to every
// request and hands the collected events to the worker once the response is
// known.
func NewMetricsMiddleware(logger *logrus.Logger, worker metrics.Worker) Middleware {
	return &metricsMiddleware{
		logger: logger,
		worker: worker,
	}
}

func (m *metricsMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		startTime := time.Now()
		traceID := fiberutils.CopyString(c.Get(common.TraceIDHeader))
		if _, err := uuid.Parse(traceID); err != nil {
			traceID = uuid.New().String()
		}
		collector := metrics.NewCollector(metrics.WithTraceID(traceID))

		c.Locals(common.TraceIdKey, traceID)
		c.Locals(common.StartTimeKey, startTime)
		c.Locals(metrics.CollectorKey, collector)
		c.Set(common.TraceIDHeader, traceID)

		req := RequestContextFrom(c)

		err := c.Next()

		statusCode := c.Response().StatusCode()
		if err != nil {
			statusCode = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				statusCode = fe.Code
			}
		}

		trace := metrics.Trace{
			StatusCode: statusCode,
			Outcome:    outcomeOf(c, statusCode),
			Start:      startTime,
			End:        time.Now(),
		}
		if code, ok := c.Locals(common.RejectionCodeKey).(string); ok {
			trace.Code = code
		}
		if route, ok := c.Locals(common.RouteKey).(string); ok {
			trace.Route = route
		}
		if userID, ok := c.Locals(common.UserIDKey).(string); ok && userID != "" {
			req.Metadata[common.UserIDKey] = userID
		}

		m.worker.Process(collector, req, trace)
		return err
	}
}

func outcomeOf(c *fiber.Ctx, statusCode int) string {
	if _, rejected := c.Locals(common.RejectionStageKey).(string); rejected {
		return metrics.OutcomeRejected
	}
	if statusCode >= fiber.StatusInternalServerError {
		return metrics.OutcomeError
	}
	return metrics.OutcomeAllowed
}
