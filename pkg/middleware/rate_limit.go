package middleware

import (
	"errors"
	"strconv"
	"strings"

	"github.com/NeuralTrust/LearnGate/pkg/common"
	"github.com/NeuralTrust/LearnGate/pkg/infra/metrics"
	"github.com/NeuralTrust/LearnGate/pkg/infra/ratelimit"
	"github.com/NeuralTrust/LearnGate/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

const RateLimitStageName = "rate_limit"

var errRateLimited = errors.New("rate limit exceeded")

type rateLimitMiddleware struct {
	logger   *logrus.Logger
	limiter  ratelimit.Limiter
	prefixes []string
}

// NewRateLimitMiddleware throttles requests per client IP on the given path
// prefixes. Other paths pass through untouched.
func NewRateLimitMiddleware(logger *logrus.Logger, limiter ratelimit.Limiter, prefixes []string) Middleware {
	return &rateLimitMiddleware{
		logger:   logger,
		limiter:  limiter,
		prefixes: prefixes,
	}
}

func (m *rateLimitMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		prefix, ok := m.matchPrefix(c.Path())
		if !ok {
			return c.Next()
		}

		res, err := m.limiter.Allow(c.UserContext(), prefix+":"+c.IP())
		if err != nil {
			// fail open while the limiter backend is unreachable
			m.logger.WithError(err).WithField("path", c.Path()).Warn("rate limiter unavailable")
			return c.Next()
		}

		c.Set(common.RateLimitLimitHeader, strconv.Itoa(res.Limit))
		c.Set(common.RateLimitRemainingHeader, strconv.Itoa(res.Remaining))
		c.Set(common.RateLimitResetHeader, strconv.FormatInt(res.Reset.Unix(), 10))

		if !res.Allowed {
			m.logger.WithFields(logrus.Fields{
				"ip":     c.IP(),
				"prefix": prefix,
				"limit":  res.Limit,
			}).Warn("rate limit exceeded")
			publishRejection(c, RateLimitStageName, types.CodeRateLimitExceeded, errRateLimited)
			return Reject(c, fiber.StatusTooManyRequests, "Too many requests, please try again later", types.CodeRateLimitExceeded)
		}
		return c.Next()
	}
}

func (m *rateLimitMiddleware) matchPrefix(path string) (string, bool) {
	for _, p := range m.prefixes {
		if strings.HasPrefix(path, p) {
			return p, true
		}
	}
	return "", false
}

// publishRejection records a rejection decided outside the pipeline as a
// security event of the request.
func publishRejection(c *fiber.Ctx, stage, code string, err error) {
	c.Locals(common.RejectionStageKey, stage)
	collector, ok := c.Locals(metrics.CollectorKey).(*metrics.Collector)
	if !ok {
		return
	}
	evtCtx := metrics.NewEventContext(stage, collector)
	evtCtx.SetError(code, err)
	evtCtx.Publish()
}
