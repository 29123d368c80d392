package http

import (
	"strings"
	"time"

	"github.com/NeuralTrust/LearnGate/pkg/common"
	"github.com/NeuralTrust/LearnGate/pkg/envelope"
	"github.com/NeuralTrust/LearnGate/pkg/infra/httpx"
	"github.com/NeuralTrust/LearnGate/pkg/infra/prometheus"
	"github.com/NeuralTrust/LearnGate/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
)

const unmatchedRoute = "unmatched"

type ForwardedHandlerDeps struct {
	Logger      *logrus.Logger
	Client      httpx.Client
	Breaker     httpx.CircuitBreaker
	UpstreamURL string
}

type forwardedHandler struct {
	logger   *logrus.Logger
	client   httpx.Client
	breaker  httpx.CircuitBreaker
	upstream string
}

// NewForwardedHandler sends allowed requests to the upstream LMS, rebuilt
// from the sanitized envelope, and relays the answer.
func NewForwardedHandler(deps ForwardedHandlerDeps) Handler {
	breaker := deps.Breaker
	if breaker == nil {
		breaker = httpx.NewCircuitBreaker("upstream", common.BreakerTimeout, 5, httpx.ObserveState(deps.Logger))
	}
	return &forwardedHandler{
		logger:   deps.Logger,
		client:   deps.Client,
		breaker:  breaker,
		upstream: strings.TrimRight(deps.UpstreamURL, "/"),
	}
}

func (h *forwardedHandler) Handle(c *fiber.Ctx) error {
	env, ok := c.Locals(common.EnvelopeKey).(envelope.Envelope)
	if !ok {
		h.logger.WithField("path", c.Path()).Error("sanitized envelope not found in context")
		return h.handleErrorResponse(c, fiber.StatusInternalServerError, "Internal server error", types.CodeInternalError)
	}
	reqCtx, ok := c.Locals(common.RequestContextKey).(*types.RequestContext)
	if !ok {
		h.logger.WithField("path", c.Path()).Error("request context not found")
		return h.handleErrorResponse(c, fiber.StatusInternalServerError, "Internal server error", types.CodeInternalError)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	if err := h.buildUpstreamRequest(c, req, reqCtx, env); err != nil {
		h.logger.WithError(err).WithField("trace_id", reqCtx.TraceID).Error("failed to build upstream request")
		return h.handleErrorResponse(c, fiber.StatusInternalServerError, "Internal server error", types.CodeInternalError)
	}

	start := time.Now()
	err := h.breaker.Execute(func() error {
		return h.client.Do(req, resp)
	})
	route := reqCtx.Route
	if route == "" {
		route = unmatchedRoute
	}
	prometheus.UpstreamLatency.WithLabelValues(route).Observe(float64(time.Since(start).Milliseconds()))

	if err != nil {
		log := h.logger.WithError(err).WithFields(logrus.Fields{
			"trace_id": reqCtx.TraceID,
			"path":     reqCtx.Path,
		})
		if httpx.IsOpen(err) {
			log.Warn("upstream circuit open")
			return h.handleErrorResponse(c, fiber.StatusServiceUnavailable, "Upstream unavailable", types.CodeUpstreamUnavailable)
		}
		log.Error("upstream request failed")
		return h.handleErrorResponse(c, fiber.StatusBadGateway, "Upstream request failed", types.CodeUpstreamError)
	}

	return h.relayResponse(c, resp)
}

func (h *forwardedHandler) buildUpstreamRequest(
	c *fiber.Ctx,
	req *fasthttp.Request,
	reqCtx *types.RequestContext,
	env envelope.Envelope,
) error {
	target := h.upstream + RenderPath(reqCtx.Route, string(c.Request().URI().PathOriginal()), env.Params)
	if query := EncodeQuery(env.Query); query != "" {
		target += "?" + query
	}
	req.SetRequestURI(target)
	req.Header.SetMethod(c.Method())
	copyRequestHeaders(req, c.Request())
	req.Header.Set(fiber.HeaderXForwardedFor, c.IP())
	if reqCtx.TraceID != "" {
		req.Header.Set(common.TraceIDHeader, reqCtx.TraceID)
	}

	body, contentType, err := EncodeBody(reqCtx.BodyFormat, reqCtx.ContentType, env.Body, reqCtx.Files)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.SetContentType(contentType)
	}
	if len(body) > 0 {
		req.SetBodyRaw(body)
	}
	return nil
}

func (h *forwardedHandler) relayResponse(c *fiber.Ctx, resp *fasthttp.Response) error {
	resp.Header.VisitAll(func(key, value []byte) {
		if _, skip := skippedResponseHeaders[strings.ToLower(string(key))]; skip {
			return
		}
		c.Response().Header.AddBytesKV(key, value)
	})
	c.Status(resp.StatusCode())
	c.Response().SetBody(resp.Body())
	return nil
}

func (h *forwardedHandler) handleErrorResponse(c *fiber.Ctx, status int, message, code string) error {
	c.Locals(common.RejectionCodeKey, code)
	return c.Status(status).JSON(types.NewErrorResponse(message, code))
}
