package middleware

import (
	"context"
	"time"

	"github.com/NeuralTrust/LearnGate/pkg/common"
	"github.com/NeuralTrust/LearnGate/pkg/types"
	"github.com/NeuralTrust/LearnGate/pkg/utils"
	"github.com/gofiber/fiber/v2"
	fiberutils "github.com/gofiber/fiber/v2/utils"
)

// RequestContextFrom returns the request context stored in locals, building
// and storing it on first use.
func RequestContextFrom(c *fiber.Ctx) *types.RequestContext {
	if req, ok := c.Locals(common.RequestContextKey).(*types.RequestContext); ok {
		return req
	}

	now := time.Now()
	contentLength := int64(c.Request().Header.ContentLength())
	if contentLength < 0 {
		contentLength = 0
	}
	req := &types.RequestContext{
		Context:       context.Background(),
		Method:        fiberutils.CopyString(c.Method()),
		Path:          fiberutils.CopyString(c.Path()),
		IP:            fiberutils.CopyString(c.IP()),
		ContentType:   string(c.Request().Header.ContentType()),
		ContentLength: contentLength,
		QueryCount:    c.Request().URI().QueryArgs().Len(),
		Headers:       make(map[string][]string),
		Metadata: map[string]interface{}{
			utils.UserAgentInfoKey: utils.ParseUserAgent(
				fiberutils.CopyString(c.Get(fiber.HeaderUserAgent)),
				fiberutils.CopyString(c.Get(fiber.HeaderAcceptLanguage)),
			),
		},
		ProcessAt: &now,
	}
	if traceID, ok := c.Locals(common.TraceIdKey).(string); ok {
		req.TraceID = traceID
	}
	for key, values := range c.GetReqHeaders() {
		copied := make([]string, len(values))
		for i, v := range values {
			copied[i] = fiberutils.CopyString(v)
		}
		req.Headers[fiberutils.CopyString(key)] = copied
	}
	c.Locals(common.RequestContextKey, req)
	return req
}
