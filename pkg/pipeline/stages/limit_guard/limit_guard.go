package limit_guard

import (
	"context"
	"fmt"

	"github.com/NeuralTrust/LearnGate/pkg/envelope"
	"github.com/NeuralTrust/LearnGate/pkg/infra/metrics"
	"github.com/NeuralTrust/LearnGate/pkg/infra/stageiface"
	"github.com/NeuralTrust/LearnGate/pkg/policy"
	"github.com/NeuralTrust/LearnGate/pkg/types"
	"github.com/sirupsen/logrus"
)

const StageName = "limit_guard"

type LimitData struct {
	Limit  int64 `json:"limit"`
	Actual int64 `json:"actual"`
}

type LimitGuardStage struct {
	logger *logrus.Logger
	policy *policy.Policy
}

func NewLimitGuardStage(logger *logrus.Logger, p *policy.Policy) stageiface.Stage {
	return &LimitGuardStage{
		logger: logger,
		policy: p,
	}
}

func (g *LimitGuardStage) Name() string {
	return StageName
}

// Execute checks the declared content length, the query parameter count and
// the serialized header size, in that order. The declared length is trusted.
func (g *LimitGuardStage) Execute(
	_ context.Context,
	req *types.RequestContext,
	env envelope.Envelope,
	evtCtx *metrics.EventContext,
) (envelope.Envelope, error) {
	limits := g.policy.Limits()

	if req.ContentLength > limits.MaxBodyBytes {
		return env, g.reject(evtCtx, "content_length", limits.MaxBodyBytes, req.ContentLength, &types.StageError{
			StatusCode: 413,
			Message:    "Request entity too large",
			Code:       types.CodeRequestTooLarge,
			Err:        fmt.Errorf("content length %d exceeds %d bytes", req.ContentLength, limits.MaxBodyBytes),
		})
	}

	count := req.QueryCount
	if n := len(envelope.Pairs(env.Query)); n > count {
		count = n
	}
	if count > limits.MaxQueryParams {
		return env, g.reject(evtCtx, "query_params", int64(limits.MaxQueryParams), int64(count), &types.StageError{
			StatusCode: 400,
			Message:    "Too many query parameters",
			Code:       types.CodeTooManyParameters,
			Err:        fmt.Errorf("%d query parameters exceed %d", count, limits.MaxQueryParams),
		})
	}

	size := HeaderBytes(req.Headers)
	if size > limits.MaxHeaderBytes {
		return env, g.reject(evtCtx, "headers", int64(limits.MaxHeaderBytes), int64(size), &types.StageError{
			StatusCode: 400,
			Message:    "Request headers too large",
			Code:       types.CodeHeadersTooLarge,
			Err:        fmt.Errorf("headers of %d bytes exceed %d", size, limits.MaxHeaderBytes),
		})
	}

	return env, nil
}

func (g *LimitGuardStage) reject(
	evtCtx *metrics.EventContext,
	check string,
	limit, actual int64,
	err *types.StageError,
) error {
	g.logger.WithFields(logrus.Fields{
		"check":  check,
		"limit":  limit,
		"actual": actual,
	}).Warn("request limit exceeded")
	evtCtx.SetExtras(LimitData{Limit: limit, Actual: actual})
	return err
}

// HeaderBytes is the size of the header block as written on the wire:
// one "Name: value\r\n" line per value.
func HeaderBytes(headers map[string][]string) int {
	total := 0
	for name, values := range headers {
		for _, v := range values {
			total += len(name) + len(": ") + len(v) + len("\r\n")
		}
	}
	return total
}
