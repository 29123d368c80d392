package injection_protection

import (
	"context"
	"errors"

	"github.com/NeuralTrust/LearnGate/pkg/envelope"
	"github.com/NeuralTrust/LearnGate/pkg/infra/metrics"
	"github.com/NeuralTrust/LearnGate/pkg/infra/metrics/metric_events"
	"github.com/NeuralTrust/LearnGate/pkg/infra/stageiface"
	"github.com/NeuralTrust/LearnGate/pkg/policy"
	"github.com/NeuralTrust/LearnGate/pkg/types"
	"github.com/NeuralTrust/LearnGate/pkg/utils"
	"github.com/sirupsen/logrus"
)

const (
	StageName      = "injection_protection"
	maxLoggedChars = 100
)

type InjectionProtectionStage struct {
	logger *logrus.Logger
	policy *policy.Policy
}

func NewInjectionProtectionStage(logger *logrus.Logger, p *policy.Policy) stageiface.Stage {
	return &InjectionProtectionStage{
		logger: logger,
		policy: p,
	}
}

func (s *InjectionProtectionStage) Name() string {
	return StageName
}

// Execute scans every string leaf of body, query and params, in that order.
// The first match rejects the whole request. Detection is heuristic: it
// narrows the attack surface but does not replace parameterized queries.
func (s *InjectionProtectionStage) Execute(
	_ context.Context,
	req *types.RequestContext,
	env envelope.Envelope,
	evtCtx *metrics.EventContext,
) (envelope.Envelope, error) {
	maxDepth := s.policy.Limits().MaxDepth

	for _, section := range envelope.Sections {
		err := envelope.WalkStrings(env.Section(section), maxDepth, func(path envelope.Path, value string) error {
			field := path.Field()
			if s.policy.IsExempt(field) {
				return nil
			}
			tier := s.policy.TierFor(req.Path, field)
			pattern, matched := s.policy.Match(tier, value)
			if !matched {
				return nil
			}
			return s.handleInjectionDetected(evtCtx, InjectionData{
				Section: string(section),
				Field:   field,
				Path:    path.String(),
				Tier:    string(tier),
				Pattern: pattern.Name,
			}, value)
		})
		if err == nil {
			continue
		}
		if errors.Is(err, envelope.ErrMaxDepth) {
			return env, &types.StageError{
				StatusCode: 400,
				Message:    "Request structure is nested too deeply",
				Code:       types.CodeSecurityViolation,
				Err:        err,
			}
		}
		return env, err
	}

	return env, nil
}

func (s *InjectionProtectionStage) handleInjectionDetected(
	evtCtx *metrics.EventContext,
	data InjectionData,
	value string,
) error {
	truncated := utils.TruncateRunes(value, maxLoggedChars)

	s.logger.WithFields(logrus.Fields{
		"section": data.Section,
		"field":   data.Field,
		"path":    data.Path,
		"tier":    data.Tier,
		"pattern": data.Pattern,
		"value":   truncated,
	}).Warn("threat detected")

	evtCtx.SetExtras(data)
	evtCtx.SetFinding(&metric_events.Finding{
		Section: data.Section,
		Field:   data.Field,
		Tier:    data.Tier,
		Pattern: data.Pattern,
		Value:   truncated,
	})

	return &types.StageError{
		StatusCode: 400,
		Message:    "Potential security threat detected in request",
		Code:       types.CodeSecurityViolation,
		Err:        errors.New("injection pattern " + data.Pattern + " matched " + data.Section + "." + data.Path),
	}
}
