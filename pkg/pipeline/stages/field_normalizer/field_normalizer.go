package field_normalizer

import (
	"context"

	"github.com/NeuralTrust/LearnGate/pkg/envelope"
	"github.com/NeuralTrust/LearnGate/pkg/infra/metrics"
	"github.com/NeuralTrust/LearnGate/pkg/infra/stageiface"
	"github.com/NeuralTrust/LearnGate/pkg/policy"
	"github.com/NeuralTrust/LearnGate/pkg/types"
	"github.com/sirupsen/logrus"
)

const StageName = "field_normalizer"

type NormalizerData struct {
	NulledIDs        []string `json:"nulled_ids,omitempty"`
	NormalizedEmails int      `json:"normalized_emails"`
}

type FieldNormalizerStage struct {
	logger *logrus.Logger
	policy *policy.Policy
}

func NewFieldNormalizerStage(logger *logrus.Logger, p *policy.Policy) stageiface.Stage {
	return &FieldNormalizerStage{
		logger: logger,
		policy: p,
	}
}

func (s *FieldNormalizerStage) Name() string {
	return StageName
}

// Execute coerces the top level identifier fields of body and params and
// canonicalizes the top level email fields of the body. It never rejects.
func (s *FieldNormalizerStage) Execute(
	_ context.Context,
	_ *types.RequestContext,
	env envelope.Envelope,
	evtCtx *metrics.EventContext,
) (envelope.Envelope, error) {
	var data NormalizerData

	body := env.Body
	for _, m := range body.Members() {
		switch {
		case s.policy.IsIDField(m.Key):
			coerced := CoerceID(m.Value)
			if coerced.IsNull() && !m.Value.IsNull() {
				data.NulledIDs = append(data.NulledIDs, "body."+m.Key)
			}
			body = body.Set(m.Key, coerced)
		case s.policy.IsEmailField(m.Key):
			if addr, ok := m.Value.AsString(); ok {
				normalized := NormalizeEmail(addr)
				if normalized != addr {
					data.NormalizedEmails++
				}
				body = body.Set(m.Key, envelope.NewString(normalized))
			}
		}
	}

	params := env.Params
	for _, m := range params.Members() {
		if !s.policy.IsIDField(m.Key) {
			continue
		}
		coerced := CoerceID(m.Value)
		if coerced.IsNull() && !m.Value.IsNull() {
			data.NulledIDs = append(data.NulledIDs, "params."+m.Key)
		}
		params = params.Set(m.Key, coerced)
	}

	if len(data.NulledIDs) > 0 {
		s.logger.WithField("fields", data.NulledIDs).Debug("invalid identifiers coerced to null")
	}
	evtCtx.SetExtras(data)

	return env.With(envelope.SectionBody, body).With(envelope.SectionParams, params), nil
}
