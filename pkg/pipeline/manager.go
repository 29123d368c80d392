package pipeline

import (
	"context"
	"errors"

	"github.com/NeuralTrust/LearnGate/pkg/envelope"
	"github.com/NeuralTrust/LearnGate/pkg/infra/metrics"
	"github.com/NeuralTrust/LearnGate/pkg/infra/stageiface"
	"github.com/NeuralTrust/LearnGate/pkg/pipeline/stages/field_normalizer"
	"github.com/NeuralTrust/LearnGate/pkg/pipeline/stages/injection_protection"
	"github.com/NeuralTrust/LearnGate/pkg/pipeline/stages/limit_guard"
	"github.com/NeuralTrust/LearnGate/pkg/pipeline/stages/sanitizer"
	"github.com/NeuralTrust/LearnGate/pkg/pipeline/stages/upload_validator"
	"github.com/NeuralTrust/LearnGate/pkg/policy"
	"github.com/NeuralTrust/LearnGate/pkg/types"
	"github.com/sirupsen/logrus"
)

type Manager interface {
	Run(
		ctx context.Context,
		req *types.RequestContext,
		env envelope.Envelope,
		collector *metrics.Collector,
	) Outcome
	Stages() []string
	Policy() *policy.Policy
}

type manager struct {
	logger *logrus.Logger
	policy *policy.Policy
	stages []stageiface.Stage
}

// New builds the pipeline with its stages in their fixed order. The policy is
// shared read only by every stage.
func New(logger *logrus.Logger, p *policy.Policy) Manager {
	return NewWithStages(logger, p,
		sanitizer.NewSanitizerStage(logger, p),
		limit_guard.NewLimitGuardStage(logger, p),
		injection_protection.NewInjectionProtectionStage(logger, p),
		field_normalizer.NewFieldNormalizerStage(logger, p),
		upload_validator.NewUploadValidatorStage(logger, p),
	)
}

func NewWithStages(logger *logrus.Logger, p *policy.Policy, stages ...stageiface.Stage) Manager {
	return &manager{
		logger: logger,
		policy: p,
		stages: stages,
	}
}

func (m *manager) Stages() []string {
	names := make([]string, 0, len(m.stages))
	for _, s := range m.stages {
		names = append(names, s.Name())
	}
	return names
}

func (m *manager) Policy() *policy.Policy {
	return m.policy
}

// Run executes every stage once, in order. The first rejection ends the run;
// later stages never see the request.
func (m *manager) Run(
	ctx context.Context,
	req *types.RequestContext,
	env envelope.Envelope,
	collector *metrics.Collector,
) Outcome {
	current := env
	for _, stage := range m.stages {
		evtCtx := metrics.NewEventContext(stage.Name(), collector)
		next, err := stage.Execute(ctx, req, current, evtCtx)
		if err != nil {
			rejection := m.toRejection(stage.Name(), err)
			evtCtx.SetError(rejection.Code, err)
			evtCtx.Publish()
			return Reject(rejection)
		}
		evtCtx.Publish()
		current = next
	}
	return Allow(current)
}

func (m *manager) toRejection(stageName string, err error) *Rejection {
	var stageErr *types.StageError
	if errors.As(err, &stageErr) {
		return &Rejection{
			StatusCode: stageErr.StatusCode,
			Message:    stageErr.Message,
			Code:       stageErr.Code,
			Stage:      stageName,
			Err:        stageErr.Err,
		}
	}
	// unknown failures reject rather than forward
	m.logger.WithError(err).WithField("stage", stageName).Error("stage failed")
	return &Rejection{
		StatusCode: 400,
		Message:    "Request could not be validated",
		Code:       types.CodeSecurityViolation,
		Stage:      stageName,
		Err:        err,
	}
}
