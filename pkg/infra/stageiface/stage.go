package stageiface

import (
	"context"

	"github.com/NeuralTrust/LearnGate/pkg/envelope"
	"github.com/NeuralTrust/LearnGate/pkg/infra/metrics"
	"github.com/NeuralTrust/LearnGate/pkg/types"
)

// Stage is one step of the request pipeline. Execute returns the envelope
// handed to the next stage, or a *types.StageError rejecting the request.
type Stage interface {
	Name() string
	Execute(
		ctx context.Context,
		req *types.RequestContext,
		env envelope.Envelope,
		evtCtx *metrics.EventContext,
	) (envelope.Envelope, error)
}
