package pipeline

import (
	"github.com/NeuralTrust/LearnGate/pkg/envelope"
	"github.com/NeuralTrust/LearnGate/pkg/types"
)

// Outcome is the result of running the pipeline over one request: either the
// sanitized envelope to forward, or a rejection. Exactly one is set.
type Outcome struct {
	Envelope  envelope.Envelope
	Rejection *Rejection
}

// Rejection is a terminal refusal of a request.
type Rejection struct {
	StatusCode int
	Message    string
	Code       string
	Stage      string
	Err        error
}

// Payload is the JSON body returned to the caller on rejection.
type Payload = types.ErrorResponse

func Allow(env envelope.Envelope) Outcome {
	return Outcome{Envelope: env}
}

func Reject(r *Rejection) Outcome {
	return Outcome{Rejection: r}
}

func (o Outcome) Allowed() bool {
	return o.Rejection == nil
}

func (r *Rejection) Payload() Payload {
	return types.NewErrorResponse(r.Message, r.Code)
}
