package telemetry

import (
	"context"

	"github.com/NeuralTrust/LearnGate/pkg/infra/metrics/metric_events"
)

// Exporter delivers security events to an external sink. A registered
// exporter is a template: WithSettings returns the configured instance.
type Exporter interface {
	Name() string
	ValidateConfig(settings map[string]interface{}) error
	Handle(ctx context.Context, evt *metric_events.Event) error
	WithSettings(settings map[string]interface{}) (Exporter, error)
	Close()
}
