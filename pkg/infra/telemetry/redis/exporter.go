package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/NeuralTrust/LearnGate/pkg/domain/telemetry"
	"github.com/NeuralTrust/LearnGate/pkg/infra/cache"
	"github.com/NeuralTrust/LearnGate/pkg/infra/metrics/metric_events"
	"github.com/mitchellh/mapstructure"
)

const (
	ExporterName   = "redis"
	MessageType    = "security_event"
	DefaultChannel = "learngate:security-events"
)

type Config struct {
	Channel string `mapstructure:"channel"`
}

// Exporter publishes events on a redis pub/sub channel so dashboards can
// follow rejections live.
type Exporter struct {
	client cache.Client
	cfg    Config
}

func NewRedisExporter(client cache.Client) *Exporter {
	return &Exporter{client: client}
}

func (e *Exporter) Name() string {
	return ExporterName
}

func (e *Exporter) ValidateConfig(settings map[string]interface{}) error {
	var conf Config
	if err := mapstructure.WeakDecode(settings, &conf); err != nil {
		return fmt.Errorf("invalid redis exporter config: %w", err)
	}
	if e.client == nil {
		return errors.New("redis exporter requires a redis connection")
	}
	return nil
}

func (e *Exporter) WithSettings(settings map[string]interface{}) (telemetry.Exporter, error) {
	var conf Config
	if err := mapstructure.WeakDecode(settings, &conf); err != nil {
		return nil, fmt.Errorf("invalid redis exporter config: %w", err)
	}
	if conf.Channel == "" {
		conf.Channel = DefaultChannel
	}
	return &Exporter{client: e.client, cfg: conf}, nil
}

func (e *Exporter) Handle(ctx context.Context, evt *metric_events.Event) error {
	if err := e.client.Publish(ctx, e.cfg.Channel, MessageType, evt); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// Close leaves the shared connection open; it is owned by main.
func (e *Exporter) Close() {}
