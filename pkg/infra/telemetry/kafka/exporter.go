package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/NeuralTrust/LearnGate/pkg/domain/telemetry"
	"github.com/NeuralTrust/LearnGate/pkg/infra/metrics/metric_events"
	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/mitchellh/mapstructure"
)

const (
	ExporterName = "kafka"
	DefaultTopic = "learngate.security_events"

	HeaderEventType = "event_type"
	HeaderStage     = "stage"
	HeaderCode      = "code"

	flushTimeoutMs = 5000
)

// Config accepts either a broker list or a single host and port.
type Config struct {
	Brokers  []string `mapstructure:"brokers"`
	Host     string   `mapstructure:"host"`
	Port     string   `mapstructure:"port"`
	Topic    string   `mapstructure:"topic"`
	ClientID string   `mapstructure:"client_id"`
}

func (c Config) bootstrapServers() string {
	if len(c.Brokers) > 0 {
		return strings.Join(c.Brokers, ",")
	}
	return c.Host + ":" + c.Port
}

func decodeConfig(settings map[string]interface{}) (Config, error) {
	var conf Config
	if err := mapstructure.WeakDecode(settings, &conf); err != nil {
		return conf, fmt.Errorf("invalid kafka config: %w", err)
	}
	if conf.Topic == "" {
		conf.Topic = DefaultTopic
	}
	if conf.ClientID == "" {
		conf.ClientID = "learngate"
	}
	return conf, nil
}

type Exporter struct {
	cfg      Config
	producer *kafka.Producer
}

func NewKafkaExporter() *Exporter {
	return &Exporter{}
}

func (p *Exporter) Name() string {
	return ExporterName
}

func (p *Exporter) ValidateConfig(settings map[string]interface{}) error {
	conf, err := decodeConfig(settings)
	if err != nil {
		return err
	}
	if len(conf.Brokers) > 0 {
		return nil
	}
	if conf.Host == "" {
		return errors.New("kafka host or brokers are required")
	}
	if conf.Port == "" {
		return errors.New("kafka port is required")
	}
	return nil
}

func (p *Exporter) WithSettings(settings map[string]interface{}) (telemetry.Exporter, error) {
	conf, err := decodeConfig(settings)
	if err != nil {
		return nil, err
	}
	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": conf.bootstrapServers(),
		"client.id":         conf.ClientID,
		"acks":              "all",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return &Exporter{
		cfg:      conf,
		producer: producer,
	}, nil
}

// Message builds the record for evt: keyed by trace id so every event of a
// request lands on the same partition, with the event type, stage and
// rejection code as headers for consumers that filter without decoding.
func Message(topic string, evt *metric_events.Event) (*kafka.Message, error) {
	data, err := json.Marshal(evt)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal security event: %w", err)
	}
	headers := []kafka.Header{{Key: HeaderEventType, Value: []byte(evt.Type)}}
	if evt.Stage != nil {
		headers = append(headers, kafka.Header{Key: HeaderStage, Value: []byte(evt.Stage.StageName)})
		if evt.Stage.Code != "" {
			headers = append(headers, kafka.Header{Key: HeaderCode, Value: []byte(evt.Stage.Code)})
		}
	}
	return &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(evt.TraceID),
		Value:          data,
		Headers:        headers,
	}, nil
}

// Handle produces the event and waits for the broker acknowledgement or ctx.
func (p *Exporter) Handle(ctx context.Context, evt *metric_events.Event) error {
	if p.producer == nil {
		return errors.New("kafka producer is not initialized")
	}
	msg, err := Message(p.cfg.Topic, evt)
	if err != nil {
		return err
	}

	delivery := make(chan kafka.Event, 1)
	if err := p.producer.Produce(msg, delivery); err != nil {
		return fmt.Errorf("failed to produce security event: %w", err)
	}

	select {
	case e := <-delivery:
		m, ok := e.(*kafka.Message)
		if !ok {
			return fmt.Errorf("unexpected delivery event %T", e)
		}
		if m.TopicPartition.Error != nil {
			return fmt.Errorf("security event delivery failed: %w", m.TopicPartition.Error)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Exporter) Close() {
	if p.producer == nil {
		return
	}
	p.producer.Flush(flushTimeoutMs)
	p.producer.Close()
}
