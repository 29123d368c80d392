package kafka

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/NeuralTrust/LearnGate/pkg/infra/metrics/metric_events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name      string
		settings  map[string]interface{}
		expectErr string
	}{
		{"host and port", map[string]interface{}{"host": "localhost", "port": "9092", "topic": "events"}, ""},
		{"numeric port", map[string]interface{}{"host": "localhost", "port": 9092}, ""},
		{"broker list", map[string]interface{}{"brokers": []string{"k1:9092", "k2:9092"}}, ""},
		{"missing host", map[string]interface{}{"port": "9092"}, "kafka host or brokers are required"},
		{"missing port", map[string]interface{}{"host": "localhost"}, "kafka port is required"},
	}

	exporter := NewKafkaExporter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := exporter.ValidateConfig(tt.settings)
			if tt.expectErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.expectErr)
		})
	}
}

func TestDecodeConfig_Defaults(t *testing.T) {
	conf, err := decodeConfig(map[string]interface{}{"host": "kafka", "port": "9092"})
	require.NoError(t, err)
	assert.Equal(t, DefaultTopic, conf.Topic)
	assert.Equal(t, "learngate", conf.ClientID)
	assert.Equal(t, "kafka:9092", conf.bootstrapServers())

	conf, err = decodeConfig(map[string]interface{}{"brokers": []string{"k1:9092", "k2:9092"}, "host": "ignored"})
	require.NoError(t, err)
	assert.Equal(t, "k1:9092,k2:9092", conf.bootstrapServers())
}

func TestMessage_RejectionHeaders(t *testing.T) {
	evt := metric_events.NewStageEvent()
	evt.TraceID = "trace-1"
	evt.Stage = &metric_events.StageDataEvent{
		StageName: "injection_protection",
		Error:     true,
		Code:      "SECURITY_VIOLATION",
	}

	msg, err := Message("events", evt)
	require.NoError(t, err)

	assert.Equal(t, "events", *msg.TopicPartition.Topic)
	assert.Equal(t, []byte("trace-1"), msg.Key)
	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, map[string]string{
		HeaderEventType: metric_events.StageType,
		HeaderStage:     "injection_protection",
		HeaderCode:      "SECURITY_VIOLATION",
	}, headers)

	var decoded metric_events.Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, evt.ID, decoded.ID)
	assert.True(t, decoded.IsRejection())
}

func TestMessage_TraceEventHasOnlyTypeHeader(t *testing.T) {
	evt := metric_events.NewTraceEvent()
	msg, err := Message(DefaultTopic, evt)
	require.NoError(t, err)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, HeaderEventType, msg.Headers[0].Key)
	assert.Equal(t, metric_events.TraceType, string(msg.Headers[0].Value))
}

func TestHandle_WithoutProducer(t *testing.T) {
	err := NewKafkaExporter().Handle(context.Background(), metric_events.NewStageEvent())
	assert.EqualError(t, err, "kafka producer is not initialized")
}
