package redis_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/NeuralTrust/LearnGate/pkg/infra/cache"
	"github.com/NeuralTrust/LearnGate/pkg/infra/metrics/metric_events"
	"github.com/NeuralTrust/LearnGate/pkg/infra/telemetry/redis"
	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExporter_Handle(t *testing.T) {
	db, mock := redismock.NewClientMock()
	base := redis.NewRedisExporter(cache.NewClientFromRedis(db))

	require.NoError(t, base.ValidateConfig(nil))
	exp, err := base.WithSettings(map[string]interface{}{"channel": "lms:alerts"})
	require.NoError(t, err)

	evt := metric_events.NewStageEvent()
	evt.TraceID = "trace-1"
	evt.Stage = &metric_events.StageDataEvent{StageName: "injection_protection", Error: true, Code: "SECURITY_VIOLATION"}

	b, _ := json.Marshal(evt)
	msg, _ := json.Marshal(cache.RedisMessage{Type: redis.MessageType, Event: b})
	mock.ExpectPublish("lms:alerts", msg).SetVal(1)

	require.NoError(t, exp.Handle(context.Background(), evt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExporter_DefaultChannel(t *testing.T) {
	db, mock := redismock.NewClientMock()
	exp, err := redis.NewRedisExporter(cache.NewClientFromRedis(db)).WithSettings(nil)
	require.NoError(t, err)

	evt := metric_events.NewTraceEvent()
	b, _ := json.Marshal(evt)
	msg, _ := json.Marshal(cache.RedisMessage{Type: redis.MessageType, Event: b})
	mock.ExpectPublish(redis.DefaultChannel, msg).SetErr(assert.AnError)

	assert.Error(t, exp.Handle(context.Background(), evt))
}

func TestExporter_RequiresConnection(t *testing.T) {
	assert.Error(t, redis.NewRedisExporter(nil).ValidateConfig(nil))
}
