package postgres_test

import (
	"context"
	"testing"

	"github.com/NeuralTrust/LearnGate/pkg/domain/security_event"
	"github.com/NeuralTrust/LearnGate/pkg/infra/metrics/metric_events"
	"github.com/NeuralTrust/LearnGate/pkg/infra/telemetry/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	saved []*security_event.SecurityEvent
}

func (f *fakeRepo) Save(_ context.Context, evt *security_event.SecurityEvent) error {
	f.saved = append(f.saved, evt)
	return nil
}

func (f *fakeRepo) List(context.Context, security_event.Filter) ([]security_event.SecurityEvent, int64, error) {
	return nil, 0, nil
}

func (f *fakeRepo) Summary(context.Context) ([]security_event.CodeCount, error) {
	return nil, nil
}

func TestExporter_PersistsOnlyRejections(t *testing.T) {
	repo := &fakeRepo{}
	exp := postgres.NewPostgresExporter(repo)

	allowed := metric_events.NewStageEvent()
	allowed.Stage = &metric_events.StageDataEvent{StageName: "sanitizer"}
	require.NoError(t, exp.Handle(context.Background(), allowed))
	require.NoError(t, exp.Handle(context.Background(), metric_events.NewTraceEvent()))
	assert.Empty(t, repo.saved)

	rejected := metric_events.NewStageEvent()
	rejected.TraceID = "trace-9"
	rejected.Method = "POST"
	rejected.Path = "/api/lectures"
	rejected.StatusCode = 400
	rejected.IP = "10.0.0.7"
	rejected.Stage = &metric_events.StageDataEvent{
		StageName:    "injection_protection",
		Error:        true,
		Code:         "SECURITY_VIOLATION",
		ErrorMessage: "Potential security threat detected in request",
		Finding: &metric_events.Finding{
			Section: "body",
			Field:   "content",
			Tier:    "strict",
			Pattern: "ddl_statement",
			Value:   "x'; DROP TABLE users; --",
		},
	}
	require.NoError(t, exp.Handle(context.Background(), rejected))

	require.Len(t, repo.saved, 1)
	se := repo.saved[0]
	assert.Equal(t, "trace-9", se.TraceID)
	assert.Equal(t, "SECURITY_VIOLATION", se.Code)
	assert.Equal(t, 400, se.StatusCode)
	assert.Equal(t, "content", se.Field)
	assert.Equal(t, "10.0.0.7", se.IP)
	assert.Equal(t, []string{"stage:injection_protection", "tier:strict", "pattern:ddl_statement"}, []string(se.Tags))
}

func TestExporter_RequiresRepository(t *testing.T) {
	assert.Error(t, postgres.NewPostgresExporter(nil).ValidateConfig(nil))
}
