package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/NeuralTrust/LearnGate/pkg/domain/telemetry"
	"github.com/NeuralTrust/LearnGate/pkg/infra/metrics/metric_events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExporter struct {
	name            string
	validateErr     error
	withSettingsErr error
	configured      *fakeExporter
	closed          bool
}

func (m *fakeExporter) Name() string {
	return m.name
}

func (m *fakeExporter) ValidateConfig(map[string]interface{}) error {
	return m.validateErr
}

func (m *fakeExporter) Handle(context.Context, *metric_events.Event) error {
	return nil
}

func (m *fakeExporter) WithSettings(map[string]interface{}) (telemetry.Exporter, error) {
	if m.withSettingsErr != nil {
		return nil, m.withSettingsErr
	}
	if m.configured != nil {
		return m.configured, nil
	}
	return m, nil
}

func (m *fakeExporter) Close() {
	m.closed = true
}

func TestNewExporterLocator_RegistersByName(t *testing.T) {
	first := &fakeExporter{name: "postgres"}
	second := &fakeExporter{name: "redis"}
	replacement := &fakeExporter{name: "redis"}

	locator := NewExporterLocator(
		WithExporter(first),
		WithExporter(second),
		WithExporter(replacement),
	)

	assert.Len(t, locator.exporters, 2)
	assert.Same(t, replacement, locator.exporters["redis"])
}

func TestGetExporter(t *testing.T) {
	configured := &fakeExporter{name: "kafka"}

	tests := []struct {
		name      string
		base      *fakeExporter
		request   string
		want      telemetry.Exporter
		expectErr string
	}{
		{
			name:    "configured instance is returned",
			base:    &fakeExporter{name: "kafka", configured: configured},
			request: "kafka",
			want:    configured,
		},
		{
			name:      "unknown exporter",
			base:      &fakeExporter{name: "kafka"},
			request:   "splunk",
			expectErr: "unknown exporter: splunk",
		},
		{
			name:      "validation error",
			base:      &fakeExporter{name: "kafka", validateErr: errors.New("kafka topic is required")},
			request:   "kafka",
			expectErr: "kafka topic is required",
		},
		{
			name:      "settings error",
			base:      &fakeExporter{name: "kafka", withSettingsErr: errors.New("broker unreachable")},
			request:   "kafka",
			expectErr: "broker unreachable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			locator := NewExporterLocator(WithExporter(tt.base))
			got, err := locator.GetExporter(telemetry.ExporterConfig{Name: tt.request})
			if tt.expectErr != "" {
				assert.Nil(t, got)
				assert.ErrorContains(t, err, tt.expectErr)
				return
			}
			require.NoError(t, err)
			assert.Same(t, tt.want, got)
		})
	}
}

func TestBuild_ClosesOnFailure(t *testing.T) {
	ok := &fakeExporter{name: "postgres"}
	broken := &fakeExporter{name: "kafka", validateErr: errors.New("kafka host is required")}

	locator := NewExporterLocator(WithExporter(ok), WithExporter(broken))

	_, err := locator.Build([]telemetry.ExporterConfig{{Name: "postgres"}, {Name: "kafka"}})
	assert.ErrorContains(t, err, "exporter kafka")
	assert.True(t, ok.closed)

	ok.closed = false
	built, err := locator.Build([]telemetry.ExporterConfig{{Name: "postgres"}})
	require.NoError(t, err)
	assert.Len(t, built, 1)
	assert.False(t, ok.closed)
}

func TestValidateExporter(t *testing.T) {
	locator := NewExporterLocator(WithExporter(&fakeExporter{name: "redis"}))

	assert.NoError(t, locator.ValidateExporter(telemetry.ExporterConfig{Name: "redis"}))
	assert.ErrorContains(t, locator.ValidateExporter(telemetry.ExporterConfig{Name: "nope"}), "unknown exporter")
}
