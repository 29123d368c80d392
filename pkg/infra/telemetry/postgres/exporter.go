package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/NeuralTrust/LearnGate/pkg/domain/security_event"
	"github.com/NeuralTrust/LearnGate/pkg/domain/telemetry"
	"github.com/NeuralTrust/LearnGate/pkg/infra/metrics/metric_events"
)

const ExporterName = "postgres"

// Exporter persists rejections as security events. Other events are
// ignored.
type Exporter struct {
	repo security_event.Repository
}

func NewPostgresExporter(repo security_event.Repository) *Exporter {
	return &Exporter{repo: repo}
}

func (e *Exporter) Name() string {
	return ExporterName
}

func (e *Exporter) ValidateConfig(map[string]interface{}) error {
	if e.repo == nil {
		return errors.New("postgres exporter requires a database connection")
	}
	return nil
}

func (e *Exporter) WithSettings(map[string]interface{}) (telemetry.Exporter, error) {
	return e, nil
}

func (e *Exporter) Handle(ctx context.Context, evt *metric_events.Event) error {
	if !evt.IsRejection() {
		return nil
	}
	return e.repo.Save(ctx, ToSecurityEvent(evt))
}

func (e *Exporter) Close() {}

// ToSecurityEvent maps a rejection event onto its persisted form.
func ToSecurityEvent(evt *metric_events.Event) *security_event.SecurityEvent {
	se := &security_event.SecurityEvent{
		TraceID:    evt.TraceID,
		Stage:      evt.Stage.StageName,
		Code:       evt.Stage.Code,
		StatusCode: evt.StatusCode,
		Message:    evt.Stage.ErrorMessage,
		Method:     evt.Method,
		Path:       evt.Path,
		Route:      evt.Route,
		IP:         evt.IP,
		UserID:     evt.UserID,
		Device:     evt.Device,
		Os:         evt.Os,
		Browser:    evt.Browser,
		CreatedAt:  time.Unix(evt.Timestamp, 0).UTC(),
	}
	tags := []string{"stage:" + evt.Stage.StageName}
	if f := evt.Stage.Finding; f != nil {
		se.Section = f.Section
		se.Field = f.Field
		se.Tier = f.Tier
		se.Pattern = f.Pattern
		se.Value = f.Value
		if f.Tier != "" {
			tags = append(tags, "tier:"+f.Tier)
		}
		if f.Pattern != "" {
			tags = append(tags, "pattern:"+f.Pattern)
		}
	}
	se.Tags = tags
	return se
}
