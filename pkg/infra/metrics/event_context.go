package metrics

import (
	"sync"
	"time"

	"github.com/NeuralTrust/LearnGate/pkg/infra/metrics/metric_events"
)

// EventContext gathers what a single stage reports about a request.
type EventContext struct {
	StageName string
	data      *metric_events.StageDataEvent
	collector *Collector
	startedAt time.Time
	mu        sync.Mutex
}

func NewEventContext(stageName string, collector *Collector) *EventContext {
	return &EventContext{
		StageName: stageName,
		data: &metric_events.StageDataEvent{
			StageName: stageName,
		},
		collector: collector,
		startedAt: time.Now(),
	}
}

func (e *EventContext) SetExtras(extras interface{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.data.Extras = extras
}

func (e *EventContext) SetError(code string, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.data.Error = true
	e.data.Code = code
	if err != nil {
		e.data.ErrorMessage = err.Error()
	}
}

func (e *EventContext) SetFinding(f *metric_events.Finding) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.data.Finding = f
}

func (e *EventContext) Publish() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.collector == nil {
		return
	}
	e.data.ExecutionTime = time.Since(e.startedAt).Microseconds()
	evt := metric_events.NewStageEvent()
	evt.Stage = e.data
	e.collector.Emit(evt)
}
