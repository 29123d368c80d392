package metrics

import (
	"sync"

	"github.com/NeuralTrust/LearnGate/pkg/infra/metrics/metric_events"
	"github.com/google/uuid"
)

const CollectorKey = "__metrics_collector"

// Collector buffers the events emitted while one request is processed.
type Collector struct {
	traceID string
	mu      sync.Mutex
	events  []*metric_events.Event
}

func NewCollector(opts ...Option) *Collector {
	o := &collectorOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if o.traceID == "" {
		o.traceID = uuid.New().String()
	}
	return &Collector{traceID: o.traceID}
}

func (rc *Collector) TraceID() string {
	return rc.traceID
}

func (rc *Collector) Emit(evt *metric_events.Event) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	evt.TraceID = rc.traceID
	rc.events = append(rc.events, evt)
}

func (rc *Collector) Flush() []*metric_events.Event {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	out := make([]*metric_events.Event, len(rc.events))
	copy(out, rc.events)
	rc.events = nil
	return out
}
