package metrics

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/NeuralTrust/LearnGate/pkg/common"
	"github.com/NeuralTrust/LearnGate/pkg/domain/telemetry"
	"github.com/NeuralTrust/LearnGate/pkg/infra/httpx"
	"github.com/NeuralTrust/LearnGate/pkg/infra/metrics/metric_events"
	"github.com/NeuralTrust/LearnGate/pkg/infra/prometheus"
	"github.com/NeuralTrust/LearnGate/pkg/types"
	"github.com/NeuralTrust/LearnGate/pkg/utils"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	OutcomeAllowed  = "allowed"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"

	DefaultQueueSize = 1000
)

// Trace carries the request level facts known once the response is written.
type Trace struct {
	StatusCode int
	Outcome    string
	Code       string
	Route      string
	Start      time.Time
	End        time.Time
}

type Worker interface {
	Shutdown()
	StartWorkers(n int)
	Process(collector *Collector, req *types.RequestContext, trace Trace)
}

type WorkerOptions struct {
	QueueSize int
	// StageTraces sends non rejection events to the exporters as well.
	StageTraces bool
}

// sectionCounter is implemented by stage extras that report altered leaves
// per envelope section.
type sectionCounter interface {
	SectionCounts() map[string]int
}

type guardedExporter struct {
	exporter telemetry.Exporter
	breaker  httpx.CircuitBreaker
}

type worker struct {
	logger      *logrus.Logger
	exporters   []guardedExporter
	stageTraces bool
	taskChan    chan func()
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	closed      atomic.Bool
}

func NewWorker(logger *logrus.Logger, exporters []telemetry.Exporter, opts WorkerOptions) Worker {
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	ctx, cancel := context.WithCancel(context.Background())
	guarded := make([]guardedExporter, 0, len(exporters))
	for _, exp := range exporters {
		guarded = append(guarded, guardedExporter{
			exporter: exp,
			breaker:  httpx.NewCircuitBreaker("exporter-"+exp.Name(), common.BreakerTimeout, 5, httpx.ObserveState(logger)),
		})
	}
	return &worker{
		logger:      logger,
		exporters:   guarded,
		stageTraces: opts.StageTraces,
		taskChan:    make(chan func(), opts.QueueSize),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Shutdown stops accepting tasks, drains the queue and closes every
// exporter.
func (m *worker) Shutdown() {
	if !m.closed.CompareAndSwap(false, true) {
		return
	}
	m.logger.Info("shutting down metrics workers")
	close(m.taskChan)
	m.wg.Wait()
	m.cancel()

	var g errgroup.Group
	for _, ge := range m.exporters {
		exp := ge.exporter
		g.Go(func() error {
			exp.Close()
			return nil
		})
	}
	_ = g.Wait()
	m.logger.Info("metrics workers stopped")
}

func (m *worker) StartWorkers(n int) {
	if n <= 0 {
		n = 1
	}
	m.logger.WithField("workers", n).Info("starting metrics workers")
	for i := 0; i < n; i++ {
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			for task := range m.taskChan {
				task()
			}
		}()
	}
}

func (m *worker) Process(collector *Collector, req *types.RequestContext, trace Trace) {
	if collector == nil || req == nil {
		return
	}
	events := collector.Flush()
	traceEvt := metric_events.NewTraceEvent()
	traceEvt.TraceID = collector.TraceID()
	traceEvt.Outcome = trace.Outcome
	traceEvt.Code = trace.Code
	events = append(events, traceEvt)

	for _, evt := range events {
		m.feedEvent(evt, req, trace)
	}

	m.enqueueTask(func() {
		m.registryMetricsToPrometheus(events, req.Method, trace.Outcome)
	}, traceEvt.TraceID)

	m.enqueueTask(func() {
		m.registryMetricsToExporters(events)
	}, traceEvt.TraceID)
}

func (m *worker) registryMetricsToPrometheus(events []*metric_events.Event, method, outcome string) {
	prometheus.RequestsTotal.WithLabelValues(method, outcome).Inc()
	for _, evt := range events {
		if evt.Stage == nil {
			continue
		}
		stage := evt.Stage
		prometheus.StageDuration.WithLabelValues(stage.StageName).
			Observe(float64(stage.ExecutionTime) / 1000)
		if stage.Error {
			prometheus.RejectionsTotal.WithLabelValues(stage.StageName, stage.Code).Inc()
		}
		if counter, ok := stage.Extras.(sectionCounter); ok {
			for section, n := range counter.SectionCounts() {
				if n > 0 {
					prometheus.SanitizedValuesTotal.WithLabelValues(section).Add(float64(n))
				}
			}
		}
	}
}

func (m *worker) registryMetricsToExporters(events []*metric_events.Event) {
	var failedExporters []string
	for _, ge := range m.exporters {
		for _, evt := range events {
			if !m.shouldExport(evt) {
				continue
			}
			err := ge.breaker.Execute(func() error {
				ctx, cancel := context.WithTimeout(m.ctx, common.ExporterTimeout)
				defer cancel()
				return ge.exporter.Handle(ctx, evt)
			})
			if err != nil {
				prometheus.ExporterFailuresTotal.WithLabelValues(ge.exporter.Name()).Inc()
				m.logger.WithFields(logrus.Fields{
					"exporter": ge.exporter.Name(),
					"trace_id": evt.TraceID,
					"event":    evt.Type,
				}).WithError(err).Error("exporter failed")
				failedExporters = append(failedExporters, ge.exporter.Name())
				break
			}
		}
	}
	if len(failedExporters) > 0 {
		m.logger.WithField("failedExporters", failedExporters).
			Warnf("%d exporters failed to handle security events", len(failedExporters))
	}
}

func (m *worker) shouldExport(evt *metric_events.Event) bool {
	return m.stageTraces || evt.IsRejection()
}

func (m *worker) enqueueTask(task func(), traceID string) {
	if m.closed.Load() {
		return
	}
	defer func() {
		// Shutdown may close the channel between the check and the send.
		_ = recover()
	}()
	select {
	case m.taskChan <- task:
	default:
		m.logger.WithField("trace_id", traceID).
			Warn("taskChan is full, dropping metrics task")
	}
}

func (m *worker) feedEvent(evt *metric_events.Event, req *types.RequestContext, trace Trace) *metric_events.Event {
	if !trace.Start.IsZero() && !trace.End.IsZero() {
		evt.Latency = trace.End.Sub(trace.Start).Milliseconds()
	}
	evt.IP = req.IP
	evt.Method = req.Method
	evt.Path = req.Path
	evt.Route = trace.Route
	if evt.StatusCode == 0 {
		evt.StatusCode = trace.StatusCode
	}

	if userID, ok := req.Metadata[common.UserIDKey].(string); ok {
		evt.UserID = userID
	}
	if ua, ok := req.Metadata[utils.UserAgentInfoKey].(*utils.UserAgentInfo); ok && ua != nil {
		evt.Browser = ua.Browser
		evt.Device = ua.Device
		evt.Os = ua.OS
		evt.Locale = ua.Locale
	}
	return evt
}
