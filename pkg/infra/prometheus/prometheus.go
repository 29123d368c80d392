package prometheus

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var registry = prometheus.NewRegistry()

var registerer = prometheus.WrapRegistererWith(nil, registry)

var (
	// Latency buckets in milliseconds
	latencyBuckets = []float64{
		5, 10, 25,
		50, 100, 250,
		500, 1000, 2500,
		5000, 10000, 30000,
	}

	// Stage buckets in milliseconds; stages are in-process and fast
	stageBuckets = []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50}

	RequestsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "learngate_requests_total",
			Help: "Total number of requests processed, by outcome",
		},
		[]string{"method", "outcome"},
	)

	RejectionsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "learngate_rejections_total",
			Help: "Requests rejected by the security pipeline",
		},
		[]string{"stage", "code"},
	)

	StageDuration = promauto.With(registerer).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "learngate_stage_duration_ms",
			Help:    "Pipeline stage execution time in milliseconds",
			Buckets: stageBuckets,
		},
		[]string{"stage"},
	)

	SanitizedValuesTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "learngate_sanitized_values_total",
			Help: "String values altered by markup stripping",
		},
		[]string{"section"},
	)

	UpstreamLatency = promauto.With(registerer).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "learngate_upstream_latency_ms",
			Help:    "Upstream LMS latency in milliseconds",
			Buckets: latencyBuckets,
		},
		[]string{"route"},
	)

	ExporterFailuresTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "learngate_exporter_failures_total",
			Help: "Security events an exporter failed to deliver",
		},
		[]string{"exporter"},
	)

	// 0 closed, 1 half-open, 2 open
	CircuitBreakerState = promauto.With(registerer).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "learngate_circuit_breaker_state",
			Help: "Current state of each circuit breaker",
		},
		[]string{"breaker"},
	)
)

var initOnce sync.Once

func Initialize() {
	initOnce.Do(func() {
		registry.MustRegister(
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewGoCollector(),
		)
	})
}

// Handler serves the private registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
}

func Gatherer() prometheus.Gatherer {
	return registry
}
