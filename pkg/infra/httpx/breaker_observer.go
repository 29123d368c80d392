package httpx

import (
	"github.com/NeuralTrust/LearnGate/pkg/infra/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
)

// ObserveState logs every breaker transition and mirrors the new state in
// the learngate_circuit_breaker_state gauge.
func ObserveState(logger *logrus.Logger) BreakerOption {
	return WithStateChange(func(name string, from, to gobreaker.State) {
		prometheus.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
		entry := logger.WithFields(logrus.Fields{
			"breaker": name,
			"from":    from.String(),
			"to":      to.String(),
		})
		if to == gobreaker.StateOpen {
			entry.Warn("circuit breaker opened")
			return
		}
		entry.Info("circuit breaker state changed")
	})
}
