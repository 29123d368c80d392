package httpx

import (
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
)

// halfOpenRequests is how many calls a half-open breaker lets through before
// deciding whether to close again.
const halfOpenRequests = 5

type CircuitBreaker interface {
	Execute(fn func() error) error
	State() gobreaker.State
}

// StateChangeFunc observes breaker transitions, for logging or metrics.
type StateChangeFunc func(name string, from, to gobreaker.State)

type BreakerOption func(*gobreaker.Settings)

func WithStateChange(fn StateChangeFunc) BreakerOption {
	return func(s *gobreaker.Settings) {
		s.OnStateChange = fn
	}
}

type breaker struct {
	cb *gobreaker.CircuitBreaker
}

// NewCircuitBreaker trips after maxFailures consecutive failures and lets a
// trial call through once timeout has elapsed.
func NewCircuitBreaker(name string, timeout time.Duration, maxFailures uint32, opts ...BreakerOption) CircuitBreaker {
	threshold := max(maxFailures, 1)
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: halfOpenRequests,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
	}
	for _, opt := range opts {
		opt(&settings)
	}
	return &breaker{cb: gobreaker.NewCircuitBreaker(settings)}
}

// Execute runs fn under the breaker. A panic in fn counts as a failure.
func (b *breaker) Execute(fn func() error) error {
	_, err := b.cb.Execute(func() (_ interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic recovered: %v", r)
			}
		}()
		return nil, fn()
	})
	if err != nil {
		return fmt.Errorf("breaker (%s): %w", b.cb.Name(), err)
	}
	return nil
}

func (b *breaker) State() gobreaker.State {
	return b.cb.State()
}

// IsOpen reports whether err was returned because the breaker refused the
// call.
func IsOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
