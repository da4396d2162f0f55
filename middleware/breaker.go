// Package middleware provides Action decorators: circuit breaking and rate
// limiting applied ahead of an action's own dispatch logic.
package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"

	"github.com/fluxgate/fluxgate/observability"
	"github.com/fluxgate/fluxgate/registry"
)

// BreakerAction wraps an Action with a gobreaker circuit breaker. While the
// circuit is open, Dispatch fails fast with gobreaker.ErrOpenState without
// invoking the wrapped action.
type BreakerAction struct {
	next   registry.Action
	cb     *gobreaker.CircuitBreaker
	logger observability.Logger
}

// BreakerOption is a functional option for configuring the breaker.
type BreakerOption func(*BreakerAction)

// WithBreakerLogger sets the breaker logger.
func WithBreakerLogger(logger observability.Logger) BreakerOption {
	return func(b *BreakerAction) {
		b.logger = logger
	}
}

// CircuitBreaker wraps next with a circuit breaker named name. The circuit
// opens once at least threshold requests were observed in the current
// interval with a failure ratio of 0.5 or more, and probes again after
// timeout.
func CircuitBreaker(
	next registry.Action,
	name string,
	threshold int,
	timeout time.Duration,
	opts ...BreakerOption,
) *BreakerAction {
	b := &BreakerAction{
		next:   next,
		logger: observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(b)
	}

	thresholdU32 := safeIntToUint32(threshold)

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: thresholdU32,
		Interval:    timeout,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= thresholdU32 && failureRatio >= 0.5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			b.logger.Info("circuit breaker state change",
				observability.String("name", name),
				observability.String("from", from.String()),
				observability.String("to", to.String()),
			)
		},
	}

	b.cb = gobreaker.NewCircuitBreaker(settings)
	return b
}

// safeIntToUint32 safely converts int to uint32.
func safeIntToUint32(n int) uint32 {
	if n < 0 {
		return 0
	}
	if n > int(^uint32(0)) {
		return ^uint32(0)
	}
	return uint32(n) //nolint:gosec // bounds checked above
}

// Route returns the wrapped action's route pattern.
func (b *BreakerAction) Route() string {
	return b.next.Route()
}

// State returns the current circuit breaker state.
func (b *BreakerAction) State() gobreaker.State {
	return b.cb.State()
}

// Dispatch forwards to the wrapped action through the circuit breaker.
func (b *BreakerAction) Dispatch(ctx context.Context, query registry.Query, args ...any) (any, error) {
	result, err := b.cb.Execute(func() (any, error) {
		return b.next.Dispatch(ctx, query, args...)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		b.logger.Warn("circuit breaker rejected dispatch",
			observability.String("route", b.next.Route()),
			observability.String("state", b.cb.State().String()),
		)
	}
	return result, err
}
