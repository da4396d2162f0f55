package middleware

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/fluxgate/fluxgate/observability"
	"github.com/fluxgate/fluxgate/registry"
)

// RateLimitedAction wraps an Action with a token-bucket rate limiter.
// Dispatch waits for a token before invoking the wrapped action, so a
// sustained overload turns into backpressure rather than failures; a
// canceled or expired context aborts the wait with the context's error.
type RateLimitedAction struct {
	next    registry.Action
	limiter *rate.Limiter
	logger  observability.Logger
}

// RateLimitOption is a functional option for configuring the rate limiter.
type RateLimitOption func(*RateLimitedAction)

// WithRateLimitLogger sets the rate limiter logger.
func WithRateLimitLogger(logger observability.Logger) RateLimitOption {
	return func(rl *RateLimitedAction) {
		rl.logger = logger
	}
}

// RateLimited wraps next with a limiter allowing rps dispatches per second
// with the given burst.
func RateLimited(next registry.Action, rps float64, burst int, opts ...RateLimitOption) *RateLimitedAction {
	rl := &RateLimitedAction{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		logger:  observability.NopLogger(),
	}

	for _, opt := range opts {
		opt(rl)
	}

	return rl
}

// Route returns the wrapped action's route pattern.
func (rl *RateLimitedAction) Route() string {
	return rl.next.Route()
}

// Allow reports whether a dispatch would currently be admitted without
// waiting. It consumes a token when it returns true.
func (rl *RateLimitedAction) Allow() bool {
	return rl.limiter.Allow()
}

// Dispatch waits for the limiter, then forwards to the wrapped action.
func (rl *RateLimitedAction) Dispatch(ctx context.Context, query registry.Query, args ...any) (any, error) {
	if err := rl.limiter.Wait(ctx); err != nil {
		rl.logger.Warn("rate limiter aborted dispatch",
			observability.String("route", rl.next.Route()),
			observability.Error(err),
		)
		return nil, err
	}
	return rl.next.Dispatch(ctx, query, args...)
}
