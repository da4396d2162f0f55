package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxgate/fluxgate/registry"
)

func okAction(route string) registry.Action {
	return registry.NewFuncAction(route, func(_ context.Context, query registry.Query, _ ...any) (any, error) {
		return "ok:" + query.Get("id"), nil
	})
}

func failingAction(route string, err error) registry.Action {
	return registry.NewFuncAction(route, func(_ context.Context, _ registry.Query, _ ...any) (any, error) {
		return nil, err
	})
}

func TestCircuitBreaker_PassthroughWhileClosed(t *testing.T) {
	t.Parallel()

	b := CircuitBreaker(okAction("/jobs/:id"), "jobs", 3, time.Second)

	assert.Equal(t, "/jobs/:id", b.Route())
	assert.Equal(t, gobreaker.StateClosed, b.State())

	result, err := b.Dispatch(context.Background(), registry.Query{"id": "1"})
	require.NoError(t, err)
	assert.Equal(t, "ok:1", result)
}

func TestCircuitBreaker_OpensAfterFailures(t *testing.T) {
	t.Parallel()

	backendErr := errors.New("backend down")
	b := CircuitBreaker(failingAction("/jobs/:id", backendErr), "jobs-failing", 3, time.Minute)

	// Trip the breaker: enough observed requests at full failure ratio.
	for i := 0; i < 3; i++ {
		_, err := b.Dispatch(context.Background(), registry.Query{"id": "1"})
		assert.ErrorIs(t, err, backendErr)
	}

	assert.Equal(t, gobreaker.StateOpen, b.State())

	_, err := b.Dispatch(context.Background(), registry.Query{"id": "1"})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
}

func TestCircuitBreaker_HandlerErrorPassesThrough(t *testing.T) {
	t.Parallel()

	backendErr := errors.New("boom")
	b := CircuitBreaker(failingAction("/x", backendErr), "x", 100, time.Second)

	_, err := b.Dispatch(context.Background(), registry.Query{})
	assert.Same(t, backendErr, err)
}

func TestCircuitBreaker_UsableInRegistry(t *testing.T) {
	t.Parallel()

	b := CircuitBreaker(okAction("/jobs/:id"), "jobs-registry", 3, time.Second)

	r, err := registry.New(registry.WithActions(b))
	require.NoError(t, err)

	result, err := r.DispatchAction(context.Background(), "/jobs/7")
	require.NoError(t, err)
	assert.Equal(t, "ok:7", result)
}
