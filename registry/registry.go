// Package registry binds route patterns to actions and stores and resolves
// incoming paths to the first matching handler.
package registry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fluxgate/fluxgate/observability"
	"github.com/fluxgate/fluxgate/router"
	"github.com/fluxgate/fluxgate/util"
)

// actionEntry pairs a compiled matcher with its action.
type actionEntry struct {
	matcher *router.Matcher
	action  Action
}

// storeEntry pairs a compiled matcher with its store.
type storeEntry struct {
	matcher *router.Matcher
	store   Store
}

// Registry holds the ordered action and store tables and performs
// resolution and dispatch.
type Registry struct {
	mu      sync.RWMutex
	actions []actionEntry
	stores  []storeEntry

	logger observability.Logger
	tracer trace.Tracer
}

// Option is a functional option for configuring the registry.
type Option func(*Registry) error

// WithLogger sets the registry logger.
func WithLogger(logger observability.Logger) Option {
	return func(r *Registry) error {
		r.logger = logger
		return nil
	}
}

// WithTracer sets the OTEL tracer used for dispatch and fetch spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(r *Registry) error {
		r.tracer = tracer
		return nil
	}
}

// WithActions registers the given actions in the order given.
func WithActions(actions ...Action) Option {
	return func(r *Registry) error {
		for _, a := range actions {
			if _, err := r.AddAction(a); err != nil {
				return err
			}
		}
		return nil
	}
}

// WithStores registers the given stores in the order given.
func WithStores(stores ...Store) Option {
	return func(r *Registry) error {
		for _, s := range stores {
			if _, err := r.AddStore(s); err != nil {
				return err
			}
		}
		return nil
	}
}

// New creates a registry. Initial actions and stores passed via WithActions
// and WithStores are registered in option order.
func New(opts ...Option) (*Registry, error) {
	r := &Registry{
		logger: observability.NopLogger(),
		tracer: observability.Tracer(),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// AddAction compiles the action's route pattern, appends the entry to the
// action table, and returns the action unchanged. Duplicate routes are
// permitted; the first registered entry wins during resolution.
func (r *Registry) AddAction(a Action) (Action, error) {
	matcher, err := router.Compile(a.Route())
	if err != nil {
		return nil, util.WrapError(err, "compiling action route")
	}

	r.mu.Lock()
	r.actions = append(r.actions, actionEntry{matcher: matcher, action: a})
	position := len(r.actions)
	r.mu.Unlock()

	r.logger.Debug("action registered",
		observability.String("route", a.Route()),
		observability.Int("position", position),
	)

	return a, nil
}

// AddStore compiles the store's route pattern, appends the entry to the
// store table, and returns the store unchanged. Duplicate routes are
// permitted; the first registered entry wins during resolution.
func (r *Registry) AddStore(s Store) (Store, error) {
	matcher, err := router.Compile(s.Route())
	if err != nil {
		return nil, util.WrapError(err, "compiling store route")
	}

	r.mu.Lock()
	r.stores = append(r.stores, storeEntry{matcher: matcher, store: s})
	position := len(r.stores)
	r.mu.Unlock()

	r.logger.Debug("store registered",
		observability.String("route", s.Route()),
		observability.Int("position", position),
	)

	return s, nil
}

// FindAction returns the first registered action whose route string equals
// route exactly. This is identity lookup, not pattern matching.
func (r *Registry) FindAction(route string) (Action, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, entry := range r.actions {
		if entry.action.Route() == route {
			return entry.action, true
		}
	}
	return nil, false
}

// FindStore returns the first registered store whose route string equals
// route exactly. This is identity lookup, not pattern matching.
func (r *Registry) FindStore(route string) (Store, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, entry := range r.stores {
		if entry.store.Route() == route {
			return entry.store, true
		}
	}
	return nil, false
}

// Action resolves an ActionRef: a register ref adds the action, a lookup
// ref finds it by exact route string. A failed lookup returns an error
// matching util.ErrNotFound.
func (r *Registry) Action(ref ActionRef) (Action, error) {
	if ref.handler != nil {
		return r.AddAction(ref.handler)
	}
	if a, ok := r.FindAction(ref.route); ok {
		return a, nil
	}
	return nil, util.NewActionNotFoundError(ref.route)
}

// Store resolves a StoreRef: a register ref adds the store, a lookup ref
// finds it by exact route string. A failed lookup returns an error matching
// util.ErrNotFound.
func (r *Registry) Store(ref StoreRef) (Store, error) {
	if ref.handler != nil {
		return r.AddStore(ref.handler)
	}
	if s, ok := r.FindStore(ref.route); ok {
		return s, nil
	}
	return nil, util.NewStoreNotFoundError(ref.route)
}

// MatchAction resolves path against the action table in registration order
// and returns the first matching action with its extracted query. When no
// matcher accepts the path the returned error is a *util.ActionNotFoundError.
func (r *Registry) MatchAction(path string) (Action, Query, error) {
	start := time.Now()
	defer func() {
		getRegistryMetrics().matchDuration.WithLabelValues("action").Observe(time.Since(start).Seconds())
	}()

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, entry := range r.actions {
		if query, ok := entry.matcher.Match(path); ok {
			return entry.action, query, nil
		}
	}

	getRegistryMetrics().notFoundTotal.WithLabelValues("action").Inc()
	return nil, nil, util.NewActionNotFoundError(path)
}

// MatchStore resolves path against the store table in registration order
// and returns the first matching store with its extracted query. When no
// matcher accepts the path the returned error is a *util.StoreNotFoundError.
func (r *Registry) MatchStore(path string) (Store, Query, error) {
	start := time.Now()
	defer func() {
		getRegistryMetrics().matchDuration.WithLabelValues("store").Observe(time.Since(start).Seconds())
	}()

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, entry := range r.stores {
		if query, ok := entry.matcher.Match(path); ok {
			return entry.store, query, nil
		}
	}

	getRegistryMetrics().notFoundTotal.WithLabelValues("store").Inc()
	return nil, nil, util.NewStoreNotFoundError(path)
}

// DispatchAction resolves path and invokes the matched action's Dispatch
// with the extracted query and the extra arguments. The registry holds no
// lock during the invocation; blocking and cancellation belong to the
// action. Handler failures pass through unchanged.
func (r *Registry) DispatchAction(ctx context.Context, path string, args ...any) (any, error) {
	ctx, span := r.tracer.Start(ctx, "registry.dispatch_action",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("fluxgate.path", path)),
	)
	defer span.End()

	action, query, err := r.MatchAction(path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		getRegistryMetrics().dispatchTotal.WithLabelValues(outcomeNotFound).Inc()
		return nil, err
	}

	span.SetAttributes(attribute.String("fluxgate.route", action.Route()))

	result, err := action.Dispatch(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		getRegistryMetrics().dispatchTotal.WithLabelValues(outcomeError).Inc()

		r.logger.Debug("action dispatch failed",
			observability.String("path", path),
			observability.String("route", action.Route()),
			observability.Error(err),
		)
		return nil, err
	}

	getRegistryMetrics().dispatchTotal.WithLabelValues(outcomeOK).Inc()
	return result, nil
}

// FetchStore resolves path and invokes the matched store's Fetch with the
// extracted query. The registry holds no lock during the invocation.
func (r *Registry) FetchStore(ctx context.Context, path string) (any, error) {
	ctx, span := r.tracer.Start(ctx, "registry.fetch_store",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("fluxgate.path", path)),
	)
	defer span.End()

	store, query, err := r.MatchStore(path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		getRegistryMetrics().fetchTotal.WithLabelValues(outcomeNotFound).Inc()
		return nil, err
	}

	span.SetAttributes(attribute.String("fluxgate.route", store.Route()))

	state, err := store.Fetch(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		getRegistryMetrics().fetchTotal.WithLabelValues(outcomeError).Inc()

		r.logger.Debug("store fetch failed",
			observability.String("path", path),
			observability.String("route", store.Route()),
			observability.Error(err),
		)
		return nil, err
	}

	getRegistryMetrics().fetchTotal.WithLabelValues(outcomeOK).Inc()
	return state, nil
}

// ReadStoreFromState resolves path and answers the query from the matched
// store's already-loaded state. No suspension: the call is synchronous end
// to end.
func (r *Registry) ReadStoreFromState(path string) (any, error) {
	store, query, err := r.MatchStore(path)
	if err != nil {
		return nil, err
	}
	return store.ReadFromState(query), nil
}

// LoadState distributes per-store snapshots to the store table in
// registration order. The snapshot list must line up with the store table:
// a length mismatch fails with a *util.StateMismatchError before any store
// is touched.
func (r *Registry) LoadState(snapshots []any) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(snapshots) != len(r.stores) {
		return util.NewStateMismatchError(len(r.stores), len(snapshots))
	}

	for i, entry := range r.stores {
		if err := entry.store.LoadState(snapshots[i]); err != nil {
			return util.WrapError(err, "loading state for route "+entry.store.Route())
		}
	}

	return nil
}

// DumpState returns every store's snapshot in registration order. Under a
// stable registration order the result round-trips through LoadState.
func (r *Registry) DumpState() []any {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshots := make([]any, len(r.stores))
	for i, entry := range r.stores {
		snapshots[i] = entry.store.DumpState()
	}
	return snapshots
}

// Actions returns the registered actions in registration order.
func (r *Registry) Actions() []Action {
	r.mu.RLock()
	defer r.mu.RUnlock()

	actions := make([]Action, len(r.actions))
	for i, entry := range r.actions {
		actions[i] = entry.action
	}
	return actions
}

// Stores returns the registered stores in registration order.
func (r *Registry) Stores() []Store {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stores := make([]Store, len(r.stores))
	for i, entry := range r.stores {
		stores[i] = entry.store
	}
	return stores
}
