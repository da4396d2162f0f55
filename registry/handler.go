package registry

import (
	"context"

	"github.com/google/uuid"

	"github.com/fluxgate/fluxgate/router"
)

// Query is the parameter mapping extracted from a matched route pattern.
type Query = router.Query

// Action is a registered write/command handler. Implementations own their
// execution model entirely: Dispatch may block, and cancellation is driven
// by the caller's context, not by the registry.
type Action interface {
	// Route returns the route pattern the action is registered under.
	Route() string

	// Dispatch executes the action with the extracted query and any extra
	// arguments forwarded by the caller.
	Dispatch(ctx context.Context, query Query, args ...any) (any, error)
}

// Store is a registered read/query handler with persistable state. The
// snapshot layout passed through LoadState/DumpState is owned by the store.
type Store interface {
	// Route returns the route pattern the store is registered under.
	Route() string

	// Fetch resolves the query against the store, possibly hitting a
	// backing service.
	Fetch(ctx context.Context, query Query) (any, error)

	// ReadFromState answers the query from already-loaded state without
	// blocking.
	ReadFromState(query Query) any

	// LoadState replaces the store's state with a previously dumped snapshot.
	LoadState(snapshot any) error

	// DumpState returns a snapshot of the store's current state.
	DumpState() any
}

// DispatchFunc adapts a function to the Action dispatch contract.
type DispatchFunc func(ctx context.Context, query Query, args ...any) (any, error)

// FuncAction is a function-backed Action with a generated identity.
type FuncAction struct {
	id    string
	route string
	fn    DispatchFunc
}

// NewFuncAction creates an Action from a route pattern and a dispatch function.
func NewFuncAction(route string, fn DispatchFunc) *FuncAction {
	return &FuncAction{
		id:    uuid.NewString(),
		route: route,
		fn:    fn,
	}
}

// ID returns the action's unique identity.
func (a *FuncAction) ID() string {
	return a.id
}

// Route returns the action's route pattern.
func (a *FuncAction) Route() string {
	return a.route
}

// Dispatch invokes the wrapped function.
func (a *FuncAction) Dispatch(ctx context.Context, query Query, args ...any) (any, error) {
	return a.fn(ctx, query, args...)
}

// ActionRef selects between registering a new action and looking up an
// already-registered one by its exact route string. Build one with
// RegisterAction or LookupAction.
type ActionRef struct {
	handler Action
	route   string
}

// RegisterAction yields a ref that registers the given action.
func RegisterAction(a Action) ActionRef {
	return ActionRef{handler: a}
}

// LookupAction yields a ref that finds the action registered under route.
func LookupAction(route string) ActionRef {
	return ActionRef{route: route}
}

// StoreRef selects between registering a new store and looking up an
// already-registered one by its exact route string. Build one with
// RegisterStore or LookupStore.
type StoreRef struct {
	handler Store
	route   string
}

// RegisterStore yields a ref that registers the given store.
func RegisterStore(s Store) StoreRef {
	return StoreRef{handler: s}
}

// LookupStore yields a ref that finds the store registered under route.
func LookupStore(route string) StoreRef {
	return StoreRef{route: route}
}
