// Package registry binds route patterns to actions and stores and resolves
// incoming paths to the first matching handler.
//
// A Registry holds two ordered tables: actions (write/command handlers) and
// stores (read/query handlers with persistable state). Registration compiles
// the handler's route pattern once; resolution walks the table in insertion
// order and the first matcher to accept the path wins. Earlier registrations
// therefore shadow later ones when patterns overlap — precedence is a
// contract, not an accident. Entries are append-only for the lifetime of a
// Registry; there is no removal.
//
// # Usage
//
//	greet := registry.NewFuncAction("/greet/:name",
//	    func(ctx context.Context, q registry.Query, args ...any) (any, error) {
//	        return "hello " + q.Get("name"), nil
//	    })
//
//	r, err := registry.New(registry.WithActions(greet))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := r.DispatchAction(ctx, "/greet/Ada")
//	// result == "hello Ada"
//
// Failed resolutions surface as *util.ActionNotFoundError or
// *util.StoreNotFoundError carrying the attempted path; both match
// util.ErrNotFound under errors.Is. Failures inside a handler's own
// Dispatch or Fetch pass through unchanged.
//
// # State snapshots
//
// DumpState returns every store's snapshot in registration order and
// LoadState distributes a snapshot list back, failing with a
// *util.StateMismatchError when the list does not line up with the store
// table. Under a stable registration order the two round-trip.
package registry
