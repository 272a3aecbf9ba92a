package cache

import "context"

// Mutation is one optimistic write against every cache entry under a
// set of key prefixes. The lifecycle is fixed: snapshot the touched
// entries, apply the optimistic transform, run the network call, then
// either reconcile with the server result or restore every snapshot
// exactly. One abstraction, parameterized per operation, instead of
// re-implementing the dance at each call site.
type Mutation[R any] struct {
	Cache *Cache

	// Prefixes select the entries this mutation may touch, e.g. the
	// whole feed plus one user's wall.
	Prefixes []Key

	// Optimistic transforms a cached value before the call completes.
	// Only entries that already hold data are transformed.
	Optimistic func(key Key, value any) any

	// Call performs the network operation.
	Call func(ctx context.Context) (R, error)

	// Reconcile replaces optimistic placeholders with server-confirmed
	// data after a successful call.
	Reconcile func(result R, key Key, value any) any

	// InvalidateAfter forces a refetch of the touched entries so they
	// converge with server state.
	InvalidateAfter bool
}

// Run executes the mutation lifecycle. On call failure every touched
// entry is restored to its pre-mutation snapshot, absent entries
// included.
func Run[R any](ctx context.Context, m Mutation[R]) (R, error) {
	snaps := m.Cache.SnapshotPrefixes(m.Prefixes...)

	if m.Optimistic != nil {
		m.Cache.ApplyPrefixes(m.Prefixes, m.Optimistic)
	}

	result, err := m.Call(ctx)
	if err != nil {
		m.Cache.Restore(snaps)
		var zero R
		return zero, err
	}

	if m.Reconcile != nil {
		m.Cache.ApplyPrefixes(m.Prefixes, func(k Key, v any) any {
			return m.Reconcile(result, k, v)
		})
	}

	if m.InvalidateAfter {
		for _, p := range m.Prefixes {
			m.Cache.InvalidatePrefix(p)
		}
	}

	return result, nil
}
