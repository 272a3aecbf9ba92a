package cache

import "context"

// Query binds a key to a fetch function. Get serves fresh cached data
// without a network round trip and refetches otherwise.
type Query[T any] struct {
	cache *Cache
	key   Key
	fetch func(ctx context.Context) (T, error)
}

func NewQuery[T any](c *Cache, key Key, fetch func(ctx context.Context) (T, error)) *Query[T] {
	return &Query[T]{cache: c, key: key, fetch: fetch}
}

func (q *Query[T]) Key() Key {
	return q.key
}

// Get returns the cached value when fresh, otherwise fetches. When the
// fetch result is discarded because a mutation wrote the entry in the
// meantime, the mutation's value wins and is returned instead.
func (q *Query[T]) Get(ctx context.Context) (T, error) {
	if v, ok := q.cache.Fresh(q.key); ok {
		return v.(T), nil
	}

	since := q.cache.beginFetch(q.key)
	v, err := q.fetch(ctx)
	if err != nil {
		q.cache.abortFetch(q.key)
		var zero T
		return zero, err
	}

	if !q.cache.completeFetch(q.key, since, v) {
		if cur, ok := q.cache.Peek(q.key); ok {
			return cur.(T), nil
		}
	}
	return v, nil
}

// Refetch ignores freshness and always hits the fetch function. The
// same discard rule applies if a mutation raced the fetch.
func (q *Query[T]) Refetch(ctx context.Context) (T, error) {
	q.cache.Invalidate(q.key)
	return q.Get(ctx)
}

// Peek returns the cached value, fresh or stale, without fetching.
func (q *Query[T]) Peek() (T, bool) {
	if v, ok := q.cache.Peek(q.key); ok {
		return v.(T), true
	}
	var zero T
	return zero, false
}
