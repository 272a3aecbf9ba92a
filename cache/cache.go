package cache

import "sync"

// entry holds one cached collection. The version advances on every
// write; a fetch that started against an older version is discarded on
// completion, so a stale response can never clobber an optimistic value.
type entry struct {
	key      Key
	value    any
	hasData  bool
	stale    bool
	fetching bool
	version  uint64
}

// Cache is a keyed cache of server-owned collections. All access goes
// through the mutex, so readers never observe a half-applied update.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
}

func New() *Cache {
	return &Cache{entries: make(map[string]*entry)}
}

func (c *Cache) lookup(key Key) *entry {
	return c.entries[key.String()]
}

func (c *Cache) upsert(key Key) *entry {
	e := c.entries[key.String()]
	if e == nil {
		e = &entry{key: key}
		c.entries[key.String()] = e
	}
	return e
}

// Peek returns the cached value without touching freshness state.
func (c *Cache) Peek(key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.lookup(key)
	if e == nil || !e.hasData {
		return nil, false
	}
	return e.value, true
}

// Fresh returns the cached value only when it needs no refetch.
func (c *Cache) Fresh(key Key) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.lookup(key)
	if e == nil || !e.hasData || e.stale {
		return nil, false
	}
	return e.value, true
}

// Fetching reports whether a fetch for the key is in flight. Has-data
// and fetching are independent states: a refetch shows stale data
// while it loads.
func (c *Cache) Fetching(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.lookup(key)
	return e != nil && e.fetching
}

// Set stores a value directly. Counts as a write: the version advances
// and any in-flight fetch result for the key will be discarded.
func (c *Cache) Set(key Key, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.upsert(key)
	e.value = value
	e.hasData = true
	e.stale = false
	e.version++
}

// Invalidate marks the entry stale so the next Get refetches. The data
// stays visible in the meantime.
func (c *Cache) Invalidate(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e := c.lookup(key); e != nil {
		e.stale = true
	}
}

// InvalidatePrefix marks every entry under the prefix stale.
func (c *Cache) InvalidatePrefix(prefix Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.entries {
		if e.key.HasPrefix(prefix) {
			e.stale = true
		}
	}
}

// beginFetch records that a fetch started and returns the version it
// started against.
func (c *Cache) beginFetch(key Key) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.upsert(key)
	e.fetching = true
	return e.version
}

// completeFetch stores a fetch result unless the entry was written to
// since the fetch began. Returns whether the result was accepted.
func (c *Cache) completeFetch(key Key, sinceVersion uint64, value any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e := c.upsert(key)
	e.fetching = false
	if e.version != sinceVersion {
		// An optimistic write overtook this fetch; its result is stale.
		return false
	}
	e.value = value
	e.hasData = true
	e.stale = false
	e.version++
	return true
}

// abortFetch clears the fetching flag after a failed fetch.
func (c *Cache) abortFetch(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e := c.lookup(key); e != nil {
		e.fetching = false
	}
}

// Snapshot is the pre-mutation state of one entry. Present=false means
// the entry did not exist, which is distinct from an empty collection
// and restores to "absent".
type Snapshot struct {
	Key     Key
	Present bool
	Value   any
}

// SnapshotPrefixes captures every entry under any of the prefixes.
// Entries matching several prefixes are captured once.
func (c *Cache) SnapshotPrefixes(prefixes ...Key) []Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	var snaps []Snapshot
	seen := make(map[string]bool)
	for _, e := range c.entries {
		if !e.hasData {
			continue
		}
		for _, p := range prefixes {
			if e.key.HasPrefix(p) && !seen[e.key.String()] {
				seen[e.key.String()] = true
				snaps = append(snaps, Snapshot{Key: e.key, Present: true, Value: e.value})
				break
			}
		}
	}
	return snaps
}

// Restore puts every snapshotted entry back to its captured state.
// Absent snapshots remove the entry entirely.
func (c *Cache) Restore(snaps []Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, s := range snaps {
		if !s.Present {
			delete(c.entries, s.Key.String())
			continue
		}
		e := c.upsert(s.Key)
		e.value = s.Value
		e.hasData = true
		e.version++
	}
}

// ApplyPrefixes runs the transform over every entry under any of the
// prefixes, atomically from a reader's perspective. Each matching
// entry is transformed exactly once and its version advances, which
// cancels any fetch already in flight for it. Entries never fetched
// are skipped: there is nothing to transform, invalidation covers them.
func (c *Cache) ApplyPrefixes(prefixes []Key, fn func(key Key, value any) any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, e := range c.entries {
		if !e.hasData {
			continue
		}
		for _, p := range prefixes {
			if e.key.HasPrefix(p) {
				e.value = fn(e.key, e.value)
				e.version++
				break
			}
		}
	}
}

// Keys returns the keys of all populated entries, for tests and
// diagnostics.
func (c *Cache) Keys() []Key {
	c.mu.Lock()
	defer c.mu.Unlock()

	var keys []Key
	for _, e := range c.entries {
		if e.hasData {
			keys = append(keys, e.key)
		}
	}
	return keys
}
