package cache

import "strings"

// Key identifies a cached collection: an ordered tuple of primitives,
// e.g. ("posts", "feed", "2") or ("friendships", "7"). Prefix matching
// over keys is what fans a mutation out to every entry that may hold
// the affected entity.
type Key []string

func NewKey(parts ...string) Key {
	return Key(parts)
}

func (k Key) String() string {
	return strings.Join(k, "/")
}

// HasPrefix reports whether k starts with the given prefix tuple.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	for i := range prefix {
		if k[i] != prefix[i] {
			return false
		}
	}
	return true
}
