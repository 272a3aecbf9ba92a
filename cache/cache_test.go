package cache

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestKeyString(t *testing.T) {
	k := NewKey("posts", "feed", "0")
	if k.String() != "posts/feed/0" {
		t.Errorf("Expected 'posts/feed/0', got '%s'", k.String())
	}
}

func TestKeyHasPrefix(t *testing.T) {
	tests := []struct {
		key    Key
		prefix Key
		want   bool
	}{
		{NewKey("posts", "feed", "0"), NewKey("posts", "feed"), true},
		{NewKey("posts", "feed"), NewKey("posts", "feed"), true},
		{NewKey("posts", "user", "7", "0"), NewKey("posts", "feed"), false},
		{NewKey("posts"), NewKey("posts", "feed"), false},
	}

	for _, tt := range tests {
		if got := tt.key.HasPrefix(tt.prefix); got != tt.want {
			t.Errorf("HasPrefix(%s, %s) = %v, want %v", tt.key, tt.prefix, got, tt.want)
		}
	}
}

func TestSetAndFresh(t *testing.T) {
	c := New()
	key := NewKey("posts", "feed", "0")

	if _, ok := c.Fresh(key); ok {
		t.Error("Expected no fresh value before Set")
	}

	c.Set(key, []int{1, 2, 3})

	v, ok := c.Fresh(key)
	if !ok {
		t.Fatal("Expected fresh value after Set")
	}
	if !reflect.DeepEqual(v, []int{1, 2, 3}) {
		t.Errorf("Expected [1 2 3], got %v", v)
	}
}

func TestInvalidateKeepsDataVisible(t *testing.T) {
	c := New()
	key := NewKey("comments", "9")
	c.Set(key, "thread")
	c.Invalidate(key)

	if _, ok := c.Fresh(key); ok {
		t.Error("Expected no fresh value after Invalidate")
	}
	v, ok := c.Peek(key)
	if !ok || v != "thread" {
		t.Errorf("Expected stale data to stay visible, got %v (%v)", v, ok)
	}
}

func TestCompleteFetchDiscardedAfterWrite(t *testing.T) {
	c := New()
	key := NewKey("posts", "feed", "0")
	c.Set(key, "server-old")

	// A fetch starts, then an optimistic write lands before it returns.
	since := c.beginFetch(key)
	c.Set(key, "optimistic")

	if c.completeFetch(key, since, "server-stale") {
		t.Error("Expected the stale fetch result to be discarded")
	}

	v, _ := c.Peek(key)
	if v != "optimistic" {
		t.Errorf("Expected optimistic value to survive, got %v", v)
	}
	if c.Fetching(key) {
		t.Error("Expected fetching flag to be cleared")
	}
}

func TestCompleteFetchAcceptedWithoutWrite(t *testing.T) {
	c := New()
	key := NewKey("posts", "feed", "0")

	since := c.beginFetch(key)
	if !c.completeFetch(key, since, "server") {
		t.Error("Expected the fetch result to be accepted")
	}
	v, ok := c.Fresh(key)
	if !ok || v != "server" {
		t.Errorf("Expected fresh 'server', got %v (%v)", v, ok)
	}
}

func TestSnapshotRestoreExactness(t *testing.T) {
	c := New()
	feed0 := NewKey("posts", "feed", "0")
	feed1 := NewKey("posts", "feed", "1")
	wall := NewKey("posts", "user", "7", "0")
	other := NewKey("comments", "3")

	c.Set(feed0, []string{"a", "b"})
	c.Set(feed1, []string{"c"})
	c.Set(wall, []string{"a"})
	c.Set(other, []string{"x"})

	prefixes := []Key{NewKey("posts", "feed"), NewKey("posts", "user", "7")}
	snaps := c.SnapshotPrefixes(prefixes...)
	if len(snaps) != 3 {
		t.Fatalf("Expected 3 snapshots, got %d", len(snaps))
	}

	// Scramble everything under the prefixes.
	c.ApplyPrefixes(prefixes, func(k Key, v any) any {
		return append([]string{"optimistic"}, v.([]string)...)
	})

	c.Restore(snaps)

	checks := map[string][]string{
		feed0.String(): {"a", "b"},
		feed1.String(): {"c"},
		wall.String():  {"a"},
		other.String(): {"x"},
	}
	for _, key := range []Key{feed0, feed1, wall, other} {
		v, ok := c.Peek(key)
		if !ok {
			t.Fatalf("Expected entry %s to exist after restore", key)
		}
		if !reflect.DeepEqual(v, checks[key.String()]) {
			t.Errorf("Entry %s: expected %v after restore, got %v", key, checks[key.String()], v)
		}
	}
}

func TestApplyPrefixesSkipsUnfetchedEntries(t *testing.T) {
	c := New()
	key := NewKey("posts", "feed", "0")
	// beginFetch creates the entry but it holds no data yet.
	c.beginFetch(key)

	called := 0
	c.ApplyPrefixes([]Key{NewKey("posts", "feed")}, func(k Key, v any) any {
		called++
		return v
	})
	if called != 0 {
		t.Errorf("Expected no transform on an unfetched entry, got %d calls", called)
	}
}

func TestApplyPrefixesTransformsOverlappingPrefixesOnce(t *testing.T) {
	c := New()
	key := NewKey("posts", "feed", "0")
	c.Set(key, 0)

	c.ApplyPrefixes([]Key{NewKey("posts"), NewKey("posts", "feed")}, func(k Key, v any) any {
		return v.(int) + 1
	})

	v, _ := c.Peek(key)
	if v != 1 {
		t.Errorf("Expected entry to be transformed exactly once, got %v", v)
	}
}

func TestQueryGetServesFreshWithoutFetch(t *testing.T) {
	c := New()
	key := NewKey("users")
	c.Set(key, "cached")

	fetches := 0
	q := NewQuery(c, key, func(ctx context.Context) (string, error) {
		fetches++
		return "server", nil
	})

	v, err := q.Get(context.Background())
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if v != "cached" {
		t.Errorf("Expected cached value, got %v", v)
	}
	if fetches != 0 {
		t.Errorf("Expected no fetch for a fresh entry, got %d", fetches)
	}
}

func TestQueryGetFetchesWhenStale(t *testing.T) {
	c := New()
	key := NewKey("users")
	c.Set(key, "cached")
	c.Invalidate(key)

	q := NewQuery(c, key, func(ctx context.Context) (string, error) {
		return "server", nil
	})

	v, err := q.Get(context.Background())
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if v != "server" {
		t.Errorf("Expected refetched value, got %v", v)
	}
}

func TestQueryGetReturnsMutationValueWhenFetchDiscarded(t *testing.T) {
	c := New()
	key := NewKey("posts", "feed", "0")

	q := NewQuery(c, key, func(ctx context.Context) (string, error) {
		// A mutation lands while this fetch is in flight.
		c.Set(key, "optimistic")
		return "server-stale", nil
	})

	v, err := q.Get(context.Background())
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if v != "optimistic" {
		t.Errorf("Expected the mutation value to win, got %v", v)
	}
}

func TestQueryGetError(t *testing.T) {
	c := New()
	key := NewKey("users")
	boom := errors.New("boom")

	q := NewQuery(c, key, func(ctx context.Context) (string, error) {
		return "", boom
	})

	if _, err := q.Get(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Expected fetch error to propagate, got %v", err)
	}
	if c.Fetching(key) {
		t.Error("Expected fetching flag to be cleared after error")
	}
}

func TestPlaceholderIdsNegativeAndUnique(t *testing.T) {
	seen := make(map[int64]bool)
	for i := 0; i < 100; i++ {
		id := NextPlaceholderId()
		if id >= 0 {
			t.Fatalf("Expected negative placeholder id, got %d", id)
		}
		if seen[id] {
			t.Fatalf("Placeholder id %d issued twice", id)
		}
		seen[id] = true
		if !IsPlaceholderId(id) {
			t.Errorf("Expected IsPlaceholderId(%d) to be true", id)
		}
	}
	if IsPlaceholderId(42) {
		t.Error("Expected a server id not to count as placeholder")
	}
}
