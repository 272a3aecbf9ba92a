package cache

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestRunOptimisticVisibleDuringCall(t *testing.T) {
	c := New()
	feed := NewKey("posts", "feed", "0")
	c.Set(feed, []string{"old"})

	var observed any
	_, err := Run(context.Background(), Mutation[string]{
		Cache:    c,
		Prefixes: []Key{NewKey("posts", "feed")},
		Optimistic: func(k Key, v any) any {
			return append([]string{"pending"}, v.([]string)...)
		},
		Call: func(ctx context.Context) (string, error) {
			observed, _ = c.Peek(feed)
			return "confirmed", nil
		},
		Reconcile: func(result string, k Key, v any) any {
			list := v.([]string)
			out := make([]string, len(list))
			for i, s := range list {
				if s == "pending" {
					out[i] = result
				} else {
					out[i] = s
				}
			}
			return out
		},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if !reflect.DeepEqual(observed, []string{"pending", "old"}) {
		t.Errorf("Expected optimistic value during call, got %v", observed)
	}

	v, _ := c.Peek(feed)
	if !reflect.DeepEqual(v, []string{"confirmed", "old"}) {
		t.Errorf("Expected reconciled value without duplication, got %v", v)
	}
}

func TestRunRestoresAllEntriesOnFailure(t *testing.T) {
	c := New()
	feed0 := NewKey("posts", "feed", "0")
	feed1 := NewKey("posts", "feed", "1")
	wall := NewKey("posts", "user", "7", "0")
	untouched := NewKey("comments", "1")

	c.Set(feed0, []string{"a"})
	c.Set(feed1, []string{"b"})
	c.Set(wall, []string{"a"})
	c.Set(untouched, []string{"z"})

	boom := errors.New("network down")
	_, err := Run(context.Background(), Mutation[string]{
		Cache:    c,
		Prefixes: []Key{NewKey("posts", "feed"), NewKey("posts", "user", "7")},
		Optimistic: func(k Key, v any) any {
			return append([]string{"pending"}, v.([]string)...)
		},
		Call: func(ctx context.Context) (string, error) {
			return "", boom
		},
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Expected call error to propagate, got %v", err)
	}

	want := map[string][]string{
		feed0.String():     {"a"},
		feed1.String():     {"b"},
		wall.String():      {"a"},
		untouched.String(): {"z"},
	}
	for _, key := range []Key{feed0, feed1, wall, untouched} {
		v, ok := c.Peek(key)
		if !ok {
			t.Fatalf("Expected entry %s to exist after rollback", key)
		}
		if !reflect.DeepEqual(v, want[key.String()]) {
			t.Errorf("Entry %s: expected %v after rollback, got %v", key, want[key.String()], v)
		}
	}
}

func TestRunFansOutOverAllMatchingEntries(t *testing.T) {
	c := New()
	feed0 := NewKey("posts", "feed", "0")
	feed1 := NewKey("posts", "feed", "1")
	wall0 := NewKey("posts", "user", "7", "0")
	otherWall := NewKey("posts", "user", "8", "0")

	for _, k := range []Key{feed0, feed1, wall0, otherWall} {
		c.Set(k, 0)
	}

	_, err := Run(context.Background(), Mutation[struct{}]{
		Cache:    c,
		Prefixes: []Key{NewKey("posts", "feed"), NewKey("posts", "user", "7")},
		Optimistic: func(k Key, v any) any {
			return v.(int) + 1
		},
		Call: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, nil
		},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for _, k := range []Key{feed0, feed1, wall0} {
		if v, _ := c.Peek(k); v != 1 {
			t.Errorf("Expected entry %s to be touched, got %v", k, v)
		}
	}
	if v, _ := c.Peek(otherWall); v != 0 {
		t.Errorf("Expected entry %s to be untouched, got %v", otherWall, v)
	}
}

func TestRunInvalidateAfterMarksEntriesStale(t *testing.T) {
	c := New()
	feed := NewKey("posts", "feed", "0")
	c.Set(feed, "data")

	_, err := Run(context.Background(), Mutation[struct{}]{
		Cache:    c,
		Prefixes: []Key{NewKey("posts", "feed")},
		Call: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, nil
		},
		InvalidateAfter: true,
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if _, ok := c.Fresh(feed); ok {
		t.Error("Expected entry to be stale after mutation")
	}
	if _, ok := c.Peek(feed); !ok {
		t.Error("Expected stale data to stay visible")
	}
}

func TestRunOptimisticWriteDiscardsInFlightFetch(t *testing.T) {
	c := New()
	feed := NewKey("posts", "feed", "0")
	c.Set(feed, []string{"old"})

	// A refetch is in flight when the mutation lands.
	since := c.beginFetch(feed)

	_, err := Run(context.Background(), Mutation[string]{
		Cache:    c,
		Prefixes: []Key{NewKey("posts", "feed")},
		Optimistic: func(k Key, v any) any {
			return append([]string{"pending"}, v.([]string)...)
		},
		Call: func(ctx context.Context) (string, error) {
			return "ok", nil
		},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if c.completeFetch(feed, since, []string{"from-server"}) {
		t.Error("Expected the stale fetch result to be discarded after the optimistic write")
	}
	v, _ := c.Peek(feed)
	if !reflect.DeepEqual(v, []string{"pending", "old"}) {
		t.Errorf("Expected optimistic value to survive the stale fetch, got %v", v)
	}
}
