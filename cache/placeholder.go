package cache

import "sync/atomic"

var placeholderSeq atomic.Int64

// NextPlaceholderId returns a temporary identity for an optimistically
// inserted entity. Strictly decreasing negatives cannot collide with
// server-assigned ids or with each other, no matter how fast two
// creations fire.
func NextPlaceholderId() int64 {
	return -placeholderSeq.Add(1)
}

// IsPlaceholderId reports whether an id is client-assigned and still
// awaiting reconciliation.
func IsPlaceholderId(id int64) bool {
	return id < 0
}
