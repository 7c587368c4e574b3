package cache

// Key identifies one fixed-size block of a blob.
type Key struct {
	Blob  string
	Block int64
}

// BlockCache is a byte-oriented cache for immutable blocks.
// Returned slices must be treated as read-only.
type BlockCache interface {
	// Get returns a cached block. ok=false if missing.
	Get(key Key) (b []byte, ok bool)
	// Set caches a block. The cache retains b; the caller must not modify it.
	Set(key Key, b []byte)
	// Invalidate removes entries matching the predicate.
	Invalidate(predicate func(key Key) bool)
	// Stats returns cache statistics.
	Stats() (hits, misses int64)
}
