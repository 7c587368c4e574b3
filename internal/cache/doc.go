// Package cache provides a byte-bounded LRU cache for immutable blob blocks.
//
// Segment files never change after they are written, so cached blocks never
// go stale; entries are only invalidated when a segment is deleted. Cached
// bytes are accounted against the resource.Controller memory budget when one
// is supplied.
package cache
