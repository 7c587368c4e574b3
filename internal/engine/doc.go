// Package engine implements the column store behind segstore.Store.
//
// The engine orchestrates:
//   - A partition index sharded by partition hash; each partition keeps its
//     committed segments sorted by key range plus pending reservations
//   - Range-conflict detection across committed and in-flight appends
//   - A Backend that persists segment chunks (in memory or in a BlobStore)
//   - Point-in-time scans with column pruning and key-range filtering
//   - Recovery of the index from a durable backend at Open
package engine
