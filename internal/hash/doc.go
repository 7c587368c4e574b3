// Package hash provides the CRC32-Castagnoli checksums used for segment
// file footers, object store uploads and index shard selection.
package hash
