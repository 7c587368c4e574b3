// Package blobstore provides storage abstraction for segment files.
//
// BlobStore is the interface for writing and reading the immutable files
// the engine produces. Every segment is written with a single Put and read
// with ranged ReadAt calls, so only the requested column chunks are fetched.
//
// # Built-in Implementations
//
//   - MemoryStore: in-process, for tests and ephemeral stores
//   - LocalStore: local filesystem, mmap-backed reads
//   - s3.Store: Amazon S3 with range reads and multipart uploads
//   - minio.Store: MinIO or any S3-compatible endpoint
//   - CachingStore: block cache in front of any other store
//
// # Custom Implementations
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	    Put(ctx, name, data) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
package blobstore
