// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket", "segstore/",
//	    config.WithRegion("us-east-1"),
//	)
//
//	st, err := segstore.Open(ctx, segstore.WithBlobStore(store))
//
// # Features
//
//   - Range reads, so scans fetch only the projected column chunks
//   - CRC32C-checked single PUT for small segments
//   - Multipart uploads for large segments
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3
