// Package resource implements the Controller for global limits.
//
// The Controller manages three resource types:
//
//   - Memory: chunk bytes held by the in-memory backend (non-blocking, fail-fast)
//   - Appends: concurrent appends doing backend I/O (blocking semaphore)
//   - Writes: backend write bandwidth (token bucket)
//
// # Memory Management
//
// Memory tracking uses a weighted semaphore for hard limits and atomic counters
// for usage tracking. AcquireMemory is non-blocking and returns immediately
// with ErrMemoryLimitExceeded if the limit would be exceeded:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 1 << 30, // 1GB limit
//	})
//
//	if err := rc.AcquireMemory(int64(len(chunk))); err != nil {
//	    // ErrMemoryLimitExceeded - the store reports it as unavailable
//	}
//	defer rc.ReleaseMemory(int64(len(chunk)))
//
// # Append Slots
//
//	if err := rc.AcquireAppend(ctx); err != nil {
//	    return err
//	}
//	defer rc.ReleaseAppend()
//
// # Write Rate Limiting
//
//	rc := resource.NewController(resource.Config{
//	    WriteLimitBytesPerSec: 100 * 1024 * 1024, // 100MB/s
//	})
//
//	if err := rc.AcquireWrite(ctx, len(segmentFile)); err != nil {
//	    return err
//	}
//
// # Nil Safety
//
// All methods handle nil Controller gracefully - they become no-ops.
// This allows optional resource limiting without nil checks everywhere.
package resource
