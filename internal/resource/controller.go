package resource

import (
	"context"
	"errors"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ErrMemoryLimitExceeded is returned when memory limit would be exceeded.
var ErrMemoryLimitExceeded = errors.New("memory limit exceeded")

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes is the hard limit for chunk bytes held in memory.
	// If 0, no hard limit is enforced (only tracking).
	MemoryLimitBytes int64

	// MaxConcurrentAppends is the maximum number of appends performing
	// backend I/O at the same time. If 0, defaults to 16.
	MaxConcurrentAppends int64

	// WriteLimitBytesPerSec bounds backend write throughput.
	// If 0, unlimited.
	WriteLimitBytesPerSec int64
}

// Controller manages global resources (memory, append slots, write bandwidth).
type Controller struct {
	cfg Config

	// Memory
	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	// Concurrency
	appendSem *semaphore.Weighted
	inFlight  atomic.Int64

	// IO
	ioLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxConcurrentAppends <= 0 {
		cfg.MaxConcurrentAppends = 16
	}

	c := &Controller{
		cfg:       cfg,
		appendSem: semaphore.NewWeighted(cfg.MaxConcurrentAppends),
	}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}

	if cfg.WriteLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.WriteLimitBytesPerSec), int(cfg.WriteLimitBytesPerSec))
	}

	return c
}

// AcquireMemory attempts to reserve memory.
// Returns ErrMemoryLimitExceeded if limit would be exceeded.
// Non-blocking - callers control retry/backoff policy.
func (c *Controller) AcquireMemory(bytes int64) error {
	if c == nil || bytes <= 0 {
		return nil
	}

	if c.memSem != nil {
		if !c.memSem.TryAcquire(bytes) {
			return ErrMemoryLimitExceeded
		}
	}

	c.memUsed.Add(bytes)
	return nil
}

// ReleaseMemory releases reserved memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}

	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the current memory usage in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}

// MemoryLimit returns the configured memory limit in bytes (0 if unlimited).
func (c *Controller) MemoryLimit() int64 {
	if c == nil {
		return 0
	}
	return c.cfg.MemoryLimitBytes
}

// AcquireAppend reserves an append slot, blocking until one is free or ctx
// is done.
func (c *Controller) AcquireAppend(ctx context.Context) error {
	if c == nil {
		return nil
	}
	if err := c.appendSem.Acquire(ctx, 1); err != nil {
		return err
	}
	c.inFlight.Add(1)
	return nil
}

// TryAcquireAppend reserves an append slot without blocking.
func (c *Controller) TryAcquireAppend() bool {
	if c == nil {
		return true
	}
	if !c.appendSem.TryAcquire(1) {
		return false
	}
	c.inFlight.Add(1)
	return true
}

// ReleaseAppend releases an append slot.
func (c *Controller) ReleaseAppend() {
	if c == nil {
		return
	}
	c.inFlight.Add(-1)
	c.appendSem.Release(1)
}

// AppendsInFlight returns the number of held append slots.
func (c *Controller) AppendsInFlight() int64 {
	if c == nil {
		return 0
	}
	return c.inFlight.Load()
}

// AcquireWrite waits until the write limit allows the specified number of
// bytes. Requests larger than one second of bandwidth are admitted in slices.
func (c *Controller) AcquireWrite(ctx context.Context, bytes int) error {
	if c == nil || c.ioLimiter == nil {
		return nil
	}
	burst := c.ioLimiter.Burst()
	for bytes > 0 {
		n := min(bytes, burst)
		if err := c.ioLimiter.WaitN(ctx, n); err != nil {
			return err
		}
		bytes -= n
	}
	return nil
}
