package engine

import (
	"log/slog"

	"github.com/hupe1980/segstore/blobstore"
	"github.com/hupe1980/segstore/internal/cache"
	"github.com/hupe1980/segstore/internal/resource"
)

// Option defines a configuration option for the Engine.
type Option func(*Engine)

// WithLogger sets the logger for the engine.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithResourceController sets the resource controller for the engine.
func WithResourceController(rc *resource.Controller) Option {
	return func(e *Engine) {
		e.rc = rc
	}
}

// WithMetricsObserver sets the metrics observer for the engine.
func WithMetricsObserver(observer MetricsObserver) Option {
	return func(e *Engine) {
		e.metrics = observer
	}
}

// WithNumShards sets the number of index lock shards. Default: 16.
func WithNumShards(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.numShards = n
		}
	}
}

// WithBackend sets the segment backend. Default: a MemoryBackend.
func WithBackend(b Backend) Option {
	return func(e *Engine) {
		e.backend = b
	}
}

// WithBlobStore persists segments in st through a BlobBackend.
func WithBlobStore(st blobstore.BlobStore, opts ...BlobBackendOption) Option {
	return func(e *Engine) {
		e.blobStore = st
		e.blobOpts = opts
	}
}

// WithBlockCacheSize enables an LRU block cache of the given size in bytes in
// front of the blob store. Ignored without WithBlobStore.
func WithBlockCacheSize(size int64) Option {
	return func(e *Engine) {
		e.blockCacheSize = size
	}
}

// WithBlockCacheBlockSize sets the block size of the block cache.
// Larger blocks (e.g. 1MB) suit high-latency stores like S3. Default: 64KB.
func WithBlockCacheBlockSize(size int64) Option {
	return func(e *Engine) {
		e.blockCacheBlockSize = size
	}
}

func (e *Engine) buildBackend() {
	if e.backend != nil {
		return
	}
	if e.blobStore == nil {
		e.backend = NewMemoryBackend(e.rc)
		return
	}
	st := e.blobStore
	if e.blockCacheSize > 0 {
		e.blockCache = cache.NewLRU(e.blockCacheSize, e.rc)
		st = blobstore.NewCachingStore(st, e.blockCache, e.blockCacheBlockSize)
	}
	e.backend = NewBlobBackend(st, e.blobOpts...)
}
