package segstore

import (
	"log/slog"

	"github.com/hupe1980/segstore/blobstore"
	"github.com/hupe1980/segstore/codec"
	"github.com/hupe1980/segstore/segment"
)

type options struct {
	logger               *Logger
	metricsCollector     MetricsCollector
	blobStore            blobstore.BlobStore
	compression          segment.Compression
	numShards            int
	memoryLimit          int64
	maxConcurrentAppends int64
	ioLimit              int64
	codec                codec.Codec
	cacheSize            int64
	cacheBlockSize       int64
	readConcurrency      int
}

// Option configures Open.
type Option func(*options)

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := segstore.NewJSONLogger(slog.LevelInfo)
//	st, _ := segstore.Open(ctx, segstore.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &segstore.BasicMetricsCollector{}
//	st, _ := segstore.Open(ctx, segstore.WithMetricsCollector(metrics))
//	// ... use st ...
//	stats := metrics.GetStats()
//	fmt.Printf("Appends: %d, Avg latency: %dns\n", stats.AppendCount, stats.AppendAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithBlobStore persists segments as files in st. Existing segment files
// are loaded at Open. Without it, segments live in memory only.
func WithBlobStore(st blobstore.BlobStore) Option {
	return func(o *options) {
		o.blobStore = st
	}
}

// WithCompression sets the chunk compression of writers created by
// Store.NewWriter. Default: LZ4.
func WithCompression(c segment.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithNumShards configures the number of index lock shards. Partitions are
// assigned to shards by hash. Default: 16.
func WithNumShards(n int) Option {
	return func(o *options) {
		o.numShards = n
	}
}

// WithMemoryLimit bounds the chunk bytes held in memory by the in-memory
// backend and the block cache. Appends beyond it fail with
// ErrStoreUnavailable. 0 means unlimited.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithMaxConcurrentAppends bounds the appends performing backend I/O at the
// same time. Default: 16.
func WithMaxConcurrentAppends(n int) Option {
	return func(o *options) {
		o.maxConcurrentAppends = int64(n)
	}
}

// WithIOLimit bounds backend write throughput in bytes per second.
// 0 means unlimited.
func WithIOLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.ioLimit = bytesPerSec
	}
}

// WithCodec configures the codec of segment file footers.
// If nil is passed, codec.Default is used. Files written with another
// built-in codec remain readable.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithCacheSize enables a block cache of the given size in bytes in front of
// the blob store. blockSize 0 selects 64KB; larger blocks suit S3.
func WithCacheSize(bytes, blockSize int64) Option {
	return func(o *options) {
		o.cacheSize = bytes
		o.cacheBlockSize = blockSize
	}
}

// WithReadConcurrency bounds the parallel chunk reads of one segment and the
// parallel footer reads at Open. Only used with WithBlobStore. Default: 8.
func WithReadConcurrency(n int) Option {
	return func(o *options) {
		o.readConcurrency = n
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		compression:      segment.CompressionLZ4,
		codec:            codec.Default,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
