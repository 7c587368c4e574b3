package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/segstore/blobstore"
	"github.com/hupe1980/segstore/internal/cache"
	"github.com/hupe1980/segstore/internal/resource"
	"github.com/hupe1980/segstore/model"
	"github.com/hupe1980/segstore/segment"
)

// Engine is the column store: a partitioned segment index over a Backend.
type Engine struct {
	numShards int
	index     *index
	nextID    atomic.Uint64

	backend   Backend
	blobStore blobstore.BlobStore
	blobOpts  []BlobBackendOption

	blockCache          *cache.LRU
	blockCacheSize      int64
	blockCacheBlockSize int64

	rc      *resource.Controller
	metrics MetricsObserver
	logger  *slog.Logger

	// closeMu orders Close against the start of appends.
	closeMu  sync.RWMutex
	closed   atomic.Bool
	inflight sync.WaitGroup
}

// Open creates an engine and rebuilds its index from the backend.
func Open(ctx context.Context, opts ...Option) (*Engine, error) {
	e := &Engine{
		numShards: 16,
		metrics:   NoopMetricsObserver{},
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.metrics == nil {
		e.metrics = NoopMetricsObserver{}
	}
	if e.logger == nil {
		e.logger = slog.New(slog.DiscardHandler)
	}
	e.index = newIndex(e.numShards)
	e.buildBackend()

	if err := e.recover(ctx); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Engine) recover(ctx context.Context) error {
	start := time.Now()
	recovered, err := e.backend.Recover(ctx)
	if err != nil {
		return fmt.Errorf("%w: recover: %w", model.ErrStoreUnavailable, err)
	}

	var maxID model.SegmentID
	for _, r := range recovered {
		if err := e.index.restore(&entry{meta: r.Meta, columns: r.Columns, handle: r.Handle}); err != nil {
			return fmt.Errorf("recover segment %s: %w", r.Meta.ID, err)
		}
		maxID = max(maxID, r.Meta.ID)
	}
	e.nextID.Store(uint64(maxID))

	if len(recovered) > 0 {
		e.logger.Debug("index recovered",
			"segments", len(recovered),
			"next_id", uint64(maxID)+1,
			"duration", time.Since(start),
		)
	}
	return nil
}

// Append commits a finalized writer's chunks under its key range.
//
// The range is reserved before backend I/O and published afterwards, so
// concurrent appends to disjoint ranges of one partition only share the two
// short critical sections. Callers that must not abandon the work pass a
// context without cancellation.
func (e *Engine) Append(ctx context.Context, w *segment.Writer, shardID int) (meta segment.Meta, err error) {
	if w == nil {
		return segment.Meta{}, fmt.Errorf("%w: nil writer", model.ErrInvalidArgument)
	}

	e.closeMu.RLock()
	if e.closed.Load() {
		e.closeMu.RUnlock()
		return segment.Meta{}, model.ErrClosed
	}
	e.inflight.Add(1)
	e.closeMu.RUnlock()
	defer e.inflight.Done()

	cs, err := w.Chunks()
	if err != nil {
		return segment.Meta{}, err
	}

	start := time.Now()
	defer func() {
		e.metrics.OnAppend(time.Since(start), cs.RowCount, cs.Size(), err)
	}()

	if err := e.rc.AcquireAppend(ctx); err != nil {
		return segment.Meta{}, err
	}
	defer e.rc.ReleaseAppend()

	r := w.Range()
	version := w.Projection().Version()
	res, err := e.index.reserve(version, r)
	if err != nil {
		e.metrics.OnConflict(r.Dataset, r.Partition)
		e.logger.Warn("append rejected", "range", r.String(), "error", err)
		return segment.Meta{}, err
	}

	meta = segment.Meta{
		ID:       model.SegmentID(e.nextID.Add(1)),
		Range:    r,
		Version:  version,
		ShardID:  shardID,
		RowCount: cs.RowCount,
		MinKey:   cs.MinKey,
		MaxKey:   cs.MaxKey,
	}

	if err := e.rc.AcquireWrite(ctx, int(cs.Size())); err != nil {
		res.cancel()
		return segment.Meta{}, err
	}
	h, err := e.backend.Put(ctx, meta, cs)
	if err != nil {
		res.cancel()
		e.logger.Error("segment write failed", "segment", meta.ID.String(), "range", r.String(), "error", err)
		return segment.Meta{}, wrapBackend(err)
	}
	e.metrics.OnThroughput("segment_write", h.Size())

	if err := res.publish(&entry{meta: meta, columns: cs.Columns, handle: h}); err != nil {
		_ = h.Delete(context.WithoutCancel(ctx))
		return segment.Meta{}, err
	}

	e.logger.Debug("segment committed",
		"segment", meta.ID.String(),
		"range", r.String(),
		"rows", meta.RowCount,
		"bytes", h.Size(),
	)
	return meta, nil
}

// DropDataset removes every segment of a dataset version from the index and
// the backend. It returns the number of segments removed. Appends in flight
// for the dataset fail with model.ErrDatasetNotFound.
func (e *Engine) DropDataset(ctx context.Context, dataset string, version int) (int, error) {
	if e.closed.Load() {
		return 0, model.ErrClosed
	}
	entries := e.index.drop(dataset, version)
	if len(entries) == 0 {
		return 0, fmt.Errorf("%w: %s v%d", model.ErrDatasetNotFound, dataset, version)
	}

	var errs []error
	for _, en := range entries {
		if err := en.handle.Delete(ctx); err != nil {
			errs = append(errs, fmt.Errorf("delete segment %s: %w", en.meta.ID, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return len(entries), wrapBackend(err)
	}
	e.logger.Info("dataset dropped", "dataset", dataset, "version", version, "segments", len(entries))
	return len(entries), nil
}

// DatasetStats summarizes the committed segments of one dataset version.
type DatasetStats struct {
	Dataset    string
	Version    int
	Partitions int
	Segments   int
	Rows       int64
	Bytes      int64
}

// EngineStats holds engine statistics.
type EngineStats struct {
	Segments         int
	Rows             int64
	Bytes            int64
	MemoryUsageBytes int64
	AppendsInFlight  int64
	CacheHits        int64
	CacheMisses      int64
	Datasets         []DatasetStats // sorted by dataset, then version
}

// Stats returns the current engine statistics.
func (e *Engine) Stats() EngineStats {
	type dsKey struct {
		name    string
		version int
	}
	byDataset := make(map[dsKey]*DatasetStats)

	var stats EngineStats
	e.index.each(func(k partKey, entries []*entry) {
		if len(entries) == 0 {
			return
		}
		ds := byDataset[dsKey{k.dataset, k.version}]
		if ds == nil {
			ds = &DatasetStats{Dataset: k.dataset, Version: k.version}
			byDataset[dsKey{k.dataset, k.version}] = ds
		}
		ds.Partitions++
		for _, en := range entries {
			ds.Segments++
			ds.Rows += int64(en.meta.RowCount)
			ds.Bytes += en.handle.Size()
		}
	})

	for _, ds := range byDataset {
		stats.Segments += ds.Segments
		stats.Rows += ds.Rows
		stats.Bytes += ds.Bytes
		stats.Datasets = append(stats.Datasets, *ds)
	}
	sortDatasetStats(stats.Datasets)

	stats.MemoryUsageBytes = e.rc.MemoryUsage()
	stats.AppendsInFlight = e.rc.AppendsInFlight()
	stats.CacheHits, stats.CacheMisses = e.CacheStats()
	return stats
}

// CacheStats returns the statistics of the block cache.
func (e *Engine) CacheStats() (hits, misses int64) {
	if e.blockCache == nil {
		return 0, 0
	}
	return e.blockCache.Stats()
}

// Close waits for in-flight appends and closes the backend. Further calls
// fail with model.ErrClosed.
func (e *Engine) Close() error {
	e.closeMu.Lock()
	if !e.closed.CompareAndSwap(false, true) {
		e.closeMu.Unlock()
		return model.ErrClosed
	}
	e.closeMu.Unlock()

	e.inflight.Wait()
	return e.backend.Close()
}

// wrapBackend classifies backend failures as model.ErrStoreUnavailable.
func wrapBackend(err error) error {
	if err == nil || errors.Is(err, model.ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", model.ErrStoreUnavailable, err)
}
