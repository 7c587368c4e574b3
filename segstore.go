package segstore

import (
	"context"
	"fmt"

	"github.com/hupe1980/segstore/internal/engine"
	"github.com/hupe1980/segstore/internal/resource"
	"github.com/hupe1980/segstore/model"
	"github.com/hupe1980/segstore/schema"
	"github.com/hupe1980/segstore/segment"
)

type (
	// ScanRequest selects the segments of a scan.
	ScanRequest = engine.ScanRequest

	// ScanResult is a point-in-time view of the segments selected by a scan.
	ScanResult = engine.ScanResult

	// Stats holds store statistics.
	Stats = engine.EngineStats

	// DatasetStats summarizes one dataset version.
	DatasetStats = engine.DatasetStats
)

// AppendResult describes a committed segment.
type AppendResult struct {
	SegmentID model.SegmentID
	Range     model.KeyRange
	Version   int
	ShardID   int
	RowCount  int
	MinKey    model.Key
	MaxKey    model.Key
}

// Store is a segment-oriented column store.
type Store struct {
	engine      *engine.Engine
	rc          *resource.Controller
	logger      *Logger
	metrics     MetricsCollector
	compression segment.Compression
}

// Open creates a store. With WithBlobStore, the index is rebuilt from the
// segment files already in the blob store.
func Open(ctx context.Context, optFns ...Option) (*Store, error) {
	o := applyOptions(optFns)

	rc := resource.NewController(resource.Config{
		MemoryLimitBytes:      o.memoryLimit,
		MaxConcurrentAppends:  o.maxConcurrentAppends,
		WriteLimitBytesPerSec: o.ioLimit,
	})

	engOpts := []engine.Option{
		engine.WithLogger(o.logger.Logger),
		engine.WithResourceController(rc),
		engine.WithMetricsObserver(metricsObserver{mc: o.metricsCollector}),
	}
	if o.numShards > 0 {
		engOpts = append(engOpts, engine.WithNumShards(o.numShards))
	}
	if o.blobStore != nil {
		engOpts = append(engOpts, engine.WithBlobStore(o.blobStore,
			engine.WithCodec(o.codec),
			engine.WithLoadConcurrency(o.readConcurrency),
		))
		if o.cacheSize > 0 {
			engOpts = append(engOpts, engine.WithBlockCacheSize(o.cacheSize))
			if o.cacheBlockSize > 0 {
				engOpts = append(engOpts, engine.WithBlockCacheBlockSize(o.cacheBlockSize))
			}
		}
	}

	eng, err := engine.Open(ctx, engOpts...)
	if err != nil {
		err = translateError(err)
		o.logger.LogRecovery(ctx, 0, err)
		return nil, err
	}
	if o.blobStore != nil {
		o.logger.LogRecovery(ctx, eng.Stats().Segments, nil)
	}

	return &Store{
		engine:      eng,
		rc:          rc,
		logger:      o.logger,
		metrics:     o.metricsCollector,
		compression: o.compression,
	}, nil
}

// NewWriter returns a writer for r using the store's chunk compression.
func (s *Store) NewWriter(p *schema.Projection, r model.KeyRange) (*segment.Writer, error) {
	return segment.NewWriter(p, r, segment.WithCompression(s.compression))
}

// AppendSegment commits a finalized writer's chunks under its key range and
// tags the segment with shardID.
//
// Once submitted the append runs to completion: ctx bounds Future.Wait, not
// the work. Overlap with a committed or in-flight range of the same
// partition fails with ErrRangeConflict.
func (s *Store) AppendSegment(ctx context.Context, p *schema.Projection, w *segment.Writer, shardID int) *Future[AppendResult] {
	if p == nil || w == nil {
		return failedFuture[AppendResult](fmt.Errorf("%w: append needs a projection and a writer", ErrInvalidArgument))
	}
	wp := w.Projection()
	if wp.Dataset() != p.Dataset() || wp.Version() != p.Version() {
		return failedFuture[AppendResult](&SchemaMismatchError{
			Column: p.Dataset().SortKeyColumn,
			Row:    -1,
			Reason: fmt.Sprintf("writer of %s v%d appended as %s v%d", wp.Dataset().Name, wp.Version(), p.Dataset().Name, p.Version()),
		})
	}

	ctx = context.WithoutCancel(ctx)
	return goFuture(func() (AppendResult, error) {
		meta, err := s.engine.Append(ctx, w, shardID)
		err = translateError(err)
		res := AppendResult{
			SegmentID: meta.ID,
			Range:     meta.Range,
			Version:   meta.Version,
			ShardID:   meta.ShardID,
			RowCount:  meta.RowCount,
			MinKey:    meta.MinKey,
			MaxKey:    meta.MaxKey,
		}
		s.logger.LogAppend(ctx, w.Range(), res, err)
		if err != nil {
			return AppendResult{}, err
		}
		return res, nil
	})
}

// ScanSegments takes a point-in-time snapshot of the segments matching req.
// ScanResult.Segments loads them lazily; ctx also bounds those loads.
//
// A dataset version without committed segments fails with
// ErrDatasetNotFound; a partition filter that matches nothing yields an
// empty result.
func (s *Store) ScanSegments(ctx context.Context, req ScanRequest) *Future[*ScanResult] {
	return goFuture(func() (*ScanResult, error) {
		res, err := s.engine.Scan(ctx, req)
		err = translateError(err)

		dataset, version, n := req.Dataset, req.Version, 0
		if dataset == "" && req.Projection != nil {
			dataset, version = req.Projection.Dataset().Name, req.Projection.Version()
		}
		if res != nil {
			n = res.Len()
		}
		s.logger.WithDataset(dataset, version).LogScan(ctx, n, err)
		return res, err
	})
}

// DropDataset removes every segment of a dataset version and returns how
// many were removed.
func (s *Store) DropDataset(ctx context.Context, dataset string, version int) (int, error) {
	n, err := s.engine.DropDataset(ctx, dataset, version)
	err = translateError(err)
	s.metrics.RecordDrop(n, err)
	s.logger.WithDataset(dataset, version).LogDrop(ctx, n, err)
	return n, err
}

// Stats returns segment, row and byte counts per dataset version.
func (s *Store) Stats() Stats {
	return s.engine.Stats()
}
