package engine

import (
	"cmp"
	"context"
	"fmt"
	"iter"
	"slices"
	"time"

	"github.com/hupe1980/segstore/model"
	"github.com/hupe1980/segstore/schema"
	"github.com/hupe1980/segstore/segment"
)

// ScanRequest selects the segments of a scan.
type ScanRequest struct {
	// Projection lists the columns to load. Required.
	Projection *schema.Projection

	// Dataset and Version default to the projection's.
	Dataset string
	Version int

	// PartitionFilter keeps partitions for which it returns true. Nil keeps all.
	PartitionFilter func(partition string) bool

	// KeyRange keeps segments whose range intersects it. Its dataset and
	// partition are ignored. Nil keeps all.
	KeyRange *model.KeyRange

	// Shards keeps segments appended with one of these shard ids. Empty keeps all.
	Shards []int
}

// ScanResult is a point-in-time view of the segments selected by a scan.
type ScanResult struct {
	ctx        context.Context
	projection *schema.Projection
	segments   []*entry
	metrics    MetricsObserver
}

// Len returns the number of selected segments.
func (s *ScanResult) Len() int { return len(s.segments) }

// Metas returns the metadata of the selected segments in scan order.
func (s *ScanResult) Metas() []segment.Meta {
	out := make([]segment.Meta, len(s.segments))
	for i, en := range s.segments {
		out[i] = en.meta
	}
	return out
}

// Segments returns a lazy sequence of readers, one per selected segment, in
// key-range order within each partition and partitions in name order. Each
// segment's projected chunks are loaded when it is reached; stopping early
// leaves the remaining segments unread.
func (s *ScanResult) Segments() iter.Seq2[*segment.Reader, error] {
	return func(yield func(*segment.Reader, error) bool) {
		for _, en := range s.segments {
			if err := s.ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			r, err := s.load(en)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(r, nil) {
				return
			}
		}
	}
}

func (s *ScanResult) load(en *entry) (*segment.Reader, error) {
	cols, err := resolveColumns(s.projection, en)
	if err != nil {
		return nil, err
	}
	chunks, err := en.handle.Load(s.ctx, cols)
	if err != nil {
		return nil, wrapBackend(err)
	}
	var n int64
	for _, c := range chunks {
		n += int64(len(c))
	}
	s.metrics.OnThroughput("segment_read", n)
	return segment.NewReader(en.meta, s.projection.Columns(), chunks), nil
}

// resolveColumns maps projection columns to stored column positions.
func resolveColumns(p *schema.Projection, en *entry) ([]int, error) {
	out := make([]int, p.NumColumns())
	for i, want := range p.Columns() {
		j := slices.IndexFunc(en.columns, func(c schema.Column) bool { return c.Name == want.Name })
		if j < 0 {
			return nil, &model.SchemaMismatchError{Column: want.Name, Row: -1, Reason: fmt.Sprintf("not stored in segment %s", en.meta.ID)}
		}
		if got := en.columns[j].Type; got != want.Type {
			return nil, &model.SchemaMismatchError{Column: want.Name, Row: -1, Reason: fmt.Sprintf("stored as %s, projected as %s", got, want.Type)}
		}
		out[i] = j
	}
	return out, nil
}

// Scan takes a snapshot of the committed segments matching req. Appends
// published afterwards are not visible through the result.
func (e *Engine) Scan(ctx context.Context, req ScanRequest) (res *ScanResult, err error) {
	start := time.Now()
	defer func() {
		n := 0
		if res != nil {
			n = res.Len()
		}
		e.metrics.OnScan(time.Since(start), n, err)
	}()

	if e.closed.Load() {
		return nil, model.ErrClosed
	}
	if req.Projection == nil {
		return nil, fmt.Errorf("%w: scan without projection", model.ErrInvalidArgument)
	}
	if req.Dataset == "" {
		req.Dataset = req.Projection.Dataset().Name
		req.Version = req.Projection.Version()
	}
	if req.Dataset != req.Projection.Dataset().Name || req.Version != req.Projection.Version() {
		return nil, fmt.Errorf("%w: projection of %s v%d used to scan %s v%d", model.ErrInvalidArgument,
			req.Projection.Dataset().Name, req.Projection.Version(), req.Dataset, req.Version)
	}
	if req.KeyRange != nil {
		kr := *req.KeyRange
		kr.Dataset = req.Dataset
		if err := kr.Validate(); err != nil {
			return nil, err
		}
		if k := req.Projection.KeyIndex(); k >= 0 {
			if err := checkFilterKind(kr, req.Projection.Column(k).Type.KeyKind()); err != nil {
				return nil, err
			}
		}
	}

	parts, found := e.index.snapshot(req.Dataset, req.Version, req.PartitionFilter)
	if !found {
		return nil, fmt.Errorf("%w: %s v%d", model.ErrDatasetNotFound, req.Dataset, req.Version)
	}

	res = &ScanResult{ctx: ctx, projection: req.Projection, metrics: e.metrics}
	for _, p := range parts {
		for _, en := range p.entries {
			if req.KeyRange != nil {
				// Without a projected key column the committed ranges give the kind.
				if err := checkFilterKind(*req.KeyRange, en.meta.Range.Start.Kind()); err != nil {
					return nil, err
				}
				if !en.meta.Range.Intersects(*req.KeyRange) {
					continue
				}
			}
			if len(req.Shards) > 0 && !slices.Contains(req.Shards, en.meta.ShardID) {
				continue
			}
			res.segments = append(res.segments, en)
		}
	}

	e.logger.Debug("scan planned",
		"dataset", req.Dataset,
		"version", req.Version,
		"partitions", len(parts),
		"segments", len(res.segments),
	)
	return res, nil
}

func checkFilterKind(kr model.KeyRange, want model.KeyKind) error {
	if kr.Start.Kind() != want {
		return fmt.Errorf("%w: key range filter %s has %s keys, dataset keys are %s", model.ErrInvalidArgument, kr, kr.Start.Kind(), want)
	}
	return nil
}

func sortDatasetStats(s []DatasetStats) {
	slices.SortFunc(s, func(a, b DatasetStats) int {
		if c := cmp.Compare(a.Dataset, b.Dataset); c != 0 {
			return c
		}
		return cmp.Compare(a.Version, b.Version)
	})
}
