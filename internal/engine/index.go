package engine

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"sync"

	"github.com/hupe1980/segstore/internal/hash"
	"github.com/hupe1980/segstore/model"
	"github.com/hupe1980/segstore/schema"
	"github.com/hupe1980/segstore/segment"
)

type partKey struct {
	dataset   string
	version   int
	partition string
}

// entry is one committed segment.
type entry struct {
	meta    segment.Meta
	columns []schema.Column
	handle  Handle
}

// reservation is a range claimed by an in-flight append.
type reservation struct {
	part *partition
	r    model.KeyRange
}

// partition holds the segments of one (dataset, version, partition).
//
// entries is sorted by range start and never mutated in place; publish
// replaces the slice so snapshots can share it.
type partition struct {
	key partKey

	mu      sync.RWMutex
	entries []*entry
	pending []*reservation
	dropped bool
}

// conflict returns the first committed or pending range overlapping r.
func (p *partition) conflict(r model.KeyRange) *model.RangeConflictError {
	if r.IsEmpty() {
		return nil
	}
	for _, res := range p.pending {
		if res.r.Intersects(r) {
			return &model.RangeConflictError{Range: r, Existing: res.r, Pending: true}
		}
	}

	// Committed non-empty ranges are disjoint and sorted, so the last one
	// starting before r.End has the greatest end among them.
	i, _ := slices.BinarySearchFunc(p.entries, r.End, func(e *entry, end model.Key) int {
		return e.meta.Range.Start.Compare(end)
	})
	for j := i - 1; j >= 0; j-- {
		er := p.entries[j].meta.Range
		if er.IsEmpty() {
			continue
		}
		if er.Intersects(r) {
			return &model.RangeConflictError{Range: r, Existing: er}
		}
		break
	}
	return nil
}

func (p *partition) insert(e *entry) {
	i, _ := slices.BinarySearchFunc(p.entries, e.meta.Range, func(x *entry, r model.KeyRange) int {
		if c := model.CompareByStart(x.meta.Range, r); c != 0 {
			return c
		}
		return cmp.Compare(x.meta.ID, e.meta.ID)
	})
	p.entries = slices.Insert(slices.Clip(p.entries), i, e)
}

func (p *partition) unreserve(res *reservation) {
	p.pending = slices.DeleteFunc(p.pending, func(x *reservation) bool { return x == res })
}

// cancel drops a reservation without publishing.
func (res *reservation) cancel() {
	p := res.part
	p.mu.Lock()
	defer p.mu.Unlock()
	p.unreserve(res)
}

// publish commits e in place of the reservation. It fails when the dataset
// was dropped while the append was in flight.
func (res *reservation) publish(e *entry) error {
	p := res.part
	p.mu.Lock()
	defer p.mu.Unlock()
	p.unreserve(res)
	if p.dropped {
		return fmt.Errorf("%w: %s v%d dropped during append", model.ErrDatasetNotFound, p.key.dataset, p.key.version)
	}
	p.insert(e)
	return nil
}

type shard struct {
	mu    sync.RWMutex
	parts map[partKey]*partition
}

// index maps partitions to their segments. The shard lock only guards the
// partition map; appends to different partitions never contend on a
// partition lock.
type index struct {
	shards []*shard
}

func newIndex(numShards int) *index {
	ix := &index{shards: make([]*shard, numShards)}
	for i := range ix.shards {
		ix.shards[i] = &shard{parts: make(map[partKey]*partition)}
	}
	return ix
}

func (ix *index) shardFor(k partKey) *shard {
	sum := hash.Fields(k.dataset, strconv.Itoa(k.version), k.partition)
	return ix.shards[sum%uint32(len(ix.shards))]
}

func (ix *index) partition(k partKey) *partition {
	s := ix.shardFor(k)
	s.mu.RLock()
	p := s.parts[k]
	s.mu.RUnlock()
	if p != nil {
		return p
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if p = s.parts[k]; p == nil {
		p = &partition{key: k}
		s.parts[k] = p
	}
	return p
}

// reserve claims r for an append or reports the conflicting range.
func (ix *index) reserve(version int, r model.KeyRange) (*reservation, error) {
	for {
		p := ix.partition(partKey{dataset: r.Dataset, version: version, partition: r.Partition})
		p.mu.Lock()
		if p.dropped {
			// Raced with DropDataset; the next lookup creates a fresh partition.
			p.mu.Unlock()
			continue
		}
		if err := p.conflict(r); err != nil {
			p.mu.Unlock()
			return nil, err
		}
		res := &reservation{part: p, r: r}
		p.pending = append(p.pending, res)
		p.mu.Unlock()
		return res, nil
	}
}

// restore inserts a recovered segment, rejecting overlaps.
func (ix *index) restore(e *entry) error {
	p := ix.partition(partKey{dataset: e.meta.Range.Dataset, version: e.meta.Version, partition: e.meta.Range.Partition})
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.conflict(e.meta.Range); err != nil {
		return err
	}
	p.insert(e)
	return nil
}

// partSnapshot is the committed state of one partition at scan start.
type partSnapshot struct {
	name    string
	entries []*entry
}

// snapshot returns the committed segments of a dataset version, one element
// per partition accepted by filter, in partition name order. found reports
// whether the dataset version has any committed segment at all.
//
// All selected partitions are read-locked together so the result reflects a
// single point in time.
func (ix *index) snapshot(dataset string, version int, filter func(string) bool) (parts []partSnapshot, found bool) {
	var selected []*partition
	for _, s := range ix.shards {
		s.mu.RLock()
		for k, p := range s.parts {
			if k.dataset == dataset && k.version == version {
				selected = append(selected, p)
			}
		}
		s.mu.RUnlock()
	}
	slices.SortFunc(selected, func(a, b *partition) int { return cmp.Compare(a.key.partition, b.key.partition) })

	for _, p := range selected {
		p.mu.RLock()
	}
	for _, p := range selected {
		if p.dropped || len(p.entries) == 0 {
			continue
		}
		found = true
		if filter == nil || filter(p.key.partition) {
			parts = append(parts, partSnapshot{name: p.key.partition, entries: p.entries})
		}
	}
	for _, p := range selected {
		p.mu.RUnlock()
	}
	return parts, found
}

// drop removes a dataset version and returns its committed segments.
func (ix *index) drop(dataset string, version int) []*entry {
	var out []*entry
	for _, s := range ix.shards {
		s.mu.Lock()
		for k, p := range s.parts {
			if k.dataset != dataset || k.version != version {
				continue
			}
			p.mu.Lock()
			p.dropped = true
			out = append(out, p.entries...)
			p.entries = nil
			p.mu.Unlock()
			delete(s.parts, k)
		}
		s.mu.Unlock()
	}
	return out
}

// each calls fn with the committed entries of every partition.
func (ix *index) each(fn func(k partKey, entries []*entry)) {
	for _, s := range ix.shards {
		s.mu.RLock()
		parts := make([]*partition, 0, len(s.parts))
		for _, p := range s.parts {
			parts = append(parts, p)
		}
		s.mu.RUnlock()

		for _, p := range parts {
			p.mu.RLock()
			entries := p.entries
			p.mu.RUnlock()
			fn(p.key, entries)
		}
	}
}
