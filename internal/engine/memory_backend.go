package engine

import (
	"context"
	"sync"

	"github.com/hupe1980/segstore/internal/resource"
	"github.com/hupe1980/segstore/segment"
)

// MemoryBackend keeps chunks in process memory. Scans share the appended
// chunk slices without copying.
//
// Stored bytes are charged against the resource controller's memory budget;
// Put fails with resource.ErrMemoryLimitExceeded when it is exhausted.
type MemoryBackend struct {
	rc *resource.Controller
}

var _ Backend = (*MemoryBackend)(nil)

// NewMemoryBackend creates an in-memory backend. rc may be nil.
func NewMemoryBackend(rc *resource.Controller) *MemoryBackend {
	return &MemoryBackend{rc: rc}
}

func (b *MemoryBackend) Put(_ context.Context, _ segment.Meta, cs *segment.ChunkSet) (Handle, error) {
	size := cs.Size()
	if err := b.rc.AcquireMemory(size); err != nil {
		return nil, err
	}
	return &memoryHandle{rc: b.rc, chunks: cs.Chunks, size: size}, nil
}

func (b *MemoryBackend) Recover(context.Context) ([]Recovered, error) { return nil, nil }

func (b *MemoryBackend) Close() error { return nil }

type memoryHandle struct {
	rc     *resource.Controller
	chunks [][]byte
	size   int64
	once   sync.Once
}

func (h *memoryHandle) Load(_ context.Context, cols []int) ([][]byte, error) {
	out := make([][]byte, len(cols))
	for i, c := range cols {
		out[i] = h.chunks[c]
	}
	return out, nil
}

func (h *memoryHandle) Size() int64 { return h.size }

func (h *memoryHandle) Delete(context.Context) error {
	h.once.Do(func() { h.rc.ReleaseMemory(h.size) })
	return nil
}
