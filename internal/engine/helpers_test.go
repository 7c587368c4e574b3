package engine

import (
	"context"
	"sync"

	"github.com/hupe1980/segstore/blobstore"
)

// countingStore counts ReadAt calls on opened blobs.
type countingStore struct {
	blobstore.BlobStore
	mu sync.Mutex
	n  int
}

func (s *countingStore) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	b, err := s.BlobStore.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &countingBlob{Blob: b, s: s}, nil
}

func (s *countingStore) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n = 0
}

func (s *countingStore) reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.n
}

type countingBlob struct {
	blobstore.Blob
	s *countingStore
}

func (b *countingBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	b.s.mu.Lock()
	b.s.n++
	b.s.mu.Unlock()
	return b.Blob.ReadAt(ctx, p, off)
}
