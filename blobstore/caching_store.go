package blobstore

import (
	"context"
	"errors"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/segstore/internal/cache"
)

// CachingStore wraps a BlobStore and adds block-level read caching.
// Blobs are immutable, so cached blocks are only dropped on Put and Delete.
type CachingStore struct {
	inner     BlobStore
	cache     cache.BlockCache
	blockSize int64
}

// NewCachingStore creates a new CachingStore.
// blockSize defaults to 64KB if <= 0.
func NewCachingStore(inner BlobStore, c cache.BlockCache, blockSize int64) *CachingStore {
	if blockSize <= 0 {
		blockSize = 64 << 10
	}
	return &CachingStore{
		inner:     inner,
		cache:     c,
		blockSize: blockSize,
	}
}

func (s *CachingStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &cachingBlob{
		inner:     b,
		cache:     s.cache,
		name:      name,
		blockSize: s.blockSize,
	}, nil
}

func (s *CachingStore) Put(ctx context.Context, name string, data []byte) error {
	s.invalidate(name)
	return s.inner.Put(ctx, name, data)
}

func (s *CachingStore) Delete(ctx context.Context, name string) error {
	s.invalidate(name)
	return s.inner.Delete(ctx, name)
}

func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

func (s *CachingStore) invalidate(name string) {
	s.cache.Invalidate(func(key cache.Key) bool {
		return key.Blob == name
	})
}

// cachingBlob serves reads from whole cached blocks.
type cachingBlob struct {
	inner     Blob
	cache     cache.BlockCache
	name      string
	blockSize int64
}

func (b *cachingBlob) Close() error { return b.inner.Close() }

func (b *cachingBlob) Size() int64 { return b.inner.Size() }

func (b *cachingBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	size := b.Size()
	if off >= size {
		return 0, io.EOF
	}

	end := min(off+int64(len(p)), size)
	startBlock := off / b.blockSize
	endBlock := (end - 1) / b.blockSize

	blocks, err := b.fetch(ctx, startBlock, endBlock)
	if err != nil {
		return 0, err
	}

	total := 0
	for i, data := range blocks {
		blkStart := (startBlock + int64(i)) * b.blockSize
		from := max(blkStart, off)
		to := min(blkStart+int64(len(data)), end)
		if to <= from {
			continue
		}
		total += copy(p[from-off:to-off], data[from-blkStart:to-blkStart])
	}

	if total < len(p) {
		return total, io.EOF
	}
	return total, nil
}

// fetch returns the blocks in [startBlock, endBlock], reading contiguous runs
// of missing blocks with one backend request each.
func (b *cachingBlob) fetch(ctx context.Context, startBlock, endBlock int64) ([][]byte, error) {
	blocks := make([][]byte, endBlock-startBlock+1)

	type run struct{ start, count int64 }
	var missing []run
	for blk := startBlock; blk <= endBlock; blk++ {
		if data, ok := b.cache.Get(cache.Key{Blob: b.name, Block: blk}); ok {
			blocks[blk-startBlock] = data
			continue
		}
		if n := len(missing); n > 0 && missing[n-1].start+missing[n-1].count == blk {
			missing[n-1].count++
		} else {
			missing = append(missing, run{start: blk, count: 1})
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, r := range missing {
		g.Go(func() error {
			byteStart := r.start * b.blockSize
			byteSize := min(r.count*b.blockSize, b.Size()-byteStart)
			buf := make([]byte, byteSize)
			n, err := b.inner.ReadAt(gctx, buf, byteStart)
			if err != nil && !errors.Is(err, io.EOF) {
				return err
			}
			buf = buf[:n]

			for i := int64(0); i < r.count; i++ {
				lo := i * b.blockSize
				if lo >= int64(len(buf)) {
					break
				}
				hi := min(lo+b.blockSize, int64(len(buf)))
				// Copy so a cached block does not pin the whole run.
				blk := make([]byte, hi-lo)
				copy(blk, buf[lo:hi])
				blocks[r.start+i-startBlock] = blk
				b.cache.Set(cache.Key{Blob: b.name, Block: r.start + i}, blk)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return blocks, nil
}
