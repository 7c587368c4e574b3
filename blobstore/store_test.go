package blobstore

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/segstore/internal/cache"
)

func testBlobStore(t *testing.T, store BlobStore) {
	t.Helper()
	ctx := context.Background()

	data := []byte("segment header | chunk a | chunk b | footer")
	require.NoError(t, store.Put(ctx, "segments/ds/v1/p0/0001.seg", data))
	require.NoError(t, store.Put(ctx, "segments/ds/v1/p1/0002.seg", []byte("x")))
	require.NoError(t, store.Put(ctx, "segments/other/v1/p0/0003.seg", []byte("y")))

	blob, err := store.Open(ctx, "segments/ds/v1/p0/0001.seg")
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, 7)
	n, err := blob.ReadAt(ctx, buf, 17)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.Equal(t, "chunk a", string(buf))

	// Short read at the end reports io.EOF.
	buf = make([]byte, 10)
	n, err = blob.ReadAt(ctx, buf, int64(len(data)-6))
	assert.Equal(t, 6, n)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "footer", string(buf[:n]))

	got, err := ReadFull(ctx, blob, 0, 14)
	require.NoError(t, err)
	assert.Equal(t, "segment header", string(got))
	require.NoError(t, blob.Close())

	names, err := store.List(ctx, "segments/ds/")
	require.NoError(t, err)
	assert.Equal(t, []string{"segments/ds/v1/p0/0001.seg", "segments/ds/v1/p1/0002.seg"}, names)

	// Overwrite is atomic and complete.
	require.NoError(t, store.Put(ctx, "segments/ds/v1/p1/0002.seg", bytes.Repeat([]byte("z"), 100)))
	blob, err = store.Open(ctx, "segments/ds/v1/p1/0002.seg")
	require.NoError(t, err)
	assert.Equal(t, int64(100), blob.Size())
	require.NoError(t, blob.Close())

	require.NoError(t, store.Delete(ctx, "segments/ds/v1/p0/0001.seg"))
	require.NoError(t, store.Delete(ctx, "segments/ds/v1/p0/0001.seg"))
	_, err = store.Open(ctx, "segments/ds/v1/p0/0001.seg")
	assert.ErrorIs(t, err, ErrNotFound)

	names, err = store.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, names, 2)
}

func TestMemoryStore(t *testing.T) {
	testBlobStore(t, NewMemoryStore())
}

func TestLocalStore(t *testing.T) {
	testBlobStore(t, NewLocalStore(t.TempDir()))
}

func TestLocalStore_ListMissingRoot(t *testing.T) {
	store := NewLocalStore(t.TempDir() + "/missing")
	names, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestCachingStore(t *testing.T) {
	testBlobStore(t, NewCachingStore(NewMemoryStore(), cache.NewLRU(1<<20, nil), 8))
}

type countingStore struct {
	BlobStore
	reads int
}

func (s *countingStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.BlobStore.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &countingBlob{Blob: b, store: s}, nil
}

type countingBlob struct {
	Blob
	store *countingStore
}

func (b *countingBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	b.store.reads++
	return b.Blob.ReadAt(ctx, p, off)
}

func TestCachingStore_ServesFromCache(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{BlobStore: NewMemoryStore()}
	lru := cache.NewLRU(1<<20, nil)
	store := NewCachingStore(inner, lru, 16)

	data := make([]byte, 100)
	for i := range data {
		data[i] = byte(i)
	}
	require.NoError(t, store.Put(ctx, "blob", data))

	blob, err := store.Open(ctx, "blob")
	require.NoError(t, err)
	defer blob.Close()

	buf := make([]byte, 40)
	n, err := blob.ReadAt(ctx, buf, 10)
	require.NoError(t, err)
	assert.Equal(t, 40, n)
	assert.Equal(t, data[10:50], buf)
	assert.Equal(t, 1, inner.reads) // blocks 0..3 as one run

	// Fully cached now.
	n, err = blob.ReadAt(ctx, buf, 5)
	require.NoError(t, err)
	assert.Equal(t, 40, n)
	assert.Equal(t, data[5:45], buf)
	assert.Equal(t, 1, inner.reads)

	// Tail block: the last block is short.
	buf = make([]byte, 10)
	n, err = blob.ReadAt(ctx, buf, 95)
	assert.Equal(t, 5, n)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, data[95:], buf[:n])

	// Put invalidates cached blocks of the blob.
	require.NoError(t, store.Put(ctx, "blob", make([]byte, 100)))
	assert.Zero(t, lru.Len())
}
