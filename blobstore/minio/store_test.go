package minio

import (
	"context"
	"io"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/segstore/blobstore"
)

// TestStore_Integration requires a running MinIO instance on localhost:9000.
func TestStore_Integration(t *testing.T) {
	client, err := minio.New("localhost:9000", &minio.Options{
		Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
		Secure: false,
	})
	if err != nil {
		t.Skipf("MinIO client creation failed: %v", err)
	}

	ctx := context.Background()
	if _, err := client.ListBuckets(ctx); err != nil {
		t.Skipf("MinIO not available: %v", err)
	}

	const bucket = "test-segstore"
	exists, err := client.BucketExists(ctx, bucket)
	require.NoError(t, err)
	if !exists {
		require.NoError(t, client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	store := NewStore(client, bucket, "test-prefix/")

	data := []byte("hello minio world")
	require.NoError(t, store.Put(ctx, "segments/a.seg", data))

	blob, err := store.Open(ctx, "segments/a.seg")
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, 5)
	n, err := blob.ReadAt(ctx, buf, 6)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "minio", string(buf))

	buf = make([]byte, 10)
	n, err = blob.ReadAt(ctx, buf, 12)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, "world", string(buf[:n]))

	names, err := store.List(ctx, "segments/")
	require.NoError(t, err)
	assert.Contains(t, names, "segments/a.seg")

	require.NoError(t, store.Delete(ctx, "segments/a.seg"))
	_, err = store.Open(ctx, "segments/a.seg")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
