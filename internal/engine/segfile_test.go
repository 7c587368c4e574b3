package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/segstore/blobstore"
	"github.com/hupe1980/segstore/codec"
	"github.com/hupe1980/segstore/model"
	"github.com/hupe1980/segstore/schema"
	"github.com/hupe1980/segstore/segment"
	"github.com/hupe1980/segstore/testutil"
)

func testFooter() *Footer {
	return &Footer{
		Writer: "w",
		Meta: segment.Meta{
			ID:       9,
			Range:    testutil.IntRange("ds", "p", 0, 100),
			Version:  1,
			ShardID:  3,
			RowCount: 2,
			MinKey:   model.IntKey(1),
			MaxKey:   model.IntKey(2),
		},
		Columns: []schema.Column{
			{Name: "k", Dataset: "ds", Version: 1, Type: schema.Long},
			{Name: "s", Dataset: "ds", Version: 1, Type: schema.String, Nullable: true},
		},
	}
}

func putFile(t *testing.T, data []byte) blobstore.Blob {
	t.Helper()
	st := blobstore.NewMemoryStore()
	require.NoError(t, st.Put(context.Background(), "f", data))
	b, err := st.Open(context.Background(), "f")
	require.NoError(t, err)
	return b
}

func TestSegmentFile_RoundTrip(t *testing.T) {
	for _, c := range []codec.Codec{codec.JSON{}, codec.GoJSON{}} {
		t.Run(c.Name(), func(t *testing.T) {
			f := testFooter()
			data, err := EncodeSegmentFile(f, [][]byte{[]byte("aaaa"), []byte("bb")}, c)
			require.NoError(t, err)
			assert.Equal(t, []ChunkRef{{0, 4}, {4, 2}}, f.Chunks)

			got, err := ReadFooter(context.Background(), putFile(t, data))
			require.NoError(t, err)
			assert.Equal(t, f.Meta, got.Meta)
			assert.Equal(t, f.Columns, got.Columns)
			assert.Equal(t, f.Chunks, got.Chunks)
			assert.Equal(t, "bb", string(data[got.Chunks[1].Offset:got.Chunks[1].Offset+got.Chunks[1].Length]))
		})
	}
}

func TestSegmentFile_Deterministic(t *testing.T) {
	a, err := EncodeSegmentFile(testFooter(), [][]byte{{1}, {2}}, codec.Default)
	require.NoError(t, err)
	b, err := EncodeSegmentFile(testFooter(), [][]byte{{1}, {2}}, codec.Default)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSegmentFile_Corruption(t *testing.T) {
	valid, err := EncodeSegmentFile(testFooter(), [][]byte{[]byte("aaaa"), []byte("bb")}, codec.Default)
	require.NoError(t, err)

	mutate := func(fn func(b []byte) []byte) []byte {
		b := append([]byte(nil), valid...)
		return fn(b)
	}

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"too short", valid[:TrailerSize-1], ErrCorrupt},
		{"bad magic", mutate(func(b []byte) []byte { b[len(b)-TrailerSize] ^= 0xff; return b }), ErrIncompatibleFormat},
		{"bad version", mutate(func(b []byte) []byte { b[len(b)-TrailerSize+4] = 9; return b }), ErrIncompatibleFormat},
		{"bad codec", mutate(func(b []byte) []byte { b[len(b)-TrailerSize+5] = 99; return b }), ErrIncompatibleFormat},
		{"footer flipped", mutate(func(b []byte) []byte { b[len(b)-TrailerSize-2] ^= 0x01; return b }), ErrCorrupt},
		{"footer too long", mutate(func(b []byte) []byte { b[len(b)-TrailerSize+11] = 0x7f; return b }), ErrCorrupt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadFooter(context.Background(), putFile(t, tt.data))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSegmentName(t *testing.T) {
	meta := segment.Meta{ID: 42, Version: 3, Range: testutil.IntRange("my ds", "a/b", 0, 1)}
	assert.Equal(t, "segments/my%20ds/v3/p=a%2Fb/00000000000000000042.seg", SegmentName(meta))
}

func TestSegmentName_DotNames(t *testing.T) {
	tests := []struct {
		dataset, partition, want string
	}{
		{"..", "p", "segments/%2E%2E/v1/p=p/00000000000000000001.seg"},
		{".", "..", "segments/%2E/v1/p=%2E%2E/00000000000000000001.seg"},
		{"a.b", ".", "segments/a.b/v1/p=%2E/00000000000000000001.seg"},
	}
	for _, tt := range tests {
		meta := segment.Meta{ID: 1, Version: 1, Range: testutil.IntRange(tt.dataset, tt.partition, 0, 1)}
		assert.Equal(t, tt.want, SegmentName(meta))
	}
}
