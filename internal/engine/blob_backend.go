package engine

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/segstore/blobstore"
	"github.com/hupe1980/segstore/codec"
	"github.com/hupe1980/segstore/segment"
)

const segmentPrefix = "segments/"

// BlobBackend stores each segment as one self-describing file in a BlobStore.
type BlobBackend struct {
	store       blobstore.BlobStore
	codec       codec.Codec
	id          string
	concurrency int
}

var _ Backend = (*BlobBackend)(nil)

// BlobBackendOption configures a BlobBackend.
type BlobBackendOption func(*BlobBackend)

// WithCodec sets the footer codec for new files. Default: codec.Default.
func WithCodec(c codec.Codec) BlobBackendOption {
	return func(b *BlobBackend) {
		if c != nil {
			b.codec = c
		}
	}
}

// WithLoadConcurrency bounds parallel reads per segment and during recovery.
// Default: 8.
func WithLoadConcurrency(n int) BlobBackendOption {
	return func(b *BlobBackend) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBlobBackend creates a backend over st.
func NewBlobBackend(st blobstore.BlobStore, opts ...BlobBackendOption) *BlobBackend {
	b := &BlobBackend{
		store:       st,
		codec:       codec.Default,
		id:          uuid.NewString(),
		concurrency: 8,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// ID returns the instance id written into new segment footers.
func (b *BlobBackend) ID() string { return b.id }

// SegmentName returns the blob name of a segment.
func SegmentName(meta segment.Meta) string {
	return fmt.Sprintf("%s%s/v%d/p=%s/%020d.seg",
		segmentPrefix,
		escapeSegment(meta.Range.Dataset),
		meta.Version,
		escapeSegment(meta.Range.Partition),
		uint64(meta.ID),
	)
}

// escapeSegment escapes name for use as one path element. Dot-only names
// are escaped too so they cannot climb out of the segment tree.
func escapeSegment(name string) string {
	esc := url.PathEscape(name)
	if strings.Trim(esc, ".") == "" {
		return strings.ReplaceAll(esc, ".", "%2E")
	}
	return esc
}

func (b *BlobBackend) Put(ctx context.Context, meta segment.Meta, cs *segment.ChunkSet) (Handle, error) {
	f := &Footer{Writer: b.id, Meta: meta, Columns: cs.Columns}
	data, err := EncodeSegmentFile(f, cs.Chunks, b.codec)
	if err != nil {
		return nil, err
	}
	name := SegmentName(meta)
	if err := b.store.Put(ctx, name, data); err != nil {
		return nil, err
	}
	return b.handle(name, f, int64(len(data))), nil
}

func (b *BlobBackend) handle(name string, f *Footer, size int64) *blobHandle {
	return &blobHandle{b: b, name: name, refs: f.Chunks, size: size}
}

// Recover reads the footer of every segment file in the store.
func (b *BlobBackend) Recover(ctx context.Context) ([]Recovered, error) {
	names, err := b.store.List(ctx, segmentPrefix)
	if err != nil {
		return nil, err
	}
	names = filterSegments(names)

	out := make([]Recovered, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for i, name := range names {
		g.Go(func() error {
			blob, err := b.store.Open(gctx, name)
			if err != nil {
				return fmt.Errorf("open %s: %w", name, err)
			}
			defer func() { _ = blob.Close() }()

			f, err := ReadFooter(gctx, blob)
			if err != nil {
				return fmt.Errorf("segment %s: %w", name, err)
			}
			out[i] = Recovered{
				Meta:    f.Meta,
				Columns: f.Columns,
				Handle:  b.handle(name, f, blob.Size()),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func filterSegments(names []string) []string {
	out := names[:0]
	for _, n := range names {
		if strings.HasSuffix(n, ".seg") {
			out = append(out, n)
		}
	}
	return out
}

func (b *BlobBackend) Close() error { return nil }

type blobHandle struct {
	b    *BlobBackend
	name string
	refs []ChunkRef
	size int64
}

// Load opens the file, reads the requested chunk ranges in parallel and
// closes it again. Mappable blobs are copied out of the mapping in one pass.
func (h *blobHandle) Load(ctx context.Context, cols []int) ([][]byte, error) {
	blob, err := h.b.store.Open(ctx, h.name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", h.name, err)
	}
	defer func() { _ = blob.Close() }()

	if m, ok := blob.(blobstore.Mappable); ok {
		return h.loadMapped(m, cols)
	}

	out := make([][]byte, len(cols))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.b.concurrency)
	for i, c := range cols {
		ref := h.refs[c]
		g.Go(func() error {
			data, err := blobstore.ReadFull(gctx, blob, ref.Offset, ref.Length)
			if err != nil {
				return fmt.Errorf("read %s chunk %d: %w", h.name, c, err)
			}
			out[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// loadMapped copies the chunks into one buffer, since the mapping does not
// outlive the blob.
func (h *blobHandle) loadMapped(m blobstore.Mappable, cols []int) ([][]byte, error) {
	data, err := m.Bytes()
	if err != nil {
		return nil, fmt.Errorf("map %s: %w", h.name, err)
	}

	var total int64
	for _, c := range cols {
		ref := h.refs[c]
		if ref.Offset < 0 || ref.Length < 0 || ref.Offset+ref.Length > int64(len(data)) {
			return nil, fmt.Errorf("read %s chunk %d: %w", h.name, c, io.ErrUnexpectedEOF)
		}
		total += ref.Length
	}

	buf := make([]byte, total)
	out := make([][]byte, len(cols))
	var off int64
	for i, c := range cols {
		ref := h.refs[c]
		end := off + ref.Length
		copy(buf[off:end], data[ref.Offset:ref.Offset+ref.Length])
		out[i] = buf[off:end:end]
		off = end
	}
	return out, nil
}

func (h *blobHandle) Size() int64 { return h.size }

func (h *blobHandle) Delete(ctx context.Context) error {
	return h.b.store.Delete(ctx, h.name)
}
