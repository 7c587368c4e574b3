package segment

import (
	"errors"
	"fmt"
	"iter"
	"sync"

	"github.com/hupe1980/segstore/internal/chunk"
	"github.com/hupe1980/segstore/model"
	"github.com/hupe1980/segstore/row"
	"github.com/hupe1980/segstore/schema"
)

// Compression selects the chunk compression of a writer.
type Compression = chunk.Compression

const (
	CompressionNone = chunk.CompressionNone
	CompressionLZ4  = chunk.CompressionLZ4
	CompressionZSTD = chunk.CompressionZSTD
)

// KeyFunc extracts the sort key of a row.
type KeyFunc func(r row.Row) (model.Key, error)

// ChunkSet is the immutable output of a finalized writer.
type ChunkSet struct {
	Columns  []schema.Column
	Chunks   [][]byte // one per column, same order as Columns
	RowCount int
	MinKey   model.Key // zero if RowCount == 0
	MaxKey   model.Key
}

// Size returns the total number of encoded bytes.
func (cs *ChunkSet) Size() int64 {
	var n int64
	for _, c := range cs.Chunks {
		n += int64(len(c))
	}
	return n
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithCompression sets the chunk compression. Default: CompressionNone.
func WithCompression(c Compression) WriterOption {
	return func(w *Writer) {
		w.compression = c
	}
}

// Writer buffers the rows of one key range and encodes them into chunks.
//
// A Writer is write-once: after a successful AddRowsAsChunk it is finalized
// and further calls fail with model.ErrSegmentFinalized.
type Writer struct {
	projection  *schema.Projection
	keyRange    model.KeyRange
	compression Compression

	mu        sync.Mutex
	finalized bool
	chunks    *ChunkSet
}

// NewWriter returns an empty writer for rows of p within r.
func NewWriter(p *schema.Projection, r model.KeyRange, opts ...WriterOption) (*Writer, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: nil projection", model.ErrInvalidArgument)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if r.Dataset != p.Dataset().Name {
		return nil, &model.SchemaMismatchError{Column: p.Dataset().SortKeyColumn, Row: -1, Reason: fmt.Sprintf("range of dataset %q, projection of %q", r.Dataset, p.Dataset().Name)}
	}
	if ki := p.KeyIndex(); ki >= 0 {
		key := p.Column(ki)
		if key.Type.KeyKind() != r.Start.Kind() {
			return nil, &model.SchemaMismatchError{Column: key.Name, Row: -1, Reason: fmt.Sprintf("range keys are %s, column is %s", r.Start.Kind(), key.Type)}
		}
	}

	w := &Writer{projection: p, keyRange: r}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Projection returns the writer's projection.
func (w *Writer) Projection() *schema.Projection { return w.projection }

// Range returns the key range of the segment.
func (w *Writer) Range() model.KeyRange { return w.keyRange }

// Finalized reports whether AddRowsAsChunk completed.
func (w *Writer) Finalized() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.finalized
}

// Chunks returns the encoded chunks of a finalized writer.
func (w *Writer) Chunks() (*ChunkSet, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.finalized {
		return nil, model.ErrSegmentNotFinalized
	}
	return w.chunks, nil
}

// AddRowsAsChunk encodes rows into one chunk per column and finalizes the
// writer. The sequence is walked exactly once, in order.
//
// keyOf extracts each row's key; nil uses the projection's sort key column.
// A key outside the writer's range fails with *model.KeyRangeViolationError;
// a missing field, a type mismatch or a null in a non-nullable column fails
// with *model.SchemaMismatchError. On failure the writer stays open and empty.
func (w *Writer) AddRowsAsChunk(rows iter.Seq[row.Row], keyOf KeyFunc) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.finalized {
		return model.ErrSegmentFinalized
	}
	if rows == nil {
		return fmt.Errorf("%w: nil row sequence", model.ErrInvalidArgument)
	}
	if keyOf == nil {
		keyOf = w.projection.KeyOf
	}

	cols := w.projection.Columns()
	encs := make([]*chunk.Encoder, len(cols))
	for i, c := range cols {
		encs[i] = chunk.NewEncoder(c.Type, w.compression)
	}

	var (
		n      int
		lo, hi model.Key
	)
	for r := range rows {
		k, err := keyOf(r)
		if err != nil {
			return atRow(err, n)
		}
		if !k.IsValid() || k.Kind() != w.keyRange.Start.Kind() {
			return &model.SchemaMismatchError{Column: w.projection.Dataset().SortKeyColumn, Row: n, Reason: fmt.Sprintf("key %s does not match range kind %s", k, w.keyRange.Start.Kind())}
		}
		if !w.keyRange.Contains(k) {
			return &model.KeyRangeViolationError{Range: w.keyRange, Key: k, Row: n}
		}

		for i, c := range cols {
			if err := schema.CheckField(c, r, i); err != nil {
				return atRow(err, n)
			}
			if !c.Nullable && r.IsNull(i) {
				return &model.SchemaMismatchError{Column: c.Name, Row: n, Reason: "null in non-nullable column"}
			}
			encs[i].AppendField(r, i)
		}

		if n == 0 || k.Less(lo) {
			lo = k
		}
		if n == 0 || hi.Less(k) {
			hi = k
		}
		n++
	}

	cs := &ChunkSet{
		Columns:  cols,
		Chunks:   make([][]byte, len(cols)),
		RowCount: n,
		MinKey:   lo,
		MaxKey:   hi,
	}
	for i, enc := range encs {
		data, err := enc.Finish()
		if err != nil {
			return fmt.Errorf("encode column %q: %w", cols[i].Name, err)
		}
		cs.Chunks[i] = data
	}

	w.chunks = cs
	w.finalized = true
	return nil
}

// atRow attaches the row index to schema errors that lack one.
func atRow(err error, n int) error {
	var sm *model.SchemaMismatchError
	if errors.As(err, &sm) && sm.Row < 0 {
		cp := *sm
		cp.Row = n
		return &cp
	}
	return err
}
