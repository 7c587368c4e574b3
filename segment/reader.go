package segment

import (
	"errors"
	"iter"

	"github.com/hupe1980/segstore/model"
	"github.com/hupe1980/segstore/row"
	"github.com/hupe1980/segstore/schema"
)

// Meta describes a committed segment.
type Meta struct {
	ID       model.SegmentID `json:"id"`
	Range    model.KeyRange  `json:"range"`
	Version  int             `json:"version"`
	ShardID  int             `json:"shard_id"`
	RowCount int             `json:"row_count"`
	MinKey   model.Key       `json:"min_key"`
	MaxKey   model.Key       `json:"max_key"`
}

// Reader is an immutable view of one committed segment restricted to the
// columns of a scan projection.
type Reader struct {
	meta    Meta
	columns []schema.Column
	chunks  [][]byte
}

// NewReader returns a reader over chunks, one per column.
func NewReader(meta Meta, columns []schema.Column, chunks [][]byte) *Reader {
	return &Reader{meta: meta, columns: columns, chunks: chunks}
}

// ID returns the segment id.
func (r *Reader) ID() model.SegmentID { return r.meta.ID }

// Range returns the declared key range.
func (r *Reader) Range() model.KeyRange { return r.meta.Range }

// ShardID returns the shard tag given at append time.
func (r *Reader) ShardID() int { return r.meta.ShardID }

// RowCount returns the number of rows.
func (r *Reader) RowCount() int { return r.meta.RowCount }

// Meta returns the segment metadata.
func (r *Reader) Meta() Meta { return r.meta }

// Columns returns the projected columns.
func (r *Reader) Columns() []schema.Column { return r.columns }

// Types returns the projected column types.
func (r *Reader) Types() []schema.ColumnType {
	out := make([]schema.ColumnType, len(r.columns))
	for i, c := range r.columns {
		out[i] = c.Type
	}
	return out
}

// Rows is RowIterator with DefaultRowFactory.
func (r *Reader) Rows() iter.Seq2[row.Row, error] {
	return r.RowIterator(DefaultRowFactory)
}

// RowIterator returns a lazy sequence over the segment's rows in stored
// order. factory is invoked on the first pull; nil means DefaultRowFactory.
//
// The yielded row is reused between steps; use row.Materialize to retain it.
// A malformed chunk yields a *model.DecodeError for the row that cannot be
// produced and ends the sequence. Every call starts again at row 0.
func (r *Reader) RowIterator(factory RowFactory) iter.Seq2[row.Row, error] {
	if factory == nil {
		factory = DefaultRowFactory
	}
	return func(yield func(row.Row, error) bool) {
		cur, err := factory(r.chunks, r.Types())
		if err != nil {
			yield(nil, r.named(err))
			return
		}
		for cur.Next() {
			if !yield(cur.Row(), nil) {
				return
			}
		}
		if err := cur.Err(); err != nil {
			yield(nil, r.named(err))
		}
	}
}

// named fills in the column name of positional decode errors.
func (r *Reader) named(err error) error {
	var de *model.DecodeError
	if errors.As(err, &de) && de.Column == "" && de.Index >= 0 && de.Index < len(r.columns) {
		de.Column = r.columns[de.Index].Name
	}
	return err
}
