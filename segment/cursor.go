package segment

import (
	"fmt"

	"github.com/hupe1980/segstore/internal/chunk"
	"github.com/hupe1980/segstore/model"
	"github.com/hupe1980/segstore/row"
	"github.com/hupe1980/segstore/schema"
)

// RowCursor steps through the rows of a segment.
type RowCursor interface {
	Next() bool
	Row() row.Row
	Err() error
}

// RowFactory builds a cursor over chunks, one per column of the given types.
type RowFactory func(chunks [][]byte, types []schema.ColumnType) (RowCursor, error)

// DefaultRowFactory decodes chunks with the built-in codec. The returned
// cursor yields itself as the row.
func DefaultRowFactory(chunks [][]byte, types []schema.ColumnType) (RowCursor, error) {
	if len(chunks) != len(types) {
		return nil, fmt.Errorf("%w: %d chunks for %d columns", model.ErrInvalidArgument, len(chunks), len(types))
	}
	c := &cursor{decs: make([]*chunk.Decoder, len(chunks))}
	for i, data := range chunks {
		c.decs[i] = chunk.NewDecoder("", i, types[i], data)
	}
	return c, nil
}

type cursor struct {
	decs []*chunk.Decoder
	row  int
	err  error
	done bool
}

var _ row.Row = (*cursor)(nil)

func (c *cursor) Next() bool {
	if c.done || len(c.decs) == 0 {
		return false
	}
	ended := -1
	advanced := false
	for i, d := range c.decs {
		if d.Next() {
			advanced = true
			continue
		}
		if err := d.Err(); err != nil {
			c.err, c.done = err, true
			return false
		}
		if ended < 0 {
			ended = i
		}
	}
	if ended >= 0 {
		c.done = true
		if advanced {
			c.err = model.NewDecodeError("", ended, c.row, fmt.Errorf("%w: column has fewer rows", chunk.ErrTruncated))
		}
		return false
	}
	c.row++
	return true
}

func (c *cursor) Row() row.Row { return c }
func (c *cursor) Err() error { return c.err }

func (c *cursor) NumFields() int { return len(c.decs) }
func (c *cursor) IsNull(i int) bool { return c.decs[i].IsNull() }
func (c *cursor) GetInt(i int) int32 { return c.decs[i].Int() }
func (c *cursor) GetLong(i int) int64 { return c.decs[i].Long() }
func (c *cursor) GetDouble(i int) float64 { return c.decs[i].Double() }
func (c *cursor) GetString(i int) string { return c.decs[i].String() }
func (c *cursor) GetBool(i int) bool { return c.decs[i].Bool() }
