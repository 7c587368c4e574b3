package chunk

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/segstore/model"
	"github.com/hupe1980/segstore/schema"
)

// Decoder reads the values of one chunk in row order.
//
// The header is parsed on the first call to Next. Decoding stops at the first
// malformed element; Err then returns a *model.DecodeError naming the column
// and the row that could not be produced.
type Decoder struct {
	column string
	index  int
	typ    schema.ColumnType
	data   []byte

	header *Header
	nulls  *roaring.Bitmap
	values []byte
	off    int

	row    int // index of the current row, -1 before the first Next
	isNull bool
	i64    int64
	f64    float64
	str    string
	b      bool

	err error
}

// NewDecoder returns a decoder over data, which must be a chunk of type typ.
// column and index identify the column in errors; column may be empty.
func NewDecoder(column string, index int, typ schema.ColumnType, data []byte) *Decoder {
	return &Decoder{column: column, index: index, typ: typ, data: data, row: -1}
}

// Next advances to the next row. It returns false when the chunk is exhausted
// or an error occurred.
func (d *Decoder) Next() bool {
	if d.err != nil {
		return false
	}
	if d.header == nil {
		if err := d.init(); err != nil {
			d.err = model.NewDecodeError(d.column, d.index, 0, err)
			return false
		}
	}
	if d.row+1 >= int(d.header.Count) {
		return false
	}
	d.row++
	if err := d.readValue(); err != nil {
		d.err = model.NewDecodeError(d.column, d.index, d.row, err)
		return false
	}
	return true
}

// Err returns the decode error, if any.
func (d *Decoder) Err() error { return d.err }

// Row returns the index of the current row.
func (d *Decoder) Row() int { return d.row }

// Count returns the number of rows in the chunk, parsing the header if needed.
func (d *Decoder) Count() (int, error) {
	if d.header == nil && d.err == nil {
		if err := d.init(); err != nil {
			d.err = model.NewDecodeError(d.column, d.index, 0, err)
		}
	}
	if d.err != nil {
		return 0, d.err
	}
	return int(d.header.Count), nil
}

func (d *Decoder) IsNull() bool { return d.isNull }
func (d *Decoder) Int() int32 { return int32(d.i64) }
func (d *Decoder) Long() int64 { return d.i64 }
func (d *Decoder) Double() float64 { return d.f64 }
func (d *Decoder) String() string { return d.str }
func (d *Decoder) Bool() bool { return d.b }
func (d *Decoder) Type() schema.ColumnType { return d.typ }

func (d *Decoder) init() error {
	h, err := DecodeHeader(d.data)
	if err != nil {
		return err
	}
	if h.Type != d.typ {
		return fmt.Errorf("%w: chunk holds %s, column is %s", ErrTypeMismatch, h.Type, d.typ)
	}

	rest := d.data[HeaderSize:]
	if h.HasValidity() {
		if uint64(len(rest)) < uint64(h.ValidityLen) {
			return fmt.Errorf("%w: validity bitmap", ErrTruncated)
		}
		bm := roaring.New()
		if err := bm.UnmarshalBinary(rest[:h.ValidityLen]); err != nil {
			return fmt.Errorf("%w: validity bitmap: %v", ErrCorrupt, err)
		}
		d.nulls = bm
		rest = rest[h.ValidityLen:]
	}

	if h.Compression != CompressionNone {
		if uint64(len(rest)) < uint64(h.ValuesLen) {
			return fmt.Errorf("%w: compressed values", ErrTruncated)
		}
		if err := checkValuesLen(h); err != nil {
			return err
		}
		values, err := decompress(rest[:h.ValuesLen], h.Compression, int(h.ValuesRawLen))
		if err != nil {
			return err
		}
		d.values = values
	} else {
		// Raw values are consumed as far as they go; a short section fails
		// at the first element that does not fit.
		if uint64(len(rest)) > uint64(h.ValuesLen) {
			rest = rest[:h.ValuesLen]
		}
		d.values = rest
	}

	d.header = h
	return nil
}

func (d *Decoder) readValue() error {
	d.isNull = d.nulls != nil && d.nulls.Contains(uint32(d.row))

	if d.typ == schema.String {
		n, w := binary.Uvarint(d.values[d.off:])
		if w <= 0 {
			return fmt.Errorf("%w: string length", ErrTruncated)
		}
		start := d.off + w
		if uint64(len(d.values)-start) < n {
			return fmt.Errorf("%w: string of %d bytes", ErrTruncated, n)
		}
		end := start + int(n)
		if d.isNull {
			d.str = ""
		} else {
			d.str = string(d.values[start:end])
		}
		d.off = end
		return nil
	}

	size := d.typ.Size()
	if len(d.values)-d.off < size {
		return fmt.Errorf("%w: %s value", ErrTruncated, d.typ)
	}
	v := d.values[d.off : d.off+size]
	d.off += size
	if d.isNull {
		d.i64, d.f64, d.b = 0, 0, false
		return nil
	}

	switch d.typ {
	case schema.Int:
		d.i64 = int64(int32(binary.LittleEndian.Uint32(v)))
	case schema.Long:
		d.i64 = int64(binary.LittleEndian.Uint64(v))
	case schema.Double:
		d.f64 = math.Float64frombits(binary.LittleEndian.Uint64(v))
	case schema.Bool:
		if v[0] > 1 {
			return fmt.Errorf("%w: bool byte %d", ErrCorrupt, v[0])
		}
		d.b = v[0] == 1
	}
	return nil
}
