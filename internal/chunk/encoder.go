package chunk

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/segstore/row"
	"github.com/hupe1980/segstore/schema"
)

// Encoder accumulates the values of one column and produces a chunk.
type Encoder struct {
	typ         schema.ColumnType
	compression Compression
	count       uint32
	nulls       *roaring.Bitmap
	values      []byte
}

// NewEncoder returns an encoder for a column of type typ.
func NewEncoder(typ schema.ColumnType, c Compression) *Encoder {
	return &Encoder{
		typ:         typ,
		compression: c,
		nulls:       roaring.New(),
	}
}

// Len returns the number of values appended.
func (e *Encoder) Len() int { return int(e.count) }

// Reset discards all appended values.
func (e *Encoder) Reset() {
	e.count = 0
	e.nulls.Clear()
	e.values = e.values[:0]
}

// AppendNull appends a null value.
func (e *Encoder) AppendNull() {
	e.nulls.Add(e.count)
	switch e.typ {
	case schema.String:
		e.values = binary.AppendUvarint(e.values, 0)
	default:
		for i := 0; i < e.typ.Size(); i++ {
			e.values = append(e.values, 0)
		}
	}
	e.count++
}

func (e *Encoder) AppendInt(v int32) {
	e.values = binary.LittleEndian.AppendUint32(e.values, uint32(v))
	e.count++
}

func (e *Encoder) AppendLong(v int64) {
	e.values = binary.LittleEndian.AppendUint64(e.values, uint64(v))
	e.count++
}

func (e *Encoder) AppendDouble(v float64) {
	e.values = binary.LittleEndian.AppendUint64(e.values, math.Float64bits(v))
	e.count++
}

func (e *Encoder) AppendString(v string) {
	e.values = binary.AppendUvarint(e.values, uint64(len(v)))
	e.values = append(e.values, v...)
	e.count++
}

func (e *Encoder) AppendBool(v bool) {
	var b byte
	if v {
		b = 1
	}
	e.values = append(e.values, b)
	e.count++
}

// AppendField appends field i of r using the accessor of the encoder's type.
// The caller validates presence and type beforehand.
func (e *Encoder) AppendField(r row.Row, i int) {
	if r.IsNull(i) {
		e.AppendNull()
		return
	}
	switch e.typ {
	case schema.Int:
		e.AppendInt(r.GetInt(i))
	case schema.Long:
		e.AppendLong(r.GetLong(i))
	case schema.Double:
		e.AppendDouble(r.GetDouble(i))
	case schema.String:
		e.AppendString(r.GetString(i))
	case schema.Bool:
		e.AppendBool(r.GetBool(i))
	}
}

// Finish returns the encoded chunk. The encoder may be reset and reused.
func (e *Encoder) Finish() ([]byte, error) {
	h := Header{
		Magic:        Magic,
		Version:      Version,
		Type:         e.typ,
		Compression:  CompressionNone,
		Count:        e.count,
		ValuesRawLen: uint32(len(e.values)),
		ValuesLen:    uint32(len(e.values)),
	}

	var validity []byte
	if !e.nulls.IsEmpty() {
		e.nulls.RunOptimize()
		var err error
		validity, err = e.nulls.ToBytes()
		if err != nil {
			return nil, err
		}
		h.Flags |= flagValidity
		h.ValidityLen = uint32(len(validity))
	}

	values := e.values
	compressed, err := compress(e.values, e.compression)
	if err != nil {
		return nil, err
	}
	if compressed != nil {
		values = compressed
		h.Compression = e.compression
		h.ValuesLen = uint32(len(compressed))
	}

	var buf bytes.Buffer
	buf.Grow(HeaderSize + len(validity) + len(values))
	buf.Write(h.Encode())
	buf.Write(validity)
	buf.Write(values)
	return buf.Bytes(), nil
}
