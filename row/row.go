// Package row defines the positional row abstraction used by writers and readers.
package row

import (
	"iter"
)

// Row is a positional view of one record.
//
// Accessors are only defined for the type of the field at index i and for
// fields that are not null; callers check IsNull first for nullable columns.
// Rows yielded by readers are cursors that are reused between iterations.
type Row interface {
	NumFields() int
	IsNull(i int) bool
	GetInt(i int) int32
	GetLong(i int) int64
	GetDouble(i int) float64
	GetString(i int) string
	GetBool(i int) bool
}

// Valuer is implemented by rows that expose their raw field values.
// Writers use it to verify field types before encoding.
type Valuer interface {
	Value(i int) any
}

// Tuple is a Row backed by a slice of Go values.
// A nil element is a null field.
type Tuple []any

var (
	_ Row    = Tuple(nil)
	_ Valuer = Tuple(nil)
)

func (t Tuple) NumFields() int { return len(t) }
func (t Tuple) IsNull(i int) bool { return t[i] == nil }
func (t Tuple) Value(i int) any { return t[i] }
func (t Tuple) GetInt(i int) int32 { return t[i].(int32) }
func (t Tuple) GetLong(i int) int64 { return t[i].(int64) }
func (t Tuple) GetDouble(i int) float64 { return t[i].(float64) }
func (t Tuple) GetString(i int) string { return t[i].(string) }
func (t Tuple) GetBool(i int) bool { return t[i].(bool) }

// Slice returns a sequence over rows.
func Slice[R Row](rows []R) iter.Seq[Row] {
	return func(yield func(Row) bool) {
		for _, r := range rows {
			if !yield(r) {
				return
			}
		}
	}
}

// Generate returns a sequence of n rows produced by fn.
func Generate(n int, fn func(i int) Row) iter.Seq[Row] {
	return func(yield func(Row) bool) {
		for i := 0; i < n; i++ {
			if !yield(fn(i)) {
				return
			}
		}
	}
}

// Materialize copies r into a Tuple, reading each field with the accessor
// matching kinds[i]. It is required to retain rows yielded by readers.
func Materialize(r Row, kinds []Kind) Tuple {
	out := make(Tuple, len(kinds))
	for i, k := range kinds {
		if r.IsNull(i) {
			continue
		}
		switch k {
		case KindInt:
			out[i] = r.GetInt(i)
		case KindLong:
			out[i] = r.GetLong(i)
		case KindDouble:
			out[i] = r.GetDouble(i)
		case KindString:
			out[i] = r.GetString(i)
		case KindBool:
			out[i] = r.GetBool(i)
		}
	}
	return out
}

// Kind selects the accessor used by Materialize.
type Kind uint8

const (
	KindInt Kind = iota + 1
	KindLong
	KindDouble
	KindString
	KindBool
)
