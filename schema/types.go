package schema

import (
	"github.com/hupe1980/segstore/model"
	"github.com/hupe1980/segstore/row"
)

// ColumnType is the physical type of a column.
type ColumnType uint8

const (
	Int ColumnType = iota + 1 // int32
	Long                      // int64
	Double                    // float64
	String
	Bool
)

func (t ColumnType) String() string {
	switch t {
	case Int:
		return "Int"
	case Long:
		return "Long"
	case Double:
		return "Double"
	case String:
		return "String"
	case Bool:
		return "Bool"
	default:
		return "Unknown"
	}
}

// IsValid reports whether t is a known type.
func (t ColumnType) IsValid() bool {
	return t >= Int && t <= Bool
}

// Size returns the encoded width of one value, or 0 for variable width types.
func (t ColumnType) Size() int {
	switch t {
	case Int:
		return 4
	case Long, Double:
		return 8
	case Bool:
		return 1
	default:
		return 0
	}
}

// KeyKind returns the key kind produced by a column of this type.
// Bool columns cannot be sort keys and return model.KeyInvalid.
func (t ColumnType) KeyKind() model.KeyKind {
	switch t {
	case Int, Long:
		return model.KeyInt
	case Double:
		return model.KeyFloat
	case String:
		return model.KeyString
	default:
		return model.KeyInvalid
	}
}

// Accepts reports whether v is the Go representation of t.
// nil is accepted by every type; nullability is checked separately.
func (t ColumnType) Accepts(v any) bool {
	if v == nil {
		return true
	}
	switch v.(type) {
	case int32:
		return t == Int
	case int64:
		return t == Long
	case float64:
		return t == Double
	case string:
		return t == String
	case bool:
		return t == Bool
	default:
		return false
	}
}

// RowKind returns the row accessor kind for t.
func (t ColumnType) RowKind() row.Kind {
	return row.Kind(t)
}
