package model

import (
	"cmp"
	"fmt"
	"math"
	"strconv"

	gojson "github.com/goccy/go-json"
)

// SegmentID is the unique identifier for a segment within a store.
type SegmentID uint64

// String returns a zero-padded hex form that sorts lexicographically.
func (id SegmentID) String() string {
	return fmt.Sprintf("%016x", uint64(id))
}

// KeyKind is the physical kind of a sort key.
type KeyKind uint8

const (
	KeyInvalid KeyKind = iota
	KeyInt
	KeyFloat
	KeyString
)

func (k KeyKind) String() string {
	switch k {
	case KeyInt:
		return "int"
	case KeyFloat:
		return "float"
	case KeyString:
		return "string"
	default:
		return "invalid"
	}
}

// Key is a sort-key value.
//
// Int and Long columns produce int keys, Double columns float keys and String
// columns string keys. Keys of different kinds order by kind; mixing kinds in
// one dataset is rejected by the schema layer.
type Key struct {
	kind KeyKind
	i    int64
	f    float64
	s    string
}

// IntKey returns an integer key.
func IntKey(v int64) Key { return Key{kind: KeyInt, i: v} }

// FloatKey returns a floating point key.
func FloatKey(v float64) Key { return Key{kind: KeyFloat, f: v} }

// StringKey returns a string key.
func StringKey(v string) Key { return Key{kind: KeyString, s: v} }

// Kind returns the key kind.
func (k Key) Kind() KeyKind { return k.kind }

// IsValid reports whether the key was built by one of the constructors.
func (k Key) IsValid() bool { return k.kind != KeyInvalid }

// Int returns the integer value. Only meaningful for KeyInt.
func (k Key) Int() int64 { return k.i }

// Float returns the float value. Only meaningful for KeyFloat.
func (k Key) Float() float64 { return k.f }

// Str returns the string value. Only meaningful for KeyString.
func (k Key) Str() string { return k.s }

// Compare returns -1, 0 or +1.
func (k Key) Compare(o Key) int {
	if k.kind != o.kind {
		return cmp.Compare(k.kind, o.kind)
	}
	switch k.kind {
	case KeyInt:
		return cmp.Compare(k.i, o.i)
	case KeyFloat:
		return cmp.Compare(k.f, o.f)
	case KeyString:
		return cmp.Compare(k.s, o.s)
	default:
		return 0
	}
}

// Less reports whether k sorts before o.
func (k Key) Less(o Key) bool { return k.Compare(o) < 0 }

func (k Key) String() string {
	switch k.kind {
	case KeyInt:
		return strconv.FormatInt(k.i, 10)
	case KeyFloat:
		return strconv.FormatFloat(k.f, 'g', -1, 64)
	case KeyString:
		return strconv.Quote(k.s)
	default:
		return "<invalid>"
	}
}

type keyJSON struct {
	Int       *int64  `json:"int,omitempty"`
	FloatBits *uint64 `json:"float_bits,omitempty"`
	String    *string `json:"string,omitempty"`
}

// MarshalJSON encodes the key as a single-field object tagged by kind. An
// unset key encodes as null. Float keys are stored as their IEEE 754 bits so
// infinities and NaN survive.
func (k Key) MarshalJSON() ([]byte, error) {
	var kj keyJSON
	switch k.kind {
	case KeyInt:
		kj.Int = &k.i
	case KeyFloat:
		bits := math.Float64bits(k.f)
		kj.FloatBits = &bits
	case KeyString:
		kj.String = &k.s
	default:
		return []byte("null"), nil
	}
	return gojson.Marshal(kj)
}

// UnmarshalJSON decodes the form written by MarshalJSON.
func (k *Key) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*k = Key{}
		return nil
	}
	var kj keyJSON
	if err := gojson.Unmarshal(data, &kj); err != nil {
		return err
	}
	switch {
	case kj.Int != nil:
		*k = IntKey(*kj.Int)
	case kj.FloatBits != nil:
		*k = FloatKey(math.Float64frombits(*kj.FloatBits))
	case kj.String != nil:
		*k = StringKey(*kj.String)
	default:
		return fmt.Errorf("key: no value in %s", data)
	}
	return nil
}
