package chunk

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/segstore/model"
	"github.com/hupe1980/segstore/row"
	"github.com/hupe1980/segstore/schema"
)

var compressions = []Compression{CompressionNone, CompressionLZ4, CompressionZSTD}

func encodeLongs(t *testing.T, c Compression, n int, nullEvery int) []byte {
	t.Helper()
	enc := NewEncoder(schema.Long, c)
	for i := 0; i < n; i++ {
		if nullEvery > 0 && i%nullEvery == 0 {
			enc.AppendNull()
			continue
		}
		enc.AppendLong(int64(i) * 3)
	}
	data, err := enc.Finish()
	require.NoError(t, err)
	return data
}

func TestRoundTripLong(t *testing.T) {
	for _, c := range compressions {
		t.Run(c.String(), func(t *testing.T) {
			data := encodeLongs(t, c, 5000, 7)

			dec := NewDecoder("v", 0, schema.Long, data)
			n := 0
			for dec.Next() {
				if n%7 == 0 {
					assert.True(t, dec.IsNull(), "row %d", n)
				} else {
					require.False(t, dec.IsNull())
					require.Equal(t, int64(n)*3, dec.Long())
				}
				n++
			}
			require.NoError(t, dec.Err())
			assert.Equal(t, 5000, n)
		})
	}
}

func TestRoundTripTypes(t *testing.T) {
	rows := []row.Tuple{
		{int32(-5), 1.5, "alpha", true},
		{nil, nil, nil, nil},
		{int32(1 << 30), -0.25, "", false},
		{int32(0), 1e300, strings.Repeat("x", 300), true},
	}
	types := []schema.ColumnType{schema.Int, schema.Double, schema.String, schema.Bool}

	for _, c := range compressions {
		t.Run(c.String(), func(t *testing.T) {
			decs := make([]*Decoder, len(types))
			for col, typ := range types {
				enc := NewEncoder(typ, c)
				for _, r := range rows {
					enc.AppendField(r, col)
				}
				data, err := enc.Finish()
				require.NoError(t, err)
				decs[col] = NewDecoder(fmt.Sprint(col), col, typ, data)
			}

			for i, want := range rows {
				for _, d := range decs {
					require.True(t, d.Next(), "row %d", i)
				}
				if want[0] == nil {
					for _, d := range decs {
						assert.True(t, d.IsNull())
					}
					continue
				}
				assert.Equal(t, want[0], decs[0].Int())
				assert.Equal(t, want[1], decs[1].Double())
				assert.Equal(t, want[2], decs[2].String())
				assert.Equal(t, want[3], decs[3].Bool())
			}
			for _, d := range decs {
				assert.False(t, d.Next())
				assert.NoError(t, d.Err())
			}
		})
	}
}

func TestDeterministic(t *testing.T) {
	for _, c := range compressions {
		a := encodeLongs(t, c, 2000, 3)
		b := encodeLongs(t, c, 2000, 3)
		assert.Equal(t, a, b, c.String())
	}
}

func TestCompressionFallsBackToRaw(t *testing.T) {
	enc := NewEncoder(schema.Long, CompressionLZ4)
	enc.AppendLong(42)
	data, err := enc.Finish()
	require.NoError(t, err)

	h, err := DecodeHeader(data)
	require.NoError(t, err)
	assert.Equal(t, CompressionNone, h.Compression)
	assert.False(t, h.HasValidity())
	assert.Equal(t, uint32(1), h.Count)
}

func TestCompressionShrinks(t *testing.T) {
	data := encodeLongs(t, CompressionZSTD, 10000, 0)
	h, err := DecodeHeader(data)
	require.NoError(t, err)
	assert.Equal(t, CompressionZSTD, h.Compression)
	assert.Less(t, h.ValuesLen, h.ValuesRawLen)
}

func TestTruncatedFailsAtExactRow(t *testing.T) {
	data := encodeLongs(t, CompressionNone, 10, 0)
	// Drop the last two values and half of the one before.
	cut := data[:len(data)-20]

	dec := NewDecoder("v", 0, schema.Long, cut)
	n := 0
	for dec.Next() {
		assert.Equal(t, int64(n)*3, dec.Long())
		n++
	}
	assert.Equal(t, 7, n)

	var de *model.DecodeError
	require.True(t, errors.As(dec.Err(), &de))
	assert.Equal(t, "v", de.Column)
	assert.Equal(t, 7, de.Row)
	assert.ErrorIs(t, dec.Err(), model.ErrDecode)
	assert.ErrorIs(t, dec.Err(), ErrTruncated)
}

func TestTruncatedString(t *testing.T) {
	enc := NewEncoder(schema.String, CompressionNone)
	enc.AppendString("hello")
	enc.AppendString("world")
	data, err := enc.Finish()
	require.NoError(t, err)

	dec := NewDecoder("s", 0, schema.String, data[:len(data)-2])
	require.True(t, dec.Next())
	assert.Equal(t, "hello", dec.String())
	require.False(t, dec.Next())

	var de *model.DecodeError
	require.True(t, errors.As(dec.Err(), &de))
	assert.Equal(t, 1, de.Row)
}

func TestMalformedHeader(t *testing.T) {
	good := encodeLongs(t, CompressionLZ4, 100, 0)

	tests := []struct {
		name   string
		data   []byte
		typ    schema.ColumnType
		target error
	}{
		{"empty", nil, schema.Long, ErrTruncated},
		{"short", good[:HeaderSize-1], schema.Long, ErrTruncated},
		{"magic", append([]byte{0, 0}, good[2:]...), schema.Long, ErrInvalidMagic},
		{"type", good, schema.Double, ErrTypeMismatch},
		{"compressed body cut", good[:HeaderSize+4], schema.Long, ErrTruncated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dec := NewDecoder("v", 0, tt.typ, tt.data)
			assert.False(t, dec.Next())

			var de *model.DecodeError
			require.True(t, errors.As(dec.Err(), &de))
			assert.Equal(t, 0, de.Row)
			assert.ErrorIs(t, dec.Err(), tt.target)
		})
	}
}

func TestCorruptCompressedValues(t *testing.T) {
	data := encodeLongs(t, CompressionZSTD, 1000, 0)
	bad := append([]byte(nil), data...)
	for i := HeaderSize; i < len(bad); i++ {
		bad[i] ^= 0xff
	}

	dec := NewDecoder("v", 0, schema.Long, bad)
	assert.False(t, dec.Next())
	assert.ErrorIs(t, dec.Err(), model.ErrDecode)
}

func TestEncoderReset(t *testing.T) {
	enc := NewEncoder(schema.Bool, CompressionNone)
	enc.AppendBool(true)
	enc.AppendNull()
	enc.Reset()
	assert.Equal(t, 0, enc.Len())

	enc.AppendBool(false)
	data, err := enc.Finish()
	require.NoError(t, err)

	dec := NewDecoder("b", 0, schema.Bool, data)
	n, err := dec.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.True(t, dec.Next())
	assert.False(t, dec.IsNull())
	assert.False(t, dec.Bool())
}

func setRawLen(data []byte, n uint32) []byte {
	bad := append([]byte(nil), data...)
	binary.LittleEndian.PutUint32(bad[14:], n)
	return bad
}

func TestCorruptValuesRawLen(t *testing.T) {
	for _, c := range []Compression{CompressionLZ4, CompressionZSTD} {
		t.Run(c.String(), func(t *testing.T) {
			data := encodeLongs(t, c, 1000, 0)
			h, err := DecodeHeader(data)
			require.NoError(t, err)
			require.Equal(t, c, h.Compression)

			for _, n := range []uint32{0xFFFFFFF0, h.ValuesRawLen - 8, h.ValuesRawLen + 8} {
				dec := NewDecoder("v", 0, schema.Long, setRawLen(data, n))
				assert.False(t, dec.Next())
				assert.ErrorIs(t, dec.Err(), model.ErrDecode)
				assert.ErrorIs(t, dec.Err(), ErrCorrupt)
			}

			strs := NewEncoder(schema.String, c)
			for i := 0; i < 1000; i++ {
				strs.AppendString("repeated value")
			}
			sdata, err := strs.Finish()
			require.NoError(t, err)
			sh, err := DecodeHeader(sdata)
			require.NoError(t, err)
			require.Equal(t, c, sh.Compression)

			dec := NewDecoder("s", 0, schema.String, setRawLen(sdata, 0xFFFFFFF0))
			assert.False(t, dec.Next())
			assert.ErrorIs(t, dec.Err(), ErrCorrupt)

			dec = NewDecoder("s", 0, schema.String, setRawLen(sdata, 10))
			assert.False(t, dec.Next())
			assert.ErrorIs(t, dec.Err(), ErrCorrupt)
		})
	}
}
