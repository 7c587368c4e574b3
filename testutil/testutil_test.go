package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/segstore/schema"
)

func TestRNGDeterministic(t *testing.T) {
	a, b := NewRNG(4711), NewRNG(4711)
	assert.Equal(t, a.String(16), b.String(16))
	assert.Equal(t, a.Int63(), b.Int63())

	first := a.Intn(1000)
	a.Reset()
	assert.Equal(t, int64(4711), a.Seed())
	_ = a.String(16)
	_ = a.Int63()
	assert.Equal(t, first, a.Intn(1000))
}

func TestRows(t *testing.T) {
	rng := NewRNG(1)
	p := EventsProjection("events", 1)

	rows := rng.Rows(p, 100, 500, 0.5)
	require.Len(t, rows, 500)

	nulls := 0
	for i, r := range rows {
		key, err := p.KeyOf(r)
		require.NoError(t, err)
		assert.Equal(t, int64(100+i), key.Int())
		for j, c := range p.Columns() {
			if r.IsNull(j) {
				assert.True(t, c.Nullable)
				nulls++
				continue
			}
			assert.True(t, c.Type.Accepts(r.Value(j)), "column %s", c.Name)
		}
	}
	assert.Greater(t, nulls, 0)
}

func TestKeyOrdering(t *testing.T) {
	for _, typ := range []schema.ColumnType{schema.Int, schema.Long, schema.Double, schema.String} {
		t.Run(typ.String(), func(t *testing.T) {
			assert.True(t, Key(typ, 9).Less(Key(typ, 10)))
			assert.True(t, typ.Accepts(KeyValue(typ, 42)))
		})
	}
}

func TestIntRange(t *testing.T) {
	r := IntRange("events", "p0", 0, 10)
	require.NoError(t, r.Validate())
	assert.True(t, r.Contains(Key(schema.Long, 9)))
	assert.False(t, r.Contains(Key(schema.Long, 10)))
}
