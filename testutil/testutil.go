package testutil

import (
	"math/rand"
	"sync"

	"github.com/hupe1980/segstore/model"
	"github.com/hupe1980/segstore/row"
	"github.com/hupe1980/segstore/schema"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Int63 returns a non-negative pseudo-random int64.
func (r *RNG) Int63() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Int63()
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// String returns a random alphanumeric string of length n.
func (r *RNG) String(n int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[r.rand.Intn(len(alphabet))]
	}
	return string(b)
}

// Value returns a random non-null value of the given column type.
func (r *RNG) Value(t schema.ColumnType) any {
	switch t {
	case schema.Int:
		return int32(r.Intn(1 << 30))
	case schema.Long:
		return r.Int63()
	case schema.Double:
		return r.Float64()
	case schema.String:
		return r.String(1 + r.Intn(24))
	case schema.Bool:
		return r.Intn(2) == 1
	default:
		panic("testutil: unknown column type")
	}
}

// Rows generates n rows for p with sort keys start, start+1, ... in order.
// Nullable columns are null with probability nullRate.
func (r *RNG) Rows(p *schema.Projection, start int64, n int, nullRate float64) []row.Tuple {
	out := make([]row.Tuple, n)
	for i := range out {
		t := make(row.Tuple, p.NumColumns())
		for j, c := range p.Columns() {
			switch {
			case j == p.KeyIndex():
				t[j] = KeyValue(c.Type, start+int64(i))
			case c.Nullable && r.Float64() < nullRate:
				t[j] = nil
			default:
				t[j] = r.Value(c.Type)
			}
		}
		out[i] = t
	}
	return out
}

// KeyValue converts an integer key to a value of a key column type. String
// keys are zero-padded so they sort like the integers.
func KeyValue(t schema.ColumnType, k int64) any {
	switch t {
	case schema.Int:
		return int32(k)
	case schema.Long:
		return k
	case schema.Double:
		return float64(k)
	case schema.String:
		return padded(k)
	default:
		panic("testutil: not a key type")
	}
}

// Key converts an integer key to a model.Key of a key column type.
func Key(t schema.ColumnType, k int64) model.Key {
	switch t {
	case schema.Int, schema.Long:
		return model.IntKey(k)
	case schema.Double:
		return model.FloatKey(float64(k))
	case schema.String:
		return model.StringKey(padded(k))
	default:
		panic("testutil: not a key type")
	}
}

func padded(k int64) string {
	const width = 20
	b := make([]byte, width)
	for i := width - 1; i >= 0; i-- {
		b[i] = byte('0' + k%10)
		k /= 10
	}
	return string(b)
}

// EventsProjection returns a five-column projection keyed by the Long column
// "id": id, value (Double), name (nullable String), flag (Bool) and
// small (nullable Int).
func EventsProjection(dataset string, version int) *schema.Projection {
	cols := []schema.Column{
		{Name: "id", Dataset: dataset, Version: version, Type: schema.Long},
		{Name: "value", Dataset: dataset, Version: version, Type: schema.Double},
		{Name: "name", Dataset: dataset, Version: version, Type: schema.String, Nullable: true},
		{Name: "flag", Dataset: dataset, Version: version, Type: schema.Bool},
		{Name: "small", Dataset: dataset, Version: version, Type: schema.Int, Nullable: true},
	}
	p, err := schema.NewProjection(schema.Dataset{Name: dataset, SortKeyColumn: "id"}, version, cols)
	if err != nil {
		panic(err)
	}
	return p
}

// IntRange returns the key range [start, end) over integer keys.
func IntRange(dataset, partition string, start, end int64) model.KeyRange {
	return model.KeyRange{
		Dataset:   dataset,
		Partition: partition,
		Start:     model.IntKey(start),
		End:       model.IntKey(end),
	}
}
