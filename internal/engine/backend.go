package engine

import (
	"context"

	"github.com/hupe1980/segstore/schema"
	"github.com/hupe1980/segstore/segment"
)

// Backend persists the chunks of committed segments.
//
// Put must be atomic: a segment is either fully stored or not at all, and a
// failed Put leaves nothing that Recover would return.
type Backend interface {
	// Put stores one segment with a single backend write.
	Put(ctx context.Context, meta segment.Meta, cs *segment.ChunkSet) (Handle, error)

	// Recover returns every stored segment. Volatile backends return none.
	Recover(ctx context.Context) ([]Recovered, error)

	Close() error
}

// Handle refers to one stored segment.
type Handle interface {
	// Load returns the chunks at the given stored column positions.
	Load(ctx context.Context, cols []int) ([][]byte, error)

	// Size returns the stored size in bytes.
	Size() int64

	// Delete removes the segment from the backend.
	Delete(ctx context.Context) error
}

// Recovered is a segment found by Backend.Recover.
type Recovered struct {
	Meta    segment.Meta
	Columns []schema.Column
	Handle  Handle
}
