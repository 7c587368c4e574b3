package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/segstore/model"
	"github.com/hupe1980/segstore/segment"
	"github.com/hupe1980/segstore/testutil"
)

func commitRange(t *testing.T, ix *index, id uint64, start, end int64) {
	t.Helper()
	r := testutil.IntRange("ds", "p", start, end)
	res, err := ix.reserve(1, r)
	require.NoError(t, err)
	require.NoError(t, res.publish(&entry{meta: segment.Meta{ID: model.SegmentID(id), Range: r, Version: 1}}))
}

func TestIndex_Conflicts(t *testing.T) {
	ix := newIndex(4)
	commitRange(t, ix, 1, 0, 10)
	commitRange(t, ix, 2, 20, 30)
	commitRange(t, ix, 3, 15, 15) // empty
	commitRange(t, ix, 4, 10, 15) // adjacent

	tests := []struct {
		name       string
		start, end int64
		conflict   bool
	}{
		{"inside", 2, 5, true},
		{"overlap start", 25, 40, true},
		{"spans empty", 14, 16, true},
		{"gap", 15, 20, false},
		{"after", 30, 40, false},
		{"empty inside", 5, 5, false},
		{"covers all", -5, 100, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ix.partition(partKey{dataset: "ds", version: 1, partition: "p"})
			p.mu.RLock()
			err := p.conflict(testutil.IntRange("ds", "p", tt.start, tt.end))
			p.mu.RUnlock()
			assert.Equal(t, tt.conflict, err != nil)
		})
	}
}

func TestIndex_PendingReservations(t *testing.T) {
	ix := newIndex(1)
	r := testutil.IntRange("ds", "p", 0, 10)

	res, err := ix.reserve(1, r)
	require.NoError(t, err)

	_, err = ix.reserve(1, testutil.IntRange("ds", "p", 5, 15))
	var rc *model.RangeConflictError
	require.True(t, errors.As(err, &rc))
	assert.True(t, rc.Pending)

	// Pending ranges are not visible to scans.
	_, found := ix.snapshot("ds", 1, nil)
	assert.False(t, found)

	// Other partitions and versions are independent.
	_, err = ix.reserve(1, testutil.IntRange("ds", "q", 0, 10))
	require.NoError(t, err)
	_, err = ix.reserve(2, r)
	require.NoError(t, err)

	res.cancel()
	res, err = ix.reserve(1, testutil.IntRange("ds", "p", 5, 15))
	require.NoError(t, err)
	require.NoError(t, res.publish(&entry{meta: segment.Meta{ID: 1, Range: res.r, Version: 1}}))

	parts, found := ix.snapshot("ds", 1, nil)
	require.True(t, found)
	require.Len(t, parts, 1)
	assert.Equal(t, "p", parts[0].name)
}

func TestIndex_SnapshotIsStable(t *testing.T) {
	ix := newIndex(2)
	commitRange(t, ix, 1, 0, 10)

	parts, _ := ix.snapshot("ds", 1, nil)
	commitRange(t, ix, 2, 10, 20)

	require.Len(t, parts[0].entries, 1)
	after, _ := ix.snapshot("ds", 1, nil)
	assert.Len(t, after[0].entries, 2)
}

func TestIndex_SortedInsert(t *testing.T) {
	ix := newIndex(1)
	commitRange(t, ix, 1, 50, 60)
	commitRange(t, ix, 2, 0, 10)
	commitRange(t, ix, 3, 20, 30)

	parts, _ := ix.snapshot("ds", 1, nil)
	var starts []int64
	for _, e := range parts[0].entries {
		starts = append(starts, e.meta.Range.Start.Int())
	}
	assert.Equal(t, []int64{0, 20, 50}, starts)
}

func TestIndex_DropDuringAppend(t *testing.T) {
	ix := newIndex(1)
	res, err := ix.reserve(1, testutil.IntRange("ds", "p", 0, 10))
	require.NoError(t, err)
	commitRange(t, ix, 1, 20, 30)

	dropped := ix.drop("ds", 1)
	assert.Len(t, dropped, 1)

	err = res.publish(&entry{meta: segment.Meta{ID: 2, Range: res.r, Version: 1}})
	require.ErrorIs(t, err, model.ErrDatasetNotFound)

	_, found := ix.snapshot("ds", 1, nil)
	assert.False(t, found)
}
