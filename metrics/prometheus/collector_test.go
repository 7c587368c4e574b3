package prometheus

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/segstore"
	"github.com/hupe1980/segstore/row"
	"github.com/hupe1980/segstore/testutil"
)

func gather(t *testing.T, reg *prometheus.Registry) map[string]*dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	out := make(map[string]*dto.MetricFamily, len(families))
	for _, f := range families {
		out[f.GetName()] = f
	}
	return out
}

func counter(f *dto.MetricFamily, label string) float64 {
	var total float64
	for _, m := range f.GetMetric() {
		if label == "" {
			total += m.GetCounter().GetValue()
			continue
		}
		for _, lp := range m.GetLabel() {
			if lp.GetValue() == label {
				total += m.GetCounter().GetValue()
			}
		}
	}
	return total
}

func TestCollector_Records(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.RecordAppend(10, 100, time.Millisecond, nil)
	c.RecordAppend(0, 0, time.Millisecond, errors.New("boom"))
	c.RecordScan(3, time.Microsecond, nil)
	c.RecordConflict("events", "p0")
	c.RecordBytesRead(512)
	c.RecordDrop(2, nil)

	m := gather(t, reg)
	assert.Equal(t, 1.0, counter(m["segstore_appends_total"], "ok"))
	assert.Equal(t, 1.0, counter(m["segstore_appends_total"], "error"))
	assert.Equal(t, 10.0, counter(m["segstore_appended_rows_total"], ""))
	assert.Equal(t, 100.0, counter(m["segstore_appended_bytes_total"], ""))
	assert.Equal(t, 1.0, counter(m["segstore_scans_total"], "ok"))
	assert.Equal(t, 1.0, counter(m["segstore_range_conflicts_total"], "events"))
	assert.Equal(t, 512.0, counter(m["segstore_read_bytes_total"], ""))
	assert.Equal(t, 1.0, counter(m["segstore_dataset_drops_total"], "ok"))
	assert.Equal(t, uint64(2), m["segstore_append_duration_seconds"].GetMetric()[0].GetHistogram().GetSampleCount())
}

func TestCollector_WithStore(t *testing.T) {
	reg := prometheus.NewRegistry()
	ctx := context.Background()
	st, err := segstore.Open(ctx, segstore.WithMetricsCollector(New(reg)))
	require.NoError(t, err)
	defer st.Close()

	p := testutil.EventsProjection("events", 1)
	rows := testutil.NewRNG(1).Rows(p, 0, 100, 0.1)
	for range 2 {
		w, err := st.NewWriter(p, testutil.IntRange("events", "p0", 0, 100))
		require.NoError(t, err)
		require.NoError(t, w.AddRowsAsChunk(row.Slice(rows), nil))
		_, _ = st.AppendSegment(ctx, p, w, 0).Wait(ctx)
	}

	m := gather(t, reg)
	assert.Equal(t, 1.0, counter(m["segstore_appends_total"], "ok"))
	assert.Equal(t, 1.0, counter(m["segstore_range_conflicts_total"], "events"))
	assert.Equal(t, 100.0, counter(m["segstore_appended_rows_total"], ""))
}
