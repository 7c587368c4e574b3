package segstore

import (
	"sync/atomic"
	"time"

	"github.com/hupe1980/segstore/internal/engine"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; see
// metrics/prometheus for a Prometheus implementation.
type MetricsCollector interface {
	// RecordAppend is called after each append operation.
	// rows and bytes describe the segment, err is nil if successful.
	RecordAppend(rows int, bytes int64, duration time.Duration, err error)

	// RecordScan is called after each scan is planned.
	// segments is the number of selected segments.
	RecordScan(segments int, duration time.Duration, err error)

	// RecordConflict is called when an append is rejected with ErrRangeConflict.
	RecordConflict(dataset, partition string)

	// RecordBytesRead is called with the chunk bytes loaded for a segment.
	RecordBytesRead(bytes int64)

	// RecordDrop is called after each DropDataset operation.
	RecordDrop(segments int, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordAppend(int, int64, time.Duration, error) {}
func (NoopMetricsCollector) RecordScan(int, time.Duration, error)          {}
func (NoopMetricsCollector) RecordConflict(string, string)                 {}
func (NoopMetricsCollector) RecordBytesRead(int64)                         {}
func (NoopMetricsCollector) RecordDrop(int, error)                         {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	AppendCount      atomic.Int64
	AppendErrors     atomic.Int64
	AppendRows       atomic.Int64
	AppendBytes      atomic.Int64
	AppendTotalNanos atomic.Int64
	ScanCount        atomic.Int64
	ScanErrors       atomic.Int64
	ScanSegments     atomic.Int64
	ScanTotalNanos   atomic.Int64
	ConflictCount    atomic.Int64
	BytesRead        atomic.Int64
	DropCount        atomic.Int64
	DroppedSegments  atomic.Int64
}

// RecordAppend implements MetricsCollector.
func (b *BasicMetricsCollector) RecordAppend(rows int, bytes int64, duration time.Duration, err error) {
	b.AppendCount.Add(1)
	b.AppendTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.AppendErrors.Add(1)
		return
	}
	b.AppendRows.Add(int64(rows))
	b.AppendBytes.Add(bytes)
}

// RecordScan implements MetricsCollector.
func (b *BasicMetricsCollector) RecordScan(segments int, duration time.Duration, err error) {
	b.ScanCount.Add(1)
	b.ScanTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ScanErrors.Add(1)
		return
	}
	b.ScanSegments.Add(int64(segments))
}

// RecordConflict implements MetricsCollector.
func (b *BasicMetricsCollector) RecordConflict(string, string) {
	b.ConflictCount.Add(1)
}

// RecordBytesRead implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBytesRead(bytes int64) {
	b.BytesRead.Add(bytes)
}

// RecordDrop implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDrop(segments int, err error) {
	b.DropCount.Add(1)
	if err == nil {
		b.DroppedSegments.Add(int64(segments))
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		AppendCount:     b.AppendCount.Load(),
		AppendErrors:    b.AppendErrors.Load(),
		AppendRows:      b.AppendRows.Load(),
		AppendBytes:     b.AppendBytes.Load(),
		AppendAvgNanos:  avg(b.AppendTotalNanos.Load(), b.AppendCount.Load()),
		ScanCount:       b.ScanCount.Load(),
		ScanErrors:      b.ScanErrors.Load(),
		ScanSegments:    b.ScanSegments.Load(),
		ScanAvgNanos:    avg(b.ScanTotalNanos.Load(), b.ScanCount.Load()),
		ConflictCount:   b.ConflictCount.Load(),
		BytesRead:       b.BytesRead.Load(),
		DropCount:       b.DropCount.Load(),
		DroppedSegments: b.DroppedSegments.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	AppendCount     int64
	AppendErrors    int64
	AppendRows      int64
	AppendBytes     int64
	AppendAvgNanos  int64
	ScanCount       int64
	ScanErrors      int64
	ScanSegments    int64
	ScanAvgNanos    int64
	ConflictCount   int64
	BytesRead       int64
	DropCount       int64
	DroppedSegments int64
}

// metricsObserver forwards engine events to a MetricsCollector.
type metricsObserver struct {
	mc MetricsCollector
}

var _ engine.MetricsObserver = metricsObserver{}

func (o metricsObserver) OnAppend(d time.Duration, rows int, bytes int64, err error) {
	o.mc.RecordAppend(rows, bytes, d, err)
}

func (o metricsObserver) OnScan(d time.Duration, segments int, err error) {
	o.mc.RecordScan(segments, d, err)
}

func (o metricsObserver) OnConflict(dataset, partition string) {
	o.mc.RecordConflict(dataset, partition)
}

func (o metricsObserver) OnThroughput(name string, bytes int64) {
	if name == "segment_read" {
		o.mc.RecordBytesRead(bytes)
	}
}
