// Package prometheus exports segstore metrics to Prometheus.
//
//	reg := prometheus.NewRegistry()
//	st, _ := segstore.Open(ctx, segstore.WithMetricsCollector(promcollector.New(reg)))
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/segstore"
)

const namespace = "segstore"

// Collector implements segstore.MetricsCollector with Prometheus metrics.
type Collector struct {
	appends       *prometheus.CounterVec
	appendLatency prometheus.Histogram
	appendRows    prometheus.Counter
	appendBytes   prometheus.Counter
	scans         *prometheus.CounterVec
	scanLatency   prometheus.Histogram
	scanSegments  prometheus.Histogram
	conflicts     *prometheus.CounterVec
	bytesRead     prometheus.Counter
	drops         *prometheus.CounterVec
}

var _ segstore.MetricsCollector = (*Collector)(nil)

// New creates a Collector and registers its metrics with reg.
// A nil reg registers with prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		appends: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appends_total",
			Help:      "Segment appends by outcome.",
		}, []string{"status"}),
		appendLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "append_duration_seconds",
			Help:      "Latency of segment appends.",
			Buckets:   prometheus.DefBuckets,
		}),
		appendRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appended_rows_total",
			Help:      "Rows in committed segments.",
		}),
		appendBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "appended_bytes_total",
			Help:      "Chunk bytes in committed segments.",
		}),
		scans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scans_total",
			Help:      "Scans by outcome.",
		}, []string{"status"}),
		scanLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scan_plan_duration_seconds",
			Help:      "Latency of taking a scan snapshot.",
			Buckets:   prometheus.DefBuckets,
		}),
		scanSegments: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scan_segments",
			Help:      "Segments selected per scan.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
		conflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "range_conflicts_total",
			Help:      "Appends rejected because of overlapping key ranges.",
		}, []string{"dataset"}),
		bytesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "read_bytes_total",
			Help:      "Chunk bytes loaded by scans.",
		}),
		drops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_drops_total",
			Help:      "DropDataset calls by outcome.",
		}, []string{"status"}),
	}

	reg.MustRegister(
		c.appends, c.appendLatency, c.appendRows, c.appendBytes,
		c.scans, c.scanLatency, c.scanSegments,
		c.conflicts, c.bytesRead, c.drops,
	)
	return c
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordAppend implements segstore.MetricsCollector.
func (c *Collector) RecordAppend(rows int, bytes int64, d time.Duration, err error) {
	c.appends.WithLabelValues(status(err)).Inc()
	c.appendLatency.Observe(d.Seconds())
	if err == nil {
		c.appendRows.Add(float64(rows))
		c.appendBytes.Add(float64(bytes))
	}
}

// RecordScan implements segstore.MetricsCollector.
func (c *Collector) RecordScan(segments int, d time.Duration, err error) {
	c.scans.WithLabelValues(status(err)).Inc()
	c.scanLatency.Observe(d.Seconds())
	if err == nil {
		c.scanSegments.Observe(float64(segments))
	}
}

// RecordConflict implements segstore.MetricsCollector. Partitions are not
// used as a label to bound cardinality.
func (c *Collector) RecordConflict(dataset, _ string) {
	c.conflicts.WithLabelValues(dataset).Inc()
}

// RecordBytesRead implements segstore.MetricsCollector.
func (c *Collector) RecordBytesRead(bytes int64) {
	c.bytesRead.Add(float64(bytes))
}

// RecordDrop implements segstore.MetricsCollector.
func (c *Collector) RecordDrop(_ int, err error) {
	c.drops.WithLabelValues(status(err)).Inc()
}
