package engine

import "time"

// MetricsObserver defines the interface for observing engine events.
type MetricsObserver interface {
	// OnAppend is called when an append completes.
	OnAppend(duration time.Duration, rows int, bytes int64, err error)

	// OnScan is called when a scan snapshot has been taken.
	OnScan(duration time.Duration, segments int, err error)

	// OnConflict is called when an append is rejected with a range conflict.
	OnConflict(dataset, partition string)

	// OnThroughput reports bytes moved to or from the backend.
	OnThroughput(name string, bytes int64)
}

// NoopMetricsObserver is a no-op implementation of MetricsObserver.
type NoopMetricsObserver struct{}

func (NoopMetricsObserver) OnAppend(time.Duration, int, int64, error) {}
func (NoopMetricsObserver) OnScan(time.Duration, int, error)          {}
func (NoopMetricsObserver) OnConflict(string, string)                 {}
func (NoopMetricsObserver) OnThroughput(string, int64)                {}
