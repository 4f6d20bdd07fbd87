package postings

import (
	"sync/atomic"
	"time"
)

// MetricsCollector receives operational metrics of a Store.
// Implement it to forward metrics to a monitoring system.
type MetricsCollector interface {
	// RecordSave is called after each bitmap save with the stored size.
	RecordSave(bytes int, duration time.Duration, err error)

	// RecordLoad is called after each bitmap load with the stored size.
	RecordLoad(bytes int, duration time.Duration, err error)

	// RecordBulk is called after SaveMany and LoadMany.
	RecordBulk(count, failed int, duration time.Duration)

	// RecordQuery is called after Intersect, Union and Threshold.
	RecordQuery(op string, operands int, duration time.Duration, err error)

	// RecordCommit is called after each catalog commit.
	RecordCommit(entries int, duration time.Duration, err error)
}

// NoopMetricsCollector discards all metrics.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordSave(int, time.Duration, error)          {}
func (NoopMetricsCollector) RecordLoad(int, time.Duration, error)          {}
func (NoopMetricsCollector) RecordBulk(int, int, time.Duration)            {}
func (NoopMetricsCollector) RecordQuery(string, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordCommit(int, time.Duration, error)        {}

// BasicMetricsCollector keeps counters in memory.
type BasicMetricsCollector struct {
	SaveCount      atomic.Int64
	SaveErrors     atomic.Int64
	SaveBytes      atomic.Int64
	LoadCount      atomic.Int64
	LoadErrors     atomic.Int64
	LoadBytes      atomic.Int64
	LoadTotalNanos atomic.Int64
	BulkCount      atomic.Int64
	BulkItems      atomic.Int64
	BulkFailed     atomic.Int64
	QueryCount     atomic.Int64
	QueryErrors    atomic.Int64
	QueryOperands  atomic.Int64
	QueryNanos     atomic.Int64
	CommitCount    atomic.Int64
	CommitErrors   atomic.Int64
}

// RecordSave implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSave(bytes int, _ time.Duration, err error) {
	b.SaveCount.Add(1)
	if err != nil {
		b.SaveErrors.Add(1)
		return
	}
	b.SaveBytes.Add(int64(bytes))
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(bytes int, duration time.Duration, err error) {
	b.LoadCount.Add(1)
	b.LoadTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.LoadErrors.Add(1)
		return
	}
	b.LoadBytes.Add(int64(bytes))
}

// RecordBulk implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBulk(count, failed int, _ time.Duration) {
	b.BulkCount.Add(1)
	b.BulkItems.Add(int64(count))
	b.BulkFailed.Add(int64(failed))
}

// RecordQuery implements MetricsCollector.
func (b *BasicMetricsCollector) RecordQuery(_ string, operands int, duration time.Duration, err error) {
	b.QueryCount.Add(1)
	b.QueryOperands.Add(int64(operands))
	b.QueryNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.QueryErrors.Add(1)
	}
}

// RecordCommit implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCommit(_ int, _ time.Duration, err error) {
	b.CommitCount.Add(1)
	if err != nil {
		b.CommitErrors.Add(1)
	}
}

// GetStats returns a snapshot of the counters.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		SaveCount:     b.SaveCount.Load(),
		SaveErrors:    b.SaveErrors.Load(),
		SaveBytes:     b.SaveBytes.Load(),
		LoadCount:     b.LoadCount.Load(),
		LoadErrors:    b.LoadErrors.Load(),
		LoadBytes:     b.LoadBytes.Load(),
		LoadAvgNanos:  avg(b.LoadTotalNanos.Load(), b.LoadCount.Load()),
		BulkCount:     b.BulkCount.Load(),
		BulkItems:     b.BulkItems.Load(),
		BulkFailed:    b.BulkFailed.Load(),
		QueryCount:    b.QueryCount.Load(),
		QueryErrors:   b.QueryErrors.Load(),
		QueryOperands: b.QueryOperands.Load(),
		QueryAvgNanos: avg(b.QueryNanos.Load(), b.QueryCount.Load()),
		CommitCount:   b.CommitCount.Load(),
		CommitErrors:  b.CommitErrors.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector.
type BasicMetricsStats struct {
	SaveCount     int64
	SaveErrors    int64
	SaveBytes     int64
	LoadCount     int64
	LoadErrors    int64
	LoadBytes     int64
	LoadAvgNanos  int64
	BulkCount     int64
	BulkItems     int64
	BulkFailed    int64
	QueryCount    int64
	QueryErrors   int64
	QueryOperands int64
	QueryAvgNanos int64
	CommitCount   int64
	CommitErrors  int64
}

var _ MetricsCollector = (*BasicMetricsCollector)(nil)
