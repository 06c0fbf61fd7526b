package wordvec

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement it to integrate with monitoring systems like Prometheus.
type MetricsCollector interface {
	// RecordInsert is called after each insert operation.
	RecordInsert(duration time.Duration, err error)

	// RecordCompile is called after each compile operation. entries is the
	// number of records written on success.
	RecordCompile(entries int, duration time.Duration, err error)

	// RecordLookup is called after each lookup. hit is false for
	// out-of-vocabulary words.
	RecordLookup(hit bool, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordInsert(time.Duration, error)       {}
func (NoopMetricsCollector) RecordCompile(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordLookup(bool, time.Duration)        {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	InsertCount      atomic.Int64
	InsertErrors     atomic.Int64
	CompileCount     atomic.Int64
	CompileErrors    atomic.Int64
	CompiledEntries  atomic.Int64
	LookupCount      atomic.Int64
	LookupMisses     atomic.Int64
	LookupTotalNanos atomic.Int64
}

// RecordInsert implements MetricsCollector.
func (b *BasicMetricsCollector) RecordInsert(duration time.Duration, err error) {
	b.InsertCount.Add(1)
	if err != nil {
		b.InsertErrors.Add(1)
	}
}

// RecordCompile implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCompile(entries int, duration time.Duration, err error) {
	b.CompileCount.Add(1)
	if err != nil {
		b.CompileErrors.Add(1)
		return
	}
	b.CompiledEntries.Add(int64(entries))
}

// RecordLookup implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLookup(hit bool, duration time.Duration) {
	b.LookupCount.Add(1)
	b.LookupTotalNanos.Add(duration.Nanoseconds())
	if !hit {
		b.LookupMisses.Add(1)
	}
}
