package hikmeans

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    trainCounter  prometheus.Counter
//	    pushHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordPush(n int, duration time.Duration, err error) {
//	    p.pushHistogram.Observe(duration.Seconds())
//	}
type MetricsCollector interface {
	// RecordTrain is called after each Train call.
	// n is the number of training points, nodes the number of nodes built.
	RecordTrain(n, nodes int, duration time.Duration, err error)

	// RecordPush is called after each push of n vectors.
	RecordPush(n int, duration time.Duration, err error)

	// RecordSave is called after each save with the encoded size in bytes.
	RecordSave(size int64, duration time.Duration, err error)

	// RecordLoad is called after each load with the encoded size in bytes.
	RecordLoad(size int64, duration time.Duration, err error)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordTrain(int, int, time.Duration, error) {}
func (NoopMetricsCollector) RecordPush(int, time.Duration, error)       {}
func (NoopMetricsCollector) RecordSave(int64, time.Duration, error)     {}
func (NoopMetricsCollector) RecordLoad(int64, time.Duration, error)     {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	TrainCount      atomic.Int64
	TrainErrors     atomic.Int64
	TrainPoints     atomic.Int64
	TrainNodes      atomic.Int64
	TrainTotalNanos atomic.Int64
	PushCount       atomic.Int64
	PushErrors      atomic.Int64
	PushVectors     atomic.Int64
	PushTotalNanos  atomic.Int64
	SaveCount       atomic.Int64
	SaveErrors      atomic.Int64
	SaveBytes       atomic.Int64
	LoadCount       atomic.Int64
	LoadErrors      atomic.Int64
	LoadBytes       atomic.Int64
}

// RecordTrain implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTrain(n, nodes int, duration time.Duration, err error) {
	b.TrainCount.Add(1)
	b.TrainTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.TrainErrors.Add(1)
		return
	}
	b.TrainPoints.Add(int64(n))
	b.TrainNodes.Add(int64(nodes))
}

// RecordPush implements MetricsCollector.
func (b *BasicMetricsCollector) RecordPush(n int, duration time.Duration, err error) {
	b.PushCount.Add(1)
	b.PushTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.PushErrors.Add(1)
		return
	}
	b.PushVectors.Add(int64(n))
}

// RecordSave implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSave(size int64, _ time.Duration, err error) {
	b.SaveCount.Add(1)
	if err != nil {
		b.SaveErrors.Add(1)
		return
	}
	b.SaveBytes.Add(size)
}

// RecordLoad implements MetricsCollector.
func (b *BasicMetricsCollector) RecordLoad(size int64, _ time.Duration, err error) {
	b.LoadCount.Add(1)
	if err != nil {
		b.LoadErrors.Add(1)
		return
	}
	b.LoadBytes.Add(size)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		TrainCount:    b.TrainCount.Load(),
		TrainErrors:   b.TrainErrors.Load(),
		TrainPoints:   b.TrainPoints.Load(),
		TrainNodes:    b.TrainNodes.Load(),
		TrainAvgNanos: avgNanos(b.TrainTotalNanos.Load(), b.TrainCount.Load()),
		PushCount:     b.PushCount.Load(),
		PushErrors:    b.PushErrors.Load(),
		PushVectors:   b.PushVectors.Load(),
		PushAvgNanos:  avgNanos(b.PushTotalNanos.Load(), b.PushCount.Load()),
		SaveCount:     b.SaveCount.Load(),
		SaveErrors:    b.SaveErrors.Load(),
		SaveBytes:     b.SaveBytes.Load(),
		LoadCount:     b.LoadCount.Load(),
		LoadErrors:    b.LoadErrors.Load(),
		LoadBytes:     b.LoadBytes.Load(),
	}
}

func avgNanos(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	TrainCount    int64
	TrainErrors   int64
	TrainPoints   int64
	TrainNodes    int64
	TrainAvgNanos int64
	PushCount     int64
	PushErrors    int64
	PushVectors   int64
	PushAvgNanos  int64
	SaveCount     int64
	SaveErrors    int64
	SaveBytes     int64
	LoadCount     int64
	LoadErrors    int64
	LoadBytes     int64
}
