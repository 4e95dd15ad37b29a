// Package metrics provides timing instrumentation for codewalk's hot paths:
// walkthrough parsing, step reduction and frame rendering.
//
// Metrics are collected in-memory with atomic operations so the autoplay
// goroutine and the UI loop can record concurrently.
// Collection is enabled by default but can be disabled via CODEWALK_METRICS=0.
//
// Usage:
//
//	func render() {
//	    defer metrics.Timer(metrics.Render)()
//	    // ...
//	}
package metrics

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"
)

var enabled atomic.Bool

func init() {
	enabled.Store(os.Getenv("CODEWALK_METRICS") != "0")
}

// Enabled returns whether metrics collection is enabled.
func Enabled() bool {
	return enabled.Load()
}

// SetEnabled allows programmatic control of metrics collection.
func SetEnabled(e bool) {
	enabled.Store(e)
}

// TimingMetric accumulates durations for one named operation.
type TimingMetric struct {
	name  string
	count atomic.Int64
	total atomic.Int64
	max   atomic.Int64
	min   atomic.Int64 // 0 until the first sample
}

func newTimingMetric(name string) *TimingMetric {
	return &TimingMetric{name: name}
}

// Record adds one sample.
func (m *TimingMetric) Record(d time.Duration) {
	if !Enabled() {
		return
	}
	ns := d.Nanoseconds()
	m.count.Add(1)
	m.total.Add(ns)

	for {
		old := m.max.Load()
		if ns <= old || m.max.CompareAndSwap(old, ns) {
			break
		}
	}
	for {
		old := m.min.Load()
		if old != 0 && ns >= old {
			break
		}
		if m.min.CompareAndSwap(old, ns) {
			break
		}
	}
}

// Name returns the metric name.
func (m *TimingMetric) Name() string {
	return m.name
}

// Count returns the number of samples.
func (m *TimingMetric) Count() int64 {
	return m.count.Load()
}

// Stats returns a snapshot of the metric.
func (m *TimingMetric) Stats() TimingStats {
	count := m.count.Load()
	total := m.total.Load()

	var avg int64
	if count > 0 {
		avg = total / count
	}
	return TimingStats{
		Name:    m.name,
		Count:   count,
		TotalMs: float64(total) / 1e6,
		AvgMs:   float64(avg) / 1e6,
		MaxMs:   float64(m.max.Load()) / 1e6,
		MinMs:   float64(m.min.Load()) / 1e6,
	}
}

// Reset clears all samples.
func (m *TimingMetric) Reset() {
	m.count.Store(0)
	m.total.Store(0)
	m.max.Store(0)
	m.min.Store(0)
}

// TimingStats holds a snapshot of timing statistics.
type TimingStats struct {
	Name    string  `json:"name"`
	Count   int64   `json:"count"`
	TotalMs float64 `json:"total_ms"`
	AvgMs   float64 `json:"avg_ms"`
	MaxMs   float64 `json:"max_ms"`
	MinMs   float64 `json:"min_ms,omitempty"`
}

func (s TimingStats) String() string {
	return fmt.Sprintf("%-16s n=%-6d avg=%.3fms min=%.3fms max=%.3fms total=%.1fms",
		s.Name, s.Count, s.AvgMs, s.MinMs, s.MaxMs, s.TotalMs)
}

// Timer returns a function that records the elapsed time when called.
func Timer(m *TimingMetric) func() {
	if !Enabled() || m == nil {
		return func() {}
	}
	start := time.Now()
	return func() {
		m.Record(time.Since(start))
	}
}

// Global timing metrics.
var (
	Parse   = newTimingMetric("walkthrough_parse")
	Extract = newTimingMetric("step_extract")
	Reduce  = newTimingMetric("focus_reduce")
	Render  = newTimingMetric("ui_render")
	Static  = newTimingMetric("static_render")
)

// AllTimingMetrics returns all registered timing metrics.
func AllTimingMetrics() []*TimingMetric {
	return []*TimingMetric{Parse, Extract, Reduce, Render, Static}
}

// ResetAll resets all timing metrics.
func ResetAll() {
	for _, m := range AllTimingMetrics() {
		m.Reset()
	}
}

// AllTimingStats returns stats for the metrics that have samples.
func AllTimingStats() []TimingStats {
	all := AllTimingMetrics()
	stats := make([]TimingStats, 0, len(all))
	for _, m := range all {
		if m.Count() > 0 {
			stats = append(stats, m.Stats())
		}
	}
	return stats
}

// WriteReport writes one line per metric with samples.
func WriteReport(w io.Writer) error {
	for _, s := range AllTimingStats() {
		if _, err := fmt.Fprintln(w, s.String()); err != nil {
			return err
		}
	}
	return nil
}
