package infra

import (
	"sync/atomic"
	"time"

	"pricefx/internal/domain"
	"pricefx/internal/engine"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	passesSettled     atomic.Uint64
	passesSkipped     atomic.Uint64
	passesFailed      atomic.Uint64
	rateUnusable      atomic.Uint64
	elementsConverted atomic.Uint64
	elementsSkipped   atomic.Uint64
	overflowsClamped  atomic.Uint64

	// Latency tracking
	passLatencySumNs atomic.Int64
	passLatencyCount atomic.Uint64

	// Gauges
	activeSessions atomic.Int32
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordPass folds one pass report into the counters
func (m *Metrics) RecordPass(r engine.PassReport, latency time.Duration) {
	switch {
	case r.Err != nil:
		m.passesFailed.Add(1)
		if domain.RateUnusable(r.Err) {
			m.rateUnusable.Add(1)
		}
	case r.SkipReason != "":
		m.passesSkipped.Add(1)
	default:
		m.passesSettled.Add(1)
	}
	m.elementsConverted.Add(uint64(r.Converted))
	m.elementsSkipped.Add(uint64(r.Skipped))
	m.overflowsClamped.Add(uint64(r.Overflows))
	m.passLatencySumNs.Add(latency.Nanoseconds())
	m.passLatencyCount.Add(1)
}

// SessionOpened increments the active bridge session gauge
func (m *Metrics) SessionOpened() { m.activeSessions.Add(1) }

// SessionClosed decrements the active bridge session gauge
func (m *Metrics) SessionClosed() { m.activeSessions.Add(-1) }

// ActiveSessions returns the current session gauge
func (m *Metrics) ActiveSessions() int32 { return m.activeSessions.Load() }

// PassesSettled returns the number of completed conversion passes
func (m *Metrics) PassesSettled() uint64 { return m.passesSettled.Load() }

// PassesFailed returns the number of aborted passes
func (m *Metrics) PassesFailed() uint64 { return m.passesFailed.Load() }

// RateUnusableAborts returns how many aborts were missing or stale rates
func (m *Metrics) RateUnusableAborts() uint64 { return m.rateUnusable.Load() }

// ElementsConverted returns the total converted element count
func (m *Metrics) ElementsConverted() uint64 { return m.elementsConverted.Load() }

// AvgPassLatency returns the mean pass duration
func (m *Metrics) AvgPassLatency() time.Duration {
	count := m.passLatencyCount.Load()
	if count == 0 {
		return 0
	}
	return time.Duration(m.passLatencySumNs.Load() / int64(count))
}
