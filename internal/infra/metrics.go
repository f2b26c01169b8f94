package infra

import (
	"sync/atomic"
	"time"
)

// Metrics provides lightweight observability without external dependencies.
// Uses atomic operations for thread-safety.
type Metrics struct {
	// Counters
	commandsExecuted atomic.Uint64
	tradesSettled    atomic.Uint64
	errorsTotal      atomic.Uint64
	providerFailures atomic.Uint64

	// Provider fetch latency tracking
	fetchLatencySumNs atomic.Int64
	fetchLatencyCount atomic.Uint64
}

// GlobalMetrics is the singleton metrics instance.
var GlobalMetrics = &Metrics{}

// RecordCommand records one executed CLI command.
func (m *Metrics) RecordCommand() {
	m.commandsExecuted.Add(1)
}

// RecordTrade records one settled buy or sell.
func (m *Metrics) RecordTrade() {
	m.tradesSettled.Add(1)
}

// RecordError records an error surfaced to the user.
func (m *Metrics) RecordError() {
	m.errorsTotal.Add(1)
}

// RecordProviderFailure records one skipped provider in an update round.
func (m *Metrics) RecordProviderFailure() {
	m.providerFailures.Add(1)
}

// RecordFetch records a provider fetch with its latency.
func (m *Metrics) RecordFetch(latencyNs int64) {
	m.fetchLatencySumNs.Add(latencyNs)
	m.fetchLatencyCount.Add(1)
}

// AvgFetchLatency returns the average provider fetch duration.
func (m *Metrics) AvgFetchLatency() time.Duration {
	count := m.fetchLatencyCount.Load()
	if count == 0 {
		return 0
	}
	return time.Duration(m.fetchLatencySumNs.Load() / int64(count))
}

// Snapshot returns current metric values for logging.
type MetricsSnapshot struct {
	CommandsExecuted uint64
	TradesSettled    uint64
	ErrorsTotal      uint64
	ProviderFailures uint64
	AvgFetchLatency  time.Duration
}

// GetSnapshot returns a consistent-enough view of all counters.
func (m *Metrics) GetSnapshot() MetricsSnapshot {
	return MetricsSnapshot{
		CommandsExecuted: m.commandsExecuted.Load(),
		TradesSettled:    m.tradesSettled.Load(),
		ErrorsTotal:      m.errorsTotal.Load(),
		ProviderFailures: m.providerFailures.Load(),
		AvgFetchLatency:  m.AvgFetchLatency(),
	}
}
