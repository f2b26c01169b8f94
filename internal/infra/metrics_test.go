package infra

import (
	"testing"
	"time"
)

func TestMetrics_Counters(t *testing.T) {
	m := &Metrics{}

	m.RecordCommand()
	m.RecordCommand()
	m.RecordCommand()
	m.RecordTrade()
	m.RecordError()
	m.RecordProviderFailure()

	snap := m.GetSnapshot()

	if snap.CommandsExecuted != 3 {
		t.Errorf("Expected 3 commands, got %d", snap.CommandsExecuted)
	}
	if snap.TradesSettled != 1 {
		t.Errorf("Expected 1 trade, got %d", snap.TradesSettled)
	}
	if snap.ErrorsTotal != 1 {
		t.Errorf("Expected 1 error, got %d", snap.ErrorsTotal)
	}
	if snap.ProviderFailures != 1 {
		t.Errorf("Expected 1 provider failure, got %d", snap.ProviderFailures)
	}
}

func TestMetrics_FetchLatency(t *testing.T) {
	m := &Metrics{}

	if m.AvgFetchLatency() != 0 {
		t.Error("Expected zero average with no samples")
	}

	m.RecordFetch(1000)
	m.RecordFetch(2000)
	m.RecordFetch(3000)

	// Average latency: (1000 + 2000 + 3000) / 3 = 2000
	if got := m.AvgFetchLatency(); got != 2000*time.Nanosecond {
		t.Errorf("Expected avg latency 2000ns, got %s", got)
	}
}
