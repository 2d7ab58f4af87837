package infra

import (
	"errors"
	"testing"
	"time"

	"pricefx/internal/domain"
	"pricefx/internal/engine"
)

func TestMetrics_RecordPass(t *testing.T) {
	m := &Metrics{}

	m.RecordPass(engine.PassReport{Converted: 3, Skipped: 1}, 2*time.Millisecond)
	m.RecordPass(engine.PassReport{SkipReason: "no target currency selected"}, time.Millisecond)
	m.RecordPass(engine.PassReport{Err: errors.New("boom")}, time.Millisecond)
	m.RecordPass(engine.PassReport{Err: domain.ErrRateStale}, time.Millisecond)

	if got := m.PassesSettled(); got != 1 {
		t.Errorf("Expected 1 settled pass, got %d", got)
	}
	if got := m.PassesFailed(); got != 2 {
		t.Errorf("Expected 2 failed passes, got %d", got)
	}
	if got := m.RateUnusableAborts(); got != 1 {
		t.Errorf("Expected 1 rate-unusable abort, got %d", got)
	}
	if got := m.ElementsConverted(); got != 3 {
		t.Errorf("Expected 3 converted elements, got %d", got)
	}
	if m.AvgPassLatency() <= 0 {
		t.Error("Expected positive average latency")
	}
}

func TestMetrics_SessionGauge(t *testing.T) {
	m := &Metrics{}

	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()

	if got := m.ActiveSessions(); got != 1 {
		t.Errorf("Expected 1 active session, got %d", got)
	}
}
