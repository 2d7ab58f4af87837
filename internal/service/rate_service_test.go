package service

import (
	"context"
	"testing"
	"time"

	"pricefx/internal/domain"

	"github.com/shopspring/decimal"
)

func testTable(fetchedAt time.Time, ttl time.Duration) *domain.RateTable {
	return domain.NewRateTable(domain.USD, map[domain.Code]decimal.Decimal{
		domain.EUR: decimal.RequireFromString("0.9"),
	}, fetchedAt, ttl)
}

func TestRateService_UpdateAndSnapshot(t *testing.T) {
	svc := NewRateService()

	if svc.Snapshot() != nil {
		t.Fatal("fresh service should have no table")
	}

	table := testTable(time.Now(), time.Hour)
	svc.Update(table)

	if svc.Snapshot() != table {
		t.Error("snapshot should return the swapped-in table")
	}
	if !svc.Usable(domain.EUR, time.Now()) {
		t.Error("EUR should be usable")
	}
	if svc.Usable(domain.GBP, time.Now()) {
		t.Error("GBP has no rate, should not be usable")
	}
}

func TestRateService_StaleTableNotUsable(t *testing.T) {
	svc := NewRateService()
	svc.Update(testTable(time.Now().Add(-2*time.Hour), time.Hour))

	if svc.Usable(domain.EUR, time.Now()) {
		t.Error("stale table should not be usable")
	}
	// the base currency always converts at 1.0
	if !svc.Usable(domain.USD, time.Now()) {
		t.Error("base currency should stay usable on a stale table")
	}
}

func TestRateService_OnUpdateHook(t *testing.T) {
	svc := NewRateService()

	var persisted *domain.RateTable
	svc.OnUpdate(func(table *domain.RateTable) { persisted = table })

	table := testTable(time.Now(), time.Hour)
	svc.Update(table)

	if persisted != table {
		t.Error("OnUpdate hook should receive the new table")
	}
}

func TestRateService_PollerHandoff(t *testing.T) {
	// the rate client is wired with a callback that feeds the channel;
	// the processor must turn that handoff into a snapshot and fire the
	// persistence hook
	svc := NewRateService()

	persisted := make(chan *domain.RateTable, 1)
	svc.OnUpdate(func(table *domain.RateTable) { persisted <- table })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.StartProcessor(ctx)

	onUpdate := func(table *domain.RateTable) { svc.TableChan() <- table }
	table := testTable(time.Now(), time.Hour)
	onUpdate(table)

	select {
	case got := <-persisted:
		if got != table {
			t.Error("hook received a different table than the poller sent")
		}
	case <-time.After(time.Second):
		t.Fatal("poller handoff never reached the persistence hook")
	}
	if svc.Snapshot() != table {
		t.Error("snapshot should hold the polled table")
	}
}

func TestRateService_Processor(t *testing.T) {
	svc := NewRateService()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc.StartProcessor(ctx)
	svc.TableChan() <- testTable(time.Now(), time.Hour)

	deadline := time.After(time.Second)
	for svc.Snapshot() == nil {
		select {
		case <-deadline:
			t.Fatal("processor did not apply the table in time")
		case <-time.After(5 * time.Millisecond):
		}
	}
}
