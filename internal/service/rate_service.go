package service

import (
	"context"
	"sync"
	"time"

	"pricefx/internal/domain"
)

// RateService holds the current rate-table snapshot. Updates swap the
// whole table; a conversion pass binds one snapshot into its context and
// never sees a mid-pass refresh.
type RateService struct {
	mu        sync.RWMutex
	table     *domain.RateTable
	tableChan chan *domain.RateTable
	onUpdate  func(*domain.RateTable)
}

// NewRateService creates a new RateService instance
func NewRateService() *RateService {
	return &RateService{
		tableChan: make(chan *domain.RateTable, 16),
	}
}

// OnUpdate registers a hook invoked after each accepted table swap,
// e.g. to persist the snapshot. Must be set before StartProcessor.
func (s *RateService) OnUpdate(fn func(*domain.RateTable)) {
	s.onUpdate = fn
}

// Update atomically swaps in a new rate-table snapshot
func (s *RateService) Update(table *domain.RateTable) {
	if table == nil {
		return
	}
	s.mu.Lock()
	s.table = table
	s.mu.Unlock()

	if s.onUpdate != nil {
		s.onUpdate(table)
	}
}

// Snapshot returns the current table. Tables are immutable after
// construction, so callers may hold the pointer for a whole pass.
func (s *RateService) Snapshot() *domain.RateTable {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table
}

// Usable reports whether a conversion pass to target could run right now
func (s *RateService) Usable(target domain.Code, now time.Time) bool {
	table := s.Snapshot()
	return table != nil && table.Has(target, now)
}

// TableChan returns the channel for incoming rate-table snapshots
func (s *RateService) TableChan() chan<- *domain.RateTable {
	return s.tableChan
}

// StartProcessor starts a background goroutine that applies snapshots
// arriving on the table channel.
func (s *RateService) StartProcessor(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case table := <-s.tableChan:
				s.Update(table)
			}
		}
	}()
}
