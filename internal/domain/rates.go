package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateTable is a snapshot of conversion rates relative to the store's base
// currency. It is immutable for the duration of one conversion pass; a rate
// refresh produces a new table rather than mutating an existing one.
type RateTable struct {
	Base      Code                     `json:"base"`
	Rates     map[Code]decimal.Decimal `json:"rates"`
	FetchedAt time.Time                `json:"fetched_at"`
	TTL       time.Duration            `json:"ttl"`
}

// NewRateTable builds a snapshot. Non-positive rates are dropped on entry so
// a lookup can never hand out a zero or negative multiplier.
func NewRateTable(base Code, rates map[Code]decimal.Decimal, fetchedAt time.Time, ttl time.Duration) *RateTable {
	clean := make(map[Code]decimal.Decimal, len(rates))
	for code, rate := range rates {
		if rate.IsPositive() {
			clean[code] = rate
		}
	}
	return &RateTable{Base: base, Rates: clean, FetchedAt: fetchedAt, TTL: ttl}
}

// StaleAt reports whether the table has outlived its validity window at t.
// A zero TTL means the table never expires.
func (t *RateTable) StaleAt(now time.Time) bool {
	if t.TTL <= 0 {
		return false
	}
	return now.Sub(t.FetchedAt) > t.TTL
}

// Rate looks up the conversion rate for a target currency.
// The base currency always converts at exactly 1.0, even on a stale table.
// A missing entry or a stale table yields ErrRateUnavailable.
func (t *RateTable) Rate(target Code, now time.Time) (decimal.Decimal, error) {
	if target == t.Base {
		return decimal.NewFromInt(1), nil
	}
	if t.StaleAt(now) {
		return decimal.Decimal{}, ErrRateStale
	}
	rate, ok := t.Rates[target]
	if !ok {
		return decimal.Decimal{}, ErrRateUnavailable
	}
	return rate, nil
}

// Has reports whether the table can serve the target currency at time now
func (t *RateTable) Has(target Code, now time.Time) bool {
	_, err := t.Rate(target, now)
	return err == nil
}
