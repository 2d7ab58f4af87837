package domain

import (
	"time"
)

// RateEntry persists one currency of a fetched rate table so the engine
// can serve the last known snapshot on a cold start.
type RateEntry struct {
	Code      string    `gorm:"primaryKey" json:"code"`
	Base      string    `json:"base"`
	Rate      string    `json:"rate"` // decimal as string, kept exact
	FetchedAt time.Time `json:"fetched_at"`
	TTLSec    int64     `json:"ttl_sec"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MerchantSetting represents merchant-specific configuration (Key-Value)
type MerchantSetting struct {
	Key       string    `gorm:"primaryKey" json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
