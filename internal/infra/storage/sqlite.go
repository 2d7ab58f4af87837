package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"pricefx/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Storage persists rate-table snapshots and merchant settings
type Storage struct {
	db *gorm.DB
}

// NewStorage creates a new SQLite storage instance
func NewStorage() (*Storage, error) {
	dbPath, err := getDBPath()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve DB path: %w", err)
	}

	dbDir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	// Connect to SQLite (Pure Go)
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&domain.RateEntry{}, &domain.MerchantSetting{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &Storage{db: db}, nil
}

// getDBPath resolves the database file path based on OS
func getDBPath() (string, error) {
	var configDir string
	var err error

	if runtime.GOOS == "windows" {
		configDir = os.Getenv("LOCALAPPDATA")
		if configDir == "" {
			configDir, err = os.UserConfigDir()
		}
	} else {
		configDir, err = os.UserConfigDir()
	}

	if err != nil {
		return "", err
	}

	return filepath.Join(configDir, "PriceFX", "data", "pricefx.db"), nil
}

// SaveRateTable replaces the persisted snapshot with the given table.
// Old entries are removed first so stale currencies do not linger.
func (s *Storage) SaveRateTable(table *domain.RateTable) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&domain.RateEntry{}).Error; err != nil {
			return err
		}
		for code, rate := range table.Rates {
			entry := domain.RateEntry{
				Code:      string(code),
				Base:      string(table.Base),
				Rate:      rate.String(),
				FetchedAt: table.FetchedAt,
				TTLSec:    int64(table.TTL / time.Second),
			}
			if err := tx.Save(&entry).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadRateTable reassembles the last persisted snapshot.
// Returns nil without error when no snapshot exists.
func (s *Storage) LoadRateTable() (*domain.RateTable, error) {
	var entries []domain.RateEntry
	if err := s.db.Find(&entries).Error; err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil // Not found is not an error
	}

	rates := make(map[domain.Code]decimal.Decimal, len(entries))
	for _, entry := range entries {
		rate, err := decimal.NewFromString(entry.Rate)
		if err != nil {
			return nil, fmt.Errorf("corrupt rate entry %s: %w", entry.Code, err)
		}
		rates[domain.Code(entry.Code)] = rate
	}

	first := entries[0]
	table := domain.NewRateTable(
		domain.Code(first.Base),
		rates,
		first.FetchedAt,
		time.Duration(first.TTLSec)*time.Second,
	)
	return table, nil
}

// SaveSetting saves a merchant configuration value
func (s *Storage) SaveSetting(key, value string) error {
	setting := domain.MerchantSetting{
		Key:   key,
		Value: value,
	}
	return s.db.Save(&setting).Error
}

// LoadSettings loads all merchant configuration as a map
func (s *Storage) LoadSettings() (map[string]string, error) {
	var settings []domain.MerchantSetting
	if err := s.db.Find(&settings).Error; err != nil {
		return nil, err
	}

	result := make(map[string]string)
	for _, setting := range settings {
		result[setting.Key] = setting.Value
	}
	return result, nil
}
