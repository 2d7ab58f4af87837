package app

import (
	"context"
	"log/slog"
	"sync"

	"pricefx/internal/domain"
	"pricefx/internal/event"
	"pricefx/internal/infra"
	"pricefx/internal/infra/storage"
	"pricefx/internal/service"
)

// Bootstrap orchestrates the application startup sequence
type Bootstrap struct {
	Config     *infra.Config
	Storage    *storage.Storage
	Rates      *service.RateService
	Downloader *infra.FlagDownloader
}

// NewBootstrap creates a new Bootstrap instance
func NewBootstrap() *Bootstrap {
	return &Bootstrap{}
}

// Initialize performs core system initialization (config, DB, cached rates)
func (b *Bootstrap) Initialize() error {
	slog.Info("🚀 Bootstrapping PriceFX...")

	event.Warmup()

	// 1. Load Config
	cfg, err := infra.LoadConfig("configs/config.yaml")
	if err != nil {
		return err // Let main handle the error
	}
	b.Config = cfg

	// 2. Setup Logger
	logger := infra.NewLogger(cfg)
	slog.SetDefault(logger)

	// 3. Initialize Storage (DB)
	store, err := storage.NewStorage()
	if err != nil {
		return err
	}
	b.Storage = store
	slog.Info("✅ Database initialized")

	// 4. Seed the rate service with the last persisted snapshot so
	// sessions opening before the first poll still get rates. A stale
	// snapshot is still loaded; passes will refuse it until refreshed.
	b.Rates = service.NewRateService()
	if table, err := store.LoadRateTable(); err != nil {
		slog.Warn("Failed to load cached rate table", slog.Any("error", err))
	} else if table != nil {
		b.Rates.Update(table)
		slog.Info("✅ Cached rate table loaded",
			slog.String("base", string(table.Base)),
			slog.Int("currencies", len(table.Rates)))
	}

	// 5. Initialize Flag Downloader
	downloader, err := infra.NewFlagDownloader()
	if err != nil {
		return err
	}
	b.Downloader = downloader
	slog.Info("✅ Flag downloader ready")

	return nil
}

// SyncAssets downloads flag icons for the enabled currencies in the
// background so the switcher UI has them on first paint
func (b *Bootstrap) SyncAssets(ctx context.Context) {
	slog.Info("🔄 Starting asset synchronization...")

	var wg sync.WaitGroup
	semaphore := make(chan struct{}, 5) // Limit concurrent downloads

	for _, code := range b.Config.Store.EnabledCurrencies {
		wg.Add(1)
		go func(code domain.Code) {
			defer wg.Done()
			select {
			case <-ctx.Done():
				return
			case semaphore <- struct{}{}: // Acquire
			}
			defer func() { <-semaphore }() // Release

			path, err := b.Downloader.DownloadFlag(code)
			if err != nil {
				slog.Warn("Failed to download flag", slog.String("currency", string(code)), slog.Any("error", err))
				return
			}
			if path != "" {
				slog.Debug("Flag ready", slog.String("currency", string(code)), slog.String("path", path))
			}
		}(code)
	}

	wg.Wait()
	slog.Info("✨ Asset synchronization completed")
}
