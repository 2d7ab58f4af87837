package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"pricefx/internal/app"
	"pricefx/internal/domain"
	"pricefx/internal/infra"
	"pricefx/internal/infra/bridge"

	_ "net/http/pprof" // For pprof profiling
)

func main() {
	// 1. Pprof Server (for performance profiling)
	go func() {
		// Localhost only for security
		slog.Info("🕵️ Pprof server started on localhost:6060")
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			slog.Error("Pprof server failed", slog.Any("error", err))
		}
	}()

	// 2. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}

	// 3. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Background Asset Sync (flag icons for the switcher)
	go bootstrap.SyncAssets(ctx)

	cfg := bootstrap.Config
	rates := bootstrap.Rates

	// 5. Rate Poller: fresh tables flow into the service and the snapshot
	// cache, so a restart within the TTL starts with usable rates
	rates.OnUpdate(func(table *domain.RateTable) {
		if err := bootstrap.Storage.SaveRateTable(table); err != nil {
			slog.Warn("Failed to persist rate table", slog.Any("error", err))
		}
	})
	rates.StartProcessor(ctx)

	// fetched tables go through the service's channel so the poller never
	// contends on the snapshot lock
	poller := infra.NewRatesClient(cfg, func(table *domain.RateTable) {
		rates.TableChan() <- table
	})
	if err := poller.Start(ctx); err != nil {
		slog.Error("Failed to start rate poller", slog.Any("error", err))
	}
	defer poller.Stop()
	slog.InfoContext(ctx, "✅ Rate poller started",
		slog.String("base", string(cfg.Store.BaseCurrency)))

	// 6. Bridge Server (loader sessions)
	srv := bridge.NewServer(cfg, rates)
	go func() {
		if err := srv.Start(ctx); err != nil {
			slog.Error("Bridge server failed", slog.Any("error", err))
			stop()
		}
	}()
	slog.InfoContext(ctx, "✨ PriceFX fully operational. Press Ctrl+C to exit.")

	// Wait for shutdown signal
	<-ctx.Done()

	slog.InfoContext(ctx, "👋 Shutting down gracefully...")
}
