package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"market-pulse/src/analysis"
	"market-pulse/src/cache"
	"market-pulse/src/config"
	"market-pulse/src/data_source/coingecko"
	"market-pulse/src/data_source/yahoo"
	"market-pulse/src/interfaces"
	"market-pulse/src/logger"
	"market-pulse/src/network"
	"market-pulse/src/poller"
	"market-pulse/src/server"
	"market-pulse/src/storage"
	"market-pulse/src/utils"
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "config/default.yaml", "path to config file")
	flag.Parse()

	// Load config from YAML file
	cfg, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(cfg.LogLevel, cfg.Name)

	// 1. Warehouse
	db, err := storage.NewDatabase(cfg.MConfig, appLogger)
	if err != nil {
		appLogger.Critical("Failed to init db: %v", err)
	}
	if err := db.Initialize(); err != nil {
		appLogger.Critical("Failed to migrate db: %v", err)
	}
	defer db.Close()

	// 2. Transport and sources
	var netMgr interfaces.INetworkManager = network.NewNetworkManager(cfg.MConfig, appLogger)

	yahooSource := yahoo.NewSource(cfg.MConfig, netMgr, appLogger)
	geckoSource := coingecko.NewSource(cfg.MConfig, netMgr, appLogger)
	sources := []interfaces.IQuoteSource{yahooSource, geckoSource}

	scheduler := utils.NewMarketScheduler(cfg.Universe.Stocks, appLogger)
	intradayCache := cache.NewIntradayCache(cfg.History.IntradayCapacity, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Seed daily history and intraday baselines
	seedHistory(ctx, cfg, yahooSource, db, intradayCache, appLogger)

	// 4. Hub + HTTP surface
	hub := server.NewHub(cfg.Stream.SubscriberBuffer, appLogger)
	srv := server.NewServer(cfg.MConfig, hub, intradayCache, db, appLogger)

	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Critical("Server failed: %v", err)
		}
	}()

	// 5. Poller
	p := poller.NewPoller(cfg.MConfig, sources, hub, intradayCache, db, scheduler, appLogger)
	go p.Run(ctx)

	// 6. Retention sweep
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				db.CleanupOldData()
			case <-ctx.Done():
				return
			}
		}
	}()

	appLogger.Info("market-pulse running: %d tickers, poll every %ds",
		len(cfg.AllTickers()), cfg.Poll.IntervalSeconds)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down...")
	cancel()
	p.Stop()
	if err := srv.Stop(); err != nil {
		appLogger.Error("Server shutdown: %v", err)
	}
}

// -----------------------------------------------------------------------------

// seedHistory populates the gold table and the intraday cache for every
// configured ticker. A ticker that fails to seed still polls live; it just
// starts with an empty chart.
func seedHistory(ctx context.Context, cfg *config.Config, src *yahoo.Source,
	db interfaces.IDatabase, intradayCache *cache.IntradayCache, log *logger.Logger) {

	log.Info("Seeding history for %d tickers...", len(cfg.AllTickers()))

	for _, ticker := range cfg.AllTickers() {
		candles, err := src.FetchDailyHistory(ctx, ticker, cfg.History.SeedDays)
		if err != nil {
			log.Warning("Daily seed failed for %s: %v", ticker, err)
		} else if bars := analysis.BuildDailyBars(ticker, candles); len(bars) > 0 {
			if err := db.SaveDailyBars(bars); err != nil {
				log.Error("Failed to store daily bars for %s: %v", ticker, err)
			}
		}

		series, err := src.FetchIntraday(ctx, ticker)
		if err != nil {
			log.Warning("Intraday seed failed for %s: %v", ticker, err)
			continue
		}
		intradayCache.Seed(series)
	}

	log.Info("Seeding complete")
}
