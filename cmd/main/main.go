package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"breakout-scanner/src/backfill"
	"breakout-scanner/src/config"
	"breakout-scanner/src/engine"
	"breakout-scanner/src/interfaces"
	"breakout-scanner/src/logger"
	"breakout-scanner/src/marketclock"
	"breakout-scanner/src/models"
	"breakout-scanner/src/network"
	"breakout-scanner/src/server"
	"breakout-scanner/src/stream"
)

// -----------------------------------------------------------------------------

func main() {

	// Parse command line flags
	configPath := flag.String("config", "../../config/default.yaml", "path to config file")
	flag.Parse()

	// Load config from YAML file (credentials come from env / .env)
	config, err := config.NewConfig(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Setup logger
	appLogger := logger.NewLogger(config.LogLevel, config.Name)

	// 1. Market clock and network layer
	clock := marketclock.NewMarketClock(logger.NewLogger(config.LogLevel, "MarketClock"))
	var networkManager interfaces.INetworkManager = network.NewAsyncNetworkManager(config.MConfig, logger.NewLogger(config.LogLevel, "Network"))

	// 2. Backfill the watch universe before streaming starts
	var universe []models.MTickerRecord
	if config.Reference.BaseURL != "" && config.Secrets.APIKey != "" {
		appLogger.Info("Backfilling watch universe from %s...", config.Reference.BaseURL)
		backfiller := backfill.NewBackfiller(config.MConfig, config.Secrets.APIKey, networkManager, logger.NewLogger(config.LogLevel, "Backfill"))
		universe, err = backfiller.Load(config.Scan)
		if err != nil {
			appLogger.Critical("Backfill failed: %v", err)
		}
	} else if config.Stream.Simulate {
		appLogger.Info("No reference API configured, using built-in universe")
		universe = backfill.DefaultUniverse()
	} else {
		appLogger.Critical("No reference API configured and simulation disabled; nothing to scan")
	}
	universe = backfill.LastPriceSeeded(universe)

	// 3. Engine components
	store := engine.NewTickerStateStore()
	store.Seed(universe)

	params := engine.NewParameterStore(config.Scan)
	evaluator := engine.NewBreakoutEvaluator(config.Alerting.CriticalPercentChange, config.Alerting.CriticalVolumeMultiplier)
	cooldown := engine.NewCooldownSet(time.Duration(config.Alerting.CooldownMinutes) * time.Minute)
	sectors := engine.NewSectorAggregator()
	history := engine.NewAlertHistory(config.Alerting.HistorySize)

	// 4. Dashboard server doubles as the alert sink
	srv := server.NewDashboardServer(config.MConfig, logger.NewLogger(config.LogLevel, "Dashboard"), store, sectors, params, cooldown, history)

	queue := engine.NewAlertQueue(
		time.Duration(config.Alerting.InterAlertDelayMs)*time.Millisecond,
		srv, sectors, history,
		logger.NewLogger(config.LogLevel, "AlertQueue"),
	)

	pipeline := engine.NewIngestionPipeline(store, evaluator, params, clock, cooldown, queue, logger.NewLogger(config.LogLevel, "Pipeline"))

	// 5. Trade source: live stream or simulator
	var source interfaces.ITradeSource
	if config.Stream.Simulate {
		source = stream.NewSimulatedSource(config.MConfig, universe, logger.NewLogger(config.LogLevel, "Simulator"))
		srv.StreamState = func() string { return "simulated" }
	} else {
		if config.Secrets.APIKey == "" {
			appLogger.Critical("SCANNER_API_KEY is not set; cannot authenticate to the stream")
		}
		manager := stream.NewConnectionManager(config.MConfig, config.Secrets.APIKey, store.Symbols(), logger.NewLogger(config.LogLevel, "Stream"))
		srv.StreamState = func() string { return manager.State().String() }
		source = manager
	}

	// 6. Start Server
	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Error("Server failed: %v", err)
		}
	}()

	// 7. Main Loop (Push Model)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	wrapWg := &sync.WaitGroup{}
	tradesChan := make(chan models.MTrade, 1024)

	// Start Source
	if err := source.Start(ctx, tradesChan, wrapWg); err != nil {
		appLogger.Critical("Failed to start trade source: %v", err)
		return
	}

	// Start Ingestion
	wrapWg.Add(1)
	go pipeline.Run(ctx, tradesChan, wrapWg)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	appLogger.Info("Scanner running: %d symbols watched, source=%s", store.Size(), source.Name())

	<-quit
	appLogger.Info("Shutting down...")
	cancel()        // Signal source and pipeline to stop
	wrapWg.Wait()   // Wait for source and pipeline to close
	queue.Stop()    // Cancel any pending inter-alert timer

	processed, discarded := pipeline.Counters()
	appLogger.Info("Processed %d trades (%d out of universe). Bye.", processed, discarded)
}
