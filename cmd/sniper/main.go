package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"PriceSniper/internal/collector"
	"PriceSniper/internal/config"
	"PriceSniper/internal/logger"
	"PriceSniper/internal/notifier"
	"PriceSniper/internal/recorder"
	"PriceSniper/internal/scheduler"
	"PriceSniper/internal/server"
	"PriceSniper/internal/watch"
)

func main() {
	// .env is optional
	_ = godotenv.Load()

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Log.Level); err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.L.Info("PriceSniper starting...")
	if err := cfg.Validate(); err != nil {
		logger.L.Fatalf("config validation: %v", err)
	}

	// Init fetcher and collector
	fetcher := collector.NewAPIFetcher(cfg.API.BaseURL, cfg.API.APIKey, cfg.Proxy,
		time.Duration(cfg.API.TimeoutSeconds)*time.Second)
	logger.L.Infof("data source: %s (%s)", fetcher.Name(), cfg.API.BaseURL)
	col := collector.NewCollector(fetcher, cfg.AlertDiscount())

	// Init window selection
	wm, err := watch.NewManager(cfg.Dashboard.StateFile, cfg.DefaultWindow())
	if err != nil {
		logger.L.Fatalf("init watch manager: %v", err)
	}

	rec := openRecorder(cfg)
	defer rec.Close()

	// Init Telegram notifier
	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
	} else {
		logger.L.Info("telegram not configured, chat commands and digest disabled")
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, col, wm, tn, rec)
	if err := sched.RegisterAll(cfg.Schedule.SnapshotCron, cfg.Schedule.DigestCron); err != nil {
		logger.L.Fatalf("register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		logger.L.Info("telegram polling started")
	}

	// HTTP dashboard
	srv := server.NewServer(cfg.Server.Addr, server.NewHandler(col, wm, rec).Routes())
	go func() {
		if err := srv.Start(); err != nil {
			logger.L.Errorf("http server stopped: %v", err)
			cancel()
		}
	}()

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		logger.L.Info("RUN_ON_START enabled, executing digest now")
		go sched.RunDigestNow()
	}

	logger.L.Info("PriceSniper is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		logger.L.Info("shutdown signal received, stopping...")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.L.Warnf("http shutdown: %v", err)
	}
	cancel()
	logger.L.Info("PriceSniper stopped")
}

// openRecorder prefers Redis, then SQLite, and falls back to a no-op cache.
func openRecorder(cfg *config.Config) recorder.Recorder {
	if cfg.Cache.RedisAddr != "" {
		rr, err := recorder.NewRedisRecorder(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB, cfg.Cache.MaxReadings)
		if err == nil {
			return rr
		}
		logger.L.Warnf("init redis recorder failed, trying sqlite: %v", err)
	}
	if cfg.Cache.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Cache.SQLitePath)
		if err == nil {
			return sr
		}
		logger.L.Warnf("init sqlite recorder failed, using noop: %v", err)
	}
	return recorder.NewNoopRecorder()
}
