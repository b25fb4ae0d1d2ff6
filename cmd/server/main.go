package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"SignalReplay/internal/api"
	"SignalReplay/internal/backtest"
	"SignalReplay/internal/collector"
	"SignalReplay/internal/config"
	"SignalReplay/internal/metrics"
	"SignalReplay/internal/notifier"
	"SignalReplay/internal/recorder"
	"SignalReplay/internal/runner"
	"SignalReplay/internal/scheduler"
	"SignalReplay/internal/strategy"
	"SignalReplay/internal/util"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		bootLog := util.NewLogger("info")
		bootLog.Fatal().Err(err).Msg("load config")
	}
	log := util.NewLogger(cfg.Log.Level)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	log.Info().Strs("symbols", cfg.Backtest.Symbols).Msg("SignalReplay starting")

	// Init fetcher
	fetcher, err := collector.NewFetcher(cfg.DataSource.Provider, cfg.DataSource.BaseURL,
		cfg.DataSource.APIKey, cfg.DataSource.CSVDir, cfg.Proxy)
	if err != nil {
		log.Fatal().Err(err).Msg("init fetcher")
	}
	log.Info().Str("provider", fetcher.Name()).Msg("data source ready")

	source, err := strategy.NewSource(cfg.Signal)
	if err != nil {
		log.Fatal().Err(err).Msg("init signal source")
	}
	sim, err := backtest.NewSimulator(cfg.Backtest.Config, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init simulator")
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
		if err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	run := &runner.Runner{
		Collector:    collector.NewCollector(fetcher, log),
		Source:       source,
		Simulator:    sim,
		Recorder:     rec,
		LookbackDays: cfg.Backtest.LookbackDays,
		Concurrency:  cfg.Backtest.Concurrency,
		Log:          log,
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, log)

	sched := scheduler.NewScheduler(ctx, run, tn, rec, cfg.Backtest.Symbols, log)
	sched.ResultsDir = cfg.ResultsDir
	if err := sched.Register(cfg.Schedule.BacktestCron); err != nil {
		log.Fatal().Err(err).Msg("register cron tasks")
	}
	sched.Start()
	defer sched.Stop()

	if tn.Enabled() {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")
	}

	metricsSrv := metrics.Serve(cfg.Metrics.Addr)
	log.Info().Str("addr", cfg.Metrics.Addr).Msg("metrics listening")

	gin.SetMode(gin.ReleaseMode)
	apiSrv := &http.Server{
		Addr:              cfg.API.Addr,
		Handler:           api.NewRouter(run, rec, log),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("api server")
		}
	}()
	log.Info().Str("addr", cfg.API.Addr).Msg("api listening")

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, executing backtests now")
		go sched.RunNow()
	}

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping...")
	cancel()
	shutdownCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()
	if err := apiSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("api shutdown")
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("metrics shutdown")
	}
	log.Info().Msg("SignalReplay stopped")
}
