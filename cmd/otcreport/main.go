package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/linrh-dut/otc-report/internal/application/service"
	"github.com/linrh-dut/otc-report/internal/infrastructure/config"
	"github.com/linrh-dut/otc-report/internal/infrastructure/logger"
	"github.com/linrh-dut/otc-report/internal/infrastructure/svc"
	"github.com/linrh-dut/otc-report/internal/interfaces/rest"
)

func main() {
	logger.Setup()

	configPath := flag.String("config", "configs/config.toml", "path to config.toml")
	date := flag.String("date", "", "collect a single date (yyyymmdd) instead of today")
	once := flag.Bool("once", false, "run one collection pass and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("config", *configPath).Msg("load config failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sc, err := svc.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("service init failed")
	}
	defer func() { _ = sc.Close() }()

	if closeLog, err := logger.SetupWithFile(cfg.App.LogDir, sc.Location); err != nil {
		log.Warn().Err(err).Str("dir", cfg.App.LogDir).Msg("file logging unavailable, console only")
	} else if closeLog != nil {
		defer func() { _ = closeLog.Close() }()
	}

	// 单次补采模式：采完即退，不拉起 HTTP 服务
	if *once || *date != "" {
		if err := sc.Collector.Run(ctx, *date); err != nil {
			log.Error().Err(err).Str("date", *date).Msg("collection failed")
			_ = sc.Close()
			os.Exit(1)
		}
		log.Info().Str("date", *date).Msg("collection done")
		return
	}

	scheduler := service.NewScheduler(sc.Collector, time.Duration(cfg.Collect.IntervalMin)*time.Minute)
	go scheduler.Run(ctx)

	handler := rest.NewHandler(sc.Queries, sc.Corrections, sc.Cache, sc.Location)
	server := rest.NewServer(cfg.HTTP.Addr, handler)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	log.Info().
		Str("config", *configPath).
		Str("addr", cfg.HTTP.Addr).
		Int("interval_min", cfg.Collect.IntervalMin).
		Str("storage", cfg.Storage.Driver).
		Msg("otcreport started")

	if err := server.ListenAndServe(); err != nil {
		log.Error().Err(err).Msg("http server exited")
	}
}
