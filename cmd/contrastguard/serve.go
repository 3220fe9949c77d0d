package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"contrastguard/internal/alerts"
	"contrastguard/internal/api"
	"contrastguard/internal/config"
	"contrastguard/internal/engine"
	"contrastguard/internal/ingest"
	"contrastguard/internal/logging"
	"contrastguard/internal/metrics"
	"contrastguard/internal/model"
	"contrastguard/internal/notify"
	"contrastguard/internal/storage"
)

func runServe(cmd *cobra.Command, args []string) error {
	var manager *config.Manager
	var err error
	if configPath != "" {
		manager, err = config.NewManager(config.ResolvePath(configPath))
		if err != nil {
			return err
		}
	} else {
		manager = config.NewStaticManager(config.DefaultConfig())
	}
	cfg := manager.Get()

	logger := logging.NewLogger(cfg.LogLevel)
	logger.Info("starting contrastguard", "version", version, "config", manager.Path())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := storage.NewStore(cfg.Storage)
	if err != nil {
		return err
	}
	if store != nil {
		initCtx, initCancel := context.WithTimeout(ctx, 10*time.Second)
		err := store.Init(initCtx)
		initCancel()
		if err != nil {
			return err
		}
		defer store.Close()
	}

	metricsStore := metrics.NewStore(cfg.Metrics.StoreLimit)
	alertsStore := alerts.NewStore(cfg.Alerting.Retention)

	var notifiers []engine.Notifier
	for _, n := range notify.FromConfig(cfg.Notify, logger) {
		notifiers = append(notifiers, n)
	}

	eng := engine.NewEngine(cfg, logger, metricsStore, alertsStore, store, notifiers...)
	if err := eng.WarmStart(ctx); err != nil {
		logger.Warn("baseline warm start failed", "err", err)
	}

	samples := make(chan model.MetricSample, cfg.Ingest.ChannelBuffer)
	eng.Start(ctx, samples)

	parser := ingest.NewParser()
	ingest.StartREST(ctx, manager, samples, logger)
	ingest.StartKafka(ctx, manager, parser, samples, logger)
	ingest.StartFileTail(ctx, manager, parser, samples, logger)

	api.Start(ctx, manager, metricsStore, alertsStore, eng, logger, version)

	stop := make(chan struct{})
	go manager.Watch(3*time.Second,
		func(next *config.Config) {
			logger.Info("config reloaded", "path", manager.Path())
			eng.UpdateConfig(next)
		},
		func(err error) {
			logger.Warn("config reload failed", "err", err)
		},
		stop,
	)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	s := <-sig
	logger.Info("shutting down", "signal", s.String())
	close(stop)
	cancel()
	return nil
}
