package main

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/prometheus/client_golang/prometheus"

	"fx-widget/internal/adapter/repository"
	"fx-widget/internal/adapter/store"
	"fx-widget/internal/config"
	"fx-widget/internal/domain/model"
	"fx-widget/internal/domain/ports"
	"fx-widget/internal/metrics"
	"fx-widget/internal/service"
	"fx-widget/pkg/logger"
)

// app holds the wired components shared by every subcommand.
type app struct {
	cfg     *config.Config
	log     *logger.Logger
	kv      ports.KeyValueStore
	metrics *metrics.Metrics
	widget  *service.WidgetService
}

func newApp(ctx context.Context, cfg *config.Config, log *logger.Logger, reg prometheus.Registerer) (*app, error) {
	kv, err := store.Open(ctx, cfg.Store, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Store.Backend, err)
	}

	appMetrics := metrics.NewMetrics(reg)
	rateStore := store.NewRateStore(kv, log)

	fetcher := repository.NewExchangeAPI(
		cfg.ExchangeAPI.URL,
		cfg.ExchangeAPI.Timeout,
		cfg.ExchangeAPI.MaxRetries,
		log,
	)

	trend := service.NewTrendEstimator(nil, cfg.Trend.Spread, cfg.Trend.HistorySpread)

	widget := service.NewWidgetService(
		fetcher,
		rateStore,
		trend,
		clock.New(),
		log,
		appMetrics,
		service.Options{
			DefaultBase:  model.Currency(cfg.Widget.DefaultBase),
			HistoryDays:  cfg.Trend.HistoryDays,
			FetchTimeout: cfg.ExchangeAPI.Timeout * time.Duration(cfg.ExchangeAPI.MaxRetries+2),
		},
	)

	return &app{
		cfg:     cfg,
		log:     log,
		kv:      kv,
		metrics: appMetrics,
		widget:  widget,
	}, nil
}

func (a *app) Close() {
	if err := a.kv.Close(); err != nil {
		a.log.Error("Failed to close store", "error", err)
	}
	_ = a.log.Sync()
}
