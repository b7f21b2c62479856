package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	httpRouter "fx-widget/internal/adapter/http"
	"fx-widget/internal/domain/ports"
	"fx-widget/pkg/logger"
)

func newServeCmd(state *cliState) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API with periodic rate refresh",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(state)
		},
	}
}

func serve(state *cliState) error {
	cfg, log := state.cfg, state.log
	log.Info("Starting fx widget service")

	a, err := newApp(context.Background(), cfg, log, prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}
	defer a.Close()

	server := newServer(context.Background(), a, prometheus.DefaultGatherer)

	ctx, cancelRefresh := context.WithCancel(context.Background())
	defer cancelRefresh()
	go refreshRates(ctx, a.widget, cfg.ExchangeAPI.RefreshRate, log)

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		log.Error("HTTP server error", "error", err)
		return err
	}
	log.Info("Shutting down server...")

	cancelRefresh()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
		return err
	}

	log.Info("Server exited")
	return nil
}

// newServer makes stored or freshly fetched rates live, then builds the HTTP
// server. Nothing is served from the built-in defaults while a usable stored
// state exists.
func newServer(ctx context.Context, a *app, gatherer prometheus.Gatherer) *http.Server {
	report := a.widget.Init(ctx)
	a.log.Info("Startup rates ready", "decision", report.Decision, "offline", report.Offline)

	handler := httpRouter.NewHandler(a.widget, a.log)
	router := httpRouter.NewRouter(handler, a.log, a.metrics, gatherer)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:      router.SetupRoutes(),
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		IdleTimeout:  a.cfg.Server.IdleTimeout,
	}
}

// refreshRates re-applies the business-day rules on every tick. Most ticks
// reuse the stored rates.
func refreshRates(ctx context.Context, widget ports.WidgetService, interval time.Duration, log *logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			report := widget.AutoRefresh(ctx)
			if report.Notice != "" {
				log.Info("Auto refresh", "decision", report.Decision, "notice", report.Notice)
			}
		case <-ctx.Done():
			log.Info("Stopping rate refresh goroutine")
			return
		}
	}
}
