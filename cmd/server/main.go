package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/rlanders/weatherview/internal/client"
	"github.com/rlanders/weatherview/internal/config"
	"github.com/rlanders/weatherview/internal/lifecycle"
	"github.com/rlanders/weatherview/internal/observability"
	"github.com/rlanders/weatherview/internal/persist"
	"github.com/rlanders/weatherview/internal/service"
	"github.com/rlanders/weatherview/internal/web"
)

func main() {
	logger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config", zap.Error(err))
	}

	weatherClient, err := client.NewWeatherAPIClient(
		cfg.WeatherAPIKey,
		cfg.WeatherAPIURL,
		cfg.WeatherAPITimeout,
	)
	if err != nil {
		logger.Fatal("weather client", zap.Error(err))
	}

	writer := persist.NewInfluxWriter(cfg.Influx, logger)
	if writer.Enabled() {
		logger.Info("time-series persistence enabled",
			zap.String("url", cfg.Influx.URL),
			zap.String("org", cfg.Influx.Org),
			zap.String("bucket", cfg.Influx.Bucket))
	} else {
		logger.Info("time-series persistence disabled (no InfluxDB configuration)")
	}

	dispatcher := service.NewDispatcher(weatherClient, writer)

	renderer, err := web.NewRenderer()
	if err != nil {
		logger.Fatal("templates", zap.Error(err))
	}
	sessions := web.NewSessionManager(cfg.SessionSecret)
	handler := web.NewHandler(dispatcher, sessions, renderer, writer, logger, cfg.LocationMaxLength)
	router := web.NewRouter(handler, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("addr", ":"+cfg.ServerPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	<-ctx.Done()
	stop()

	logger.Info("graceful shutdown triggered")
	lifecycle.SetDraining(true)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}

	inFlight := web.InFlightCount()
	logger.Info("waiting for in-flight requests", zap.Int64("count", inFlight))
	waitCtx, waitCancel := context.WithTimeout(context.Background(), cfg.ShutdownInFlightTimeout)
	defer waitCancel()
	if err := web.WaitForInFlight(waitCtx, cfg.ShutdownInFlightCheckInterval); err != nil {
		logger.Warn("in-flight requests not completed", zap.Error(err), zap.Int64("remaining", web.InFlightCount()))
	}

	if err := observability.FlushTelemetry(context.Background(), logger); err != nil {
		logger.Error("telemetry flush", zap.Error(err))
	}

	writer.Close()
	logger.Info("shutdown complete")
}
