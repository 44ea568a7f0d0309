package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ekinotomasyon/officepanel/internal/config"
	"github.com/ekinotomasyon/officepanel/internal/server"
	"github.com/ekinotomasyon/officepanel/internal/telemetry"
)

func main() {
	cfg := config.Load()

	opts := &slog.HandlerOptions{Level: telemetry.ParseLevel(cfg.LogLevel)}
	var handler slog.Handler = slog.NewJSONHandler(os.Stdout, opts)
	if cfg.IsLocal() {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(telemetry.NewTraceHandler(handler)).With("service", "api")
	slog.SetDefault(logger)

	shutdownTelemetry, err := telemetry.Setup(context.Background(), cfg.OTELServiceName, cfg.OTELEndpoint)
	if err != nil {
		logger.Error("Failed to set up telemetry", slog.String("err", err.Error()))
		os.Exit(1)
	}

	app, err := server.NewApp(cfg, logger)
	if err != nil {
		logger.Error("Failed to create app", slog.String("err", err.Error()))
		os.Exit(1)
	}

	// Server startup
	go func() {
		logger.Info("API server starting", slog.String("addr", app.Addr()))
		if err := app.ListenAndServe(); err != nil {
			logger.Error("Server error", slog.String("err", err.Error()))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.Shutdown(ctx); err != nil {
		logger.Error("Shutdown error", slog.String("err", err.Error()))
		os.Exit(1)
	}
	if err := shutdownTelemetry(ctx); err != nil {
		logger.Warn("Telemetry shutdown error", slog.String("err", err.Error()))
	}

	logger.Info("API server exited properly")
}
