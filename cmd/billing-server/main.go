package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Visionary-Future/cloud-billing/internal/config"
	"github.com/Visionary-Future/cloud-billing/internal/logger"
	"github.com/Visionary-Future/cloud-billing/internal/server"
	"github.com/Visionary-Future/cloud-billing/internal/version"
)

const (
	// DefaultShutdownTimeout is the maximum time to wait for graceful shutdown
	DefaultShutdownTimeout = 30 * time.Second
)

var configPath = flag.String("config", "", "Path to configuration file (optional)")

func main() {
	flag.Parse()

	// Load configuration first (need log level from config)
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize structured logger
	logger := logger.New(cfg.LogLevel)
	logger.Info("Cloud billing service starting",
		"version", version.Version,
		"config_path", *configPath)

	logger.Info("Configuration loaded successfully",
		"http_port", cfg.HTTPPort,
		"alibaba_page_size", cfg.Alibaba.PageSize,
		"azure_china_cloud", cfg.Azure.ChinaCloud,
		"azure_poll_interval_seconds", cfg.Azure.PollInterval,
		"kubecost_enabled", cfg.Kubecost.BaseURL != "")

	// Register runtime metrics alongside the request metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	logger.Info("Creating HTTP server", "port", cfg.HTTPPort)
	srv := server.NewServer(cfg, logger, registry)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Start()
	}()

	// Wait for interrupt signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		logger.Error("Server error", "error", err)
		os.Exit(1)

	case sig := <-shutdown:
		logger.Info("Received shutdown signal, starting graceful shutdown", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error during server shutdown", "error", err)
			os.Exit(1)
		}

		logger.Info("Server stopped gracefully")
	}
}
