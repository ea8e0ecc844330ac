package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/soltixdb/probacast/internal/config"
	"github.com/soltixdb/probacast/internal/jobs"
	"github.com/soltixdb/probacast/internal/logging"
	"github.com/soltixdb/probacast/internal/router"
	"github.com/soltixdb/probacast/internal/services"
)

var (
	Version   = "dev"     // Injected via ldflags during build
	GitCommit = "unknown" // Injected via ldflags during build
	BuildTime = "unknown" // Injected via ldflags during build
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.NewFromConfig(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	logging.SetGlobal(logger)
	logger.Info("Forecaster service starting...",
		"version", Version, "commit", GitCommit, "build time", BuildTime)

	if cfg.Sampling.Seed != 0 {
		logger.Info("Sampling with a fixed seed", "seed", cfg.Sampling.Seed)
	}

	// Optional asynchronous jobs
	var worker *services.ForecastWorker
	if cfg.Jobs.Enabled {
		logger.Info("Connecting to job broker", "backend", cfg.Jobs.Backend, "url", cfg.Jobs.URL)
		broker, err := jobs.NewBroker(cfg.Jobs.BrokerOptions())
		if err != nil {
			logger.Fatal("Failed to connect to job broker", "error", err)
		}
		defer func() { _ = broker.Close() }()

		svc := services.NewForecastService(logger, cfg.Forecast, cfg.Sampling)
		worker = services.NewForecastWorker(logger, broker, svc, cfg.Jobs.RequestSubject, cfg.Jobs.ResultSubject)
		if err := worker.Start(); err != nil {
			logger.Fatal("Failed to start forecast worker", "error", err)
		}
	}

	if cfg.Auth.Enabled {
		logger.Info("API key authentication enabled", "num_keys", len(cfg.Auth.APIKeys))
	} else {
		logger.Warn("API key authentication DISABLED - all requests will be allowed")
	}

	app := router.New(logger, *cfg, worker)

	go func() {
		addr := cfg.Server.Address()
		logger.Info("Server listening", "address", addr)
		if err := app.Listen(addr); err != nil {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	if worker != nil {
		if err := worker.Stop(); err != nil {
			logger.Warn("Failed to stop forecast worker", "error", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}
