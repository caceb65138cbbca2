// Package main provides the API server entry point for the report enclave
// service.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/report-enclave/internal/api"
	"github.com/report-enclave/internal/benchmark"
	"github.com/report-enclave/internal/config"
	"github.com/report-enclave/internal/logging"
	"github.com/report-enclave/internal/metrics"
	"github.com/report-enclave/internal/service"
	"github.com/report-enclave/internal/signing"
	"github.com/report-enclave/internal/storage"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logging.InitGlobalLogger(cfg.Logging.Level, cfg.Logging.Format)
	logger := logging.GetGlobalLogger()
	logger.WithFields(map[string]interface{}{
		"level":  cfg.Logging.Level,
		"format": cfg.Logging.Format,
	}).Info("Structured logging initialized")

	logger.Info("Connecting to databases...")

	postgres, err := storage.NewPostgresDB(&cfg.Database.Postgres)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Postgres")
	}
	defer postgres.Close()

	redis, err := storage.NewRedisCache(&cfg.Database.Redis)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redis.Close()

	logger.Info("Database connections established")

	// The signing key pair is ephemeral: generated here, held in memory for
	// the life of the process, never persisted.
	signer, err := signing.NewSigner(cfg.Signing)
	if err != nil {
		logger.WithError(err).Fatal("Failed to generate signing key pair")
	}
	logger.WithField("enclaveVersion", cfg.Signing.EnclaveVersion).Info("Signing key pair generated")

	snapshotRepo := storage.NewSnapshotRepository(postgres.Pool())
	connectionRepo := storage.NewConnectionRepository(postgres.Pool())
	reportRepo := storage.NewReportRepository(postgres.Pool())

	benchmarkClient := benchmark.NewClient(cfg.Benchmark)
	engine := metrics.NewEngine(cfg.Metrics)
	cacheService := storage.NewCacheService(redis, cfg.Cache.TTL)

	reportService := service.NewReportService(
		snapshotRepo,
		connectionRepo,
		reportRepo,
		benchmarkClient,
		signer,
		engine,
	).WithCache(cacheService)

	logger.Info("Services initialized")

	serverConfig := &api.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		FreeTierRPS:     cfg.RateLimit.FreeTierRPS,
		BasicTierRPS:    cfg.RateLimit.BasicTierRPS,
		PremiumTierRPS:  cfg.RateLimit.PremiumTierRPS,
	}

	server := api.NewServer(serverConfig, reportService, postgres, redis, logger)

	go func() {
		if err := server.Start(); err != nil {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	logger.WithFields(map[string]interface{}{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	}).Info("Server started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), serverConfig.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Fatal("Server forced to shutdown")
	}

	logger.Info("Server exited")
}
