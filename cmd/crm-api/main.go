package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/edvin/crm/internal/api"
	"github.com/edvin/crm/internal/config"
	"github.com/edvin/crm/internal/core"
	"github.com/edvin/crm/internal/db"
	"github.com/edvin/crm/internal/logging"
	"github.com/edvin/crm/internal/metrics"
	"github.com/edvin/crm/internal/storage"
)

const storageScanInterval = 6 * time.Hour

func main() {
	migrateFlag := flag.Bool("migrate", false, "Run database migrations before starting")
	migrateDirFlag := flag.String("migrate-dir", "migrations", "Migration files directory")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate("crm-api"); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)

	if *migrateFlag {
		logger.Info().Str("dir", *migrateDirFlag).Msg("running database migrations")
		if err := db.RunMigrations(cfg.DatabaseURL, *migrateDirFlag); err != nil {
			logger.Fatal().Err(err).Msg("migration failed")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	metrics.RegisterPgxPoolMetrics(pool)

	srv := api.NewServer(logger, pool, cfg)
	defer srv.Close()

	httpServer := &http.Server{
		Addr:         cfg.HTTPListenAddr,
		Handler:      srv,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTPListenAddr).Msg("starting CRM API server")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	metricsServer := metrics.NewServer(cfg.MetricsListenAddr)
	go func() {
		logger.Info().Str("addr", cfg.MetricsListenAddr).Msg("starting metrics server")
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("metrics server failed")
		}
	}()

	if cfg.StorageS3Endpoint != "" {
		tenants := core.NewTenantService(pool)
		usage := core.NewUsageService(pool, logger)
		defer usage.Close()
		scanner := storage.NewScanner(logger, cfg.StorageS3Endpoint, cfg.StorageS3Bucket,
			cfg.StorageS3AccessKey, cfg.StorageS3SecretKey, usage)
		go runStorageScans(ctx, logger, tenants, scanner)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	metricsServer.Shutdown(shutdownCtx)
}

// runStorageScans periodically measures each tenant's object storage and
// records it as usage. The first scan runs at startup.
func runStorageScans(ctx context.Context, logger zerolog.Logger, tenants *core.TenantService, scanner *storage.Scanner) {
	ticker := time.NewTicker(storageScanInterval)
	defer ticker.Stop()

	for {
		ids, err := tenants.ActiveIDs(ctx)
		if err != nil {
			logger.Error().Err(err).Msg("failed to list tenants for storage scan")
		} else if err := scanner.ScanAll(ctx, ids); err != nil {
			logger.Error().Err(err).Msg("storage scan failed")
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
