// Package main is the entry point for the Prism chart-data service.
// Prism sits between the dashboard frontend and the upstream analytics and
// account APIs: it fetches raw series, caches the responses, and serves
// render-ready chart geometry, hover resolution, and account data.
//
// The application follows clean architecture principles:
// - Domain layer is pure (no infrastructure dependencies)
// - Dependency injection via DI container
// - Repository pattern for data access
// - Service layer for business logic
// - HTTP handlers for API endpoints
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prismdash/prism/internal/config"
	"github.com/prismdash/prism/internal/di"
	"github.com/prismdash/prism/internal/server"
	"github.com/prismdash/prism/pkg/logger"
)

// weeklyVacuumSchedule runs Sunday 04:00, after the nightly maintenance
// window. Not configurable: VACUUM frequency has no tuning value here.
const weeklyVacuumSchedule = "0 0 4 * * 0"

// main orchestrates the startup sequence:
// 1. Loads configuration from environment variables
// 2. Initializes logging
// 3. Wires all dependencies via the DI container (cache DB, clients, services)
// 4. Registers background jobs with the scheduler
// 5. Starts the HTTP server
// 6. Waits for a shutdown signal and performs graceful shutdown
func main() {
	// Load configuration first to get log level
	cfg, err := config.Load()
	if err != nil {
		// Use fallback logger if config fails
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize logger with config level
	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
	})

	log.Info().Msg("Starting Prism")

	// Wire all dependencies using DI container
	// This initializes the cache database, repositories, upstream clients,
	// services, jobs, and HTTP handlers via constructor injection.
	container, err := di.Wire(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}

	// Close the cache database on exit so WAL checkpoints are written.
	defer container.Close()

	// Register background jobs with their configured cron schedules.
	// The snapshot job is only present when S3 credentials are configured.
	jobSchedules := map[string]string{
		container.WarmCacheJob.Name():   cfg.WarmSchedule,
		container.CleanupJob.Name():     cfg.CleanupSchedule,
		container.MaintenanceJob.Name(): cfg.MaintenanceSchedule,
		container.VacuumJob.Name():      weeklyVacuumSchedule,
	}
	if container.SnapshotJob != nil {
		jobSchedules[container.SnapshotJob.Name()] = cfg.SnapshotSchedule
	}
	for _, job := range container.Jobs() {
		if err := container.Scheduler.AddJob(jobSchedules[job.Name()], job); err != nil {
			log.Fatal().Err(err).Str("job", job.Name()).Msg("Failed to register job")
		}
	}

	// Initialize HTTP server
	// The server exposes chart, hover, account, and system endpoints plus the
	// embedded frontend bundle.
	srv := server.New(server.Config{
		Port:      cfg.Port,
		Log:       log,
		DB:        container.CacheDB,
		Config:    cfg,
		DevMode:   cfg.DevMode,
		Container: container,
	})

	// Expose registered jobs for manual triggering via /api/system/jobs
	srv.SetJobs(container.Jobs()...)

	// Start the scheduler after all jobs are registered
	container.Scheduler.Start()

	// Start server in goroutine
	go func() {
		if err := srv.Start(); err != nil {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	// Stop the scheduler first so no new jobs start during shutdown.
	// Stop blocks until running jobs have drained.
	container.Scheduler.Stop()
	log.Info().Msg("Scheduler stopped")

	// Graceful shutdown
	// The HTTP server is given up to 10 seconds to finish in-flight requests.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
