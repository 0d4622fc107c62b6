// Package di provides dependency injection wiring and initialization.
package di

import (
	"fmt"
	"path/filepath"

	"github.com/prismdash/prism/internal/clientdata"
	"github.com/prismdash/prism/internal/clients/account"
	"github.com/prismdash/prism/internal/clients/analytics"
	"github.com/prismdash/prism/internal/config"
	"github.com/prismdash/prism/internal/database"
	"github.com/prismdash/prism/internal/modules/accounts"
	accountshandlers "github.com/prismdash/prism/internal/modules/accounts/handlers"
	"github.com/prismdash/prism/internal/modules/charts"
	chartshandlers "github.com/prismdash/prism/internal/modules/charts/handlers"
	hoverhandlers "github.com/prismdash/prism/internal/modules/hover/handlers"
	"github.com/prismdash/prism/internal/reliability"
	"github.com/prismdash/prism/internal/scheduler"
	"github.com/rs/zerolog"
)

// Wire initializes all dependencies and returns a fully configured container
// This is the main entry point for dependency injection
// Order of operations:
// 1. Initialize the cache database
// 2. Initialize repositories and upstream clients
// 3. Initialize services
// 4. Initialize the scheduler and jobs
// 5. Initialize HTTP handlers
// Snapshot archiving is optional and only wired when S3 credentials are set.
func Wire(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	// Step 1: Initialize the cache database
	db, err := database.New(database.Config{
		Path:    filepath.Join(cfg.DataDir, "client_data.db"),
		Profile: database.ProfileCache,
		Name:    "client_data",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache database: %w", err)
	}
	if err := clientdata.InitSchema(db.Conn()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}

	// Step 2: Initialize repositories and upstream clients
	cacheRepo := clientdata.NewRepository(db.Conn())
	analyticsClient := analytics.NewClient(cfg.AnalyticsAPIURL, cacheRepo, log)
	accountClient := account.NewClient(cfg.AccountAPIURL, cacheRepo, log)

	// Step 3: Initialize services
	dims := charts.Dimensions{
		Width:   cfg.ChartWidth,
		Height:  cfg.ChartHeight,
		Padding: cfg.ChartPadding,
	}
	chartsService := charts.NewService(analyticsClient, dims, log)
	accountsService := accounts.NewService(accountClient, log)

	// Step 4: Initialize the scheduler and jobs
	sched := scheduler.New(log)
	warmCacheJob := scheduler.NewWarmCacheJob(analyticsClient, accountClient, nil, log)
	cleanupJob := clientdata.NewCleanupJob(cacheRepo, log)
	maintenanceJob := reliability.NewMaintenanceJob(db, cfg.DataDir, log)
	vacuumJob := reliability.NewVacuumJob(db, log)

	// Snapshot archiving is opt-in: without complete S3 credentials the
	// dashboard runs fine, it just keeps no off-site PNG history.
	var (
		s3Client    *reliability.S3Client
		archiver    *reliability.SnapshotArchiver
		snapshotJob *reliability.SnapshotJob
	)
	s3cfg := reliability.S3Config{
		Endpoint:        cfg.S3Endpoint,
		Bucket:          cfg.S3Bucket,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
	}
	if s3cfg.Complete() {
		s3Client, err = reliability.NewS3Client(s3cfg, log)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize S3 client: %w", err)
		}
		archiver = reliability.NewSnapshotArchiver(s3Client, chartsService, accountClient, log)
		snapshotJob = reliability.NewSnapshotJob(archiver, cfg.SnapshotRetentionDays, log)
	} else {
		log.Info().Msg("S3 credentials not configured, snapshot archiving disabled")
	}

	// Step 5: Initialize HTTP handlers
	chartsHandler := chartshandlers.NewHandler(chartsService, log)
	accountsHandler := accountshandlers.NewHandler(accountsService, log)
	hoverHandler := hoverhandlers.NewHandler(chartsService, dims, cfg.HoverFrameInterval(), log)

	log.Info().Msg("Dependency injection wiring completed successfully")

	return &Container{
		CacheDB:          db,
		CacheRepo:        cacheRepo,
		AnalyticsClient:  analyticsClient,
		AccountClient:    accountClient,
		ChartsService:    chartsService,
		AccountsService:  accountsService,
		S3Client:         s3Client,
		SnapshotArchiver: archiver,
		Scheduler:        sched,
		WarmCacheJob:     warmCacheJob,
		CleanupJob:       cleanupJob,
		SnapshotJob:      snapshotJob,
		MaintenanceJob:   maintenanceJob,
		VacuumJob:        vacuumJob,
		ChartsHandler:    chartsHandler,
		AccountsHandler:  accountsHandler,
		HoverHandler:     hoverHandler,
	}, nil
}
