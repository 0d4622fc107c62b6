package reliability

import (
	"context"
	"fmt"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/prismdash/prism/internal/database"
	"github.com/prismdash/prism/internal/scheduler/base"
)

// AvailableDiskSpace reports free gigabytes on the filesystem holding
// the given path.
func AvailableDiskSpace(path string) (float64, error) {
	stat := syscall.Statfs_t{}
	if err := syscall.Statfs(path, &stat); err != nil {
		return 0, fmt.Errorf("failed to stat filesystem: %w", err)
	}

	availableBytes := stat.Bavail * uint64(stat.Bsize)
	return float64(availableBytes) / 1e9, nil
}

// MaintenanceJob performs daily upkeep on the client data database:
// integrity check, WAL checkpoint and disk space monitoring.
type MaintenanceJob struct {
	base.JobBase
	db      *database.DB
	dataDir string
	log     zerolog.Logger
}

// NewMaintenanceJob creates a new daily maintenance job
func NewMaintenanceJob(db *database.DB, dataDir string, log zerolog.Logger) *MaintenanceJob {
	return &MaintenanceJob{
		db:      db,
		dataDir: dataDir,
		log:     log.With().Str("job", "daily_maintenance").Logger(),
	}
}

// Name returns the job name for scheduler
func (j *MaintenanceJob) Name() string {
	return "daily_maintenance"
}

// Run executes the daily maintenance job
func (j *MaintenanceJob) Run() error {
	j.log.Info().Msg("Starting daily maintenance")
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// A corrupt cache database can be rebuilt from the upstream APIs,
	// but it must not go unnoticed
	if err := j.db.HealthCheck(ctx); err != nil {
		j.log.Error().Err(err).Msg("Database integrity check failed")
		return fmt.Errorf("integrity check failed: %w", err)
	}

	// WAL checkpoint to prevent bloat
	if err := j.db.WALCheckpoint("TRUNCATE"); err != nil {
		j.log.Warn().Err(err).Msg("WAL checkpoint failed")
		// Don't return error - this is not critical
	}

	if err := j.checkDiskSpace(); err != nil {
		return err // HALT if critical
	}

	j.logDatabaseStats()

	j.log.Info().
		Dur("duration_ms", time.Since(startTime)).
		Msg("Daily maintenance completed successfully")

	return nil
}

// checkDiskSpace verifies sufficient disk space is available
func (j *MaintenanceJob) checkDiskSpace() error {
	availableGB, err := AvailableDiskSpace(j.dataDir)
	if err != nil {
		return err
	}

	j.log.Debug().Float64("available_gb", availableGB).Msg("Disk space check")

	// CRITICAL: Less than 500MB
	if availableGB < 0.5 {
		j.log.Error().
			Float64("available_gb", availableGB).
			Msg("CRITICAL: Insufficient disk space")
		return fmt.Errorf("CRITICAL: Only %.2f GB free", availableGB)
	}

	// ERROR: Less than 5GB
	if availableGB < 5.0 {
		j.log.Error().
			Float64("available_gb", availableGB).
			Msg("Low disk space - consider cleanup")
	}

	// WARNING: Less than 10GB
	if availableGB < 10.0 {
		j.log.Warn().
			Float64("available_gb", availableGB).
			Msg("Disk space running low")
	}

	return nil
}

// logDatabaseStats records current database size metrics
func (j *MaintenanceJob) logDatabaseStats() {
	stats, err := j.db.GetStats()
	if err != nil {
		j.log.Warn().Err(err).Msg("Failed to get database stats")
		return
	}

	j.log.Info().
		Float64("size_mb", float64(stats.SizeBytes)/1024/1024).
		Float64("wal_size_mb", float64(stats.WALSizeBytes)/1024/1024).
		Int64("freelist_pages", stats.FreelistCount).
		Msg("Database metrics")
}

// VacuumJob reclaims space from the client data database. Cache rows
// churn on every TTL expiry, so weekly is worth it.
type VacuumJob struct {
	base.JobBase
	db  *database.DB
	log zerolog.Logger
}

// NewVacuumJob creates a new weekly vacuum job
func NewVacuumJob(db *database.DB, log zerolog.Logger) *VacuumJob {
	return &VacuumJob{
		db:  db,
		log: log.With().Str("job", "weekly_vacuum").Logger(),
	}
}

// Name returns the job name for scheduler
func (j *VacuumJob) Name() string {
	return "weekly_vacuum"
}

// Run executes VACUUM and reports reclaimed space
func (j *VacuumJob) Run() error {
	before, err := j.db.GetStats()
	if err != nil {
		return fmt.Errorf("failed to get stats before vacuum: %w", err)
	}
	sizeBefore := float64(before.PageCount*before.PageSize) / 1024 / 1024

	if err := j.db.Vacuum(); err != nil {
		return fmt.Errorf("VACUUM failed: %w", err)
	}

	after, err := j.db.GetStats()
	if err != nil {
		return fmt.Errorf("failed to get stats after vacuum: %w", err)
	}
	sizeAfter := float64(after.PageCount*after.PageSize) / 1024 / 1024

	j.log.Info().
		Float64("size_before_mb", sizeBefore).
		Float64("size_after_mb", sizeAfter).
		Float64("space_reclaimed_mb", sizeBefore-sizeAfter).
		Msg("VACUUM completed")

	return nil
}
