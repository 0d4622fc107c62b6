// Package di provides dependency injection type definitions.
//
// This package defines the Container type which holds all application
// dependencies. The Container is the single source of truth for all service
// instances and is passed to the HTTP server for access to handlers.
package di

import (
	"github.com/prismdash/prism/internal/clientdata"
	"github.com/prismdash/prism/internal/clients/account"
	"github.com/prismdash/prism/internal/clients/analytics"
	"github.com/prismdash/prism/internal/database"
	"github.com/prismdash/prism/internal/modules/accounts"
	accountshandlers "github.com/prismdash/prism/internal/modules/accounts/handlers"
	"github.com/prismdash/prism/internal/modules/charts"
	chartshandlers "github.com/prismdash/prism/internal/modules/charts/handlers"
	hoverhandlers "github.com/prismdash/prism/internal/modules/hover/handlers"
	"github.com/prismdash/prism/internal/reliability"
	"github.com/prismdash/prism/internal/scheduler"
)

// Container holds all dependencies for the application.
//
// The container is created by Wire() and passed to the HTTP server. All
// dependencies are injected via constructor injection: the cache database
// feeds the repository, the repository feeds the upstream clients, the
// clients feed the chart and account services, and the services feed both
// the HTTP handlers and the background jobs.
type Container struct {
	// Database - upstream response cache (client_data.db, cache profile)
	CacheDB *database.DB

	// Repositories - data access layer
	CacheRepo *clientdata.Repository

	// Clients - upstream API integrations with cache-first behavior
	AnalyticsClient *analytics.Client
	AccountClient   *account.Client

	// Services - business logic layer
	ChartsService   *charts.Service
	AccountsService *accounts.Service

	// Snapshot archiving - nil when S3 credentials are not configured
	S3Client         *reliability.S3Client
	SnapshotArchiver *reliability.SnapshotArchiver

	// Scheduler and background jobs
	Scheduler      *scheduler.Scheduler
	WarmCacheJob   *scheduler.WarmCacheJob
	CleanupJob     *clientdata.CleanupJob
	SnapshotJob    *reliability.SnapshotJob
	MaintenanceJob *reliability.MaintenanceJob
	VacuumJob      *reliability.VacuumJob

	// Handlers - HTTP request handlers
	ChartsHandler   *chartshandlers.Handler
	AccountsHandler *accountshandlers.Handler
	HoverHandler    *hoverhandlers.Handler
}

// Jobs returns every job that should be registered with the scheduler,
// in registration order. Jobs that are not configured (snapshots without
// S3 credentials) are omitted.
func (c *Container) Jobs() []scheduler.Job {
	jobs := []scheduler.Job{
		c.WarmCacheJob,
		c.CleanupJob,
		c.MaintenanceJob,
		c.VacuumJob,
	}
	if c.SnapshotJob != nil {
		jobs = append(jobs, c.SnapshotJob)
	}
	return jobs
}

// Close releases held resources. Safe to call once during shutdown.
func (c *Container) Close() error {
	if c.CacheDB != nil {
		return c.CacheDB.Close()
	}
	return nil
}
