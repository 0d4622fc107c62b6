// Package server provides the HTTP server and routing for Prism.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/prismdash/prism/internal/clientdata"
	"github.com/prismdash/prism/internal/database"
	"github.com/prismdash/prism/internal/scheduler"
)

// SystemHandlers handles system monitoring and operations endpoints
type SystemHandlers struct {
	log         zerolog.Logger
	dataDir     string
	startupTime time.Time
	db          *database.DB
	sched       *scheduler.Scheduler

	// Jobs registered for manual triggering (set after scheduler wiring in main.go)
	jobs []scheduler.Job
}

// NewSystemHandlers creates a new system handlers instance
func NewSystemHandlers(db *database.DB, sched *scheduler.Scheduler, dataDir string, log zerolog.Logger) *SystemHandlers {
	return &SystemHandlers{
		log:         log.With().Str("component", "system_handlers").Logger(),
		dataDir:     dataDir,
		startupTime: time.Now(),
		db:          db,
		sched:       sched,
	}
}

// SetJobs registers job references for manual triggering.
// Called after jobs are registered in main.go.
func (h *SystemHandlers) SetJobs(jobs ...scheduler.Job) {
	h.jobs = append(h.jobs, jobs...)
}

// RegisterRoutes registers system endpoints on the given router
func (h *SystemHandlers) RegisterRoutes(r chi.Router) {
	r.Get("/system/status", h.HandleSystemStatus)
	r.Get("/system/database/stats", h.HandleDatabaseStats)
	r.Get("/system/disk", h.HandleDiskUsage)
	r.Get("/system/jobs", h.HandleJobsStatus)
	r.Post("/system/jobs/{name}/run", h.HandleTriggerJob)
}

// CacheTableStatus reports row counts for one cache table.
type CacheTableStatus struct {
	Table string `json:"table"`
	Rows  int64  `json:"rows"`
	Fresh int64  `json:"fresh"`
}

// SystemStatusResponse is the payload for /api/system/status.
type SystemStatusResponse struct {
	Status        string             `json:"status"`
	StartedAt     string             `json:"started_at"`
	UptimeSeconds int64              `json:"uptime_seconds"`
	CPUPercent    float64            `json:"cpu_percent"`
	RAMPercent    float64            `json:"ram_percent"`
	CacheTables   []CacheTableStatus `json:"cache_tables"`
	LastChecked   string             `json:"last_checked"`
}

// HandleSystemStatus returns overall service status: uptime, host load and
// cache table occupancy.
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting system status")

	status := "healthy"
	if err := h.db.QuickCheck(r.Context()); err != nil {
		h.log.Error().Err(err).Msg("Cache database ping failed")
		status = "degraded"
	}

	cpuPct, ramPct := h.getSystemStats()

	response := SystemStatusResponse{
		Status:        status,
		StartedAt:     h.startupTime.Format(time.RFC3339),
		UptimeSeconds: int64(time.Since(h.startupTime).Seconds()),
		CPUPercent:    cpuPct,
		RAMPercent:    ramPct,
		CacheTables:   h.cacheTableCounts(),
		LastChecked:   time.Now().Format(time.RFC3339),
	}

	h.writeJSON(w, response)
}

// cacheTableCounts reports total and unexpired row counts per cache table.
// Count failures degrade to zero rows rather than failing the status call.
func (h *SystemHandlers) cacheTableCounts() []CacheTableStatus {
	now := time.Now().Unix()
	out := make([]CacheTableStatus, 0, len(clientdata.AllTables))

	for _, table := range clientdata.AllTables {
		entry := CacheTableStatus{Table: table}

		err := h.db.Conn().QueryRow(
			fmt.Sprintf("SELECT COUNT(*) FROM %s", table),
		).Scan(&entry.Rows)
		if err != nil {
			h.log.Warn().Err(err).Str("table", table).Msg("Failed to count cache rows")
		}

		err = h.db.Conn().QueryRow(
			fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE expires_at > ?", table), now,
		).Scan(&entry.Fresh)
		if err != nil {
			h.log.Warn().Err(err).Str("table", table).Msg("Failed to count fresh cache rows")
		}

		out = append(out, entry)
	}

	return out
}

// DatabaseStatsResponse is the payload for /api/system/database/stats.
type DatabaseStatsResponse struct {
	Name          string  `json:"name"`
	Path          string  `json:"path"`
	SizeMB        float64 `json:"size_mb"`
	WALSizeMB     float64 `json:"wal_size_mb"`
	PageCount     int64   `json:"page_count"`
	PageSize      int64   `json:"page_size"`
	FreelistCount int64   `json:"freelist_count"`
	LastChecked   string  `json:"last_checked"`
}

// HandleDatabaseStats returns cache database statistics
func (h *SystemHandlers) HandleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting database stats")

	stats, err := h.db.GetStats()
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to collect database stats")
		http.Error(w, "Failed to collect database stats", http.StatusInternalServerError)
		return
	}

	response := DatabaseStatsResponse{
		Name:          h.db.Name(),
		Path:          h.db.Path(),
		SizeMB:        float64(stats.SizeBytes) / 1024 / 1024,
		WALSizeMB:     float64(stats.WALSizeBytes) / 1024 / 1024,
		PageCount:     stats.PageCount,
		PageSize:      stats.PageSize,
		FreelistCount: stats.FreelistCount,
		LastChecked:   time.Now().Format(time.RFC3339),
	}

	h.writeJSON(w, response)
}

// DiskUsageResponse is the payload for /api/system/disk.
type DiskUsageResponse struct {
	DataDirMB  float64 `json:"data_dir_mb"`
	DatabaseMB float64 `json:"database_mb"`
	WALMB      float64 `json:"wal_mb"`
}

// HandleDiskUsage returns disk usage statistics for the data directory
func (h *SystemHandlers) HandleDiskUsage(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting disk usage")

	response := DiskUsageResponse{
		DataDirMB:  h.getDirSize(h.dataDir),
		DatabaseMB: h.getFileSize(h.db.Path()),
		WALMB:      h.getFileSize(h.db.Path() + "-wal"),
	}

	h.writeJSON(w, response)
}

// getDirSize calculates total size of a directory in MB
func (h *SystemHandlers) getDirSize(dirPath string) float64 {
	var totalSize int64

	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if !info.IsDir() {
			totalSize += info.Size()
		}
		return nil
	})

	if err != nil {
		h.log.Warn().Err(err).Str("dir", dirPath).Msg("Failed to calculate directory size")
		return 0
	}

	return float64(totalSize) / 1024 / 1024
}

// getFileSize returns a file's size in MB, 0 if the file does not exist
func (h *SystemHandlers) getFileSize(path string) float64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return float64(info.Size()) / 1024 / 1024
}

// getSystemStats calculates CPU and RAM usage percentages.
// Uses a short sample interval (100ms) so the status call stays responsive.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

// HandleJobsStatus returns registration and run state for every scheduled job
func (h *SystemHandlers) HandleJobsStatus(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting jobs status")

	jobs := []scheduler.JobStatus{}
	if h.sched != nil {
		jobs = h.sched.Jobs()
	}

	h.writeJSON(w, map[string]interface{}{
		"jobs":         jobs,
		"last_checked": time.Now().Format(time.RFC3339),
	})
}

// HandleTriggerJob runs a registered job immediately, outside its schedule.
// POST /api/system/jobs/{name}/run
func (h *SystemHandlers) HandleTriggerJob(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	var job scheduler.Job
	for _, j := range h.jobs {
		if j.Name() == name {
			job = j
			break
		}
	}

	if job == nil {
		http.Error(w, fmt.Sprintf("unknown job: %s", name), http.StatusNotFound)
		return
	}

	h.log.Info().Str("job", name).Msg("Manual job trigger requested")

	if err := h.sched.RunNow(job); err != nil {
		h.log.Error().Err(err).Str("job", name).Msg("Manually triggered job failed")
		h.writeJSON(w, map[string]string{
			"status": "failed",
			"job":    name,
			"error":  err.Error(),
		})
		return
	}

	h.writeJSON(w, map[string]string{
		"status": "completed",
		"job":    name,
	})
}

// writeJSON writes a JSON response with proper headers
func (h *SystemHandlers) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
