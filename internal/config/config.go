// Package config provides configuration management functionality.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	DataDir         string // Base directory for the cache database and scratch files (always absolute)
	AnalyticsAPIURL string // Upstream analytics service (portfolio history, allocation, metrics)
	AccountAPIURL   string // Upstream account service (account list)
	LogLevel        string
	LogPretty       bool
	Port            int
	DevMode         bool

	// Chart rendering defaults, overridable per request via query params
	ChartWidth   float64
	ChartHeight  float64
	ChartPadding float64

	// HoverFrameMS is the hover frame coalescing interval in milliseconds
	HoverFrameMS int

	// Cron schedules for background jobs
	WarmSchedule        string
	CleanupSchedule     string
	SnapshotSchedule    string
	MaintenanceSchedule string

	// S3-compatible object storage for PNG snapshots (optional; snapshots
	// are disabled when credentials are incomplete)
	S3Endpoint            string
	S3Bucket              string
	S3AccessKeyID         string
	S3SecretAccessKey     string
	SnapshotRetentionDays int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	// Determine data directory with fallback logic
	// 1. Check DATA_DIR environment variable
	// 2. If not set, default to ./data
	// 3. Always resolve to absolute path
	// 4. Ensure directory exists
	dataDir := getEnv("DATA_DIR", "")
	if dataDir == "" {
		dataDir = "./data"
	}

	// Always resolve to absolute path
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve data directory path: %w", err)
	}

	// Ensure directory exists
	if err := os.MkdirAll(absDataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	cfg := &Config{
		DataDir:         absDataDir,
		Port:            getEnvAsInt("PORT", 8080),
		DevMode:         getEnvAsBool("DEV_MODE", false),
		AnalyticsAPIURL: getEnv("ANALYTICS_API_URL", "http://localhost:8000"),
		AccountAPIURL:   getEnv("ACCOUNT_API_URL", "http://localhost:8000"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogPretty:       getEnvAsBool("LOG_PRETTY", false),

		ChartWidth:   getEnvAsFloat("CHART_WIDTH", 800),
		ChartHeight:  getEnvAsFloat("CHART_HEIGHT", 300),
		ChartPadding: getEnvAsFloat("CHART_PADDING", 20),

		// 16ms approximates the original 60fps frame boundary
		HoverFrameMS: getEnvAsInt("HOVER_FRAME_MS", 16),

		// Six-field cron expressions (scheduler runs with seconds precision)
		WarmSchedule:        getEnv("WARM_SCHEDULE", "0 */15 * * * *"),
		CleanupSchedule:     getEnv("CLEANUP_SCHEDULE", "0 0 * * * *"),
		SnapshotSchedule:    getEnv("SNAPSHOT_SCHEDULE", "0 0 6 * * *"),
		MaintenanceSchedule: getEnv("MAINTENANCE_SCHEDULE", "0 30 3 * * *"),

		S3Endpoint:            getEnv("S3_ENDPOINT", ""),
		S3Bucket:              getEnv("S3_BUCKET", ""),
		S3AccessKeyID:         getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretAccessKey:     getEnv("S3_SECRET_ACCESS_KEY", ""),
		SnapshotRetentionDays: getEnvAsInt("SNAPSHOT_RETENTION_DAYS", 30),
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// HoverFrameInterval converts the configured frame interval to a duration
func (c *Config) HoverFrameInterval() time.Duration {
	return time.Duration(c.HoverFrameMS) * time.Millisecond
}

// Validate checks if required configuration is present
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}

	if c.ChartWidth <= 0 || c.ChartHeight <= 0 {
		return fmt.Errorf("chart dimensions must be positive (width=%v, height=%v)", c.ChartWidth, c.ChartHeight)
	}
	if c.ChartPadding < 0 || c.ChartPadding*2 >= c.ChartHeight {
		return fmt.Errorf("chart padding %v does not fit height %v", c.ChartPadding, c.ChartHeight)
	}

	if c.HoverFrameMS <= 0 {
		return fmt.Errorf("hover frame interval must be positive, got %dms", c.HoverFrameMS)
	}

	if c.SnapshotRetentionDays < 0 {
		return fmt.Errorf("snapshot retention days cannot be negative, got %d", c.SnapshotRetentionDays)
	}

	// S3 credentials are optional as a group, but partial configuration is
	// almost certainly a mistake.
	s3Fields := []string{c.S3Endpoint, c.S3Bucket, c.S3AccessKeyID, c.S3SecretAccessKey}
	set := 0
	for _, f := range s3Fields {
		if f != "" {
			set++
		}
	}
	if set > 0 && set < len(s3Fields) {
		return fmt.Errorf("incomplete S3 configuration: endpoint, bucket, access key and secret must all be set")
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
