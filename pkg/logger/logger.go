// Package logger provides structured logging built on zerolog.
package logger

import (
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Config holds logger configuration
type Config struct {
	Level  string // trace, debug, info, warn, error (default: info)
	Pretty bool   // Human-readable console output instead of JSON
}

// New creates a configured root logger.
// All components derive sub-loggers from this one via log.With().
func New(cfg Config) zerolog.Logger {
	level := parseLevel(cfg.Level)

	var log zerolog.Logger
	if cfg.Pretty {
		output := zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
		log = zerolog.New(output).Level(level).With().Timestamp().Logger()
	} else {
		log = zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()
	}

	return log
}

// parseLevel maps a level string to a zerolog level, defaulting to info
func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
