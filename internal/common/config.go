package common

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Extraction ExtractionConfig
	Analysis   AnalysisConfig
	Charts     ChartConfig
	RunLog     RunLogConfig
	Log        LogConfig
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string
}

// SlogLevel maps the configured level name to a slog level, defaulting to
// info for unknown values.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ExtractionConfig holds batch extraction behavior
type ExtractionConfig struct {
	Workers    int
	DocTimeout time.Duration
}

// AnalysisConfig holds aggregation and anomaly detection settings
type AnalysisConfig struct {
	AnomalyThreshold float64
	TopVendors       int
}

// ChartConfig holds chart rendering dimensions
type ChartConfig struct {
	Width  int
	Height int
}

// RunLogConfig holds the batch run journal settings
type RunLogConfig struct {
	// Path to the SQLite run journal; "" lets the CLI place it next to
	// the batch output. Disabled turns the journal off entirely.
	Path     string
	Disabled bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Extraction: ExtractionConfig{
			Workers:    getEnvAsInt("PDX_WORKERS", 4),
			DocTimeout: getEnvAsDuration("PDX_DOC_TIMEOUT", 30*time.Second),
		},
		Analysis: AnalysisConfig{
			AnomalyThreshold: getEnvAsFloat64("PDX_ANOMALY_THRESHOLD", 2.0),
			TopVendors:       getEnvAsInt("PDX_TOP_VENDORS", 3),
		},
		Charts: ChartConfig{
			Width:  getEnvAsInt("PDX_CHART_WIDTH", 1024),
			Height: getEnvAsInt("PDX_CHART_HEIGHT", 512),
		},
		RunLog: RunLogConfig{
			Path:     getEnv("PDX_RUNLOG_PATH", ""),
			Disabled: getEnvAsBool("PDX_RUNLOG_DISABLED", false),
		},
		Log: LogConfig{
			Level: getEnv("PDX_LOG_LEVEL", "info"),
		},
	}
}

// Helper functions for environment variable parsing
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

func getEnvAsFloat64(key string, defaultValue float64) float64 {
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

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// ValidateConfig validates the loaded configuration
func (c *Config) Validate() error {
	if c.Extraction.Workers < 1 {
		return NewAppError("CONFIG_ERROR", "PDX_WORKERS must be at least 1", ErrInvalidInput)
	}
	if c.Extraction.DocTimeout <= 0 {
		return NewAppError("CONFIG_ERROR", "PDX_DOC_TIMEOUT must be positive", ErrInvalidInput)
	}
	if c.Analysis.AnomalyThreshold <= 0 {
		return NewAppError("CONFIG_ERROR", "PDX_ANOMALY_THRESHOLD must be positive", ErrInvalidInput)
	}
	if c.Charts.Width < 1 || c.Charts.Height < 1 {
		return NewAppError("CONFIG_ERROR", "chart dimensions must be positive", ErrInvalidInput)
	}
	return nil
}
