package common

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Catalog  CatalogConfig
	Database DatabaseConfig
	Server   ServerConfig
	Worker   WorkerConfig
	Report   ReportConfig
}

// CatalogConfig points at the static parameter catalog
type CatalogConfig struct {
	Path           string
	DetectionLimit float64
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr string
}

// WorkerConfig sizes the document queue
type WorkerConfig struct {
	Workers        int
	QueueSize      int
	ProcessTimeout time.Duration
	WatchDir       string
}

// ReportConfig controls rendered output
type ReportConfig struct {
	Dir string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Catalog: CatalogConfig{
			Path:           getEnv("LABCERT_CATALOG", ""),
			DetectionLimit: getEnvAsFloat64("LABCERT_DETECTION_LIMIT", 0),
		},
		Database: DatabaseConfig{
			DSN:             getEnv("DB_URL", ""),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Server: ServerConfig{
			GRPCAddr: getEnv("GRPC_ADDR", ":8080"),
		},
		Worker: WorkerConfig{
			Workers:        getEnvAsInt("LABCERT_WORKERS", 4),
			QueueSize:      getEnvAsInt("LABCERT_QUEUE_SIZE", 256),
			ProcessTimeout: getEnvAsDuration("LABCERT_PROCESS_TIMEOUT", time.Minute),
			WatchDir:       getEnv("LABCERT_WATCH_DIR", ""),
		},
		Report: ReportConfig{
			Dir: getEnv("LABCERT_REPORT_DIR", ""),
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

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
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

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator()
	v.Field("LABCERT_CATALOG", c.Catalog.Path, Required)
	v.Field("LABCERT_WORKERS", c.Worker.Workers, Positive)
	v.Field("LABCERT_QUEUE_SIZE", c.Worker.QueueSize, Positive)
	v.Field("LABCERT_DETECTION_LIMIT", c.Catalog.DetectionLimit, NonNegative)
	if v.HasErrors() {
		return NewAppError("CONFIG_ERROR", v.ErrorMessage(), ErrInvalidInput)
	}
	return nil
}

// ValidateServer additionally requires the daemon settings
func (c *Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Server.GRPCAddr) == "" {
		return NewAppError("CONFIG_ERROR", "GRPC_ADDR is required", ErrInvalidInput)
	}
	return nil
}
