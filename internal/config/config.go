// Package config reads service settings from the environment, after loading
// any .env file found next to or above the working directory.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Store backends
const (
	BackendFile      = "file"
	BackendMemory    = "memory"
	BackendCouchbase = "couchbase"
)

// Config holds every setting the binaries read
type Config struct {
	APIPort          string
	LogLevel         string
	ElasticsearchURL string
	ShutdownTimeout  time.Duration

	StoreBackend string
	DataFile     string

	Couchbase CouchbaseConfig

	EnableBusinessMetrics bool
	EnableSystemMetrics   bool
	SystemMetricsInterval time.Duration
}

// CouchbaseConfig locates the document holding the collection
type CouchbaseConfig struct {
	URL        string
	Username   string
	Password   string
	Bucket     string
	DocumentID string
}

// LoadDotEnv loads ../.env, falling back to .env. Missing files are not an error.
func LoadDotEnv() {
	err := godotenv.Load("../.env")
	if err != nil {
		log.Info().Msg("Not found .env file in parent directory, trying current directory")
		err = godotenv.Load(".env")
		if err != nil {
			log.Info().Msg("Not found .env file in current directory, assuming environment variables are set")
		}
	}
}

// FromEnv builds a Config from environment variables with defaults
func FromEnv() (*Config, error) {
	cfg := &Config{
		APIPort:          getEnvOrDefault("API_PORT", "8080"),
		LogLevel:         getEnvOrDefault("API_LOG_LEVEL", "info"),
		ElasticsearchURL: os.Getenv("ELASTICSEARCH_URL"),
		StoreBackend:     getEnvOrDefault("STORE_BACKEND", BackendFile),
		DataFile:         getEnvOrDefault("DATA_FILE", "patients.json"),
		Couchbase: CouchbaseConfig{
			URL:        getEnvOrDefault("COUCHBASE_URL", "couchbase://localhost"),
			Username:   getEnvOrDefault("COUCHBASE_USERNAME", "patients_user"),
			Password:   getEnvOrDefault("COUCHBASE_PASSWORD", "password"),
			Bucket:     getEnvOrDefault("COUCHBASE_BUCKET", "patients"),
			DocumentID: getEnvOrDefault("COUCHBASE_DOCUMENT", "patients"),
		},
	}

	var err error
	if cfg.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.SystemMetricsInterval, err = getDuration("SYSTEM_METRICS_INTERVAL", 15*time.Second); err != nil {
		return nil, err
	}
	if cfg.EnableBusinessMetrics, err = getBool("ENABLE_BUSINESS_METRICS", false); err != nil {
		return nil, err
	}
	if cfg.EnableSystemMetrics, err = getBool("ENABLE_SYSTEM_METRICS", false); err != nil {
		return nil, err
	}

	switch cfg.StoreBackend {
	case BackendFile, BackendMemory, BackendCouchbase:
	default:
		return nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}

	return cfg, nil
}

// getEnvOrDefault returns the environment variable or defaultValue when unset
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
