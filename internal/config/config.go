package config

import (
	"fmt"
	"os"

	"invoicer/internal/logger"
	"invoicer/internal/storage"
)

type Config struct {
	// Storage Configuration
	StoreBackend string
	StorePath    string
	DatabaseDSN  string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		StoreBackend:  getEnv("STORE_BACKEND", string(storage.KindFile)),
		StorePath:     getEnv("STORE_PATH", "invoicer.json"),
		DatabaseDSN:   getEnv("DATABASE_DSN", ""),
		LogLevel:      getEnv("LOG_LEVEL", "warn"),
		LogFormat:     getEnv("LOG_FORMAT", "console"),
		LogTimeFormat: getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:     getEnv("LOG_OUTPUT", "stderr"),
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

func (c *Config) validate() error {
	kind, err := storage.ParseKind(c.StoreBackend)
	if err != nil {
		return fmt.Errorf("STORE_BACKEND: %w", err)
	}
	switch kind {
	case storage.KindFile:
		if c.StorePath == "" {
			return fmt.Errorf("STORE_PATH is required for the file backend")
		}
	case storage.KindPostgres:
		if c.DatabaseDSN == "" {
			return fmt.Errorf("DATABASE_DSN is required for the postgres backend")
		}
	case storage.KindSQLite:
		if c.DatabaseDSN == "" {
			c.DatabaseDSN = "invoicer.db"
		}
	}
	return nil
}

// GetStorageOptions returns the backend selection from the main config
func (c *Config) GetStorageOptions() storage.Options {
	kind, _ := storage.ParseKind(c.StoreBackend)
	return storage.Options{
		Kind: kind,
		Path: c.StorePath,
		DSN:  c.DatabaseDSN,
	}
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
