// Package config loads service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config is the full service configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Engine   EngineConfig
	LogLevel string
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
}

// DatabaseConfig configures the optional PostgreSQL history backend. When
// disabled, history stays in memory.
type DatabaseConfig struct {
	Enabled bool
	URL     string
}

// EngineConfig configures the consensus engine.
type EngineConfig struct {
	DeliberationTimeout time.Duration
	AnalyticsWindow     int
}

// Load reads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            getEnv("CONSENSUS_HOST", "0.0.0.0"),
			Port:            getEnvInt("CONSENSUS_PORT", 8085),
			ShutdownTimeout: getEnvDuration("CONSENSUS_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Enabled: getEnvBool("CONSENSUS_DB_ENABLED", false),
			URL:     getEnv("CONSENSUS_DB_URL", ""),
		},
		Engine: EngineConfig{
			DeliberationTimeout: getEnvDuration("CONSENSUS_DELIBERATION_TIMEOUT", 5*time.Minute),
			AnalyticsWindow:     getEnvInt("CONSENSUS_ANALYTICS_WINDOW", 20),
		},
		LogLevel: getEnv("CONSENSUS_LOG_LEVEL", "info"),
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
