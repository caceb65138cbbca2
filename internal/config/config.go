// Package config provides configuration management for the report enclave
// service. It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	Benchmark BenchmarkConfig
	Signing   SigningConfig
	Metrics   MetricsConfig
	RateLimit RateLimitConfig
	Logging   LoggingConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host string
	Port string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Postgres PostgresConfig
	Redis    RedisConfig
}

// PostgresConfig holds Postgres configuration
type PostgresConfig struct {
	Host           string
	Port           string
	Database       string
	User           string
	Password       string
	MaxConnections int
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host           string
	Port           string
	Password       string
	DB             int
	MaxConnections int
}

// CacheConfig holds report cache configuration
type CacheConfig struct {
	TTL time.Duration
}

// BenchmarkConfig holds benchmark data source configuration
type BenchmarkConfig struct {
	BaseURL string
	Timeout time.Duration
}

// SigningConfig holds signing service configuration. The attestation fields
// are opaque strings handed to the process by the enclave runtime; the
// service only embeds them in signed reports.
type SigningConfig struct {
	EnclaveVersion string
	AttestationID  string
	Measurement    string
}

// MetricsConfig holds the metric engine constants.
// AnnualizationFactor is the number of daily observations treated as one
// year; RiskFreeRatePct is in percent units.
type MetricsConfig struct {
	AnnualizationFactor float64
	RiskFreeRatePct     float64
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	FreeTierRPS    int
	BasicTierRPS   int
	PremiumTierRPS int
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// LoadConfig loads configuration from .env file and environment variables
func LoadConfig() (*Config, error) {
	// Load .env file (optional in production)
	if err := godotenv.Load(); err != nil {
		// .env file is optional - environment variables can be set directly
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	config := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8080"),
		},
		Database: DatabaseConfig{
			Postgres: PostgresConfig{
				Host:           getEnv("POSTGRES_HOST", "localhost"),
				Port:           getEnv("POSTGRES_PORT", "5432"),
				Database:       getEnv("POSTGRES_DB", "report_enclave"),
				User:           getEnv("POSTGRES_USER", "enclave"),
				Password:       getEnv("POSTGRES_PASSWORD", ""),
				MaxConnections: getEnvAsInt("POSTGRES_MAX_CONNECTIONS", 50),
			},
			Redis: RedisConfig{
				Host:           getEnv("REDIS_HOST", "localhost"),
				Port:           getEnv("REDIS_PORT", "6379"),
				Password:       getEnv("REDIS_PASSWORD", ""),
				DB:             getEnvAsInt("REDIS_DB", 0),
				MaxConnections: getEnvAsInt("REDIS_MAX_CONNECTIONS", 20),
			},
		},
		Cache: CacheConfig{
			TTL: getEnvAsDuration("CACHE_TTL", 1*time.Hour),
		},
		Benchmark: BenchmarkConfig{
			BaseURL: getEnv("BENCHMARK_API_URL", "http://localhost:9000"),
			Timeout: getEnvAsDuration("BENCHMARK_API_TIMEOUT", 10*time.Second),
		},
		Signing: SigningConfig{
			EnclaveVersion: getEnv("ENCLAVE_VERSION", "dev"),
			AttestationID:  getEnv("ENCLAVE_ATTESTATION_ID", ""),
			Measurement:    getEnv("ENCLAVE_MEASUREMENT", ""),
		},
		Metrics: MetricsConfig{
			AnnualizationFactor: getEnvAsFloat("METRICS_ANNUALIZATION_FACTOR", 365),
			RiskFreeRatePct:     getEnvAsFloat("METRICS_RISK_FREE_RATE_PCT", 0),
		},
		RateLimit: RateLimitConfig{
			FreeTierRPS:    getEnvAsInt("RATE_LIMIT_FREE_TIER", 5),
			BasicTierRPS:   getEnvAsInt("RATE_LIMIT_BASIC_TIER", 20),
			PremiumTierRPS: getEnvAsInt("RATE_LIMIT_PREMIUM_TIER", 100),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if config.Metrics.AnnualizationFactor <= 0 {
		return nil, fmt.Errorf("METRICS_ANNUALIZATION_FACTOR must be positive, got %v", config.Metrics.AnnualizationFactor)
	}

	return config, nil
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsFloat gets an environment variable as a float with a default value
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsDuration gets an environment variable as a duration with a default value
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
