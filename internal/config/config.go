package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	CORS      CORSConfig
	Engine    EngineConfig
	ECB       ECBConfig
	Security  SecurityConfig
	Scheduler SchedulerConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// EngineConfig holds calculation-engine settings.
type EngineConfig struct {
	// DerivativeLossCapEnabled toggles the statutory derivative-loss floor.
	DerivativeLossCapEnabled bool

	// DerivativeLossCap is the (negative) floor applied to the derivative
	// net when capping is enabled.
	DerivativeLossCap decimal.Decimal
}

// ECBConfig holds exchange-rate source settings.
type ECBConfig struct {
	BaseURL string
}

// SecurityConfig holds secrets.
type SecurityConfig struct {
	// FernetKey is the base64 key used to seal broker tokens at rest.
	FernetKey string

	// APIKey guards mutating API requests when set. Empty disables the
	// guard.
	APIKey string
}

// SchedulerConfig holds background-job schedules.
type SchedulerConfig struct {
	// RateRefreshSchedule is a cron spec for the daily ECB rate refresh.
	RateRefreshSchedule string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	capEnabled, err := strconv.ParseBool(getEnv("DERIVATIVE_LOSS_CAP_ENABLED", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid DERIVATIVE_LOSS_CAP_ENABLED: %w", err)
	}
	capAmount, err := decimal.NewFromString(getEnv("DERIVATIVE_LOSS_CAP", "-20000"))
	if err != nil {
		return nil, fmt.Errorf("invalid DERIVATIVE_LOSS_CAP: %w", err)
	}
	if capAmount.IsPositive() {
		capAmount = capAmount.Neg()
	}

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/kapgains.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost",
			},
		},
		Engine: EngineConfig{
			DerivativeLossCapEnabled: capEnabled,
			DerivativeLossCap:        capAmount,
		},
		ECB: ECBConfig{
			BaseURL: getEnv("ECB_BASE_URL", "https://api.frankfurter.app"),
		},
		Security: SecurityConfig{
			FernetKey: getEnv("FERNET_KEY", ""),
			APIKey:    getEnv("INTERNAL_API_KEY", ""),
		},
		Scheduler: SchedulerConfig{
			// Shortly after the ECB publishes its 16:00 CET reference rates.
			RateRefreshSchedule: getEnv("RATE_REFRESH_SCHEDULE", "30 16 * * 1-5"),
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
