package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppMode          string
	Port             string
	StorageDriver    string
	SettlementSecret string
	Database         DatabaseConfig
	JWT              JWTConfig
	Sweep            SweepConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// JWTConfig holds token validation configuration. Tokens are issued by
// the external identity provider; only the shared secret lives here.
type JWTConfig struct {
	Secret          string
	DevTokenMinutes int
}

// SweepConfig holds the stale-pending-transaction sweep configuration
type SweepConfig struct {
	Enabled       bool
	MaxPendingAge time.Duration
}

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	driver := strings.TrimSpace(getEnv("STORAGE_DRIVER", "mysql"))
	if driver != "mysql" && driver != "memory" {
		return nil, fmt.Errorf("invalid STORAGE_DRIVER: '%s' (must be 'mysql' or 'memory')", driver)
	}
	if driver == "memory" && appMode == "prod" {
		return nil, fmt.Errorf("STORAGE_DRIVER=memory is not allowed in prod mode")
	}

	devTokenMins, _ := strconv.Atoi(getEnv("DEV_TOKEN_MINUTES", "60"))
	sweepEnabled, _ := strconv.ParseBool(getEnv("SWEEP_ENABLED", "true"))
	sweepHours, _ := strconv.Atoi(getEnv("SWEEP_MAX_PENDING_HOURS", "72"))

	config := &Config{
		AppMode:          appMode,
		Port:             getEnv("PORT", "3000"),
		StorageDriver:    driver,
		SettlementSecret: getEnv("SETTLEMENT_CALLBACK_SECRET", ""),
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "3306"),
			User:     getEnv("DB_USER", "root"),
			Password: getEnv("DB_PASS", ""),
			DBName:   getEnv("DB_NAME", "swearjar"),
		},
		JWT: JWTConfig{
			Secret:          getEnv("JWT_SECRET", "default_secret"),
			DevTokenMinutes: devTokenMins,
		},
		Sweep: SweepConfig{
			Enabled:       sweepEnabled,
			MaxPendingAge: time.Duration(sweepHours) * time.Hour,
		},
	}

	log.Printf("✅ Configuration loaded successfully [MODE: %s, STORAGE: %s]", appMode, driver)
	return config, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" && c.IsDev() {
		return "*"
	}
	return origins
}
