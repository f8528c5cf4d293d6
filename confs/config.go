package confs

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime settings for the telemetry server.
type Config struct {
	ServerAddr string

	// Status policy
	FaultVolts   float64
	HealthyVolts float64
	OnlineWindow time.Duration

	// History
	BucketWidth     time.Duration
	HistoryLookback time.Duration

	// Broadcast
	BacklogCap int

	// Assets / fleet
	ImageDir     string
	FleetMapping string // path to mapping JSON; empty = built-in default

	// Logging
	LogLevel string
	LogDir   string // empty = stdout only
}

// Load reads .env if present, then builds the typed config from environment
// variables and validates it.
func Load() (*Config, error) {
	// Load .env if it exists; ignore error if file not found
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: could not load .env: %v\n", err)
	}

	cfg := &Config{
		ServerAddr:      getEnv("SERVER_ADDR", "0.0.0.0:3737"),
		FaultVolts:      getEnvFloat("FAULT_VOLTS", 4.5),
		HealthyVolts:    getEnvFloat("HEALTHY_VOLTS", 6.0),
		OnlineWindow:    getEnvDuration("ONLINE_WINDOW", 30*time.Second),
		BucketWidth:     getEnvDuration("BUCKET_WIDTH", 30*time.Second),
		HistoryLookback: getEnvDuration("HISTORY_LOOKBACK", 30*time.Minute),
		BacklogCap:      getEnvInt("BACKLOG_CAP", 50),
		ImageDir:        getEnv("IMAGE_DIR", "./data/scans"),
		FleetMapping:    getEnv("FLEET_MAPPING", ""),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogDir:          getEnv("LOG_DIR", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the status policy cannot work with.
func (c *Config) Validate() error {
	if c.HealthyVolts <= c.FaultVolts {
		return fmt.Errorf("HEALTHY_VOLTS (%.2f) must be above FAULT_VOLTS (%.2f)", c.HealthyVolts, c.FaultVolts)
	}
	if c.OnlineWindow <= 0 {
		return fmt.Errorf("ONLINE_WINDOW must be positive")
	}
	if c.BucketWidth <= 0 {
		return fmt.Errorf("BUCKET_WIDTH must be positive")
	}
	if c.BacklogCap < 1 {
		return fmt.Errorf("BACKLOG_CAP must be at least 1")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
