package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"
)

// Application configuration loaded from environment variables.
// These are populated at startup by the LoadConfig function.
var (
	// WebPort is the port the JSON API listens on.
	WebPort string

	// RefreshCron is the cron spec (with seconds) of the snapshot job, e.g. "0 */5 * * * *".
	RefreshCron string

	// NetworksFile is the YAML list of tracked networks.
	NetworksFile string

	// ActivityLimit caps how many feed items are fetched per chain and refresh.
	ActivityLimit uint64

	// NameCacheSize is the number of resolved addresses kept in memory.
	NameCacheSize uint64
)

// LoadConfig loads configuration from environment variables and sets the global config vars.
// SUBGRAPH_URL is required; everything else falls back to a default.
func LoadConfig() error {
	log.Info().Msg("Loading application configuration from environment variables...")

	var err error

	WebPort = getEnvOrDefault("WEB_PORT", "8080")
	RefreshCron = getEnvOrDefault("REFRESH_CRON", "0 */5 * * * *")
	NetworksFile = getEnvOrDefault("NETWORKS_FILE", "networks.yaml")

	ActivityLimit, err = getEnvAsUint64OrDefault("ACTIVITY_LIMIT", 100)
	if err != nil {
		return err
	}

	NameCacheSize, err = getEnvAsUint64OrDefault("NAME_CACHE_SIZE", 1024)
	if err != nil {
		return err
	}

	// Load endpoint configuration
	if err := loadEndpointConfig(); err != nil {
		return err
	}

	if err := loadDatabaseConfig(); err != nil {
		return err
	}

	log.Debug().
		Str("WebPort", WebPort).
		Str("RefreshCron", RefreshCron).
		Str("NetworksFile", NetworksFile).
		Uint64("ActivityLimit", ActivityLimit).
		Msg("Configuration loaded successfully.")

	return nil
}

// getEnv retrieves a string environment variable. Returns error if not set.
func getEnv(key string) (string, error) {
	if value, exists := os.LookupEnv(key); exists {
		return value, nil
	}
	return "", errors.New("environment variable " + key + " is required but not set")
}

// getEnvOrDefault retrieves a string environment variable, or fallback when unset or empty.
func getEnvOrDefault(key, fallback string) string {
	if value, err := getEnv(key); err == nil && value != "" {
		return value
	}
	return fallback
}

// getEnvAsUint64 retrieves an environment variable as a uint64. Returns error if not set or invalid.
func getEnvAsUint64(key string) (uint64, error) {
	valueStr, err := getEnv(key)
	if err != nil {
		return 0, err
	}
	value, err := strconv.ParseUint(valueStr, 10, 64)
	if err != nil {
		return 0, errors.New("environment variable " + key + " must be a valid uint64, got: " + valueStr)
	}
	return value, nil
}

func getEnvAsUint64OrDefault(key string, fallback uint64) (uint64, error) {
	if value, exists := os.LookupEnv(key); !exists || value == "" {
		return fallback, nil
	}
	return getEnvAsUint64(key)
}
