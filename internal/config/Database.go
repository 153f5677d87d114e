package config

import (
	"github.com/rs/zerolog/log"
)

// Database configuration loaded from environment variables.
// Persistence is optional: with DB_NAME unset the service runs from memory only.
var (
	DBHost     string
	DBPort     uint64
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
)

// loadDatabaseConfig loads database configuration from environment variables.
// This function is called by LoadConfig() in General.go.
func loadDatabaseConfig() error {
	var err error

	DBHost = getEnvOrDefault("DB_HOST", "localhost")
	DBPort, err = getEnvAsUint64OrDefault("DB_PORT", 5432)
	if err != nil {
		return err
	}
	DBUser = getEnvOrDefault("DB_USER", "")
	DBPassword = getEnvOrDefault("DB_PASSWORD", "")
	DBName = getEnvOrDefault("DB_NAME", "")
	DBSSLMode = getEnvOrDefault("DB_SSLMODE", "disable")

	log.Debug().
		Str("DBHost", DBHost).
		Uint64("DBPort", DBPort).
		Str("DBName", DBName).
		Bool("PersistenceEnabled", DatabaseEnabled()).
		Msg("Database configuration loaded successfully.")

	return nil
}

// DatabaseEnabled reports whether snapshots and activity should be persisted.
func DatabaseEnabled() bool {
	return DBName != ""
}
