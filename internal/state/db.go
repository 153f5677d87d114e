// ./internal/state/db.go
package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog/log"
)

// DB is a global database connection pool.
var DB *sql.DB

// ErrNotInitialized is returned by every store call made before InitDB.
var ErrNotInitialized = errors.New("database not initialized")

// DBConfig holds database connection parameters.
type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string // "disable", "require", "verify-full", etc.
}

// DSN renders the lib/pq key=value connection string.
func (c DBConfig) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, sslMode)
}

// InitDB initializes the database connection pool.
func InitDB(cfg DBConfig) error {
	var err error
	DB, err = sql.Open("postgres", cfg.DSN())
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	DB.SetMaxOpenConns(10)
	DB.SetMaxIdleConns(5)
	DB.SetConnMaxLifetime(5 * time.Minute)

	if err := DB.Ping(); err != nil {
		DB.Close()
		DB = nil
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().Str("host", cfg.Host).Str("db", cfg.DBName).Msg("Connected to PostgreSQL")
	return nil
}

// CloseDB closes the database connection pool.
func CloseDB() {
	if DB != nil {
		log.Info().Msg("Closing database connection...")
		if err := DB.Close(); err != nil {
			log.Error().Err(err).Msg("Error closing database connection")
		}
		DB = nil
	}
}

// Raw integer columns are NUMERIC(78, 0): wide enough for any 256-bit value.
const schemaSQL = `
	CREATE TABLE IF NOT EXISTS network_snapshots (
		snapshot_id SERIAL PRIMARY KEY,
		network_key VARCHAR(64) NOT NULL,
		network_name VARCHAR(255) NOT NULL,
		chain_id BIGINT NOT NULL,
		project_id BIGINT NOT NULL,
		snapshot_timestamp TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,

		surplus_raw NUMERIC(78, 0) NOT NULL,
		surplus_decimals INTEGER NOT NULL,
		total_supply_raw NUMERIC(78, 0) NOT NULL,
		pending_reserved_raw NUMERIC(78, 0) NOT NULL,
		token_decimals INTEGER NOT NULL,
		exit_floor_raw NUMERIC(78, 0),

		active_stage INTEGER,
		next_transition TIMESTAMPTZ,
		participant_count INTEGER NOT NULL DEFAULT 0,
		recent_tx_hashes TEXT[]
	);
	CREATE INDEX IF NOT EXISTS idx_network_snapshots_key_timestamp ON network_snapshots(network_key, snapshot_timestamp DESC);

	CREATE TABLE IF NOT EXISTS activity_items (
		chain_id BIGINT NOT NULL,
		tx_hash VARCHAR(80) NOT NULL,
		kind VARCHAR(16) NOT NULL,
		project_id BIGINT NOT NULL,
		network_name VARCHAR(255) NOT NULL,
		event_timestamp TIMESTAMPTZ NOT NULL,
		account VARCHAR(42) NOT NULL,
		token_amount_raw NUMERIC(78, 0) NOT NULL,
		token_decimals INTEGER NOT NULL,
		native_amount_raw NUMERIC(78, 0) NOT NULL,
		native_decimals INTEGER NOT NULL,
		memo TEXT NOT NULL DEFAULT '',
		line TEXT NOT NULL,
		recorded_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (chain_id, tx_hash, kind)
	);
	CREATE INDEX IF NOT EXISTS idx_activity_items_name_timestamp ON activity_items(network_name, event_timestamp DESC);
`

// EnsureSchema applies the necessary DDL to create tables if they don't exist.
func EnsureSchema() error {
	if DB == nil {
		return ErrNotInitialized
	}
	if _, err := DB.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema DDL: %w", err)
	}
	log.Info().Msg("Database schema ensured (network_snapshots, activity_items)")
	return nil
}

// TestDBConnection tests if the database connection is healthy
func TestDBConnection() error {
	if DB == nil {
		return ErrNotInitialized
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := DB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}
