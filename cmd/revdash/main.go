package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rev-net/revdash/internal/chain"
	"github.com/rev-net/revdash/internal/config"
	"github.com/rev-net/revdash/internal/datafetcher"
	"github.com/rev-net/revdash/internal/logger"
	"github.com/rev-net/revdash/internal/scheduler"
	"github.com/rev-net/revdash/internal/state"
	"github.com/rev-net/revdash/internal/web"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 15 * time.Second

// main is the entry point for the revnet dashboard.
func main() {
	// --- 1. Initialization Phase ---
	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("Warning: .env file not found. Relying on OS environment variables.")
	}

	var extra []io.Writer
	if path := os.Getenv("LOG_FILE"); path != "" {
		fw, err := logger.FileWriter(path)
		if err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("Failed to open log file")
		}
		extra = append(extra, fw)
	}
	logger.Initialize(os.Getenv("LOG_LEVEL"), extra...)

	if err := config.LoadConfig(); err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log.Info().Msg("Revnet dashboard starting...")

	// Persistence is optional; without a database history is kept in memory.
	var recorder scheduler.Recorder
	if config.DatabaseEnabled() {
		dbCfg := state.DBConfig{
			Host: config.DBHost, Port: int(config.DBPort),
			User: config.DBUser, Password: config.DBPassword,
			DBName: config.DBName, SSLMode: config.DBSSLMode,
		}
		if err := state.InitDB(dbCfg); err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize database")
		}
		defer state.CloseDB()
		if err := state.EnsureSchema(); err != nil {
			log.Fatal().Err(err).Msg("Failed to ensure database schema")
		}
		recorder = state.PostgresRecorder{}
	} else {
		log.Warn().Msg("DB_NAME is not set. Snapshots will only be kept in memory.")
	}

	// --- 2. Data Sources ---
	networks, err := config.LoadNetworks(config.NetworksFile)
	if err != nil {
		log.Fatal().Err(err).Str("file", config.NetworksFile).Msg("Failed to load tracked networks")
	}
	if len(networks) == 0 {
		log.Fatal().Str("file", config.NetworksFile).Msg("No networks to track")
	}
	knownNames, err := config.LoadKnownNames(config.NetworksFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load known names")
	}
	resolver, err := chain.NewCachedResolver(chain.StaticResolver(knownNames), int(config.NameCacheSize))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create name resolver")
	}
	sources := datafetcher.NewSources(networks)
	log.Info().Int("networks", len(networks)).Int("chains", len(sources)).Msg("Tracked networks loaded")

	// --- 3. Scheduler ---
	refresher := scheduler.NewRefresher(sources, networks, recorder, int(config.ActivityLimit))
	if err := refresher.RegisterAll(config.RefreshCron); err != nil {
		log.Fatal().Err(err).Msg("Failed to register refresh job")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A failed first refresh is not fatal: the next tick retries and /health reports it.
	if err := refresher.RunNow(ctx); err != nil {
		log.Warn().Err(err).Msg("Initial refresh incomplete")
	}
	refresher.Start()

	// --- 4. Start Web Server ---
	webServer := web.NewWebServer(config.WebPort, refresher, resolver, chain.NoopSubmitter{})
	go func() {
		log.Info().Str("port", config.WebPort).Str("url", "http://localhost:"+config.WebPort).Msg("Starting revnet dashboard API")
		if err := webServer.Start(); err != nil {
			log.Error().Err(err).Msg("Web server failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := webServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Web server shutdown failed")
	}
	refresher.Stop()
}
