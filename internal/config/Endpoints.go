package config

import (
	"time"

	"github.com/rs/zerolog/log"
)

// Endpoint configuration loaded from environment variables.
// These are populated at startup by the LoadConfig function.
var (
	// SubgraphURL is the GraphQL endpoint indexing the revnet contracts.
	SubgraphURL string
	// SubgraphAPIKey is sent as a bearer token when set.
	SubgraphAPIKey string
	// SubgraphTimeout bounds every subgraph request.
	SubgraphTimeout time.Duration
)

// loadEndpointConfig loads endpoint configuration from environment variables.
// This function is called by LoadConfig() in General.go.
func loadEndpointConfig() error {
	log.Info().Msg("Loading endpoint configuration from environment variables...")

	var err error

	SubgraphURL, err = getEnv("SUBGRAPH_URL")
	if err != nil {
		return err
	}

	SubgraphAPIKey = getEnvOrDefault("SUBGRAPH_API_KEY", "")

	timeoutSeconds, err := getEnvAsUint64OrDefault("SUBGRAPH_TIMEOUT_SECONDS", 30)
	if err != nil {
		return err
	}
	SubgraphTimeout = time.Duration(timeoutSeconds) * time.Second

	log.Debug().
		Str("SubgraphURL", SubgraphURL).
		Bool("SubgraphAPIKeySet", SubgraphAPIKey != "").
		Dur("SubgraphTimeout", SubgraphTimeout).
		Msg("Endpoint configuration loaded successfully.")

	return nil
}
