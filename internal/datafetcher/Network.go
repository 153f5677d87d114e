package datafetcher

import (
	"context"
	"fmt"

	"github.com/rev-net/revdash/internal/config"
	"github.com/rev-net/revdash/internal/types"
)

// Source is the query capability the rest of the service consumes. SubgraphClient is the
// production implementation; tests substitute fakes.
type Source interface {
	ChainID() int64
	FetchStages(ctx context.Context, projectID uint64) ([]types.Stage, error)
	FetchTreasury(ctx context.Context, projectID uint64, tokenDecimals int) (types.Treasury, error)
	FetchParticipants(ctx context.Context, projectID uint64, tokenDecimals, first int) ([]types.Participant, error)
	FetchActivity(ctx context.Context, projectID uint64, tokenDecimals, first int) ([]types.PayEvent, []types.CashOutEvent, error)
}

var _ Source = (*SubgraphClient)(nil)

// FetchNetwork assembles and validates a tracked network's stages and treasury.
func FetchNetwork(ctx context.Context, src Source, tracked config.TrackedNetwork) (types.Network, error) {
	if src.ChainID() != tracked.ChainID {
		return types.Network{}, fmt.Errorf("source indexes chain %d, network %q is on chain %d", src.ChainID(), tracked.Name, tracked.ChainID)
	}

	stages, err := src.FetchStages(ctx, tracked.ProjectID)
	if err != nil {
		return types.Network{}, fmt.Errorf("failed to fetch stages for %s: %w", tracked.Name, err)
	}
	treasury, err := src.FetchTreasury(ctx, tracked.ProjectID, tracked.TokenDecimals)
	if err != nil {
		return types.Network{}, fmt.Errorf("failed to fetch treasury for %s: %w", tracked.Name, err)
	}

	n := types.Network{
		ChainID:       tracked.ChainID,
		ProjectID:     tracked.ProjectID,
		Name:          tracked.Name,
		TokenSymbol:   tracked.TokenSymbol,
		TokenDecimals: tracked.TokenDecimals,
		Stages:        stages,
		Treasury:      treasury,
	}
	if err := n.Validate(); err != nil {
		return types.Network{}, err
	}
	return n, nil
}

// NewSources builds one subgraph client per chain. A network's own subgraph_url wins over
// the global endpoint.
func NewSources(networks []config.TrackedNetwork) map[int64]Source {
	sources := make(map[int64]Source)
	for _, n := range networks {
		if _, ok := sources[n.ChainID]; ok {
			continue
		}
		url := config.SubgraphURL
		if n.SubgraphURL != "" {
			url = n.SubgraphURL
		}
		sources[n.ChainID] = NewSubgraphClient(n.ChainID, url, config.SubgraphAPIKey, config.SubgraphTimeout)
	}
	return sources
}
