package datafetcher

import (
	"context"
	"fmt"

	"github.com/rev-net/revdash/internal/types"
)

const treasuryQuery = `query Treasury($projectId: Int!) {
  projects(where: {projectId: $projectId}, first: 1) {
    projectId
    balance
    tokenSupply
    pendingReservedTokens
  }
}`

type projectRecord struct {
	ProjectID             uint64 `json:"projectId"`
	Balance               string `json:"balance"`
	TokenSupply           string `json:"tokenSupply"`
	PendingReservedTokens string `json:"pendingReservedTokens"`
}

// FetchTreasury returns the surplus and supply figures the cash out quote is priced on.
func (c *SubgraphClient) FetchTreasury(ctx context.Context, projectID uint64, tokenDecimals int) (types.Treasury, error) {
	var out struct {
		Projects []projectRecord `json:"projects"`
	}
	if err := c.query(ctx, "treasury", treasuryQuery, map[string]any{"projectId": projectID}, &out); err != nil {
		return types.Treasury{}, err
	}
	if len(out.Projects) == 0 {
		return types.Treasury{}, fmt.Errorf("%w: project %d on chain %d", ErrNotFound, projectID, c.chainID)
	}

	p := out.Projects[0]
	surplus, err := parseRaw(p.Balance, NativeDecimals)
	if err != nil {
		return types.Treasury{}, fmt.Errorf("%w: balance: %w", ErrInvalidResponse, err)
	}
	supply, err := parseRaw(p.TokenSupply, tokenDecimals)
	if err != nil {
		return types.Treasury{}, fmt.Errorf("%w: token supply: %w", ErrInvalidResponse, err)
	}
	reserved, err := parseRaw(p.PendingReservedTokens, tokenDecimals)
	if err != nil {
		return types.Treasury{}, fmt.Errorf("%w: pending reserved: %w", ErrInvalidResponse, err)
	}

	t := types.Treasury{Surplus: surplus, TotalSupply: supply, PendingReserved: reserved}
	if err := t.Validate(); err != nil {
		return types.Treasury{}, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return t, nil
}
