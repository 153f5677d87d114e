package datafetcher

import (
	"context"
	"fmt"
	"strings"

	"github.com/rev-net/revdash/internal/types"
)

const zeroAddress = "0x0000000000000000000000000000000000000000"

const participantsQuery = `query Participants($projectId: Int!, $first: Int!) {
  participants(
    where: {projectId: $projectId, balance_gt: "0", wallet_not: "` + zeroAddress + `"}
    orderBy: balance
    orderDirection: desc
    first: $first
  ) {
    wallet { id }
    balance
    volume
  }
}`

type participantRecord struct {
	Wallet struct {
		ID string `json:"id"`
	} `json:"wallet"`
	Balance string `json:"balance"`
	Volume  string `json:"volume"`
}

// FetchParticipants returns the project's holders on this chain, largest balance first.
func (c *SubgraphClient) FetchParticipants(ctx context.Context, projectID uint64, tokenDecimals, first int) ([]types.Participant, error) {
	var out struct {
		Participants []participantRecord `json:"participants"`
	}
	vars := map[string]any{"projectId": projectID, "first": first}
	if err := c.query(ctx, "participants", participantsQuery, vars, &out); err != nil {
		return nil, err
	}

	participants := make([]types.Participant, 0, len(out.Participants))
	for _, r := range out.Participants {
		balance, err := parseRaw(r.Balance, tokenDecimals)
		if err != nil {
			return nil, fmt.Errorf("%w: participant %s balance: %w", ErrInvalidResponse, r.Wallet.ID, err)
		}
		volume, err := parseRaw(r.Volume, NativeDecimals)
		if err != nil {
			return nil, fmt.Errorf("%w: participant %s volume: %w", ErrInvalidResponse, r.Wallet.ID, err)
		}
		p := types.Participant{
			Address:  strings.ToLower(r.Wallet.ID),
			ChainIDs: []int64{c.chainID},
			Balance:  balance,
			Volume:   volume,
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
		}
		participants = append(participants, p)
	}
	return participants, nil
}
