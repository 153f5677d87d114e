package activity

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rev-net/revdash/internal/fixedpoint"
	"github.com/rev-net/revdash/internal/types"
)

// AggregateParticipants folds per-chain holder rows into one row per address: balances and
// volumes are summed, chains are unioned, and each row gets its share of totalSupply.
// The boost recipient, if any, is flagged. Rows come back largest balance first.
func AggregateParticipants(rows []types.Participant, totalSupply fixedpoint.Amount, boostRecipient string) ([]types.Participant, error) {
	byAddress := make(map[string]*types.Participant)
	var order []string

	for _, r := range rows {
		key := strings.ToLower(r.Address)
		agg, ok := byAddress[key]
		if !ok {
			agg = &types.Participant{
				Address: key,
				Balance: fixedpoint.ZeroAmount(r.Balance.Decimals()),
				Volume:  fixedpoint.ZeroAmount(r.Volume.Decimals()),
			}
			byAddress[key] = agg
			order = append(order, key)
		}

		var err error
		if agg.Balance, err = agg.Balance.Add(r.Balance); err != nil {
			return nil, fmt.Errorf("participant %s balance: %w", key, err)
		}
		if agg.Volume, err = agg.Volume.Add(r.Volume); err != nil {
			return nil, fmt.Errorf("participant %s volume: %w", key, err)
		}
		agg.ChainIDs = unionChains(agg.ChainIDs, r.ChainIDs)
	}

	out := make([]types.Participant, 0, len(order))
	for _, key := range order {
		p := byAddress[key]
		p.SupplyPortion = fixedpoint.Portion(p.Balance, totalSupply)
		p.IsBoostRecipient = boostRecipient != "" && strings.EqualFold(key, boostRecipient)
		out = append(out, *p)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if c := out[i].Balance.Cmp(out[j].Balance); c != 0 {
			return c > 0
		}
		return out[i].Address < out[j].Address
	})
	return out, nil
}

func unionChains(have, add []int64) []int64 {
	for _, id := range add {
		found := false
		for _, h := range have {
			if h == id {
				found = true
				break
			}
		}
		if !found {
			have = append(have, id)
		}
	}
	sort.Slice(have, func(i, j int) bool { return have[i] < have[j] })
	return have
}
