package datafetcher

import (
	"context"
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"

	"github.com/rev-net/revdash/internal/fixedpoint"
	"github.com/rev-net/revdash/internal/types"
)

const stagesQuery = `query Stages($projectId: Int!) {
  rulesets(where: {projectId: $projectId}, orderBy: start, orderDirection: asc) {
    id
    start
    duration
    cycleDuration
    weight
    weightCutPercent
    reservedPercent
    cashOutTaxRate
    splitBeneficiary
  }
}`

type rulesetRecord struct {
	ID               string `json:"id"`
	Start            int64  `json:"start,string"`
	Duration         int64  `json:"duration,string"`
	CycleDuration    int64  `json:"cycleDuration,string"`
	Weight           string `json:"weight"`
	WeightCutPercent uint64 `json:"weightCutPercent"`
	ReservedPercent  uint64 `json:"reservedPercent"`
	CashOutTaxRate   uint64 `json:"cashOutTaxRate"`
	SplitBeneficiary string `json:"splitBeneficiary"`
}

// FetchStages returns the project's stages in declaration order, validated.
func (c *SubgraphClient) FetchStages(ctx context.Context, projectID uint64) ([]types.Stage, error) {
	var out struct {
		Rulesets []rulesetRecord `json:"rulesets"`
	}
	if err := c.query(ctx, "stages", stagesQuery, map[string]any{"projectId": projectID}, &out); err != nil {
		return nil, err
	}

	stages := make([]types.Stage, 0, len(out.Rulesets))
	for i, r := range out.Rulesets {
		weight, err := parseRaw(r.Weight, 18)
		if err != nil {
			return nil, fmt.Errorf("%w: ruleset %s weight: %w", ErrInvalidResponse, r.ID, err)
		}
		s := types.Stage{
			Index:           i,
			StartTime:       time.Unix(r.Start, 0).UTC(),
			Duration:        time.Duration(r.Duration) * time.Second,
			DecayFrequency:  time.Duration(r.CycleDuration) * time.Second,
			InitialWeight:   weight,
			DecayPercent:    fixedpoint.NewDecayPercent(r.WeightCutPercent),
			ReservedPercent: fixedpoint.NewReservedPercent(r.ReservedPercent),
			CashOutTaxRate:  fixedpoint.NewCashOutTaxRate(r.CashOutTaxRate),
			BoostRecipient:  r.SplitBeneficiary,
		}
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("%w: ruleset %s: %w", ErrInvalidResponse, r.ID, err)
		}
		stages = append(stages, s)
	}

	c.log.Debug().Uint64("projectID", projectID).Int("stages", len(stages)).Msg("Fetched stages")
	return stages, nil
}

// parseRaw reads a subgraph BigInt (base-10 integer string) as a raw fixed-point value.
func parseRaw(s string, decimals int) (fixedpoint.Amount, error) {
	if s == "" {
		return fixedpoint.ZeroAmount(decimals), nil
	}
	i, ok := sdkmath.NewIntFromString(s)
	if !ok {
		return fixedpoint.Amount{}, fmt.Errorf("%w: %q", fixedpoint.ErrParse, s)
	}
	return fixedpoint.NewAmount(i, decimals), nil
}
