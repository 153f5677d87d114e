package datafetcher

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rev-net/revdash/internal/types"
)

const activityQuery = `query ProjectEvents($projectId: Int!, $first: Int!) {
  projectEvents(
    where: {projectId: $projectId}
    orderBy: timestamp
    orderDirection: desc
    first: $first
  ) {
    id
    timestamp
    txHash
    payEvent { amount beneficiary beneficiaryTokenCount note }
    cashOutEvent { reclaimAmount beneficiary cashOutCount }
  }
}`

type projectEventRecord struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"timestamp"`
	TxHash    string `json:"txHash"`
	PayEvent  *struct {
		Amount                string `json:"amount"`
		Beneficiary           string `json:"beneficiary"`
		BeneficiaryTokenCount string `json:"beneficiaryTokenCount"`
		Note                  string `json:"note"`
	} `json:"payEvent"`
	CashOutEvent *struct {
		ReclaimAmount string `json:"reclaimAmount"`
		Beneficiary   string `json:"beneficiary"`
		CashOutCount  string `json:"cashOutCount"`
	} `json:"cashOutEvent"`
}

// FetchActivity returns the latest pay and cash out events on this chain. Project events of
// any other kind are skipped.
func (c *SubgraphClient) FetchActivity(ctx context.Context, projectID uint64, tokenDecimals, first int) ([]types.PayEvent, []types.CashOutEvent, error) {
	var out struct {
		ProjectEvents []projectEventRecord `json:"projectEvents"`
	}
	vars := map[string]any{"projectId": projectID, "first": first}
	if err := c.query(ctx, "activity", activityQuery, vars, &out); err != nil {
		return nil, nil, err
	}

	var pays []types.PayEvent
	var cashOuts []types.CashOutEvent
	for _, r := range out.ProjectEvents {
		ts := time.Unix(r.Timestamp, 0).UTC()
		switch {
		case r.PayEvent != nil:
			amount, err := parseRaw(r.PayEvent.Amount, NativeDecimals)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: event %s amount: %w", ErrInvalidResponse, r.ID, err)
			}
			minted, err := parseRaw(r.PayEvent.BeneficiaryTokenCount, tokenDecimals)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: event %s tokens: %w", ErrInvalidResponse, r.ID, err)
			}
			e := types.PayEvent{
				ChainID:      c.chainID,
				ProjectID:    projectID,
				TxHash:       r.TxHash,
				Timestamp:    ts,
				Payer:        strings.ToLower(r.PayEvent.Beneficiary),
				Amount:       amount,
				TokensMinted: minted,
				Memo:         r.PayEvent.Note,
			}
			if err := e.Validate(); err != nil {
				return nil, nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
			}
			pays = append(pays, e)

		case r.CashOutEvent != nil:
			reclaimed, err := parseRaw(r.CashOutEvent.ReclaimAmount, NativeDecimals)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: event %s reclaim: %w", ErrInvalidResponse, r.ID, err)
			}
			count, err := parseRaw(r.CashOutEvent.CashOutCount, tokenDecimals)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: event %s count: %w", ErrInvalidResponse, r.ID, err)
			}
			e := types.CashOutEvent{
				ChainID:         c.chainID,
				ProjectID:       projectID,
				TxHash:          r.TxHash,
				Timestamp:       ts,
				Holder:          strings.ToLower(r.CashOutEvent.Beneficiary),
				TokensCashedOut: count,
				Reclaimed:       reclaimed,
			}
			if err := e.Validate(); err != nil {
				return nil, nil, fmt.Errorf("%w: %w", ErrInvalidResponse, err)
			}
			cashOuts = append(cashOuts, e)
		}
	}
	return pays, cashOuts, nil
}
