package activity

import (
	"fmt"
	"sort"

	"github.com/rev-net/revdash/internal/config"
	"github.com/rev-net/revdash/internal/types"
)

// displayDecimals is how many fractional digits feed lines show.
const displayDecimals = 6

// MergeFeed combines pay and cash out events from any number of chains into one feed,
// newest first. Equal timestamps order by chain id, then transaction hash.
func MergeFeed(pays []types.PayEvent, cashOuts []types.CashOutEvent, tokenSymbol string) []types.ActivityItem {
	items := make([]types.ActivityItem, 0, len(pays)+len(cashOuts))
	for _, p := range pays {
		items = append(items, types.ActivityItem{
			Kind:         types.ActivityPay,
			ChainID:      p.ChainID,
			ProjectID:    p.ProjectID,
			TxHash:       p.TxHash,
			Timestamp:    p.Timestamp,
			Account:      p.Payer,
			TokenAmount:  p.TokensMinted,
			NativeAmount: p.Amount,
			Memo:         p.Memo,
			Line: fmt.Sprintf("bought %s %s on %s",
				p.TokensMinted.Format(displayDecimals), tokenSymbol, config.ChainName(p.ChainID)),
		})
	}
	for _, c := range cashOuts {
		items = append(items, types.ActivityItem{
			Kind:         types.ActivityCashOut,
			ChainID:      c.ChainID,
			ProjectID:    c.ProjectID,
			TxHash:       c.TxHash,
			Timestamp:    c.Timestamp,
			Account:      c.Holder,
			TokenAmount:  c.TokensCashedOut,
			NativeAmount: c.Reclaimed,
			Line: fmt.Sprintf("cashed out %s %s on %s",
				c.TokensCashedOut.Format(displayDecimals), tokenSymbol, config.ChainName(c.ChainID)),
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.After(b.Timestamp)
		}
		if a.ChainID != b.ChainID {
			return a.ChainID < b.ChainID
		}
		return a.TxHash < b.TxHash
	})
	return items
}

// Limit truncates the feed to at most n items.
func Limit(items []types.ActivityItem, n int) []types.ActivityItem {
	if n >= 0 && len(items) > n {
		return items[:n]
	}
	return items
}
