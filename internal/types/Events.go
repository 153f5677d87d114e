/*

Activity records as the dashboard consumes them: payments into a network, cash outs
against its surplus, the merged feed built from both, and per-address participant totals.

*/

package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/rev-net/revdash/internal/fixedpoint"
)

type ActivityKind string

const (
	ActivityPay     ActivityKind = "pay"
	ActivityCashOut ActivityKind = "cash_out"
)

type PayEvent struct {
	ChainID      int64             `json:"chain_id"`
	ProjectID    uint64            `json:"project_id"`
	TxHash       string            `json:"tx_hash"`
	Timestamp    time.Time         `json:"timestamp"`
	Payer        string            `json:"payer"`
	Amount       fixedpoint.Amount `json:"amount"`        // native currency paid
	TokensMinted fixedpoint.Amount `json:"tokens_minted"` // credited to the beneficiary
	Memo         string            `json:"memo,omitempty"`
}

func (e PayEvent) Validate() error {
	if err := validateEvent(e.ChainID, e.TxHash, e.Timestamp, e.Payer); err != nil {
		return err
	}
	if e.Amount.IsNegative() || e.TokensMinted.IsNegative() {
		return fmt.Errorf("%w: pay %s has negative amounts", ErrInvalidEvent, e.TxHash)
	}
	return nil
}

type CashOutEvent struct {
	ChainID         int64             `json:"chain_id"`
	ProjectID       uint64            `json:"project_id"`
	TxHash          string            `json:"tx_hash"`
	Timestamp       time.Time         `json:"timestamp"`
	Holder          string            `json:"holder"`
	TokensCashedOut fixedpoint.Amount `json:"tokens_cashed_out"`
	Reclaimed       fixedpoint.Amount `json:"reclaimed"` // native currency received
}

func (e CashOutEvent) Validate() error {
	if err := validateEvent(e.ChainID, e.TxHash, e.Timestamp, e.Holder); err != nil {
		return err
	}
	if e.TokensCashedOut.IsNegative() || e.Reclaimed.IsNegative() {
		return fmt.Errorf("%w: cash out %s has negative amounts", ErrInvalidEvent, e.TxHash)
	}
	return nil
}

// ActivityItem is one row of the merged feed.
type ActivityItem struct {
	Kind         ActivityKind      `json:"kind"`
	ChainID      int64             `json:"chain_id"`
	ProjectID    uint64            `json:"project_id"`
	TxHash       string            `json:"tx_hash"`
	Timestamp    time.Time         `json:"timestamp"`
	Account      string            `json:"account"`
	TokenAmount  fixedpoint.Amount `json:"token_amount"`
	NativeAmount fixedpoint.Amount `json:"native_amount"`
	Memo         string            `json:"memo,omitempty"`
	Line         string            `json:"line"` // e.g., "bought 1.5 REV on Sepolia"
}

func (a ActivityItem) Validate() error {
	if a.Kind != ActivityPay && a.Kind != ActivityCashOut {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidEvent, a.Kind)
	}
	return validateEvent(a.ChainID, a.TxHash, a.Timestamp, a.Account)
}

// Participant aggregates one address across every chain the network lives on.
type Participant struct {
	Address          string            `json:"address"`
	ChainIDs         []int64           `json:"chain_ids"`
	Balance          fixedpoint.Amount `json:"balance"`
	Volume           fixedpoint.Amount `json:"volume"` // native currency paid in
	SupplyPortion    string            `json:"supply_portion"`
	IsBoostRecipient bool              `json:"is_boost_recipient"`
}

func (p Participant) Validate() error {
	if err := ValidateAddress(p.Address); err != nil {
		return err
	}
	if p.Balance.IsNegative() || p.Volume.IsNegative() {
		return fmt.Errorf("%w: participant %s has negative totals", ErrInvalidEvent, p.Address)
	}
	return nil
}

func validateEvent(chainID int64, txHash string, ts time.Time, account string) error {
	if chainID <= 0 {
		return fmt.Errorf("%w: chain id %d", ErrInvalidEvent, chainID)
	}
	if !strings.HasPrefix(txHash, "0x") || len(txHash) < 4 {
		return fmt.Errorf("%w: tx hash %q", ErrInvalidEvent, txHash)
	}
	if ts.IsZero() {
		return fmt.Errorf("%w: %s has no timestamp", ErrInvalidEvent, txHash)
	}
	if err := ValidateAddress(account); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidEvent, txHash, err)
	}
	return nil
}
