/*

Network and treasury figures for one revnet deployment on one chain.

*/

package types

import (
	"fmt"
	"strings"

	"github.com/rev-net/revdash/internal/fixedpoint"
)

// Treasury is what the cash out formula needs from chain state.
type Treasury struct {
	Surplus         fixedpoint.Amount `json:"surplus"`          // native currency held, e.g. 18 decimals for ETH
	TotalSupply     fixedpoint.Amount `json:"total_supply"`     // token decimals
	PendingReserved fixedpoint.Amount `json:"pending_reserved"` // allocated, not yet minted
}

func (t Treasury) Validate() error {
	if t.Surplus.IsNegative() || t.TotalSupply.IsNegative() || t.PendingReserved.IsNegative() {
		return fmt.Errorf("%w: negative figure", ErrInvalidTreasury)
	}
	if t.TotalSupply.Decimals() != t.PendingReserved.Decimals() {
		return fmt.Errorf("%w: supply has %d decimals, reserved has %d",
			ErrInvalidTreasury, t.TotalSupply.Decimals(), t.PendingReserved.Decimals())
	}
	return nil
}

type Network struct {
	ChainID       int64    `json:"chain_id"`
	ProjectID     uint64   `json:"project_id"`
	Name          string   `json:"name"`
	TokenSymbol   string   `json:"token_symbol"`
	TokenDecimals int      `json:"token_decimals"`
	Stages        []Stage  `json:"stages"`
	Treasury      Treasury `json:"treasury"`
}

func (n Network) Validate() error {
	if n.ChainID <= 0 {
		return fmt.Errorf("%w: chain id %d", ErrInvalidNetwork, n.ChainID)
	}
	if n.ProjectID == 0 {
		return fmt.Errorf("%w: project id is zero", ErrInvalidNetwork)
	}
	if strings.TrimSpace(n.TokenSymbol) == "" {
		return fmt.Errorf("%w: project %d has no token symbol", ErrInvalidNetwork, n.ProjectID)
	}
	if n.TokenDecimals < 0 || n.TokenDecimals > 36 {
		return fmt.Errorf("%w: token decimals %d", ErrInvalidNetwork, n.TokenDecimals)
	}
	for _, s := range n.Stages {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("%w: project %d: %w", ErrInvalidNetwork, n.ProjectID, err)
		}
	}
	if err := n.Treasury.Validate(); err != nil {
		return fmt.Errorf("%w: project %d: %w", ErrInvalidNetwork, n.ProjectID, err)
	}
	return nil
}

// Key identifies a network across chains, e.g. "11155111:3".
func (n Network) Key() string {
	return fmt.Sprintf("%d:%d", n.ChainID, n.ProjectID)
}
