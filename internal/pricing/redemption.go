package pricing

import (
	"fmt"
	"math/big"

	sdkmath "cosmossdk.io/math"

	"github.com/rev-net/revdash/internal/fixedpoint"
)

// CashOutParams is the treasury state a cash out is priced against. TotalSupply,
// TokensReserved and the tokens being cashed out share the token's decimals.
type CashOutParams struct {
	Surplus        fixedpoint.Amount
	TotalSupply    fixedpoint.Amount
	TokensReserved fixedpoint.Amount
	TaxRate        fixedpoint.Percent
}

// EffectiveSupply counts pending reserved tokens as outstanding, since they dilute holders
// the moment they are distributed.
func (p CashOutParams) EffectiveSupply() (fixedpoint.Amount, error) {
	return p.TotalSupply.Add(p.TokensReserved)
}

// QuoteCashOut returns the surplus reclaimed by cashing out tokens:
//
//	base   = surplus * tokens / supply
//	payout = base * ((S - tax) + tax * tokens / supply) / S
//
// Each division truncates, in the same order as the terminal contract.
func QuoteCashOut(tokens fixedpoint.Amount, params CashOutParams) (fixedpoint.Amount, error) {
	if err := params.TaxRate.Validate(); err != nil {
		return fixedpoint.Amount{}, err
	}
	if tokens.IsNegative() || params.Surplus.IsNegative() {
		return fixedpoint.Amount{}, fmt.Errorf("%w: cash out of %s against %s", fixedpoint.ErrNegativeAmount, tokens, params.Surplus)
	}
	supply, err := params.EffectiveSupply()
	if err != nil {
		return fixedpoint.Amount{}, err
	}
	if supply.Sign() <= 0 {
		return fixedpoint.Amount{}, ErrNoSupply
	}
	if tokens.Decimals() != supply.Decimals() {
		return fixedpoint.Amount{}, fmt.Errorf("%w: tokens %d vs supply %d", fixedpoint.ErrDecimalsMismatch, tokens.Decimals(), supply.Decimals())
	}
	switch c := tokens.Cmp(supply); {
	case c > 0:
		return fixedpoint.Amount{}, fmt.Errorf("%w: %s > %s", ErrInvalidRedemptionAmount, tokens, supply)
	case c == 0:
		return params.Surplus, nil
	}
	if tokens.IsZero() {
		return fixedpoint.ZeroAmount(params.Surplus.Decimals()), nil
	}

	base, err := params.Surplus.MulDiv(tokens.Raw(), supply.Raw())
	if err != nil {
		return fixedpoint.Amount{}, err
	}
	if params.TaxRate.IsZero() {
		return base, nil
	}

	factor := new(big.Int).Mul(new(big.Int).SetUint64(params.TaxRate.Value), tokens.Raw().BigInt())
	factor.Quo(factor, supply.Raw().BigInt())
	factor.Add(factor, new(big.Int).SetUint64(params.TaxRate.Complement().Value))
	return base.MulDiv(sdkmath.NewIntFromBigInt(factor), params.TaxRate.ScaleInt())
}

// ExitFloorPrice is the surplus one whole token reclaims when cashed out alone. While the
// supply is below one token, the quote is taken on the supply's leading decimal unit and
// scaled back up so the cash out stays within the supply.
func ExitFloorPrice(params CashOutParams) (fixedpoint.Amount, error) {
	supply, err := params.EffectiveSupply()
	if err != nil {
		return fixedpoint.Amount{}, err
	}
	if supply.Sign() <= 0 {
		return fixedpoint.Amount{}, ErrNoSupply
	}

	decimals := supply.Decimals()
	one := pow10(decimals)
	unit, scaleUp := one, big.NewInt(1)
	if supply.Raw().BigInt().Cmp(one) < 0 {
		// place value of the supply's leading digit, e.g. 0.001 for 0.0042
		place := len(supply.Raw().String()) - 1
		unit = pow10(place)
		scaleUp = pow10(decimals - place)
	}

	quote, err := QuoteCashOut(fixedpoint.NewAmount(sdkmath.NewIntFromBigInt(unit), decimals), params)
	if err != nil {
		return fixedpoint.Amount{}, err
	}
	return quote.MulDiv(sdkmath.NewIntFromBigInt(scaleUp), sdkmath.OneInt())
}

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}
