package fixedpoint

import (
	"fmt"
	"math/big"

	sdkmath "cosmossdk.io/math"
)

// Protocol scales. Decay is expressed out of one billion, reserved percent and the cash out
// tax rate out of ten thousand.
const (
	DecayScale    uint64 = 1_000_000_000
	ReservedScale uint64 = 10_000
	TaxScale      uint64 = 10_000
)

// Percent is Value / Scale in the protocol's on-chain integer representation.
type Percent struct {
	Value uint64 `json:"value"`
	Scale uint64 `json:"scale"`
}

func NewDecayPercent(v uint64) Percent    { return Percent{Value: v, Scale: DecayScale} }
func NewReservedPercent(v uint64) Percent { return Percent{Value: v, Scale: ReservedScale} }
func NewCashOutTaxRate(v uint64) Percent  { return Percent{Value: v, Scale: TaxScale} }

// ParsePercent reads a human percentage such as "12.5" (meaning 12.5%) into the given scale,
// truncating anything finer than the scale can hold.
func ParsePercent(s string, scale uint64) (Percent, error) {
	if scale == 0 {
		return Percent{}, fmt.Errorf("%w: zero scale", ErrInvalidPercent)
	}
	a, err := Parse(s, 18)
	if err != nil {
		return Percent{}, err
	}
	if a.IsNegative() {
		return Percent{}, fmt.Errorf("%w: %s is negative", ErrInvalidPercent, s)
	}

	// value = pct * scale / 100, with pct carried at 18 decimals
	v := new(big.Int).Mul(a.big(), new(big.Int).SetUint64(scale))
	v.Quo(v, new(big.Int).Mul(big.NewInt(100), pow10(18)))
	if !v.IsUint64() || v.Uint64() > scale {
		return Percent{}, fmt.Errorf("%w: %s%% exceeds 100%%", ErrInvalidPercent, s)
	}
	return Percent{Value: v.Uint64(), Scale: scale}, nil
}

// Validate checks 0 <= Value <= Scale with a non-zero scale.
func (p Percent) Validate() error {
	if p.Scale == 0 {
		return fmt.Errorf("%w: zero scale", ErrInvalidPercent)
	}
	if p.Value > p.Scale {
		return fmt.Errorf("%w: %d/%d", ErrInvalidPercent, p.Value, p.Scale)
	}
	return nil
}

func (p Percent) IsZero() bool { return p.Value == 0 }
func (p Percent) IsFull() bool { return p.Value == p.Scale }

// Complement returns 1 - p at the same scale.
func (p Percent) Complement() Percent {
	if p.Value >= p.Scale {
		return Percent{Value: 0, Scale: p.Scale}
	}
	return Percent{Value: p.Scale - p.Value, Scale: p.Scale}
}

// ValueInt and ScaleInt expose the terms as SDK ints for MulDiv.
func (p Percent) ValueInt() sdkmath.Int { return sdkmath.NewIntFromUint64(p.Value) }
func (p Percent) ScaleInt() sdkmath.Int { return sdkmath.NewIntFromUint64(p.Scale) }

// Format renders the percentage (0-100) with at most n truncated decimals: 1250/10000 -> "12.5".
func (p Percent) Format(n int) string {
	if p.Scale == 0 {
		return "0"
	}
	if n < 0 {
		n = 0
	}
	v := new(big.Int).Mul(new(big.Int).SetUint64(p.Value), big.NewInt(100))
	v.Mul(v, pow10(n))
	v.Quo(v, new(big.Int).SetUint64(p.Scale))
	a, err := fromBig(v, n)
	if err != nil {
		return "0"
	}
	return a.Format(n)
}

func (p Percent) String() string { return p.Format(4) + "%" }
