/*

Amount is the fixed-point value type used by every quote in the dashboard.
It wraps an SDK Int together with an explicit number of decimal places so that
token amounts, weights and surpluses never go through floating point.

All divisions truncate toward zero, matching the contracts' integer division.

*/

package fixedpoint

import (
	"fmt"
	"math/big"
	"regexp"
	"strings"

	sdkmath "cosmossdk.io/math"
	"github.com/shopspring/decimal"
)

var decimalPattern = regexp.MustCompile(`^-?(\d+\.?\d*|\.\d+)$`)

// Amount is an immutable fixed-point number: raw / 10^decimals.
type Amount struct {
	raw      sdkmath.Int
	decimals int
}

// NewAmount wraps a raw integer. It panics on negative decimals, like the SDK constructors do
// for out-of-range input.
func NewAmount(raw sdkmath.Int, decimals int) Amount {
	if decimals < 0 {
		panic(fmt.Sprintf("fixedpoint: negative decimals %d", decimals))
	}
	if raw.IsNil() {
		raw = sdkmath.ZeroInt()
	}
	return Amount{raw: raw, decimals: decimals}
}

// NewAmountFromInt64 is a shorthand for small literal values in raw units.
func NewAmountFromInt64(raw int64, decimals int) Amount {
	return NewAmount(sdkmath.NewInt(raw), decimals)
}

// ZeroAmount returns 0 at the given scale.
func ZeroAmount(decimals int) Amount {
	return NewAmount(sdkmath.ZeroInt(), decimals)
}

// Parse reads a decimal string such as "1.25" into an Amount with the given decimals.
// Fractional digits beyond the target scale are truncated.
func Parse(s string, decimals int) (Amount, error) {
	if decimals < 0 {
		return Amount{}, fmt.Errorf("%w: negative decimals %d", ErrParse, decimals)
	}
	s = strings.TrimSpace(s)
	if !decimalPattern.MatchString(s) {
		return Amount{}, fmt.Errorf("%w: %q", ErrParse, s)
	}

	s = strings.TrimSuffix(s, ".")
	if strings.HasPrefix(s, ".") || strings.HasPrefix(s, "-.") {
		s = strings.Replace(s, ".", "0.", 1)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("%w: %q: %w", ErrParse, s, err)
	}
	return fromBig(d.Shift(int32(decimals)).BigInt(), decimals)
}

// MustParse is Parse for constants and tests.
func MustParse(s string, decimals int) Amount {
	a, err := Parse(s, decimals)
	if err != nil {
		panic(err)
	}
	return a
}

// Raw returns the underlying integer.
func (a Amount) Raw() sdkmath.Int {
	if a.raw.IsNil() {
		return sdkmath.ZeroInt()
	}
	return a.raw
}

// Decimals returns the number of decimal places.
func (a Amount) Decimals() int { return a.decimals }

func (a Amount) IsZero() bool     { return a.big().Sign() == 0 }
func (a Amount) IsNegative() bool { return a.big().Sign() < 0 }

// Sign returns -1, 0 or +1.
func (a Amount) Sign() int { return a.big().Sign() }

// Add returns a + b. Both operands must share the same scale.
func (a Amount) Add(b Amount) (Amount, error) {
	if err := sameScale(a, b); err != nil {
		return Amount{}, err
	}
	return fromBig(new(big.Int).Add(a.big(), b.big()), a.decimals)
}

// Sub returns a - b. Both operands must share the same scale.
func (a Amount) Sub(b Amount) (Amount, error) {
	if err := sameScale(a, b); err != nil {
		return Amount{}, err
	}
	return fromBig(new(big.Int).Sub(a.big(), b.big()), a.decimals)
}

// MulInt multiplies by a plain integer, keeping the scale.
func (a Amount) MulInt(n int64) (Amount, error) {
	return fromBig(new(big.Int).Mul(a.big(), big.NewInt(n)), a.decimals)
}

// QuoInt divides by a plain integer, keeping the scale.
func (a Amount) QuoInt(n int64) (Amount, error) {
	if n == 0 {
		return Amount{}, ErrDivisionByZero
	}
	return fromBig(new(big.Int).Quo(a.big(), big.NewInt(n)), a.decimals)
}

// Mul multiplies two amounts. The result carries the sum of both scales; callers truncate
// to their target precision with Rescale.
func (a Amount) Mul(b Amount) (Amount, error) {
	return fromBig(new(big.Int).Mul(a.big(), b.big()), a.decimals+b.decimals)
}

// Quo divides a by b and returns the quotient at targetDecimals, truncated.
//
//	raw = a.raw * 10^(target + b.decimals - a.decimals) / b.raw
func (a Amount) Quo(b Amount, targetDecimals int) (Amount, error) {
	if targetDecimals < 0 {
		return Amount{}, fmt.Errorf("%w: negative decimals %d", ErrParse, targetDecimals)
	}
	if b.IsZero() {
		return Amount{}, ErrDivisionByZero
	}

	num := new(big.Int).Set(a.big())
	den := new(big.Int).Set(b.big())
	shift := targetDecimals + b.decimals - a.decimals
	if shift >= 0 {
		num.Mul(num, pow10(shift))
	} else {
		den.Mul(den, pow10(-shift))
	}
	return fromBig(num.Quo(num, den), targetDecimals)
}

// MulDiv returns a * num / den with a single truncation, keeping the scale.
func (a Amount) MulDiv(num, den sdkmath.Int) (Amount, error) {
	if den.IsNil() || den.IsZero() {
		return Amount{}, ErrDivisionByZero
	}
	product := new(big.Int).Mul(a.big(), num.BigInt())
	return fromBig(product.Quo(product, den.BigInt()), a.decimals)
}

// Rescale converts to another scale, truncating toward zero when reducing precision.
func (a Amount) Rescale(decimals int) (Amount, error) {
	if decimals < 0 {
		return Amount{}, fmt.Errorf("%w: negative decimals %d", ErrParse, decimals)
	}
	switch {
	case decimals == a.decimals:
		return a, nil
	case decimals > a.decimals:
		return fromBig(new(big.Int).Mul(a.big(), pow10(decimals-a.decimals)), decimals)
	default:
		return fromBig(new(big.Int).Quo(a.big(), pow10(a.decimals-decimals)), decimals)
	}
}

// Cmp compares the represented values, rescaling internally when scales differ.
func (a Amount) Cmp(b Amount) int {
	x, y := a.big(), b.big()
	switch {
	case a.decimals < b.decimals:
		x = new(big.Int).Mul(x, pow10(b.decimals-a.decimals))
	case a.decimals > b.decimals:
		y = new(big.Int).Mul(y, pow10(a.decimals-b.decimals))
	}
	return x.Cmp(y)
}

// Equal reports identical raw value and scale.
func (a Amount) Equal(b Amount) bool {
	return a.decimals == b.decimals && a.big().Cmp(b.big()) == 0
}

// Float64 is for chart points and logs only, never for further arithmetic.
func (a Amount) Float64() float64 {
	r, err := a.Rescale(min(a.decimals, sdkmath.LegacyPrecision))
	if err != nil {
		return 0
	}
	f, err := sdkmath.LegacyNewDecFromBigIntWithPrec(r.big(), int64(r.decimals)).Float64()
	if err != nil {
		return 0
	}
	return f
}

// Format renders at most n fractional digits. Extra digits are truncated, never rounded,
// so a quote is never over-reported. Trailing zeros are dropped.
func (a Amount) Format(n int) string {
	if n < 0 {
		n = 0
	}
	b := a.big()
	neg := b.Sign() < 0
	digits := new(big.Int).Abs(b).String()
	if len(digits) <= a.decimals {
		digits = strings.Repeat("0", a.decimals-len(digits)+1) + digits
	}

	intPart := digits[:len(digits)-a.decimals]
	fracPart := digits[len(digits)-a.decimals:]
	if len(fracPart) > n {
		fracPart = fracPart[:n]
	}
	fracPart = strings.TrimRight(fracPart, "0")

	out := intPart
	if fracPart != "" {
		out += "." + fracPart
	}
	if neg && out != "0" {
		out = "-" + out
	}
	return out
}

// String renders the full precision value.
func (a Amount) String() string {
	return a.Format(a.decimals)
}

// MarshalJSON encodes the value as its full-precision decimal string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// Portion returns the share of total held by part as a percentage string with two
// truncated decimals, e.g. "12.34". A zero total yields "0".
func Portion(part, total Amount) string {
	if total.IsZero() {
		return "0"
	}
	p, err := part.Rescale(total.decimals)
	if err != nil {
		return "0"
	}
	bps := new(big.Int).Mul(p.big(), big.NewInt(10_000))
	bps.Quo(bps, total.big())
	pct, err := fromBig(bps, 2)
	if err != nil {
		return "0"
	}
	return pct.Format(2)
}

func (a Amount) big() *big.Int {
	if a.raw.IsNil() {
		return new(big.Int)
	}
	return a.raw.BigInt()
}

func sameScale(a, b Amount) error {
	if a.decimals != b.decimals {
		return fmt.Errorf("%w: %d vs %d", ErrDecimalsMismatch, a.decimals, b.decimals)
	}
	return nil
}

func fromBig(b *big.Int, decimals int) (Amount, error) {
	if b.BitLen() > sdkmath.MaxBitLen {
		return Amount{}, fmt.Errorf("%w: %d bits", ErrOverflow, b.BitLen())
	}
	return Amount{raw: sdkmath.NewIntFromBigInt(b), decimals: decimals}, nil
}

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}
