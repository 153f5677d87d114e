package fixedpoint_test

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/rev-net/revdash/internal/fixedpoint"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		decimals int
		wantRaw  string
		wantErr  bool
	}{
		{"integer", "12", 6, "12000000", false},
		{"fraction", "1.25", 6, "1250000", false},
		{"leading dot", ".5", 2, "50", false},
		{"trailing dot", "3.", 1, "30", false},
		{"negative", "-0.5", 3, "-500", false},
		{"excess digits truncate", "0.1234567", 6, "123456", false},
		{"whitespace", "  7 ", 0, "7", false},
		{"eighteen decimals", "1", 18, "1000000000000000000", false},
		{"two dots", "1.2.3", 6, "", true},
		{"letters", "12abc", 6, "", true},
		{"exponent", "1e5", 6, "", true},
		{"empty", "", 6, "", true},
		{"lone dot", ".", 6, "", true},
		{"negative decimals", "1", -1, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := fixedpoint.Parse(tt.in, tt.decimals)
			if tt.wantErr {
				require.ErrorIs(t, err, fixedpoint.ErrParse)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.wantRaw, a.Raw().String())
			require.Equal(t, tt.decimals, a.Decimals())
		})
	}
}

func TestFormatTruncatesInsteadOfRounding(t *testing.T) {
	a := fixedpoint.NewAmountFromInt64(123456, 6)
	require.Equal(t, "0.12", a.Format(2))
	require.Equal(t, "0.1234", a.Format(4))
	require.Equal(t, "0.123456", a.Format(10))
	require.Equal(t, "0", a.Format(0))
	require.Equal(t, "0.123456", a.String())
}

func TestFormat(t *testing.T) {
	tests := []struct {
		raw      int64
		decimals int
		n        int
		want     string
	}{
		{1500000, 6, 6, "1.5"},
		{2000000, 6, 2, "2"},
		{5, 0, 4, "5"},
		{1, 18, 8, "0"},
		{1, 18, 18, "0.000000000000000001"},
		{-1999, 3, 2, "-1.99"},
		{-1, 3, 2, "0"},
		{999999, 6, 5, "0.99999"},
	}
	for _, tt := range tests {
		a := fixedpoint.NewAmountFromInt64(tt.raw, tt.decimals)
		require.Equal(t, tt.want, a.Format(tt.n), "raw=%d decimals=%d n=%d", tt.raw, tt.decimals, tt.n)
	}
}

func TestAddSubRequireSameScale(t *testing.T) {
	a := fixedpoint.MustParse("1.5", 6)
	b := fixedpoint.MustParse("0.25", 6)

	sum, err := a.Add(b)
	require.NoError(t, err)
	require.Equal(t, "1.75", sum.String())

	diff, err := a.Sub(b)
	require.NoError(t, err)
	require.Equal(t, "1.25", diff.String())

	_, err = a.Add(fixedpoint.MustParse("1", 18))
	require.ErrorIs(t, err, fixedpoint.ErrDecimalsMismatch)
	_, err = a.Sub(fixedpoint.MustParse("1", 18))
	require.ErrorIs(t, err, fixedpoint.ErrDecimalsMismatch)

	// operands are untouched
	require.Equal(t, "1.5", a.String())
}

func TestMulAndQuo(t *testing.T) {
	a := fixedpoint.MustParse("1.5", 2)
	b := fixedpoint.MustParse("2.25", 3)

	product, err := a.Mul(b)
	require.NoError(t, err)
	require.Equal(t, 5, product.Decimals())
	require.Equal(t, "3.375", product.String())

	truncated, err := product.Rescale(2)
	require.NoError(t, err)
	require.Equal(t, "3.37", truncated.String())

	q, err := fixedpoint.MustParse("1", 18).Quo(fixedpoint.MustParse("3", 6), 4)
	require.NoError(t, err)
	require.Equal(t, "0.3333", q.String())

	_, err = a.Quo(fixedpoint.ZeroAmount(2), 2)
	require.ErrorIs(t, err, fixedpoint.ErrDivisionByZero)

	_, err = a.QuoInt(0)
	require.ErrorIs(t, err, fixedpoint.ErrDivisionByZero)

	half, err := a.QuoInt(2)
	require.NoError(t, err)
	require.Equal(t, "0.75", half.String())

	tripled, err := a.MulInt(3)
	require.NoError(t, err)
	require.Equal(t, "4.5", tripled.String())

	_, err = a.MulDiv(sdkmath.OneInt(), sdkmath.ZeroInt())
	require.ErrorIs(t, err, fixedpoint.ErrDivisionByZero)
}

func TestOverflowIsAnError(t *testing.T) {
	huge := fixedpoint.MustParse("1", 76)
	_, err := huge.Mul(huge)
	require.ErrorIs(t, err, fixedpoint.ErrOverflow)
}

func TestCmpAcrossScales(t *testing.T) {
	require.Equal(t, 0, fixedpoint.MustParse("1.5", 2).Cmp(fixedpoint.MustParse("1.5", 18)))
	require.Equal(t, -1, fixedpoint.MustParse("1.49", 2).Cmp(fixedpoint.MustParse("1.5", 18)))
	require.Equal(t, 1, fixedpoint.MustParse("2", 0).Cmp(fixedpoint.MustParse("1.999", 3)))
	require.False(t, fixedpoint.MustParse("1.5", 2).Equal(fixedpoint.MustParse("1.5", 3)))
}

func TestZeroValueAmountIsUsable(t *testing.T) {
	var a fixedpoint.Amount
	require.True(t, a.IsZero())
	require.Equal(t, "0", a.String())
	require.True(t, a.Raw().IsZero())
}

func TestPortion(t *testing.T) {
	require.Equal(t, "12.34", fixedpoint.Portion(fixedpoint.MustParse("12.3456", 4), fixedpoint.MustParse("100", 4)))
	require.Equal(t, "100", fixedpoint.Portion(fixedpoint.MustParse("5", 18), fixedpoint.MustParse("5", 18)))
	require.Equal(t, "0", fixedpoint.Portion(fixedpoint.MustParse("5", 18), fixedpoint.ZeroAmount(18)))
}

func TestFloat64(t *testing.T) {
	require.InDelta(t, 0.5, fixedpoint.MustParse("0.5", 18).Float64(), 1e-12)
	require.InDelta(t, 1234.5, fixedpoint.MustParse("1234.5", 30).Float64(), 1e-9)
}

func TestJSONUsesFullPrecisionString(t *testing.T) {
	b, err := fixedpoint.MustParse("0.000001", 18).MarshalJSON()
	require.NoError(t, err)
	require.Equal(t, `"0.000001"`, string(b))
}

func TestAddSubRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		decimals := rapid.IntRange(0, 18).Draw(t, "decimals")
		x := fixedpoint.NewAmountFromInt64(rapid.Int64Range(-1e15, 1e15).Draw(t, "x"), decimals)
		y := fixedpoint.NewAmountFromInt64(rapid.Int64Range(-1e15, 1e15).Draw(t, "y"), decimals)

		sum, err := x.Add(y)
		require.NoError(t, err)
		back, err := sum.Sub(y)
		require.NoError(t, err)
		require.True(t, back.Equal(x))
	})
}

func TestFormatNeverExceedsValue(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		decimals := rapid.IntRange(0, 18).Draw(t, "decimals")
		n := rapid.IntRange(0, 18).Draw(t, "n")
		a := fixedpoint.NewAmountFromInt64(rapid.Int64Range(0, 1e18).Draw(t, "raw"), decimals)

		shown, err := fixedpoint.Parse(a.Format(n), decimals)
		require.NoError(t, err)
		require.LessOrEqual(t, shown.Cmp(a), 0)
	})
}
