package pricing_test

import (
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/rev-net/revdash/internal/fixedpoint"
	"github.com/rev-net/revdash/internal/pricing"
	"github.com/rev-net/revdash/internal/types"
)

func TestNextWeight(t *testing.T) {
	w := fixedpoint.MustParse("1000", 18)

	tests := []struct {
		name  string
		decay uint64
		want  string
	}{
		{"no decay", 0, "1000"},
		{"5%", 50_000_000, "950"},
		{"one part per billion", 1, "999.999999"},
		{"full decay", fixedpoint.DecayScale, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, err := pricing.NextWeight(w, fixedpoint.NewDecayPercent(tt.decay))
			require.NoError(t, err)
			require.Equal(t, tt.want, next.Format(6))
			require.Equal(t, 18, next.Decimals())
		})
	}
}

func TestNextWeightTruncates(t *testing.T) {
	// 7 * 2/3 = 4.67 in raw units
	next, err := pricing.NextWeight(fixedpoint.NewAmountFromInt64(7, 0), fixedpoint.NewDecayPercent(333_333_334))
	require.NoError(t, err)
	require.Equal(t, "4", next.String())
}

func TestPreviousWeight(t *testing.T) {
	w := fixedpoint.MustParse("950", 18)

	prev, err := pricing.PreviousWeight(w, fixedpoint.NewDecayPercent(50_000_000))
	require.NoError(t, err)
	require.Equal(t, "1000", prev.String())

	same, err := pricing.PreviousWeight(w, fixedpoint.NewDecayPercent(0))
	require.NoError(t, err)
	require.True(t, same.Equal(w))

	_, err = pricing.PreviousWeight(w, fixedpoint.NewDecayPercent(fixedpoint.DecayScale))
	require.ErrorIs(t, err, fixedpoint.ErrDivisionByZero)

	_, err = pricing.PreviousWeight(w, fixedpoint.NewDecayPercent(fixedpoint.DecayScale+1))
	require.ErrorIs(t, err, fixedpoint.ErrInvalidPercent)
}

func TestWeightAfter(t *testing.T) {
	w := fixedpoint.MustParse("1000", 18)
	decay := fixedpoint.NewDecayPercent(100_000_000)

	after, err := pricing.WeightAfter(w, decay, 3)
	require.NoError(t, err)
	require.Equal(t, "729", after.String())

	unchanged, err := pricing.WeightAfter(w, decay, 0)
	require.NoError(t, err)
	require.True(t, unchanged.Equal(w))

	_, err = pricing.WeightAfter(w, decay, -1)
	require.Error(t, err)
}

func TestWeightRoundTripIsExactOnWholeBillionths(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		base := rapid.Uint64Range(0, 1<<53).Draw(t, "base")
		decay := rapid.Uint64Range(1, fixedpoint.DecayScale-1).Draw(t, "decay")

		raw := sdkmath.NewIntFromUint64(base).Mul(sdkmath.NewIntFromUint64(fixedpoint.DecayScale))
		w := fixedpoint.NewAmount(raw, 18)
		d := fixedpoint.NewDecayPercent(decay)

		next, err := pricing.NextWeight(w, d)
		require.NoError(t, err)
		prev, err := pricing.PreviousWeight(next, d)
		require.NoError(t, err)
		require.True(t, prev.Equal(w), "w=%s prev=%s", w.Raw(), prev.Raw())
	})
}

func TestWeightRoundTripStaysWithinTruncation(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		raw := rapid.Uint64().Draw(t, "raw")
		decay := rapid.Uint64Range(1, fixedpoint.DecayScale/2).Draw(t, "decay")

		w := fixedpoint.NewAmount(sdkmath.NewIntFromUint64(raw), 18)
		d := fixedpoint.NewDecayPercent(decay)

		next, err := pricing.NextWeight(w, d)
		require.NoError(t, err)
		prev, err := pricing.PreviousWeight(next, d)
		require.NoError(t, err)

		// each truncation loses less than one unit, amplified by S/(S-d) <= 2 on the way back
		gap := w.Raw().Sub(prev.Raw())
		require.False(t, gap.IsNegative())
		require.True(t, gap.LTE(sdkmath.NewInt(3)), "gap %s", gap)
	})
}

func TestCurrentWeight(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	stage := types.Stage{
		StartTime:      start,
		Duration:       10 * 24 * time.Hour,
		DecayFrequency: 24 * time.Hour,
		InitialWeight:  fixedpoint.MustParse("1000", 18),
		DecayPercent:   fixedpoint.NewDecayPercent(100_000_000), // 10%
	}

	tests := []struct {
		name  string
		now   time.Time
		want  string
		cycle int
	}{
		{"before start", start.Add(-time.Hour), "1000", 0},
		{"first cycle", start.Add(23 * time.Hour), "1000", 0},
		{"second cycle", start.Add(24 * time.Hour), "900", 1},
		{"third cycle", start.Add(50 * time.Hour), "810", 2},
		{"stage over", start.Add(30 * 24 * time.Hour), "348.67844", 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, cycle, err := pricing.CurrentWeight(stage, tt.now)
			require.NoError(t, err)
			require.Equal(t, tt.want, w.Format(6))
			require.Equal(t, tt.cycle, cycle)
		})
	}

	stage.DecayFrequency = 0
	w, cycle, err := pricing.CurrentWeight(stage, start.Add(5*24*time.Hour))
	require.NoError(t, err)
	require.Equal(t, "1000", w.String())
	require.Equal(t, 0, cycle)

	stage.Duration = 0
	stage.DecayFrequency = time.Second
	_, _, err = pricing.CurrentWeight(stage, start.Add(365*24*time.Hour))
	require.ErrorIs(t, err, fixedpoint.ErrOverflow)
}
