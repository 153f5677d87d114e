package pricing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rev-net/revdash/internal/fixedpoint"
	"github.com/rev-net/revdash/internal/pricing"
	"github.com/rev-net/revdash/internal/types"
)

func TestPriceSteps(t *testing.T) {
	start := time.Unix(1_700_000_000, 0).UTC()
	stage := types.Stage{
		StartTime:       start,
		DecayFrequency:  24 * time.Hour,
		InitialWeight:   fixedpoint.MustParse("900", 18),
		DecayPercent:    fixedpoint.NewDecayPercent(100_000_000),
		ReservedPercent: fixedpoint.NewReservedPercent(0),
	}

	points, err := pricing.PriceSteps(stage, 18, 2)
	require.NoError(t, err)
	require.Len(t, points, 4)

	require.Equal(t, -1, points[0].Cycle)
	require.Equal(t, start.Add(-24*time.Hour), points[0].Start)
	require.Equal(t, "1000", points[0].Weight.String())
	require.Equal(t, "0.001", points[0].Price.String())

	require.Equal(t, "900", points[1].Weight.String())
	require.Equal(t, "810", points[2].Weight.String())
	require.Equal(t, start.Add(48*time.Hour), points[3].Start)
	require.Equal(t, "729", points[3].Weight.String())

	for i := 1; i < len(points); i++ {
		require.Equal(t, 1, points[i].Price.Cmp(points[i-1].Price), "price rises every cycle")
	}
}

func TestPriceStepsWithoutDecayFrequency(t *testing.T) {
	stage := types.Stage{
		InitialWeight:   fixedpoint.MustParse("1000", 18),
		DecayPercent:    fixedpoint.NewDecayPercent(100_000_000),
		ReservedPercent: fixedpoint.NewReservedPercent(0),
	}
	points, err := pricing.PriceSteps(stage, 18, 5)
	require.NoError(t, err)
	require.Len(t, points, 1)
	require.Equal(t, "0.001", points[0].Price.String())
}

func TestPriceStepsStopAtFullDecay(t *testing.T) {
	stage := types.Stage{
		DecayFrequency:  time.Hour,
		InitialWeight:   fixedpoint.MustParse("1000", 18),
		DecayPercent:    fixedpoint.NewDecayPercent(fixedpoint.DecayScale),
		ReservedPercent: fixedpoint.NewReservedPercent(0),
	}
	points, err := pricing.PriceSteps(stage, 18, 3)
	require.NoError(t, err)
	require.Len(t, points, 1, "no previous point and nothing after the weight hits zero")
}
