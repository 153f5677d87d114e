package types_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rev-net/revdash/internal/fixedpoint"
	"github.com/rev-net/revdash/internal/types"
)

const boost = "0x1111111111111111111111111111111111111111"

func validStage() types.Stage {
	return types.Stage{
		Index:           0,
		StartTime:       time.Unix(1_700_000_000, 0),
		Duration:        7 * 24 * time.Hour,
		InitialWeight:   fixedpoint.MustParse("1000", 18),
		DecayPercent:    fixedpoint.NewDecayPercent(50_000_000),
		ReservedPercent: fixedpoint.NewReservedPercent(2_000),
		CashOutTaxRate:  fixedpoint.NewCashOutTaxRate(6_000),
		BoostRecipient:  boost,
	}
}

func TestStageValidate(t *testing.T) {
	require.NoError(t, validStage().Validate())

	tests := []struct {
		name   string
		mutate func(*types.Stage)
	}{
		{"negative index", func(s *types.Stage) { s.Index = -1 }},
		{"negative duration", func(s *types.Stage) { s.Duration = -time.Second }},
		{"negative weight", func(s *types.Stage) { s.InitialWeight = fixedpoint.MustParse("-1", 18) }},
		{"decay over 100%", func(s *types.Stage) { s.DecayPercent = fixedpoint.NewDecayPercent(fixedpoint.DecayScale + 1) }},
		{"zero scale tax", func(s *types.Stage) { s.CashOutTaxRate = fixedpoint.Percent{} }},
		{"bad recipient", func(s *types.Stage) { s.BoostRecipient = "0x123" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validStage()
			tt.mutate(&s)
			require.ErrorIs(t, s.Validate(), types.ErrInvalidStage)
		})
	}
}

func TestStageEnd(t *testing.T) {
	s := validStage()
	end, ok := s.End()
	require.True(t, ok)
	require.Equal(t, s.StartTime.Add(7*24*time.Hour), end)

	s.Duration = 0
	_, ok = s.End()
	require.False(t, ok)
}

func TestNetworkValidate(t *testing.T) {
	n := types.Network{
		ChainID:       11155111,
		ProjectID:     3,
		Name:          "Revnet",
		TokenSymbol:   "REV",
		TokenDecimals: 18,
		Stages:        []types.Stage{validStage()},
		Treasury: types.Treasury{
			Surplus:         fixedpoint.MustParse("12.5", 18),
			TotalSupply:     fixedpoint.MustParse("1000", 18),
			PendingReserved: fixedpoint.MustParse("10", 18),
		},
	}
	require.NoError(t, n.Validate())
	require.Equal(t, "11155111:3", n.Key())

	bad := n
	bad.Treasury.PendingReserved = fixedpoint.MustParse("10", 6)
	require.ErrorIs(t, bad.Validate(), types.ErrInvalidNetwork)
	require.ErrorIs(t, bad.Validate(), types.ErrInvalidTreasury)

	bad = n
	bad.Stages = []types.Stage{{Index: 0, Duration: -1}}
	require.ErrorIs(t, bad.Validate(), types.ErrInvalidStage)

	bad = n
	bad.TokenSymbol = " "
	require.ErrorIs(t, bad.Validate(), types.ErrInvalidNetwork)
}

func TestEventValidate(t *testing.T) {
	pay := types.PayEvent{
		ChainID:      10,
		TxHash:       "0xabc",
		Timestamp:    time.Unix(1_700_000_000, 0),
		Payer:        boost,
		Amount:       fixedpoint.MustParse("1", 18),
		TokensMinted: fixedpoint.MustParse("800", 18),
	}
	require.NoError(t, pay.Validate())

	pay.Payer = "vitalik.eth"
	require.ErrorIs(t, pay.Validate(), types.ErrInvalidEvent)
	require.ErrorIs(t, pay.Validate(), types.ErrInvalidAddress)

	cashOut := types.CashOutEvent{
		ChainID:         10,
		TxHash:          "0xdef",
		Holder:          boost,
		TokensCashedOut: fixedpoint.MustParse("1", 18),
	}
	require.ErrorIs(t, cashOut.Validate(), types.ErrInvalidEvent, "missing timestamp")

	item := types.ActivityItem{Kind: "mint", ChainID: 1, TxHash: "0x01", Timestamp: time.Now(), Account: boost}
	require.ErrorIs(t, item.Validate(), types.ErrInvalidEvent)
}
