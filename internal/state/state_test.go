package state

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rev-net/revdash/internal/fixedpoint"
	"github.com/rev-net/revdash/internal/types"
)

func TestStoresRequireInitializedDB(t *testing.T) {
	require.Nil(t, DB)
	ctx := context.Background()

	_, err := SaveNetworkSnapshot(ctx, NetworkSnapshot{NetworkKey: "1:1"})
	require.ErrorIs(t, err, ErrNotInitialized)

	_, err = GetRecentSnapshots(ctx, "1:1", 10)
	require.ErrorIs(t, err, ErrNotInitialized)

	_, err = SaveActivity(ctx, "Revnet", nil)
	require.ErrorIs(t, err, ErrNotInitialized)

	_, err = GetRecentActivity(ctx, "Revnet", 10)
	require.ErrorIs(t, err, ErrNotInitialized)

	_, err = GetActivitySummary(ctx, "Revnet")
	require.ErrorIs(t, err, ErrNotInitialized)

	require.ErrorIs(t, EnsureSchema(), ErrNotInitialized)
	require.ErrorIs(t, TestDBConnection(), ErrNotInitialized)
	CloseDB()
}

func TestDSN(t *testing.T) {
	cfg := DBConfig{Host: "db", Port: 5433, User: "rev", Password: "pw", DBName: "revdash"}
	require.Equal(t, "host=db port=5433 user=rev password=pw dbname=revdash sslmode=disable", cfg.DSN())

	cfg.SSLMode = "require"
	require.Contains(t, cfg.DSN(), "sslmode=require")
}

func TestAmountFromColumn(t *testing.T) {
	a, err := amountFromColumn("1500000000000000000", 18)
	require.NoError(t, err)
	require.Equal(t, "1.5", a.String())

	_, err = amountFromColumn("1.5", 18)
	require.ErrorIs(t, err, fixedpoint.ErrParse)

	_, err = amountFromColumn("10", -1)
	require.ErrorIs(t, err, fixedpoint.ErrParse)
}

func TestNewNetworkSnapshot(t *testing.T) {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	n := types.Network{
		ChainID:   11155111,
		ProjectID: 3,
		Name:      "Revnet",
		Treasury: types.Treasury{
			Surplus:         fixedpoint.MustParse("2", 18),
			TotalSupply:     fixedpoint.MustParse("1000", 18),
			PendingReserved: fixedpoint.ZeroAmount(18),
		},
	}

	s := NewNetworkSnapshot(n, at)
	require.Equal(t, "11155111:3", s.NetworkKey)
	require.Equal(t, "Revnet", s.NetworkName)
	require.Equal(t, at, s.Timestamp)
	require.True(t, s.Treasury.Surplus.Equal(n.Treasury.Surplus))
	require.Nil(t, s.ExitFloor)
}

func TestClampLimit(t *testing.T) {
	require.Equal(t, 50, clampLimit(0))
	require.Equal(t, 50, clampLimit(-3))
	require.Equal(t, 50, clampLimit(10_000))
	require.Equal(t, 20, clampLimit(20))
}
