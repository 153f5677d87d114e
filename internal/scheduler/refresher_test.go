package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rev-net/revdash/internal/config"
	"github.com/rev-net/revdash/internal/datafetcher"
	"github.com/rev-net/revdash/internal/fixedpoint"
	"github.com/rev-net/revdash/internal/state"
	"github.com/rev-net/revdash/internal/types"
)

const (
	alice = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	bob   = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

var now = time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

type fakeSource struct {
	chainID int64
	err     error
	stages  []types.Stage
	surplus string
	supply  string
	pays    []types.PayEvent
	holders []types.Participant
}

func (f *fakeSource) ChainID() int64 { return f.chainID }

func (f *fakeSource) FetchStages(context.Context, uint64) ([]types.Stage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.stages, nil
}

func (f *fakeSource) FetchTreasury(_ context.Context, _ uint64, tokenDecimals int) (types.Treasury, error) {
	return types.Treasury{
		Surplus:         fixedpoint.MustParse(f.surplus, 18),
		TotalSupply:     fixedpoint.MustParse(f.supply, tokenDecimals),
		PendingReserved: fixedpoint.ZeroAmount(tokenDecimals),
	}, nil
}

func (f *fakeSource) FetchParticipants(context.Context, uint64, int, int) ([]types.Participant, error) {
	return f.holders, nil
}

func (f *fakeSource) FetchActivity(context.Context, uint64, int, int) ([]types.PayEvent, []types.CashOutEvent, error) {
	return f.pays, nil, nil
}

type fakeRecorder struct {
	mu        sync.Mutex
	snapshots []state.NetworkSnapshot
	activity  map[string]int
}

func (f *fakeRecorder) RecordSnapshot(_ context.Context, s state.NetworkSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshots = append(f.snapshots, s)
	return nil
}

func (f *fakeRecorder) RecordActivity(_ context.Context, name string, items []types.ActivityItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.activity == nil {
		f.activity = make(map[string]int)
	}
	f.activity[name] += len(items)
	return nil
}

// countingRecorder can also report how much activity it stored.
type countingRecorder struct {
	fakeRecorder
}

func (c *countingRecorder) ActivitySummary(_ context.Context, name string) (*state.ActivitySummary, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return &state.ActivitySummary{NetworkName: name, Payments: c.activity[name]}, nil
}

func stage() types.Stage {
	return types.Stage{
		StartTime:       now.Add(-48 * time.Hour),
		DecayFrequency:  24 * time.Hour,
		InitialWeight:   fixedpoint.MustParse("1000", 18),
		DecayPercent:    fixedpoint.NewDecayPercent(0),
		ReservedPercent: fixedpoint.NewReservedPercent(0),
		CashOutTaxRate:  fixedpoint.NewCashOutTaxRate(0),
		BoostRecipient:  bob,
	}
}

func holder(chainID int64, address, balance string) types.Participant {
	return types.Participant{
		Address:  address,
		ChainIDs: []int64{chainID},
		Balance:  fixedpoint.MustParse(balance, 18),
		Volume:   fixedpoint.MustParse("1", 18),
	}
}

func pay(chainID int64, hash string, at time.Time) types.PayEvent {
	return types.PayEvent{
		ChainID:      chainID,
		ProjectID:    3,
		TxHash:       hash,
		Timestamp:    at,
		Payer:        alice,
		Amount:       fixedpoint.MustParse("1", 18),
		TokensMinted: fixedpoint.MustParse("1000", 18),
	}
}

func omnichainFixture() (map[int64]datafetcher.Source, []config.TrackedNetwork) {
	sources := map[int64]datafetcher.Source{
		1: &fakeSource{
			chainID: 1, stages: []types.Stage{stage()}, surplus: "10", supply: "100",
			pays:    []types.PayEvent{pay(1, "0x01", now.Add(-time.Hour))},
			holders: []types.Participant{holder(1, alice, "60"), holder(1, bob, "40")},
		},
		10: &fakeSource{
			chainID: 10, stages: []types.Stage{stage()}, surplus: "5", supply: "100",
			pays:    []types.PayEvent{pay(10, "0x0a", now.Add(-time.Minute))},
			holders: []types.Participant{holder(10, alice, "100")},
		},
	}
	networks := []config.TrackedNetwork{
		{Name: "Revnet", ChainID: 1, ProjectID: 3, TokenSymbol: "REV", TokenDecimals: 18},
		{Name: "Revnet", ChainID: 10, ProjectID: 3, TokenSymbol: "REV", TokenDecimals: 18},
	}
	return sources, networks
}

func newTestRefresher(sources map[int64]datafetcher.Source, networks []config.TrackedNetwork, rec Recorder) *Refresher {
	r := NewRefresher(sources, networks, rec, 50)
	r.now = func() time.Time { return now }
	return r
}

func TestRunNowBuildsGroupViews(t *testing.T) {
	sources, networks := omnichainFixture()
	rec := &fakeRecorder{}
	r := newTestRefresher(sources, networks, rec)

	require.NoError(t, r.RunNow(context.Background()))

	views := r.Networks()
	require.Len(t, views, 2)
	assert.Equal(t, int64(1), views[0].Network.ChainID)
	assert.Equal(t, int64(10), views[1].Network.ChainID)
	assert.Equal(t, []int64{1, 10}, views[0].Group)

	mainnet, ok := r.Network(1, 3)
	require.True(t, ok)
	require.NotNil(t, mainnet.ExitFloor)
	assert.Equal(t, "0.1", mainnet.ExitFloor.String())
	assert.Equal(t, now, mainnet.RefreshedAt)

	// activity spans both chains, newest first
	require.Len(t, mainnet.Activity, 2)
	assert.Equal(t, "0x0a", mainnet.Activity[0].TxHash)
	assert.Equal(t, "0x01", mainnet.Activity[1].TxHash)

	// alice holds 160 of the 200 tokens across both chains
	require.Len(t, mainnet.Participants, 2)
	assert.Equal(t, alice, mainnet.Participants[0].Address)
	assert.Equal(t, "160", mainnet.Participants[0].Balance.String())
	assert.Equal(t, "80", mainnet.Participants[0].SupplyPortion)
	assert.Equal(t, []int64{1, 10}, mainnet.Participants[0].ChainIDs)
	assert.True(t, mainnet.Participants[1].IsBoostRecipient)

	require.Len(t, rec.snapshots, 2)
	assert.Equal(t, 2, rec.activity["Revnet"])
	assert.Equal(t, []string{"0x01"}, rec.snapshots[0].RecentTxHashes)
	require.NotNil(t, rec.snapshots[0].ActiveStage)
	assert.Equal(t, 0, *rec.snapshots[0].ActiveStage)
	assert.Nil(t, rec.snapshots[0].NextTransition)
}

func TestFailedNetworkKeepsPreviousView(t *testing.T) {
	sources, networks := omnichainFixture()
	r := newTestRefresher(sources, networks, nil)
	require.NoError(t, r.RunNow(context.Background()))

	boom := errors.New("subgraph down")
	sources[10].(*fakeSource).err = boom
	err := r.RunNow(context.Background())
	require.ErrorIs(t, err, boom)

	failed, ok := r.Network(10, 3)
	require.True(t, ok)
	assert.Contains(t, failed.LastError, "subgraph down")
	assert.Equal(t, "5", failed.Network.Treasury.Surplus.String())

	healthy, ok := r.Network(1, 3)
	require.True(t, ok)
	assert.Empty(t, healthy.LastError)
	assert.Equal(t, []int64{1}, healthy.Group)
}

func TestMissingSourceIsReported(t *testing.T) {
	r := newTestRefresher(map[int64]datafetcher.Source{}, []config.TrackedNetwork{
		{Name: "Orphan", ChainID: 42, ProjectID: 1, TokenSymbol: "ORP", TokenDecimals: 18},
	}, nil)
	require.ErrorContains(t, r.RunNow(context.Background()), "no source for chain 42")
	assert.Empty(t, r.Networks())
}

func TestNoSupplyLeavesExitFloorEmpty(t *testing.T) {
	sources, networks := omnichainFixture()
	sources[1].(*fakeSource).supply = "0"
	r := newTestRefresher(sources, networks[:1], nil)
	require.NoError(t, r.RunNow(context.Background()))

	v, ok := r.Network(1, 3)
	require.True(t, ok)
	assert.Nil(t, v.ExitFloor)
}

func TestInMemoryHistory(t *testing.T) {
	sources, networks := omnichainFixture()
	r := newTestRefresher(sources, networks, nil)
	ctx := context.Background()

	require.NoError(t, r.RunNow(ctx))
	sources[1].(*fakeSource).surplus = "12"
	r.now = func() time.Time { return now.Add(5 * time.Minute) }
	require.NoError(t, r.RunNow(ctx))

	h, err := r.History(ctx, 1, 3, 10)
	require.NoError(t, err)
	require.Len(t, h, 2)
	assert.Equal(t, "12", h[0].Treasury.Surplus.String())
	assert.Equal(t, "10", h[1].Treasury.Surplus.String())

	h, err = r.History(ctx, 1, 3, 1)
	require.NoError(t, err)
	require.Len(t, h, 1)

	_, err = r.History(ctx, 7, 7, 10)
	require.ErrorIs(t, err, ErrUnknownNetwork)
}

func TestGroupByNameKeepsFileOrder(t *testing.T) {
	groups := groupByName([]config.TrackedNetwork{
		{Name: "B", ChainID: 1},
		{Name: "A", ChainID: 1},
		{Name: "B", ChainID: 10},
	})
	require.Len(t, groups, 2)
	assert.Equal(t, "B", groups[0][0].Name)
	assert.Len(t, groups[0], 2)
	assert.Equal(t, "A", groups[1][0].Name)
}

func TestRegisterAllRejectsBadSpec(t *testing.T) {
	r := newTestRefresher(nil, nil, nil)
	require.Error(t, r.RegisterAll("every five minutes"))
	require.NoError(t, r.RegisterAll("0 */5 * * * *"))
}

func TestActivitySummary(t *testing.T) {
	sources, networks := omnichainFixture()
	ctx := context.Background()

	rec := &countingRecorder{}
	r := newTestRefresher(sources, networks, rec)
	require.NoError(t, r.RunNow(ctx))

	summary, err := r.ActivitySummary(ctx, 10, 3)
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, "Revnet", summary.NetworkName)
	assert.Equal(t, 2, summary.Payments)

	_, err = r.ActivitySummary(ctx, 7, 7)
	require.ErrorIs(t, err, ErrUnknownNetwork)

	// the plain recorder cannot count
	r = newTestRefresher(sources, networks, &fakeRecorder{})
	require.NoError(t, r.RunNow(ctx))
	summary, err = r.ActivitySummary(ctx, 1, 3)
	require.NoError(t, err)
	assert.Nil(t, summary)
}
