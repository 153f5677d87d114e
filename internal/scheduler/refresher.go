/*

The refresher keeps an in-memory view of every tracked network. On each cron tick it pulls
stages, treasury, activity and holders from the chain's subgraph, prices the exit floor,
merges activity across chains for networks deployed under the same name, then records a
snapshot. The web layer reads the latest views without touching the subgraph.

*/

package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/rev-net/revdash/internal/activity"
	"github.com/rev-net/revdash/internal/config"
	"github.com/rev-net/revdash/internal/datafetcher"
	"github.com/rev-net/revdash/internal/fixedpoint"
	"github.com/rev-net/revdash/internal/logger"
	"github.com/rev-net/revdash/internal/pricing"
	"github.com/rev-net/revdash/internal/state"
	"github.com/rev-net/revdash/internal/timeline"
	"github.com/rev-net/revdash/internal/types"
)

const (
	historyCap      = 288 // one day at the default five minute cadence
	snapshotTxCount = 10
)

var ErrUnknownNetwork = errors.New("network is not tracked")

// Recorder persists refresh results. A nil Recorder keeps everything in memory.
type Recorder interface {
	RecordSnapshot(ctx context.Context, s state.NetworkSnapshot) error
	RecordActivity(ctx context.Context, networkName string, items []types.ActivityItem) error
}

// HistoryReader is implemented by recorders that can read their snapshots back.
type HistoryReader interface {
	RecentSnapshots(ctx context.Context, networkKey string, limit int) ([]state.NetworkSnapshot, error)
}

// SummaryReader is implemented by recorders that can count the activity they stored.
type SummaryReader interface {
	ActivitySummary(ctx context.Context, networkName string) (*state.ActivitySummary, error)
}

// NetworkView is the latest refresh of one tracked network. Activity and Participants span
// every chain in the network's group.
type NetworkView struct {
	Network      types.Network        `json:"network"`
	Group        []int64              `json:"group_chain_ids"`
	RefreshedAt  time.Time            `json:"refreshed_at"`
	ExitFloor    *fixedpoint.Amount   `json:"exit_floor,omitempty"`
	Activity     []types.ActivityItem `json:"-"`
	Participants []types.Participant  `json:"-"`
	LastError    string               `json:"last_error,omitempty"`
}

// Refresher manages the refresh cron job and serves its results.
type Refresher struct {
	Cron     *cron.Cron
	sources  map[int64]datafetcher.Source
	groups   [][]config.TrackedNetwork
	recorder Recorder
	limit    int
	now      func() time.Time
	log      zerolog.Logger

	runMu sync.Mutex

	mu      sync.RWMutex
	views   map[string]NetworkView
	history map[string][]state.NetworkSnapshot
}

// NewRefresher groups tracked networks by name, keeping the file's order.
func NewRefresher(sources map[int64]datafetcher.Source, networks []config.TrackedNetwork, recorder Recorder, activityLimit int) *Refresher {
	l := logger.GetForComponent("scheduler")
	return &Refresher{
		Cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(&l)))),
		sources:  sources,
		groups:   groupByName(networks),
		recorder: recorder,
		limit:    activityLimit,
		now:      time.Now,
		log:      l,
		views:    make(map[string]NetworkView),
		history:  make(map[string][]state.NetworkSnapshot),
	}
}

// RegisterAll registers the refresh job.
func (r *Refresher) RegisterAll(refreshCron string) error {
	if _, err := r.Cron.AddFunc(refreshCron, r.refreshTask); err != nil {
		return fmt.Errorf("register refresh task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (r *Refresher) Start() {
	r.Cron.Start()
	r.log.Info().Int("groups", len(r.groups)).Msg("Scheduler started")
}

// Stop stops the cron scheduler and waits for a running refresh to finish.
func (r *Refresher) Stop() {
	<-r.Cron.Stop().Done()
	r.log.Info().Msg("Scheduler stopped")
}

// RunNow refreshes every network immediately and returns the first failure, if any. A failing
// network keeps its previous view.
func (r *Refresher) RunNow(ctx context.Context) error {
	r.runMu.Lock()
	defer r.runMu.Unlock()

	var firstErr error
	for _, group := range r.groups {
		if err := r.refreshGroup(ctx, group); err != nil {
			r.log.Error().Err(err).Str("network", group[0].Name).Msg("Refresh failed")
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (r *Refresher) refreshTask() {
	r.log.Debug().Msg("Running refresh task")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	_ = r.RunNow(ctx)
}

type fetched struct {
	tracked  config.TrackedNetwork
	network  types.Network
	pays     []types.PayEvent
	cashOuts []types.CashOutEvent
	holders  []types.Participant
}

func (r *Refresher) refreshGroup(ctx context.Context, group []config.TrackedNetwork) error {
	now := r.now()
	var (
		results []fetched
		errs    []error
	)
	for _, tracked := range group {
		f, err := r.fetch(ctx, tracked)
		if err != nil {
			errs = append(errs, err)
			r.markFailed(tracked, err)
			continue
		}
		results = append(results, f)
	}
	if len(results) == 0 {
		return errors.Join(errs...)
	}

	var (
		pays     []types.PayEvent
		cashOuts []types.CashOutEvent
		holders  []types.Participant
		chainIDs []int64
	)
	for _, f := range results {
		pays = append(pays, f.pays...)
		cashOuts = append(cashOuts, f.cashOuts...)
		holders = append(holders, f.holders...)
		chainIDs = append(chainIDs, f.network.ChainID)
	}
	sort.Slice(chainIDs, func(i, j int) bool { return chainIDs[i] < chainIDs[j] })

	lead := results[0].network
	feed := activity.Limit(activity.MergeFeed(pays, cashOuts, lead.TokenSymbol), r.limit)
	participants, err := activity.AggregateParticipants(holders, groupSupply(results), boostRecipient(lead, now))
	if err != nil {
		errs = append(errs, fmt.Errorf("%s participants: %w", lead.Name, err))
		participants = nil
	}

	if r.recorder != nil {
		if err := r.recorder.RecordActivity(ctx, lead.Name, feed); err != nil {
			r.log.Warn().Err(err).Str("network", lead.Name).Msg("Failed to record activity")
		}
	}

	for _, f := range results {
		view := NetworkView{
			Network:      f.network,
			Group:        chainIDs,
			RefreshedAt:  now,
			Activity:     feed,
			Participants: participants,
		}
		snapshot := state.NewNetworkSnapshot(f.network, now)
		snapshot.ParticipantCount = len(f.holders)
		snapshot.RecentTxHashes = recentHashes(feed, f.network.ChainID)

		tl := timeline.New(f.network.Stages)
		if i, ok := tl.ActiveIndex(now); ok {
			active, _ := tl.Stage(i)
			snapshot.ActiveStage = &i
			floor, err := pricing.ExitFloorPrice(cashOutParams(f.network.Treasury, active.CashOutTaxRate))
			switch {
			case err == nil:
				view.ExitFloor = &floor
				snapshot.ExitFloor = &floor
			case errors.Is(err, pricing.ErrNoSupply):
			default:
				r.log.Warn().Err(err).Str("network", f.network.Key()).Msg("Exit floor unavailable")
			}
		}
		if next, ok := tl.NextTransition(now); ok {
			snapshot.NextTransition = &next
		}

		r.store(view, snapshot)
		if r.recorder != nil {
			if err := r.recorder.RecordSnapshot(ctx, snapshot); err != nil {
				r.log.Warn().Err(err).Str("network", f.network.Key()).Msg("Failed to record snapshot")
			}
		}
		r.log.Info().
			Str("network", f.network.Key()).
			Str("surplus", f.network.Treasury.Surplus.Format(6)).
			Int("activity", len(feed)).
			Msg("Network refreshed")
	}
	return errors.Join(errs...)
}

func (r *Refresher) fetch(ctx context.Context, tracked config.TrackedNetwork) (fetched, error) {
	src, ok := r.sources[tracked.ChainID]
	if !ok {
		return fetched{}, fmt.Errorf("no source for chain %d (%s)", tracked.ChainID, tracked.Name)
	}
	n, err := datafetcher.FetchNetwork(ctx, src, tracked)
	if err != nil {
		return fetched{}, err
	}
	pays, cashOuts, err := src.FetchActivity(ctx, tracked.ProjectID, tracked.TokenDecimals, r.limit)
	if err != nil {
		return fetched{}, fmt.Errorf("failed to fetch activity for %s: %w", tracked.Name, err)
	}
	holders, err := src.FetchParticipants(ctx, tracked.ProjectID, tracked.TokenDecimals, r.limit)
	if err != nil {
		return fetched{}, fmt.Errorf("failed to fetch participants for %s: %w", tracked.Name, err)
	}
	return fetched{tracked: tracked, network: n, pays: pays, cashOuts: cashOuts, holders: holders}, nil
}

func (r *Refresher) markFailed(tracked config.TrackedNetwork, err error) {
	key := fmt.Sprintf("%d:%d", tracked.ChainID, tracked.ProjectID)
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.views[key]; ok {
		v.LastError = err.Error()
		r.views[key] = v
	}
}

func (r *Refresher) store(view NetworkView, snapshot state.NetworkSnapshot) {
	key := view.Network.Key()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views[key] = view
	h := append(r.history[key], snapshot)
	if len(h) > historyCap {
		h = h[len(h)-historyCap:]
	}
	r.history[key] = h
}

// Networks returns the latest view of every refreshed network, ordered by name then chain.
func (r *Refresher) Networks() []NetworkView {
	r.mu.RLock()
	out := make([]NetworkView, 0, len(r.views))
	for _, v := range r.views {
		out = append(out, v)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Network.Name != out[j].Network.Name {
			return out[i].Network.Name < out[j].Network.Name
		}
		if out[i].Network.ChainID != out[j].Network.ChainID {
			return out[i].Network.ChainID < out[j].Network.ChainID
		}
		return out[i].Network.ProjectID < out[j].Network.ProjectID
	})
	return out
}

// Network returns the latest view of one network.
func (r *Refresher) Network(chainID int64, projectID uint64) (NetworkView, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.views[fmt.Sprintf("%d:%d", chainID, projectID)]
	return v, ok
}

// History returns recent snapshots, newest first: from the recorder when it can read them
// back, otherwise from memory.
func (r *Refresher) History(ctx context.Context, chainID int64, projectID uint64, limit int) ([]state.NetworkSnapshot, error) {
	key := fmt.Sprintf("%d:%d", chainID, projectID)
	if _, ok := r.Network(chainID, projectID); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNetwork, key)
	}
	if reader, ok := r.recorder.(HistoryReader); ok {
		return reader.RecentSnapshots(ctx, key, limit)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	h := r.history[key]
	out := make([]state.NetworkSnapshot, 0, len(h))
	for i := len(h) - 1; i >= 0; i-- {
		out = append(out, h[i])
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// ActivitySummary counts the activity recorded for the network's group. It is nil when the
// recorder cannot count, since the in-memory feed is capped and would undercount.
func (r *Refresher) ActivitySummary(ctx context.Context, chainID int64, projectID uint64) (*state.ActivitySummary, error) {
	v, ok := r.Network(chainID, projectID)
	if !ok {
		return nil, fmt.Errorf("%w: %d:%d", ErrUnknownNetwork, chainID, projectID)
	}
	reader, ok := r.recorder.(SummaryReader)
	if !ok {
		return nil, nil
	}
	return reader.ActivitySummary(ctx, v.Network.Name)
}

func groupByName(networks []config.TrackedNetwork) [][]config.TrackedNetwork {
	index := make(map[string]int)
	var groups [][]config.TrackedNetwork
	for _, n := range networks {
		i, ok := index[n.Name]
		if !ok {
			i = len(groups)
			index[n.Name] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], n)
	}
	return groups
}

// groupSupply sums outstanding supply across the group, or uses the lead chain alone when
// the chains disagree on decimals.
func groupSupply(results []fetched) fixedpoint.Amount {
	total := results[0].network.Treasury.TotalSupply
	for _, f := range results[1:] {
		sum, err := total.Add(f.network.Treasury.TotalSupply)
		if err != nil {
			return results[0].network.Treasury.TotalSupply
		}
		total = sum
	}
	return total
}

func boostRecipient(n types.Network, now time.Time) string {
	if s, ok := timeline.New(n.Stages).Active(now); ok {
		return s.BoostRecipient
	}
	return ""
}

func cashOutParams(t types.Treasury, tax fixedpoint.Percent) pricing.CashOutParams {
	return pricing.CashOutParams{
		Surplus:        t.Surplus,
		TotalSupply:    t.TotalSupply,
		TokensReserved: t.PendingReserved,
		TaxRate:        tax,
	}
}

func recentHashes(feed []types.ActivityItem, chainID int64) []string {
	hashes := []string{}
	for _, it := range feed {
		if it.ChainID != chainID {
			continue
		}
		hashes = append(hashes, it.TxHash)
		if len(hashes) == snapshotTxCount {
			break
		}
	}
	return hashes
}
