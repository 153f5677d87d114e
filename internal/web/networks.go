package web

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/rev-net/revdash/internal/chain"
	"github.com/rev-net/revdash/internal/config"
	"github.com/rev-net/revdash/internal/fixedpoint"
	"github.com/rev-net/revdash/internal/pricing"
	"github.com/rev-net/revdash/internal/scheduler"
	"github.com/rev-net/revdash/internal/timeline"
	"github.com/rev-net/revdash/internal/types"
)

const (
	defaultChartCycles = 5
	maxChartCycles     = 50
	defaultListLimit   = 50
	maxListLimit       = 500
	maxStagePosition   = 1 << 16
)

type networkSummary struct {
	Key             string             `json:"key"`
	Name            string             `json:"name"`
	ChainID         int64              `json:"chain_id"`
	ChainName       string             `json:"chain_name"`
	ProjectID       uint64             `json:"project_id"`
	TokenSymbol     string             `json:"token_symbol"`
	TokenDecimals   int                `json:"token_decimals"`
	Surplus         fixedpoint.Amount  `json:"surplus"`
	TotalSupply     fixedpoint.Amount  `json:"total_supply"`
	PendingReserved fixedpoint.Amount  `json:"pending_reserved"`
	ExitFloor       *fixedpoint.Amount `json:"exit_floor,omitempty"`
	ActiveStage     *int               `json:"active_stage"`
	GroupChainIDs   []int64            `json:"group_chain_ids"`
	RefreshedAt     time.Time          `json:"refreshed_at"`
	LastError       string             `json:"last_error,omitempty"`
}

type stageResponse struct {
	types.Stage
	Position   int                  `json:"position"`
	End        *time.Time           `json:"end,omitempty"`
	Active     bool                 `json:"active"`
	Display    stageDisplay         `json:"display"`
	PriceSteps []pricing.PricePoint `json:"price_steps"`
}

type stageDisplay struct {
	Decay    string `json:"price_increase"`
	Split    string `json:"split"`
	Tax      string `json:"cash_out_tax"`
	Duration string `json:"duration"`
}

// stageNavigation is the stage picker: the selected position defaults to the active stage
// and is clamped to the stages that exist.
type stageNavigation struct {
	Selected int  `json:"selected"`
	HasPrev  bool `json:"has_prev"`
	HasNext  bool `json:"has_next"`
}

type currentPrice struct {
	Stage  int               `json:"stage"`
	Cycle  int               `json:"cycle"`
	Weight fixedpoint.Amount `json:"weight"`
	Price  fixedpoint.Amount `json:"price"`
}

type activityResponse struct {
	types.ActivityItem
	DisplayName string `json:"display_name"`
	TxURL       string `json:"tx_url,omitempty"`
}

type participantResponse struct {
	types.Participant
	DisplayName string `json:"display_name"`
}

func (ws *WebServer) handleListNetworks(w http.ResponseWriter, r *http.Request) {
	now := ws.now()
	views := ws.source.Networks()
	out := make([]networkSummary, 0, len(views))
	for _, v := range views {
		out = append(out, summarize(v, now))
	}

	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"networks": out,
		"count":    len(out),
	})
}

// handleGetNetwork returns a network with its ordered stages, each with a price chart, where
// the schedule stands right now, and the stage picker state for ?stage=N.
func (ws *WebServer) handleGetNetwork(w http.ResponseWriter, r *http.Request) {
	view, ok := ws.lookup(w, r)
	if !ok {
		return
	}
	cycles, err := parseBounded(r, "cycles", defaultChartCycles, maxChartCycles)
	if err != nil {
		ws.writeError(w, r, err)
		return
	}

	selected, err := parseBounded(r, "stage", -1, maxStagePosition)
	if err != nil {
		ws.writeError(w, r, err)
		return
	}

	now := ws.now()
	tl := timeline.New(view.Network.Stages)
	activeIndex, hasActive := tl.ActiveIndex(now)
	nav := timeline.NewNavigator(tl, now)
	if selected >= 0 {
		nav = nav.Select(selected)
	}

	stages := make([]stageResponse, 0, tl.Len())
	for i, s := range tl.Stages() {
		steps, err := pricing.PriceSteps(s, nativeDecimals, cycles)
		if err != nil {
			ws.writeError(w, r, fmt.Errorf("stage %d chart: %w", s.Index, err))
			return
		}
		sr := stageResponse{
			Stage:      s,
			Position:   i,
			Active:     hasActive && i == activeIndex,
			PriceSteps: steps,
			Display: stageDisplay{
				Decay:    s.DecayPercent.String(),
				Split:    s.ReservedPercent.String(),
				Tax:      s.CashOutTaxRate.String(),
				Duration: "indefinite",
			},
		}
		if end, finite := s.End(); finite {
			sr.End = &end
			sr.Display.Duration = timeline.FormatSeconds(s.Duration)
		}
		stages = append(stages, sr)
	}

	response := map[string]interface{}{
		"network":         summarize(view, now),
		"stages":          stages,
		"current":         nil,
		"next_transition": nil,
		"countdown":       nil,
		"navigation": stageNavigation{
			Selected: nav.Selected(),
			HasPrev:  nav.HasPrev(),
			HasNext:  nav.HasNext(),
		},
	}

	if hasActive {
		active, _ := tl.Stage(activeIndex)
		weight, cycle, err := pricing.CurrentWeight(active, now)
		if err != nil {
			ws.writeError(w, r, fmt.Errorf("%w: %w", errUnpriceable, err))
			return
		}
		price, err := pricing.TokenPrice(nativeDecimals, weight, active.ReservedPercent)
		if err != nil {
			ws.writeError(w, r, err)
			return
		}
		response["current"] = currentPrice{Stage: activeIndex, Cycle: cycle, Weight: weight, Price: price}
	}
	if next, ok := tl.NextTransition(now); ok {
		response["next_transition"] = next
	}
	if d, ok := tl.Countdown(now); ok {
		response["countdown"] = map[string]interface{}{
			"seconds": int64(d / time.Second),
			"display": timeline.FormatSeconds(d),
		}
	}

	ws.writeJSONResponse(w, http.StatusOK, response)
}

func (ws *WebServer) handleGetActivity(w http.ResponseWriter, r *http.Request) {
	view, ok := ws.lookup(w, r)
	if !ok {
		return
	}
	limit, err := parseBounded(r, "limit", defaultListLimit, maxListLimit)
	if err != nil {
		ws.writeError(w, r, err)
		return
	}
	kind := types.ActivityKind(r.URL.Query().Get("kind"))
	if kind != "" && kind != types.ActivityPay && kind != types.ActivityCashOut {
		ws.writeError(w, r, fmt.Errorf("%w: unknown kind %q", errBadRequest, kind))
		return
	}

	items := make([]activityResponse, 0, limit)
	for _, it := range view.Activity {
		if len(items) == limit {
			break
		}
		if kind != "" && it.Kind != kind {
			continue
		}
		items = append(items, activityResponse{
			ActivityItem: it,
			DisplayName:  chain.DisplayName(r.Context(), ws.resolver, it.Account),
			TxURL:        config.TxURL(it.ChainID, it.TxHash),
		})
	}

	// stored totals outlive the capped feed; a failing database only drops them
	summary, err := ws.source.ActivitySummary(r.Context(), view.Network.ChainID, view.Network.ProjectID)
	if err != nil {
		ws.log.Warn().Err(err).Str("network", view.Network.Key()).Msg("Activity summary unavailable")
		summary = nil
	}

	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"activity": items,
		"count":    len(items),
		"summary":  summary,
	})
}

func (ws *WebServer) handleGetParticipants(w http.ResponseWriter, r *http.Request) {
	view, ok := ws.lookup(w, r)
	if !ok {
		return
	}
	limit, err := parseBounded(r, "limit", defaultListLimit, maxListLimit)
	if err != nil {
		ws.writeError(w, r, err)
		return
	}

	rows := view.Participants
	if len(rows) > limit {
		rows = rows[:limit]
	}
	out := make([]participantResponse, 0, len(rows))
	for _, p := range rows {
		out = append(out, participantResponse{
			Participant: p,
			DisplayName: chain.DisplayName(r.Context(), ws.resolver, p.Address),
		})
	}

	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"participants": out,
		"count":        len(out),
		"total":        len(view.Participants),
	})
}

func (ws *WebServer) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	view, ok := ws.lookup(w, r)
	if !ok {
		return
	}
	limit, err := parseBounded(r, "limit", defaultListLimit, maxListLimit)
	if err != nil {
		ws.writeError(w, r, err)
		return
	}

	snapshots, err := ws.source.History(r.Context(), view.Network.ChainID, view.Network.ProjectID, limit)
	if err != nil {
		ws.writeError(w, r, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"snapshots": snapshots,
		"count":     len(snapshots),
		"limit":     limit,
	})
}

// lookup resolves the {chain}/{project} route variables, writing a 404 when the network is
// not being tracked.
func (ws *WebServer) lookup(w http.ResponseWriter, r *http.Request) (scheduler.NetworkView, bool) {
	vars := mux.Vars(r)
	chainID, err := strconv.ParseInt(vars["chain"], 10, 64)
	if err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid chain id")
		return scheduler.NetworkView{}, false
	}
	projectID, err := strconv.ParseUint(vars["project"], 10, 64)
	if err != nil {
		ws.writeErrorResponse(w, http.StatusBadRequest, "Invalid project id")
		return scheduler.NetworkView{}, false
	}

	view, ok := ws.source.Network(chainID, projectID)
	if !ok {
		ws.writeErrorResponse(w, http.StatusNotFound, "Network not found")
		return scheduler.NetworkView{}, false
	}
	return view, true
}

func summarize(v scheduler.NetworkView, now time.Time) networkSummary {
	n := v.Network
	s := networkSummary{
		Key:             n.Key(),
		Name:            n.Name,
		ChainID:         n.ChainID,
		ChainName:       config.ChainName(n.ChainID),
		ProjectID:       n.ProjectID,
		TokenSymbol:     n.TokenSymbol,
		TokenDecimals:   n.TokenDecimals,
		Surplus:         n.Treasury.Surplus,
		TotalSupply:     n.Treasury.TotalSupply,
		PendingReserved: n.Treasury.PendingReserved,
		ExitFloor:       v.ExitFloor,
		GroupChainIDs:   v.Group,
		RefreshedAt:     v.RefreshedAt,
		LastError:       v.LastError,
	}
	if i, ok := timeline.New(n.Stages).ActiveIndex(now); ok {
		s.ActiveStage = &i
	}
	return s
}

// parseBounded reads an optional positive integer query parameter.
func parseBounded(r *http.Request, key string, fallback, upper int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 || v > upper {
		return 0, fmt.Errorf("%w: %s must be between 0 and %d", errBadRequest, key, upper)
	}
	return v, nil
}
