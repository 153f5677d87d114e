package web

import (
	"fmt"
	"net/http"

	"github.com/rev-net/revdash/internal/datafetcher"
	"github.com/rev-net/revdash/internal/fixedpoint"
	"github.com/rev-net/revdash/internal/pricing"
	"github.com/rev-net/revdash/internal/scheduler"
	"github.com/rev-net/revdash/internal/timeline"
	"github.com/rev-net/revdash/internal/types"
)

// nativeDecimals is the precision of payments and of the surplus.
const nativeDecimals = datafetcher.NativeDecimals

type payQuoteResponse struct {
	Stage          int               `json:"stage"`
	Cycle          int               `json:"cycle"`
	Weight         fixedpoint.Amount `json:"weight"`
	Payment        fixedpoint.Amount `json:"payment"`
	TotalMinted    fixedpoint.Amount `json:"total_minted"`
	PayerTokens    fixedpoint.Amount `json:"payer_tokens"`
	ReservedTokens fixedpoint.Amount `json:"reserved_tokens"`
	BoostRecipient string            `json:"boost_recipient,omitempty"`
}

type cashOutQuoteResponse struct {
	Stage           int                `json:"stage"`
	Tokens          fixedpoint.Amount  `json:"tokens"`
	Reclaimed       fixedpoint.Amount  `json:"reclaimed"`
	TaxRate         fixedpoint.Percent `json:"tax_rate"`
	Surplus         fixedpoint.Amount  `json:"surplus"`
	EffectiveSupply fixedpoint.Amount  `json:"effective_supply"`
}

// handlePayQuote prices a payment at the active stage's current weight. Pass amount (native
// currency paid) for the tokens received, or tokens (payer tokens wanted) for the payment
// required.
func (ws *WebServer) handlePayQuote(w http.ResponseWriter, r *http.Request) {
	view, ok := ws.lookup(w, r)
	if !ok {
		return
	}
	stageIndex, active, err := ws.activeStage(view)
	if err != nil {
		ws.writeError(w, r, err)
		return
	}
	weight, cycle, err := pricing.CurrentWeight(active, ws.now())
	if err != nil {
		ws.writeError(w, r, fmt.Errorf("%w: %w", errUnpriceable, err))
		return
	}

	q := r.URL.Query()
	var payment fixedpoint.Amount
	switch {
	case q.Get("amount") != "":
		if payment, err = fixedpoint.Parse(q.Get("amount"), nativeDecimals); err != nil {
			ws.writeError(w, r, err)
			return
		}
	case q.Get("tokens") != "":
		tokens, err := fixedpoint.Parse(q.Get("tokens"), view.Network.TokenDecimals)
		if err != nil {
			ws.writeError(w, r, err)
			return
		}
		if payment, err = pricing.QuoteTokens(tokens, nativeDecimals, weight, active.ReservedPercent); err != nil {
			ws.writeError(w, r, err)
			return
		}
	default:
		ws.writeError(w, r, fmt.Errorf("%w: amount or tokens is required", errBadRequest))
		return
	}

	quote, err := pricing.QuotePayment(payment, weight, active.ReservedPercent)
	if err != nil {
		ws.writeError(w, r, err)
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, payQuoteResponse{
		Stage:          stageIndex,
		Cycle:          cycle,
		Weight:         weight,
		Payment:        payment,
		TotalMinted:    quote.TotalMinted,
		PayerTokens:    quote.PayerTokens,
		ReservedTokens: quote.ReservedTokens,
		BoostRecipient: active.BoostRecipient,
	})
}

// handleCashOutQuote prices cashing out tokens against the network's surplus at the active
// stage's tax rate.
func (ws *WebServer) handleCashOutQuote(w http.ResponseWriter, r *http.Request) {
	view, ok := ws.lookup(w, r)
	if !ok {
		return
	}
	raw := r.URL.Query().Get("tokens")
	if raw == "" {
		ws.writeError(w, r, fmt.Errorf("%w: tokens is required", errBadRequest))
		return
	}
	tokens, err := fixedpoint.Parse(raw, view.Network.TokenDecimals)
	if err != nil {
		ws.writeError(w, r, err)
		return
	}
	stageIndex, active, err := ws.activeStage(view)
	if err != nil {
		ws.writeError(w, r, err)
		return
	}

	t := view.Network.Treasury
	params := pricing.CashOutParams{
		Surplus:        t.Surplus,
		TotalSupply:    t.TotalSupply,
		TokensReserved: t.PendingReserved,
		TaxRate:        active.CashOutTaxRate,
	}
	reclaimed, err := pricing.QuoteCashOut(tokens, params)
	if err != nil {
		ws.writeError(w, r, err)
		return
	}
	supply, err := params.EffectiveSupply()
	if err != nil {
		ws.writeError(w, r, err)
		return
	}

	ws.writeJSONResponse(w, http.StatusOK, cashOutQuoteResponse{
		Stage:           stageIndex,
		Tokens:          tokens,
		Reclaimed:       reclaimed,
		TaxRate:         active.CashOutTaxRate,
		Surplus:         t.Surplus,
		EffectiveSupply: supply,
	})
}

func (ws *WebServer) activeStage(view scheduler.NetworkView) (int, types.Stage, error) {
	tl := timeline.New(view.Network.Stages)
	i, ok := tl.ActiveIndex(ws.now())
	if !ok {
		return 0, types.Stage{}, fmt.Errorf("%w: %s", errNoActiveStage, view.Network.Key())
	}
	s, _ := tl.Stage(i)
	return i, s, nil
}
