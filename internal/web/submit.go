package web

import (
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"

	"github.com/rev-net/revdash/internal/chain"
	"github.com/rev-net/revdash/internal/config"
	"github.com/rev-net/revdash/internal/fixedpoint"
	"github.com/rev-net/revdash/internal/types"
)

// submitRequest is a contract call prepared by the client. Data is 0x-prefixed calldata and
// Value is in whole native units, e.g. "0.5".
type submitRequest struct {
	ChainID int64  `json:"chain_id"`
	To      string `json:"to"`
	Data    string `json:"data"`
	Value   string `json:"value"`
}

// handleSubmitTx relays a prepared call to the configured submitter. The read-only
// deployment wires a submitter that refuses everything, which answers 501.
func (ws *WebServer) handleSubmitTx(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := decodeBody(w, r, &req); err != nil {
		ws.writeError(w, r, err)
		return
	}
	tx, err := req.toTxRequest()
	if err != nil {
		ws.writeError(w, r, err)
		return
	}

	status, err := ws.submitter.Submit(r.Context(), tx)
	if err != nil {
		ws.writeError(w, r, err)
		return
	}
	ws.log.Info().
		Int64("chain_id", tx.ChainID).
		Str("to", tx.To).
		Str("state", string(status.State)).
		Str("tx_hash", status.TxHash).
		Msg("Transaction submitted")

	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"status": status,
		"tx_url": config.TxURL(tx.ChainID, status.TxHash),
	})
}

func (req submitRequest) toTxRequest() (chain.TxRequest, error) {
	if _, ok := config.Chains[req.ChainID]; !ok {
		return chain.TxRequest{}, fmt.Errorf("%w: unsupported chain %d", errBadRequest, req.ChainID)
	}
	if err := types.ValidateAddress(req.To); err != nil {
		return chain.TxRequest{}, fmt.Errorf("%w: to: %v", errBadRequest, err)
	}
	data, err := hex.DecodeString(strings.TrimPrefix(req.Data, "0x"))
	if err != nil {
		return chain.TxRequest{}, fmt.Errorf("%w: data is not hex", errBadRequest)
	}

	value := fixedpoint.ZeroAmount(nativeDecimals)
	if req.Value != "" {
		if value, err = fixedpoint.Parse(req.Value, nativeDecimals); err != nil {
			return chain.TxRequest{}, err
		}
		if value.IsNegative() {
			return chain.TxRequest{}, fmt.Errorf("%w: value %s", fixedpoint.ErrNegativeAmount, value)
		}
	}
	return chain.TxRequest{ChainID: req.ChainID, To: req.To, Data: data, Value: value}, nil
}
