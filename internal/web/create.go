package web

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rev-net/revdash/internal/create"
	"github.com/rev-net/revdash/internal/pricing"
	"github.com/rev-net/revdash/internal/types"
)

const maxBodyBytes = 1 << 20

// createStepRequest carries the whole form back with the transition to apply to it.
type createStepRequest struct {
	State    create.FormState   `json:"state"`
	Action   string             `json:"action"`
	Details  *create.Details    `json:"details,omitempty"`
	Token    *create.Token      `json:"token,omitempty"`
	Stage    *create.StageInput `json:"stage,omitempty"`
	Index    int                `json:"index,omitempty"`
	Operator string             `json:"operator,omitempty"`
	Premint  string             `json:"premint,omitempty"`
}

type previewStage struct {
	Stage      types.Stage          `json:"stage"`
	PriceSteps []pricing.PricePoint `json:"price_steps"`
}

func (ws *WebServer) handleCreateStep(w http.ResponseWriter, r *http.Request) {
	var req createStepRequest
	if err := decodeBody(w, r, &req); err != nil {
		ws.writeError(w, r, err)
		return
	}

	next, err := applyStep(req)
	if err != nil {
		ws.writeError(w, r, err)
		return
	}
	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"state": next,
		"step":  next.Step.String(),
	})
}

func applyStep(req createStepRequest) (create.FormState, error) {
	s := req.State
	switch req.Action {
	case "set_details":
		if req.Details == nil {
			return s, fmt.Errorf("%w: details are required", errBadRequest)
		}
		return s.SetDetails(*req.Details)
	case "set_token":
		if req.Token == nil {
			return s, fmt.Errorf("%w: token is required", errBadRequest)
		}
		return s.SetToken(*req.Token)
	case "set_operator":
		return s.SetOperator(req.Operator, req.Premint)
	case "add_stage":
		if req.Stage == nil {
			return s, fmt.Errorf("%w: stage is required", errBadRequest)
		}
		return s.AddStage(*req.Stage)
	case "remove_stage":
		return s.RemoveStage(req.Index)
	case "next":
		return s.Next()
	case "back":
		return s.Back()
	default:
		return s, fmt.Errorf("%w: unknown action %q", errBadRequest, req.Action)
	}
}

// handleCreatePreview builds the deployer arguments for a completed form and charts each
// stage as it would run if deployed now.
func (ws *WebServer) handleCreatePreview(w http.ResponseWriter, r *http.Request) {
	var form create.FormState
	if err := decodeBody(w, r, &form); err != nil {
		ws.writeError(w, r, err)
		return
	}

	cfg, err := create.BuildDeployConfig(form, ws.now())
	if err != nil {
		ws.writeError(w, r, err)
		return
	}

	stages := cfg.PreviewStages()
	preview := make([]previewStage, 0, len(stages))
	for _, s := range stages {
		steps, err := pricing.PriceSteps(s, nativeDecimals, defaultChartCycles)
		if err != nil {
			ws.writeError(w, r, err)
			return
		}
		preview = append(preview, previewStage{Stage: s, PriceSteps: steps})
	}

	ws.writeJSONResponse(w, http.StatusOK, map[string]interface{}{
		"config": cfg,
		"stages": preview,
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: malformed JSON body: %v", errBadRequest, err)
	}
	return nil
}
