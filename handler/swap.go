package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/hellodex/cexbridge/model"
	"github.com/hellodex/cexbridge/queue"
	"github.com/hellodex/cexbridge/store"
	"github.com/hellodex/cexbridge/util"
	"github.com/rs/zerolog/log"
)

// SwapExecutor runs one swap synchronously; satisfied by the orchestrator.
type SwapExecutor interface {
	Execute(ctx context.Context, req model.SwapRequest) *model.SwapResult
}

type SwapHandler struct {
	executor SwapExecutor
}

func NewSwapHandler(executor SwapExecutor) *SwapHandler {
	return &SwapHandler{executor: executor}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Send()
	}
}

func decodeSwapRequest(w http.ResponseWriter, r *http.Request) (model.SwapRequest, bool) {
	var req model.SwapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, model.SwapResult{
			SwapResult: false,
			Message:    "invalid request body: " + err.Error(),
		})
		return req, false
	}

	if req.DestWalletAddress == "" {
		writeJSON(w, http.StatusBadRequest, model.SwapResult{
			SwapResult: false,
			Message:    "destWalletAddress is required",
		})
		return req, false
	}
	if _, err := util.CheckValidAddress(req.DestWalletAddress); err != nil {
		writeJSON(w, http.StatusBadRequest, model.SwapResult{
			SwapResult: false,
			Message:    "destWalletAddress: " + err.Error(),
		})
		return req, false
	}
	if !util.IsPositiveAmount(req.InputAmount) {
		writeJSON(w, http.StatusBadRequest, model.SwapResult{
			SwapResult: false,
			Message:    "inputAmount must be a positive number",
		})
		return req, false
	}

	return req, true
}

// ExecuteSwap runs the pipeline synchronously. Full success is 200; a staged
// failure is 400 with the stage named; the transfer-pending partial success
// keeps 200 so callers do not roll back the committed trading side effects.
func (h *SwapHandler) ExecuteSwap(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSwapRequest(w, r)
	if !ok {
		return
	}

	result := h.executor.Execute(r.Context(), req)

	status := http.StatusOK
	if !result.SwapResult && !result.TransferPending {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, result)
}

// ExecuteSwapAsync enqueues the swap and returns a request id immediately.
func (h *SwapHandler) ExecuteSwapAsync(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeSwapRequest(w, r)
	if !ok {
		return
	}

	sp := &queue.SwapPayload{
		RequestId: uuid.NewString(),
		Request:   req,
	}
	if err := queue.AddProcessingSwapQueue(sp); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{"requestId": sp.RequestId})
}

// SwapStatus reports the stored outcome of an async swap.
func (h *SwapHandler) SwapStatus(w http.ResponseWriter, r *http.Request) {
	requestId := r.PathValue("id")
	result, ok := store.GetSwapResult(requestId)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "unknown or still-running request"})
		return
	}
	writeJSON(w, http.StatusOK, result)
}
