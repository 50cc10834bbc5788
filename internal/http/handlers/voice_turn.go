package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/frontdesk-ai/platform/internal/conversation"
	"github.com/frontdesk-ai/platform/pkg/logging"
)

// maxTurnBodyBytes bounds one turn request; utterances are short and the
// memory blob is capped.
const maxTurnBodyBytes = 256 * 1024

// genericFailureReply is spoken when the turn engine fails unexpectedly.
// The call itself must never drop.
const genericFailureReply = "I'm sorry, I'm having a little trouble right now. Could you say that again?"

// VoiceTurnHandler is the telephony-facing entrypoint: one POST per caller
// utterance, reply text plus updated opaque state back.
type VoiceTurnHandler struct {
	processor conversation.TurnProcessor
	logger    *logging.Logger
}

// NewVoiceTurnHandler creates the handler.
func NewVoiceTurnHandler(processor conversation.TurnProcessor, logger *logging.Logger) *VoiceTurnHandler {
	if processor == nil {
		panic("handlers: turn processor cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &VoiceTurnHandler{processor: processor, logger: logger}
}

type turnErrorResponse struct {
	Error string `json:"error"`
}

// HandleTurn processes POST /v1/voice/turn.
func (h *VoiceTurnHandler) HandleTurn(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxTurnBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, turnErrorResponse{Error: "unreadable request body"})
		return
	}

	var req conversation.TurnRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, turnErrorResponse{Error: "invalid JSON body"})
		return
	}

	resp, err := h.processTurn(r, req)
	switch {
	case errors.Is(err, conversation.ErrInvalidTurn):
		writeJSON(w, http.StatusBadRequest, turnErrorResponse{Error: "utterance_text and business_id are required"})
		return
	case errors.Is(err, conversation.ErrBusinessNotFound):
		writeJSON(w, http.StatusNotFound, turnErrorResponse{Error: "unknown business"})
		return
	case err != nil:
		h.logger.Error("turn processing failed", "error", err, "business_id", req.BusinessID)
		writeJSON(w, http.StatusOK, conversation.TurnResponse{
			Reply:       genericFailureReply,
			ClientState: req.ClientState,
		})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// processTurn shields the call from panics in the turn engine: the caller
// hears a generic apology, never a dropped line.
func (h *VoiceTurnHandler) processTurn(r *http.Request, req conversation.TurnRequest) (resp conversation.TurnResponse, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("turn engine panicked", "panic", rec, "business_id", req.BusinessID)
			resp = conversation.TurnResponse{
				Reply:       genericFailureReply,
				ClientState: req.ClientState,
			}
			err = nil
		}
	}()
	return h.processor.ProcessTurn(r.Context(), req)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
