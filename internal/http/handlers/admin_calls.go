package handlers

import (
	"net/http"
	"strconv"

	"github.com/frontdesk-ai/platform/internal/calllog"
	"github.com/frontdesk-ai/platform/pkg/logging"
)

// AdminCallsHandler lists recent calls for the business dashboard.
type AdminCallsHandler struct {
	store  *calllog.Store
	logger *logging.Logger
}

// NewAdminCallsHandler creates the handler. A nil store yields empty lists.
func NewAdminCallsHandler(store *calllog.Store, logger *logging.Logger) *AdminCallsHandler {
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminCallsHandler{store: store, logger: logger}
}

type callListResponse struct {
	BusinessID string               `json:"business_id"`
	Calls      []calllog.CallRecord `json:"calls"`
}

// ListRecent handles GET /admin/calls?business_id=...&limit=N.
func (h *AdminCallsHandler) ListRecent(w http.ResponseWriter, r *http.Request) {
	businessID := r.URL.Query().Get("business_id")
	if businessID == "" {
		writeJSON(w, http.StatusBadRequest, turnErrorResponse{Error: "business_id is required"})
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			writeJSON(w, http.StatusBadRequest, turnErrorResponse{Error: "limit must be between 1 and 500"})
			return
		}
		limit = parsed
	}

	calls, err := h.store.ListRecent(r.Context(), businessID, limit)
	if err != nil {
		h.logger.Error("call listing failed", "error", err, "business_id", businessID)
		writeJSON(w, http.StatusInternalServerError, turnErrorResponse{Error: "failed to list calls"})
		return
	}
	if calls == nil {
		calls = []calllog.CallRecord{}
	}

	writeJSON(w, http.StatusOK, callListResponse{BusinessID: businessID, Calls: calls})
}
