package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/frontdesk-ai/platform/internal/scheduling"
	"github.com/frontdesk-ai/platform/pkg/logging"
)

// AdminReservationsHandler exposes upcoming reservations to the business
// dashboard. Mounted behind admin JWT auth.
type AdminReservationsHandler struct {
	repo   scheduling.Repository
	logger *logging.Logger
	now    func() time.Time
}

// NewAdminReservationsHandler creates the handler.
func NewAdminReservationsHandler(repo scheduling.Repository, logger *logging.Logger) *AdminReservationsHandler {
	if repo == nil {
		panic("handlers: scheduling repository cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminReservationsHandler{repo: repo, logger: logger, now: time.Now}
}

type reservationListResponse struct {
	BusinessID   string                   `json:"business_id"`
	Days         int                      `json:"days"`
	Reservations []scheduling.Reservation `json:"reservations"`
}

// ListUpcoming handles GET /admin/reservations?business_id=...&days=N.
func (h *AdminReservationsHandler) ListUpcoming(w http.ResponseWriter, r *http.Request) {
	businessID := r.URL.Query().Get("business_id")
	if businessID == "" {
		writeJSON(w, http.StatusBadRequest, turnErrorResponse{Error: "business_id is required"})
		return
	}

	days := 7
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 90 {
			writeJSON(w, http.StatusBadRequest, turnErrorResponse{Error: "days must be between 1 and 90"})
			return
		}
		days = parsed
	}

	reservations, err := h.repo.ListScheduled(r.Context(), businessID, h.now(), days)
	if err != nil {
		h.logger.Error("reservation listing failed", "error", err, "business_id", businessID)
		writeJSON(w, http.StatusInternalServerError, turnErrorResponse{Error: "failed to list reservations"})
		return
	}
	if reservations == nil {
		reservations = []scheduling.Reservation{}
	}

	writeJSON(w, http.StatusOK, reservationListResponse{
		BusinessID:   businessID,
		Days:         days,
		Reservations: reservations,
	})
}
