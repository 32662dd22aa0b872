package handlers

import (
	"net/http"
	"time"

	"github.com/wednesdev-id/puller-chat-dashboard/internal/models"
)

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	snap := h.manager.Snapshot()

	response := &models.HealthResponse{
		Status:    "ok",
		Phase:     string(snap.Phase),
		Connected: snap.Connected(),
		Timestamp: time.Now().Unix(),
	}

	h.writeJSON(w, response, http.StatusOK)
}
