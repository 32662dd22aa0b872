package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/wednesdev-id/puller-chat-dashboard/internal/errors"
	"github.com/wednesdev-id/puller-chat-dashboard/internal/models"
)

// Status reports the current connection state machine snapshot
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	snap := h.manager.Snapshot()

	response := &models.StatusResponse{
		Phase:     string(snap.Phase),
		SessionID: snap.SessionID,
		Timestamp: time.Now().Unix(),
	}
	if snap.Connected() {
		response.DashboardURL = h.dashboardURL
	}

	h.writeJSON(w, response, http.StatusOK)
}

// Connect handles a manual connect intent
func (h *Handler) Connect(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Connect(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}

	snap := h.manager.Snapshot()
	h.writeJSON(w, &models.StatusResponse{
		Phase:     string(snap.Phase),
		SessionID: snap.SessionID,
		Timestamp: time.Now().Unix(),
	}, http.StatusAccepted)
}

// AutoConnect handles the auto-setup connect intent: reuse or create a
// bridge session, surface the pairing artifact, then poll for status.
func (h *Handler) AutoConnect(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.AutoConnect(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}

	snap := h.manager.Snapshot()
	response := &models.StatusResponse{
		Phase:     string(snap.Phase),
		SessionID: snap.SessionID,
		Timestamp: time.Now().Unix(),
	}
	if h.dashboardURL != "" {
		response.DashboardURL = h.dashboardURL
	}
	h.writeJSON(w, response, http.StatusAccepted)
}

// Disconnect handles a disconnect intent. The target session may be
// named in the body; when omitted the current session is stopped.
func (h *Handler) Disconnect(w http.ResponseWriter, r *http.Request) {
	var req models.DisconnectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		h.writeAppError(w, errors.InvalidRequest("Invalid request body: "+err.Error()))
		return
	}

	if err := h.manager.Disconnect(r.Context(), req.SessionID); err != nil {
		h.writeError(w, err)
		return
	}

	snap := h.manager.Snapshot()
	h.writeJSON(w, &models.StatusResponse{
		Phase:     string(snap.Phase),
		Timestamp: time.Now().Unix(),
	}, http.StatusOK)
}
