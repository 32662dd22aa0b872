package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/wednesdev-id/puller-chat-dashboard/internal/errors"
	"github.com/wednesdev-id/puller-chat-dashboard/internal/models"
)

// GetConversations returns the sidebar conversation list. While no
// usable session exists the list is empty; passing ?filter=unread keeps
// only conversations with unread messages.
func (h *Handler) GetConversations(w http.ResponseWriter, r *http.Request) {
	conversations := h.conversations.Snapshot()

	if r.URL.Query().Get("filter") == "unread" {
		filtered := make([]models.Conversation, 0, len(conversations))
		for _, conv := range conversations {
			if conv.Unread > 0 {
				filtered = append(filtered, conv)
			}
		}
		conversations = filtered
	}

	h.writeJSON(w, conversations, http.StatusOK)
}

// GetMessages returns the message thread for one conversation. The
// requested conversation becomes the one the background refresh follows.
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	conversationID := r.PathValue("id")
	if conversationID == "" {
		h.writeAppError(w, errors.InvalidRequest("Conversation id is required"))
		return
	}

	h.messages.SelectConversation(conversationID)

	msgs, err := h.messages.Get(r.Context(), conversationID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, msgs, http.StatusOK)
}

// SendMessage handles requests to send a message to a conversation
func (h *Handler) SendMessage(w http.ResponseWriter, r *http.Request) {
	var req models.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeAppError(w, errors.InvalidRequest("Invalid request body: "+err.Error()))
		return
	}

	if appErr := h.validator.ValidateSendMessageRequest(&req); appErr != nil {
		h.writeAppError(w, appErr)
		return
	}

	req.Content = h.validator.SanitizeMessage(req.Content)

	response, err := h.messages.Send(r.Context(), req.ConversationID, req.Content)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, response, http.StatusAccepted)
}
