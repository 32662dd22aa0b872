package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/wednesdev-id/puller-chat-dashboard/internal/archive"
	"github.com/wednesdev-id/puller-chat-dashboard/internal/errors"
)

// ArchiveMessages returns archived messages matching the query filters.
// Supports search, contact/sender/recipient filters, a date range, media
// and direction flags, sort/order, field projection and pagination.
func (h *Handler) ArchiveMessages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit, appErr := h.validator.ValidateLimit(q.Get("limit"))
	if appErr != nil {
		h.writeAppError(w, appErr)
		return
	}
	offset, appErr := h.validator.ValidateOffset(q.Get("offset"))
	if appErr != nil {
		h.writeAppError(w, appErr)
		return
	}
	if appErr := h.validator.ValidateOrder(q.Get("order")); appErr != nil {
		h.writeAppError(w, appErr)
		return
	}
	startDate, appErr := h.validator.ValidateDate(q.Get("start_date"), "start_date")
	if appErr != nil {
		h.writeAppError(w, appErr)
		return
	}
	endDate, appErr := h.validator.ValidateDate(q.Get("end_date"), "end_date")
	if appErr != nil {
		h.writeAppError(w, appErr)
		return
	}

	filter := archive.MessageFilter{
		ContactID: q.Get("contact_id"),
		FromUser:  q.Get("from"),
		ToUser:    q.Get("to"),
		Search:    q.Get("search"),
		StartDate: startDate,
		EndDate:   endDate,
		Sort:      q.Get("sort"),
		Order:     q.Get("order"),
		Fields:    splitFields(q.Get("fields")),
		Limit:     limit,
		Offset:    offset,
	}

	filter.HasMedia, appErr = parseBoolParam(q.Get("has_media"), "has_media")
	if appErr != nil {
		h.writeAppError(w, appErr)
		return
	}
	filter.FromMe, appErr = parseBoolParam(q.Get("from_me"), "from_me")
	if appErr != nil {
		h.writeAppError(w, appErr)
		return
	}

	result, err := h.archive.QueryMessages(r.Context(), filter)
	if err != nil {
		h.writeAppError(w, errors.DatabaseError(err))
		return
	}

	var messages interface{} = result.Messages
	if len(filter.Fields) > 0 {
		projected := make([]map[string]interface{}, 0, len(result.Messages))
		for _, m := range result.Messages {
			projected = append(projected, m.Project(filter.Fields))
		}
		messages = projected
	}

	h.writeJSON(w, map[string]interface{}{
		"messages": messages,
		"metadata": map[string]interface{}{
			"total":      result.Total,
			"count":      len(result.Messages),
			"pagination": result.Pagination,
			"statistics": result.Statistics,
		},
	}, http.StatusOK)
}

// ArchiveContacts returns archived contacts matching the query filters
func (h *Handler) ArchiveContacts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit, appErr := h.validator.ValidateLimit(q.Get("limit"))
	if appErr != nil {
		h.writeAppError(w, appErr)
		return
	}
	offset, appErr := h.validator.ValidateOffset(q.Get("offset"))
	if appErr != nil {
		h.writeAppError(w, appErr)
		return
	}
	if appErr := h.validator.ValidateOrder(q.Get("order")); appErr != nil {
		h.writeAppError(w, appErr)
		return
	}

	result, err := h.archive.QueryContacts(r.Context(), archive.ContactFilter{
		Search: q.Get("search"),
		Sort:   q.Get("sort"),
		Order:  q.Get("order"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		h.writeAppError(w, errors.DatabaseError(err))
		return
	}

	h.writeJSON(w, map[string]interface{}{
		"contacts": result.Contacts,
		"metadata": map[string]interface{}{
			"total":      result.Total,
			"count":      len(result.Contacts),
			"pagination": result.Pagination,
		},
	}, http.StatusOK)
}

// ArchiveConversations returns each archived contact joined with its
// most recent message, newest first.
func (h *Handler) ArchiveConversations(w http.ResponseWriter, r *http.Request) {
	conversations, err := h.archive.Conversations(r.Context())
	if err != nil {
		h.writeAppError(w, errors.DatabaseError(err))
		return
	}

	h.writeJSON(w, conversations, http.StatusOK)
}

func splitFields(raw string) []string {
	if raw == "" {
		return nil
	}
	fields := make([]string, 0)
	for _, f := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(f); trimmed != "" {
			fields = append(fields, trimmed)
		}
	}
	return fields
}

func parseBoolParam(raw, name string) (*bool, *errors.AppError) {
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, errors.ValidationError("Invalid " + name + " parameter: must be a boolean")
	}
	return &value, nil
}
