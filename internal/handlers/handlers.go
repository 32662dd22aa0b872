package handlers

import (
	"github.com/wednesdev-id/puller-chat-dashboard/internal/archive"
	"github.com/wednesdev-id/puller-chat-dashboard/internal/cache"
	"github.com/wednesdev-id/puller-chat-dashboard/internal/logger"
	"github.com/wednesdev-id/puller-chat-dashboard/internal/session"
	"github.com/wednesdev-id/puller-chat-dashboard/internal/validation"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	manager       *session.Manager
	conversations *cache.Conversations
	messages      *cache.Messages
	archive       *archive.Store
	validator     *validation.Validator
	log           *logger.Logger
	dashboardURL  string
}

// New creates a new handler instance
func New(manager *session.Manager, conversations *cache.Conversations, messages *cache.Messages, store *archive.Store, dashboardURL string, log *logger.Logger) *Handler {
	return &Handler{
		manager:       manager,
		conversations: conversations,
		messages:      messages,
		archive:       store,
		validator:     validation.New(),
		log:           log,
		dashboardURL:  dashboardURL,
	}
}
