package cache

import (
	"context"
	"sync"
	"time"

	"github.com/wednesdev-id/puller-chat-dashboard/internal/bridge"
	"github.com/wednesdev-id/puller-chat-dashboard/internal/errors"
	"github.com/wednesdev-id/puller-chat-dashboard/internal/logger"
	"github.com/wednesdev-id/puller-chat-dashboard/internal/models"
	"github.com/wednesdev-id/puller-chat-dashboard/internal/session"
)

// MessageBridge is the subset of the bridge client the message cache uses
type MessageBridge interface {
	ListMessages(ctx context.Context, sessionID, chatID string, limit int) ([]bridge.Message, error)
	SendMessage(ctx context.Context, sessionID, chatID, text string) (*bridge.Message, error)
}

// Recorder archives successfully sent messages. Optional.
type Recorder interface {
	RecordOutgoing(ctx context.Context, contactID, body string, sentAt time.Time) error
}

type messageEntry struct {
	msgs    []models.Message
	fetched time.Time
}

// Messages holds per-conversation message lists, gated the same way as
// the conversation cache plus a non-empty conversation id. A successful
// send invalidates the affected entry so the next read observes the
// bridge's own record of the message - there is no optimistic local
// insertion, which keeps duplicate entries impossible by construction.
type Messages struct {
	bridge   MessageBridge
	state    StateSource
	refresh  time.Duration
	limit    int
	clock    session.Clock
	log      *logger.Logger
	demo     bool
	recorder Recorder

	mu         sync.Mutex
	entries    map[string]*messageEntry
	forSession string
	selected   string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewMessages creates the message cache
func NewMessages(b MessageBridge, state StateSource, refresh time.Duration, limit int, clock session.Clock, demo bool, recorder Recorder, log *logger.Logger) *Messages {
	if clock == nil {
		clock = session.RealClock()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Messages{
		bridge:   b,
		state:    state,
		refresh:  refresh,
		limit:    limit,
		clock:    clock,
		log:      log,
		demo:     demo,
		recorder: recorder,
		entries:  make(map[string]*messageEntry),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start launches the refresh loop for the selected conversation
func (m *Messages) Start() {
	if m.demo {
		return
	}
	sub := m.state.Subscribe()
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		for {
			select {
			case <-m.ctx.Done():
				return
			case <-sub:
				// Phase or identifier changed: cached threads are stale
				m.mu.Lock()
				m.entries = make(map[string]*messageEntry)
				m.forSession = ""
				m.mu.Unlock()
			case <-m.clock.After(m.refresh):
				m.mu.Lock()
				selected := m.selected
				m.mu.Unlock()
				if selected != "" {
					if _, err := m.Get(m.ctx, selected); err != nil {
						m.log.Debugf("Background message refresh for %s failed: %v", selected, err)
					}
				}
			}
		}
	}()
}

// Close stops the refresh loop
func (m *Messages) Close() {
	m.cancel()
	m.wg.Wait()
}

// SelectConversation marks the conversation the background refresh follows
func (m *Messages) SelectConversation(conversationID string) {
	m.mu.Lock()
	m.selected = conversationID
	m.mu.Unlock()
}

// Get returns the ordered message list for a conversation. Gated: an
// unusable session or empty conversation id yields an empty list without
// a network call. Fetch failures degrade to the last cached entry when
// one exists for the current session, otherwise to empty.
func (m *Messages) Get(ctx context.Context, conversationID string) ([]models.Message, error) {
	if m.demo {
		return fixtureMessages()[conversationID], nil
	}
	if conversationID == "" {
		return []models.Message{}, nil
	}

	snap := m.state.Snapshot()
	if !snap.Connected() {
		gatedSkips.WithLabelValues("messages").Inc()
		return []models.Message{}, nil
	}

	m.mu.Lock()
	if m.forSession != snap.SessionID {
		m.entries = make(map[string]*messageEntry)
		m.forSession = snap.SessionID
	}
	entry := m.entries[conversationID]
	if entry != nil && m.clock.Now().Sub(entry.fetched) < m.refresh {
		msgs := entry.msgs
		m.mu.Unlock()
		return msgs, nil
	}
	m.mu.Unlock()

	refreshes.WithLabelValues("messages").Inc()
	raw, err := m.bridge.ListMessages(ctx, snap.SessionID, conversationID, m.limit)
	if err != nil {
		refreshFailures.WithLabelValues("messages").Inc()
		m.log.Warnf("Failed to fetch messages for %s: %v", conversationID, err)
		if entry != nil {
			return entry.msgs, nil
		}
		return []models.Message{}, nil
	}

	msgs := make([]models.Message, 0, len(raw))
	for _, msg := range raw {
		msgs = append(msgs, mapMessage(msg))
	}

	m.mu.Lock()
	// Re-check: the identifier may have changed while the fetch was in
	// flight, and data from an old session must never be cached for a
	// new one.
	if m.forSession == snap.SessionID {
		m.entries[conversationID] = &messageEntry{msgs: msgs, fetched: m.clock.Now()}
	}
	m.mu.Unlock()

	return msgs, nil
}

// Send sends message content to a conversation through the bridge. On
// success the cached entry for the conversation is dropped so the next
// read reflects the bridge's authoritative list. On failure the cache is
// left untouched and the error propagates; no retry is automatic.
func (m *Messages) Send(ctx context.Context, conversationID, content string) (*models.SendMessageResponse, error) {
	if content == "" {
		return nil, errors.ValidationError("Message content must not be empty")
	}
	if conversationID == "" {
		return nil, errors.ValidationError("Conversation id is required")
	}

	snap := m.state.Snapshot()
	if !snap.Connected() {
		return nil, errors.SessionNotResolved()
	}

	sent, err := m.bridge.SendMessage(ctx, snap.SessionID, conversationID, content)
	if err != nil {
		return nil, errors.MessageSendFailed(err)
	}

	m.Invalidate(conversationID)

	if m.recorder != nil {
		if err := m.recorder.RecordOutgoing(ctx, conversationID, content, m.clock.Now()); err != nil {
			m.log.Error("Failed to archive outgoing message", err)
		}
	}

	resp := &models.SendMessageResponse{
		Status:         "sent",
		ConversationID: conversationID,
		Timestamp:      m.clock.Now().Unix(),
	}
	if sent != nil {
		resp.MessageID = sent.ID
	}
	return resp, nil
}

// Invalidate drops the cached entry for a conversation
func (m *Messages) Invalidate(conversationID string) {
	m.mu.Lock()
	delete(m.entries, conversationID)
	m.mu.Unlock()
}

func mapMessage(msg bridge.Message) models.Message {
	return models.Message{
		ID:      msg.ID,
		Content: msg.Body,
		Time:    clockLabel(msg.Timestamp),
		IsSent:  msg.FromMe,
		IsRead:  msg.FromMe && msg.Ack >= 3,
	}
}
