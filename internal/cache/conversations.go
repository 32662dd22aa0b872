package cache

import (
	"context"
	"sync"
	"time"

	"github.com/wednesdev-id/puller-chat-dashboard/internal/bridge"
	"github.com/wednesdev-id/puller-chat-dashboard/internal/logger"
	"github.com/wednesdev-id/puller-chat-dashboard/internal/models"
	"github.com/wednesdev-id/puller-chat-dashboard/internal/session"
)

// StateSource is the read side of the connection state machine
type StateSource interface {
	Snapshot() session.Snapshot
	Subscribe() <-chan session.Snapshot
}

// ChatLister is the subset of the bridge client the conversation cache uses
type ChatLister interface {
	ListChats(ctx context.Context, sessionID string) []bridge.Chat
}

// Conversations derives the sidebar conversation list from the bridge.
// It holds derived, invalidatable data only: fetches happen when the
// state machine certifies a usable session, everything else yields an
// empty list (or fixtures in demo mode). Data cached for one session
// identifier is never served for another.
type Conversations struct {
	bridge  ChatLister
	state   StateSource
	refresh time.Duration
	clock   session.Clock
	log     *logger.Logger
	demo    bool

	mu         sync.Mutex
	data       []models.Conversation
	forSession string

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewConversations creates the conversation cache
func NewConversations(b ChatLister, state StateSource, refresh time.Duration, clock session.Clock, demo bool, log *logger.Logger) *Conversations {
	if clock == nil {
		clock = session.RealClock()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Conversations{
		bridge:  b,
		state:   state,
		refresh: refresh,
		clock:   clock,
		log:     log,
		demo:    demo,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start launches the refresh loop: a fixed cadence while a usable
// session exists, plus an immediate refetch whenever the state machine
// reports a phase or identifier change.
func (c *Conversations) Start() {
	if c.demo {
		return
	}
	sub := c.state.Subscribe()
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			select {
			case <-c.ctx.Done():
				return
			case <-sub:
				c.refetch()
			case <-c.clock.After(c.refresh):
				c.refetch()
			}
		}
	}()
}

// Close stops the refresh loop
func (c *Conversations) Close() {
	c.cancel()
	c.wg.Wait()
}

// Snapshot returns the current conversation list. Whenever the phase is
// not connected or the session identifier is unresolved, the result is
// empty regardless of any previously cached data.
func (c *Conversations) Snapshot() []models.Conversation {
	if c.demo {
		return fixtureConversations()
	}

	snap := c.state.Snapshot()
	if !snap.Connected() {
		return []models.Conversation{}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.forSession != snap.SessionID {
		return []models.Conversation{}
	}
	out := make([]models.Conversation, len(c.data))
	copy(out, c.data)
	return out
}

// refetch pulls the chat list when gated-true and replaces the cached
// data. Bridge failures already degrade to an empty chat list inside the
// client, so a flaky bridge can only ever empty the cache, never crash it.
func (c *Conversations) refetch() {
	snap := c.state.Snapshot()
	if !snap.Connected() {
		gatedSkips.WithLabelValues("conversations").Inc()
		c.mu.Lock()
		c.data = nil
		c.forSession = ""
		c.mu.Unlock()
		return
	}

	refreshes.WithLabelValues("conversations").Inc()
	ctx, cancel := context.WithTimeout(c.ctx, c.refresh)
	chats := c.bridge.ListChats(ctx, snap.SessionID)
	cancel()

	now := c.clock.Now()
	data := make([]models.Conversation, 0, len(chats))
	for _, chat := range chats {
		data = append(data, mapChat(chat, now))
	}

	c.mu.Lock()
	c.data = data
	c.forSession = snap.SessionID
	c.mu.Unlock()
}

func mapChat(chat bridge.Chat, now time.Time) models.Conversation {
	conv := models.Conversation{
		ID:     chat.ID,
		Name:   chat.Name,
		Unread: chat.UnreadCount,
		Avatar: "https://ui-avatars.com/api/?name=" + chat.Name + "&background=random",
	}
	if conv.Name == "" {
		conv.Name = chat.ID
	}
	if chat.LastMessage != nil {
		conv.LastMessage = chat.LastMessage.Body
		if conv.LastMessage == "" {
			conv.LastMessage = "Media message"
		}
		conv.Time = relativeLabel(chat.LastMessage.Timestamp, now)
	} else {
		conv.Time = relativeLabel(chat.Timestamp, now)
	}
	return conv
}
