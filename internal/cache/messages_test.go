package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/wednesdev-id/puller-chat-dashboard/internal/bridge"
	apperrors "github.com/wednesdev-id/puller-chat-dashboard/internal/errors"
	"github.com/wednesdev-id/puller-chat-dashboard/internal/logger"
	"github.com/wednesdev-id/puller-chat-dashboard/internal/session"
)

type stubMessageBridge struct {
	mu        sync.Mutex
	messages  []bridge.Message
	listErr   error
	sendErr   error
	sent      *bridge.Message
	listCalls int
	sendCalls int
	lastList  string // session id of the last list call
}

func (b *stubMessageBridge) ListMessages(ctx context.Context, sessionID, chatID string, limit int) ([]bridge.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listCalls++
	b.lastList = sessionID
	if b.listErr != nil {
		return nil, b.listErr
	}
	return b.messages, nil
}

func (b *stubMessageBridge) SendMessage(ctx context.Context, sessionID, chatID, text string) (*bridge.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sendCalls++
	if b.sendErr != nil {
		return nil, b.sendErr
	}
	if b.sent != nil {
		return b.sent, nil
	}
	return &bridge.Message{ID: "sent-1", Body: text, FromMe: true}, nil
}

func (b *stubMessageBridge) listStats() (int, string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.listCalls, b.lastList
}

type stubRecorder struct {
	mu      sync.Mutex
	calls   int
	contact string
	body    string
	err     error
}

func (r *stubRecorder) RecordOutgoing(ctx context.Context, contactID, body string, sentAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	r.contact = contactID
	r.body = body
	return r.err
}

func newTestMessages(b *stubMessageBridge, state StateSource, clock session.Clock, recorder Recorder) *Messages {
	return NewMessages(b, state, 5*time.Second, 100, clock, false, recorder, logger.Nop())
}

func TestMessagesGetGated(t *testing.T) {
	state := newStubState(session.Snapshot{Phase: session.PhaseConnecting, SessionID: "s1"})
	b := &stubMessageBridge{messages: []bridge.Message{{ID: "m1", Body: "hi"}}}
	m := newTestMessages(b, state, newSettableClock(), nil)

	got, err := m.Get(context.Background(), "chat1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Get() = %v, want empty while not connected", got)
	}
	if calls, _ := b.listStats(); calls != 0 {
		t.Errorf("ListMessages calls = %d, want 0 while gated", calls)
	}
}

func TestMessagesGetEmptyConversationID(t *testing.T) {
	state := newStubState(session.Snapshot{Phase: session.PhaseConnected, SessionID: "s1"})
	b := &stubMessageBridge{}
	m := newTestMessages(b, state, newSettableClock(), nil)

	got, err := m.Get(context.Background(), "")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Get() = %v, want empty for empty conversation id", got)
	}
	if calls, _ := b.listStats(); calls != 0 {
		t.Errorf("ListMessages calls = %d, want 0", calls)
	}
}

func TestMessagesGetCachesWithinRefreshWindow(t *testing.T) {
	state := newStubState(session.Snapshot{Phase: session.PhaseConnected, SessionID: "s1"})
	clock := newSettableClock()
	b := &stubMessageBridge{messages: []bridge.Message{
		{ID: "m1", Body: "hi", Timestamp: clock.Now().Unix()},
		{ID: "m2", Body: "yo", Timestamp: clock.Now().Unix(), FromMe: true, Ack: 3},
	}}
	m := newTestMessages(b, state, clock, nil)

	got, err := m.Get(context.Background(), "chat1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Get() = %v, want 2 messages", got)
	}
	if !got[1].IsSent || !got[1].IsRead {
		t.Errorf("Get()[1] = %+v, want sent and read (ack 3)", got[1])
	}
	if got[0].IsRead {
		t.Errorf("Get()[0] = %+v, want not read", got[0])
	}

	// A second read within the window is served from cache
	if _, err := m.Get(context.Background(), "chat1"); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if calls, _ := b.listStats(); calls != 1 {
		t.Errorf("ListMessages calls = %d, want 1 (cached)", calls)
	}

	// Past the window the entry is refetched
	clock.advance(6 * time.Second)
	if _, err := m.Get(context.Background(), "chat1"); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if calls, _ := b.listStats(); calls != 2 {
		t.Errorf("ListMessages calls = %d, want 2 after expiry", calls)
	}
}

func TestMessagesNeverServedAcrossSessionChange(t *testing.T) {
	state := newStubState(session.Snapshot{Phase: session.PhaseConnected, SessionID: "s1"})
	clock := newSettableClock()
	b := &stubMessageBridge{messages: []bridge.Message{{ID: "m1", Body: "hi"}}}
	m := newTestMessages(b, state, clock, nil)

	if _, err := m.Get(context.Background(), "chat1"); err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	// Same conversation id, different session: the fresh cache entry must
	// not be served, a new fetch against the new identifier happens.
	state.set(session.Snapshot{Phase: session.PhaseConnected, SessionID: "s2"})
	if _, err := m.Get(context.Background(), "chat1"); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	calls, last := b.listStats()
	if calls != 2 || last != "s2" {
		t.Errorf("ListMessages = (%d calls, last %q), want (2, s2)", calls, last)
	}
}

func TestMessagesGetDegradesToStaleThenEmpty(t *testing.T) {
	state := newStubState(session.Snapshot{Phase: session.PhaseConnected, SessionID: "s1"})
	clock := newSettableClock()
	b := &stubMessageBridge{messages: []bridge.Message{{ID: "m1", Body: "hi"}}}
	m := newTestMessages(b, state, clock, nil)

	if _, err := m.Get(context.Background(), "chat1"); err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	// Expire the entry, then fail the fetch: the stale entry is served
	clock.advance(6 * time.Second)
	b.mu.Lock()
	b.listErr = &bridge.Error{StatusCode: 502, Body: "bad gateway"}
	b.mu.Unlock()

	got, err := m.Get(context.Background(), "chat1")
	if err != nil {
		t.Fatalf("Get() error = %v, want degraded nil", err)
	}
	if len(got) != 1 || got[0].ID != "m1" {
		t.Errorf("Get() = %v, want stale cached entry", got)
	}

	// No cached entry at all: degrade to empty
	got, err = m.Get(context.Background(), "chat-unknown")
	if err != nil {
		t.Fatalf("Get() error = %v, want degraded nil", err)
	}
	if len(got) != 0 {
		t.Errorf("Get() = %v, want empty without cache", got)
	}
}

func TestMessagesSend(t *testing.T) {
	t.Run("validation", func(t *testing.T) {
		state := newStubState(session.Snapshot{Phase: session.PhaseConnected, SessionID: "s1"})
		m := newTestMessages(&stubMessageBridge{}, state, newSettableClock(), nil)

		if _, err := m.Send(context.Background(), "chat1", ""); err == nil {
			t.Error("Send() with empty content, want error")
		}
		if _, err := m.Send(context.Background(), "", "hi"); err == nil {
			t.Error("Send() with empty conversation id, want error")
		}
	})

	t.Run("gated while no usable session", func(t *testing.T) {
		state := newStubState(session.Snapshot{Phase: session.PhaseConnecting, SessionID: "s1"})
		b := &stubMessageBridge{}
		m := newTestMessages(b, state, newSettableClock(), nil)

		_, err := m.Send(context.Background(), "chat1", "hi")
		appErr, ok := err.(*apperrors.AppError)
		if !ok || appErr.Code != apperrors.ErrCodeSessionNotResolved {
			t.Fatalf("Send() error = %v, want SESSION_NOT_RESOLVED", err)
		}
		if b.sendCalls != 0 {
			t.Errorf("SendMessage calls = %d, want 0", b.sendCalls)
		}
	})

	t.Run("bridge failure leaves cache untouched", func(t *testing.T) {
		state := newStubState(session.Snapshot{Phase: session.PhaseConnected, SessionID: "s1"})
		clock := newSettableClock()
		b := &stubMessageBridge{messages: []bridge.Message{{ID: "m1"}}}
		m := newTestMessages(b, state, clock, nil)

		if _, err := m.Get(context.Background(), "chat1"); err != nil {
			t.Fatalf("Get() error = %v", err)
		}

		b.mu.Lock()
		b.sendErr = &bridge.Error{StatusCode: 500, Body: "boom"}
		b.mu.Unlock()

		_, err := m.Send(context.Background(), "chat1", "hi")
		appErr, ok := err.(*apperrors.AppError)
		if !ok || appErr.Code != apperrors.ErrCodeMessageSendFailed {
			t.Fatalf("Send() error = %v, want MESSAGE_SEND_FAILED", err)
		}

		// The fresh entry is still served without a refetch
		if _, err := m.Get(context.Background(), "chat1"); err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if calls, _ := b.listStats(); calls != 1 {
			t.Errorf("ListMessages calls = %d, want 1 (cache kept)", calls)
		}
	})

	t.Run("success invalidates and archives", func(t *testing.T) {
		state := newStubState(session.Snapshot{Phase: session.PhaseConnected, SessionID: "s1"})
		clock := newSettableClock()
		b := &stubMessageBridge{messages: []bridge.Message{{ID: "m1"}}}
		recorder := &stubRecorder{}
		m := newTestMessages(b, state, clock, recorder)

		if _, err := m.Get(context.Background(), "chat1"); err != nil {
			t.Fatalf("Get() error = %v", err)
		}

		resp, err := m.Send(context.Background(), "chat1", "hello")
		if err != nil {
			t.Fatalf("Send() error = %v", err)
		}
		if resp.Status != "sent" || resp.ConversationID != "chat1" || resp.MessageID != "sent-1" {
			t.Errorf("Send() = %+v, want sent/chat1/sent-1", resp)
		}
		if recorder.calls != 1 || recorder.contact != "chat1" || recorder.body != "hello" {
			t.Errorf("recorder = %+v, want one call with chat1/hello", recorder)
		}

		// The entry was invalidated: the next read refetches immediately
		if _, err := m.Get(context.Background(), "chat1"); err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if calls, _ := b.listStats(); calls != 2 {
			t.Errorf("ListMessages calls = %d, want 2 after invalidation", calls)
		}
	})

	t.Run("archive failure does not fail the send", func(t *testing.T) {
		state := newStubState(session.Snapshot{Phase: session.PhaseConnected, SessionID: "s1"})
		b := &stubMessageBridge{}
		recorder := &stubRecorder{err: context.DeadlineExceeded}
		m := newTestMessages(b, state, newSettableClock(), recorder)

		if _, err := m.Send(context.Background(), "chat1", "hello"); err != nil {
			t.Errorf("Send() error = %v, want nil despite archive failure", err)
		}
	})
}

func TestMessagesDemoMode(t *testing.T) {
	state := newStubState(session.Snapshot{Phase: session.PhaseDisconnected})
	m := NewMessages(&stubMessageBridge{}, state, 5*time.Second, 100, newSettableClock(), true, nil, logger.Nop())

	got, err := m.Get(context.Background(), "1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(got) == 0 {
		t.Error("Get() empty in demo mode, want fixture thread")
	}
}
