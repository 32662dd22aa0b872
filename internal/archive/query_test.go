package archive

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/wednesdev-id/puller-chat-dashboard/internal/logger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "archive.db")
	store, err := Open("sqlite3", dsn, logger.Nop())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func seedContact(t *testing.T, s *Store, id, name string) {
	t.Helper()
	if _, err := s.db.Exec(`INSERT INTO contacts (id, name) VALUES (?, ?)`, id, name); err != nil {
		t.Fatalf("seed contact: %v", err)
	}
}

func seedMessage(t *testing.T, s *Store, id, contactID, from, to, body string, ts int64, fromMe, hasMedia bool) {
	t.Helper()
	_, err := s.db.Exec(
		`INSERT INTO messages (id, contact_id, from_user, to_user, body, timestamp, from_me, has_media)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, contactID, from, to, body, ts, boolToInt(fromMe), boolToInt(hasMedia))
	if err != nil {
		t.Fatalf("seed message: %v", err)
	}
}

func TestRecordOutgoing(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	sentAt := time.Unix(1700000000, 0)
	if err := store.RecordOutgoing(ctx, "123@c.us", "hello there", sentAt); err != nil {
		t.Fatalf("RecordOutgoing() error = %v", err)
	}

	result, err := store.QueryMessages(ctx, MessageFilter{})
	if err != nil {
		t.Fatalf("QueryMessages() error = %v", err)
	}
	if result.Total != 1 {
		t.Fatalf("Total = %d, want 1", result.Total)
	}
	msg := result.Messages[0]
	if msg.ContactID != "123@c.us" || msg.Body != "hello there" || !msg.FromMe {
		t.Errorf("message = %+v, want outgoing to 123@c.us", msg)
	}
	if msg.Timestamp != sentAt.Unix() {
		t.Errorf("timestamp = %d, want %d", msg.Timestamp, sentAt.Unix())
	}
	if msg.Source != "dashboard" {
		t.Errorf("source = %q, want %q", msg.Source, "dashboard")
	}
	if msg.ID == "" {
		t.Error("message id is empty, want generated uuid")
	}

	contacts, err := store.QueryContacts(ctx, ContactFilter{})
	if err != nil {
		t.Fatalf("QueryContacts() error = %v", err)
	}
	if len(contacts.Contacts) != 1 {
		t.Fatalf("contacts = %d, want 1", len(contacts.Contacts))
	}
	if c := contacts.Contacts[0]; c.LastMessage != "hello there" || c.LastFrom != "me" {
		t.Errorf("contact = %+v, want last message recorded", c)
	}
}

func TestQueryMessagesFilters(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedContact(t, store, "alice", "Alice")
	seedContact(t, store, "bob", "Bob")
	seedMessage(t, store, "m1", "alice", "alice", "me", "see you at lunch", 100, false, false)
	seedMessage(t, store, "m2", "alice", "me", "alice", "sounds good", 200, true, false)
	seedMessage(t, store, "m3", "bob", "bob", "me", "photo of the venue", 300, false, true)

	t.Run("contact filter", func(t *testing.T) {
		result, err := store.QueryMessages(ctx, MessageFilter{ContactID: "alice"})
		if err != nil {
			t.Fatalf("QueryMessages() error = %v", err)
		}
		if result.Total != 2 {
			t.Errorf("Total = %d, want 2", result.Total)
		}
	})

	t.Run("search filter", func(t *testing.T) {
		result, err := store.QueryMessages(ctx, MessageFilter{Search: "lunch"})
		if err != nil {
			t.Fatalf("QueryMessages() error = %v", err)
		}
		if result.Total != 1 || result.Messages[0].ID != "m1" {
			t.Errorf("result = %+v, want only m1", result.Messages)
		}
	})

	t.Run("from_me filter", func(t *testing.T) {
		fromMe := true
		result, err := store.QueryMessages(ctx, MessageFilter{FromMe: &fromMe})
		if err != nil {
			t.Fatalf("QueryMessages() error = %v", err)
		}
		if result.Total != 1 || result.Messages[0].ID != "m2" {
			t.Errorf("result = %+v, want only m2", result.Messages)
		}
	})

	t.Run("has_media filter", func(t *testing.T) {
		hasMedia := true
		result, err := store.QueryMessages(ctx, MessageFilter{HasMedia: &hasMedia})
		if err != nil {
			t.Fatalf("QueryMessages() error = %v", err)
		}
		if result.Total != 1 || result.Messages[0].ID != "m3" {
			t.Errorf("result = %+v, want only m3", result.Messages)
		}
	})

	t.Run("date range", func(t *testing.T) {
		result, err := store.QueryMessages(ctx, MessageFilter{StartDate: "150", EndDate: "250"})
		if err != nil {
			t.Fatalf("QueryMessages() error = %v", err)
		}
		if result.Total != 1 || result.Messages[0].ID != "m2" {
			t.Errorf("result = %+v, want only m2", result.Messages)
		}
	})

	t.Run("default order is newest first", func(t *testing.T) {
		result, err := store.QueryMessages(ctx, MessageFilter{})
		if err != nil {
			t.Fatalf("QueryMessages() error = %v", err)
		}
		if len(result.Messages) != 3 || result.Messages[0].ID != "m3" || result.Messages[2].ID != "m1" {
			t.Errorf("order = %v, want m3 first", result.Messages)
		}
	})
}

func TestQueryMessagesPagination(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedContact(t, store, "alice", "Alice")
	for i := 0; i < 5; i++ {
		seedMessage(t, store, string(rune('a'+i)), "alice", "alice", "me", "msg", int64(100+i), false, false)
	}

	result, err := store.QueryMessages(ctx, MessageFilter{Limit: 2})
	if err != nil {
		t.Fatalf("QueryMessages() error = %v", err)
	}
	if len(result.Messages) != 2 || !result.Pagination.HasMore {
		t.Errorf("page 1 = %d messages, hasMore %v; want 2, true", len(result.Messages), result.Pagination.HasMore)
	}

	result, err = store.QueryMessages(ctx, MessageFilter{Limit: 2, Offset: 4})
	if err != nil {
		t.Fatalf("QueryMessages() error = %v", err)
	}
	if len(result.Messages) != 1 || result.Pagination.HasMore {
		t.Errorf("last page = %d messages, hasMore %v; want 1, false", len(result.Messages), result.Pagination.HasMore)
	}
	if result.Total != 5 {
		t.Errorf("Total = %d, want 5", result.Total)
	}
}

func TestQueryMessagesStatistics(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedContact(t, store, "alice", "Alice")
	seedContact(t, store, "bob", "Bob")
	seedMessage(t, store, "m1", "alice", "alice", "me", "text", 100, false, false)
	seedMessage(t, store, "m2", "alice", "me", "alice", "reply", 200, true, false)
	seedMessage(t, store, "m3", "bob", "bob", "me", "pic", 300, false, true)

	result, err := store.QueryMessages(ctx, MessageFilter{})
	if err != nil {
		t.Fatalf("QueryMessages() error = %v", err)
	}

	stats := result.Statistics
	if stats.TotalMessages != 3 || stats.MediaMessages != 1 || stats.TextMessages != 2 {
		t.Errorf("stats = %+v, want 3 total / 1 media / 2 text", stats)
	}
	if stats.SentMessages != 1 || stats.ReceivedMessages != 2 {
		t.Errorf("stats = %+v, want 1 sent / 2 received", stats)
	}
	if stats.UniqueContacts != 2 {
		t.Errorf("UniqueContacts = %d, want 2", stats.UniqueContacts)
	}
}

func TestConversationsOrdering(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedContact(t, store, "old", "Old Chat")
	seedContact(t, store, "recent", "Recent Chat")
	seedContact(t, store, "silent", "No Messages Yet")
	seedMessage(t, store, "m1", "old", "old", "me", "a while ago", 100, false, false)
	seedMessage(t, store, "m2", "recent", "recent", "me", "just now", 900, false, false)

	conversations, err := store.Conversations(ctx)
	if err != nil {
		t.Fatalf("Conversations() error = %v", err)
	}
	if len(conversations) != 3 {
		t.Fatalf("len = %d, want 3", len(conversations))
	}

	if conversations[0].ID != "recent" || conversations[1].ID != "old" {
		t.Errorf("order = [%s, %s, %s], want recency descending", conversations[0].ID, conversations[1].ID, conversations[2].ID)
	}
	// Contacts without messages sort last with a nil timestamp
	last := conversations[2]
	if last.ID != "silent" || last.Timestamp != nil {
		t.Errorf("last = %+v, want silent contact with nil timestamp", last)
	}
	if last.LastMessage != "No messages" {
		t.Errorf("LastMessage = %q, want %q", last.LastMessage, "No messages")
	}
}

func TestQueryContactsSearch(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedContact(t, store, "alice@c.us", "Alice Smith")
	seedContact(t, store, "bob@c.us", "Bob Jones")

	result, err := store.QueryContacts(ctx, ContactFilter{Search: "Smith"})
	if err != nil {
		t.Fatalf("QueryContacts() error = %v", err)
	}
	if result.Total != 1 || result.Contacts[0].ID != "alice@c.us" {
		t.Errorf("result = %+v, want only Alice", result.Contacts)
	}
}

func TestBuildOrderWhitelist(t *testing.T) {
	tests := []struct {
		name  string
		sort  string
		order string
		want  string
	}{
		{"valid sort and order", "id", "asc", "id ASC"},
		{"unknown sort falls back", "timestamp; DROP TABLE messages", "asc", "timestamp ASC"},
		{"unknown order falls back", "timestamp", "sideways", "timestamp DESC"},
		{"empty input", "", "", "timestamp DESC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildOrder(tt.sort, tt.order, messageSortColumns, "timestamp", "desc")
			if got != tt.want {
				t.Errorf("buildOrder(%q, %q) = %q, want %q", tt.sort, tt.order, got, tt.want)
			}
		})
	}
}

func TestMessageProject(t *testing.T) {
	msg := Message{ID: "m1", Body: "hello", Timestamp: 100, FromMe: true}

	got := msg.Project([]string{"id", "body", "bogus"})
	if len(got) != 2 || got["id"] != "m1" || got["body"] != "hello" {
		t.Errorf("Project() = %v, want id and body only", got)
	}
}
