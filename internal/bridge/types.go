package bridge

// Session lifecycle statuses reported by the bridge
const (
	StatusStarting      = "STARTING"
	StatusQR            = "QR"
	StatusAuthenticated = "AUTHENTICATED"
	StatusConnected     = "CONNECTED"
	StatusDisconnected  = "DISCONNECTED"
)

// Session represents one bridge-side WhatsApp connection attempt.
// The bridge populates any subset of the identifier fields, inconsistently
// across calls, so never assume a single field is present - address a
// session only through ResolveActive / CanonicalID.
type Session struct {
	ID      string `json:"id,omitempty"`
	Session string `json:"session,omitempty"`
	Name    string `json:"name,omitempty"`
	Status  string `json:"status"`
}

// Chat represents a chat record returned by the bridge
type Chat struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	UnreadCount int      `json:"unreadCount"`
	LastMessage *Message `json:"lastMessage,omitempty"`
	Timestamp   int64    `json:"timestamp"`
	IsGroup     bool     `json:"isGroup"`
}

// Message represents a message record returned by the bridge
type Message struct {
	ID        string `json:"id"`
	ChatID    string `json:"chatId"`
	Body      string `json:"body"`
	Timestamp int64  `json:"timestamp"`
	FromMe    bool   `json:"fromMe"`
	Ack       int    `json:"ack,omitempty"`
}

type startSessionRequest struct {
	Session string `json:"session"`
	Name    string `json:"name"`
}

type sendMessageRequest struct {
	Text    string `json:"text"`
	Session string `json:"session"`
}

type messagesResponse struct {
	Messages []Message `json:"messages"`
}
