package models

// Conversation represents one chat entry in the sidebar list
type Conversation struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Avatar      string `json:"avatar"`
	LastMessage string `json:"lastMessage"`
	Time        string `json:"time"`
	Unread      int    `json:"unread"`
	IsOnline    bool   `json:"isOnline"`
}

// Message represents one message in a conversation thread.
// Insertion order is chronological order; no client-side reordering.
type Message struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Time    string `json:"time"`
	IsSent  bool   `json:"isSent"`
	IsRead  bool   `json:"isRead,omitempty"`
}

// SendMessageRequest represents the request payload for sending messages
type SendMessageRequest struct {
	ConversationID string `json:"conversationId"`
	Content        string `json:"content"`
}

// SendMessageResponse represents the response after sending a message
type SendMessageResponse struct {
	Status         string `json:"status"`
	ConversationID string `json:"conversationId"`
	MessageID      string `json:"messageId,omitempty"`
	Timestamp      int64  `json:"timestamp"`
}

// DisconnectRequest represents the request payload for a disconnect intent
type DisconnectRequest struct {
	SessionID string `json:"sessionId"`
}

// StatusResponse reports the connection state machine snapshot
type StatusResponse struct {
	Phase        string `json:"phase"`
	SessionID    string `json:"sessionId,omitempty"`
	DashboardURL string `json:"dashboardUrl,omitempty"`
	Timestamp    int64  `json:"timestamp"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Phase     string `json:"phase"`
	Connected bool   `json:"connected"`
	Timestamp int64  `json:"timestamp"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}
