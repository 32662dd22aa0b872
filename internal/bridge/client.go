package bridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wednesdev-id/puller-chat-dashboard/internal/config"
	"github.com/wednesdev-id/puller-chat-dashboard/internal/logger"
)

// Error wraps a non-2xx bridge response
type Error struct {
	StatusCode int
	Body       string
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("bridge returned %d: %s", e.StatusCode, e.Body)
}

// AsError extracts a *Error from an error chain, or returns nil
func AsError(err error) *Error {
	var bridgeErr *Error
	if errors.As(err, &bridgeErr) {
		return bridgeErr
	}
	return nil
}

// Client is a thin request/response wrapper around the bridge HTTP
// surface. It owns authentication headers and the base URL and holds no
// session state of its own.
type Client struct {
	baseURL  string
	apiKey   string
	username string
	password string
	http     *http.Client
	log      *logger.Logger
}

// New creates a bridge client from configuration
func New(cfg config.BridgeConfig, log *logger.Logger) *Client {
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:   cfg.APIKey,
		username: cfg.Username,
		password: cfg.Password,
		http: &http.Client{
			Timeout: cfg.Timeout,
		},
		log: log,
	}
}

// NewWithBaseURL creates a bridge client for a fixed base URL. Used in tests.
func NewWithBaseURL(baseURL string, log *logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

// Ping reports whether the bridge is reachable
func (c *Client) Ping(ctx context.Context) bool {
	var sessions []Session
	if err := c.doJSON(ctx, http.MethodGet, "/api/sessions", nil, &sessions); err != nil {
		c.log.Warnf("Bridge ping failed: %v", err)
		return false
	}
	return true
}

// ListSessions returns all sessions known to the bridge. Failures degrade
// to an empty list so callers that only tolerate absence never see them.
func (c *Client) ListSessions(ctx context.Context) []Session {
	var sessions []Session
	if err := c.doJSON(ctx, http.MethodGet, "/api/sessions", nil, &sessions); err != nil {
		c.log.Warnf("Failed to list sessions: %v", err)
		return []Session{}
	}
	return sessions
}

// StartSession asks the bridge to start a session with the given name.
// A 422 "already started" response is not a failure: the session list is
// re-read and the existing session matched by name.
func (c *Client) StartSession(ctx context.Context, name string) (*Session, error) {
	var session Session
	req := startSessionRequest{Session: name, Name: name}
	err := c.doJSON(ctx, http.MethodPost, "/api/sessions/start", req, &session)
	if err != nil {
		if bridgeErr := AsError(err); bridgeErr != nil && bridgeErr.StatusCode == http.StatusUnprocessableEntity {
			c.log.Infof("Session %q already started, reusing existing session", name)
			return c.findSessionByName(ctx, name)
		}
		return nil, err
	}
	return &session, nil
}

// findSessionByName re-reads the session list and matches by name
func (c *Client) findSessionByName(ctx context.Context, name string) (*Session, error) {
	var sessions []Session
	if err := c.doJSON(ctx, http.MethodGet, "/api/sessions", nil, &sessions); err != nil {
		return nil, err
	}
	for i := range sessions {
		s := &sessions[i]
		if s.Name == name || s.Session == name || s.ID == name {
			return s, nil
		}
	}
	return nil, &Error{StatusCode: http.StatusNotFound, Body: fmt.Sprintf("session %q not found after start", name)}
}

// StopSession asks the bridge to stop the session with the given id
func (c *Client) StopSession(ctx context.Context, sessionID string) error {
	path := fmt.Sprintf("/api/sessions/%s/stop", sessionID)
	return c.doJSON(ctx, http.MethodPost, path, nil, nil)
}

// SessionStatus fetches the current status of a session. If the status
// endpoint 404s, the full session list is scanned for a matching record.
func (c *Client) SessionStatus(ctx context.Context, sessionID string) (*Session, error) {
	var session Session
	path := fmt.Sprintf("/api/sessions/%s/status", sessionID)
	err := c.doJSON(ctx, http.MethodGet, path, nil, &session)
	if err == nil {
		return &session, nil
	}

	if bridgeErr := AsError(err); bridgeErr != nil && bridgeErr.StatusCode == http.StatusNotFound {
		var sessions []Session
		if listErr := c.doJSON(ctx, http.MethodGet, "/api/sessions", nil, &sessions); listErr != nil {
			return nil, listErr
		}
		for i := range sessions {
			s := &sessions[i]
			if CanonicalID(s) == sessionID {
				return s, nil
			}
		}
	}
	return nil, err
}

// Screenshot fetches the QR/screenshot artifact for the pairing flow.
// The payload is opaque: it may be a textual QR value or binary image data.
func (c *Client) Screenshot(ctx context.Context) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/screenshot", nil)
	if err != nil {
		return nil, "", err
	}
	c.setAuth(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", &Error{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, resp.Header.Get("Content-Type"), nil
}

// ListChats returns all chats for a session. Failures degrade to an
// empty list.
func (c *Client) ListChats(ctx context.Context, sessionID string) []Chat {
	var chats []Chat
	path := fmt.Sprintf("/api/sessions/%s/chats", sessionID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &chats); err != nil {
		c.log.Warnf("Failed to list chats for session %s: %v", sessionID, err)
		return []Chat{}
	}
	return chats
}

// ListMessages returns up to limit messages for a chat
func (c *Client) ListMessages(ctx context.Context, sessionID, chatID string, limit int) ([]Message, error) {
	var resp messagesResponse
	path := fmt.Sprintf("/api/sessions/%s/chats/%s?messages=%d", sessionID, chatID, limit)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

// SendMessage sends a text message to a chat through the bridge
func (c *Client) SendMessage(ctx context.Context, sessionID, chatID, text string) (*Message, error) {
	var msg Message
	path := fmt.Sprintf("/api/sessions/%s/chats/%s/messages", sessionID, chatID)
	req := sendMessageRequest{Text: text, Session: sessionID}
	if err := c.doJSON(ctx, http.MethodPost, path, req, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// doJSON issues a request against the bridge and decodes a JSON response
// into out when out is non-nil
func (c *Client) doJSON(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setAuth(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &Error{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode bridge response: %w", err)
	}
	return nil
}

func (c *Client) setAuth(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}
	if c.username != "" || c.password != "" {
		req.SetBasicAuth(c.username, c.password)
	}
}
