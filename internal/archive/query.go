package archive

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Message is an archived message row
type Message struct {
	ID           string `json:"id"`
	ContactID    string `json:"contact_id"`
	FromUser     string `json:"from"`
	ToUser       string `json:"to"`
	Body         string `json:"body"`
	Timestamp    int64  `json:"timestamp"`
	FromMe       bool   `json:"fromMe"`
	HasMedia     bool   `json:"hasMedia"`
	MediaType    string `json:"mediaType,omitempty"`
	MediaCaption string `json:"mediaCaption,omitempty"`
	Source       string `json:"source,omitempty"`
}

// Contact is an archived contact row
type Contact struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Phone       string `json:"phone,omitempty"`
	LastMessage string `json:"last_message,omitempty"`
	LastFrom    string `json:"last_from,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// Conversation is one row of the derived conversations view: a contact
// joined with its most recent archived message.
type Conversation struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Avatar      string `json:"avatar"`
	LastMessage string `json:"lastMessage"`
	Timestamp   *int64 `json:"timestamp"`
}

// MessageFilter narrows and pages a message query
type MessageFilter struct {
	ContactID string
	FromUser  string
	ToUser    string
	Search    string
	StartDate string // inclusive unix seconds, normalized by handler validation
	EndDate   string
	HasMedia  *bool
	FromMe    *bool
	Sort      string
	Order     string
	Fields    []string
	Limit     int
	Offset    int
}

// ContactFilter narrows and pages a contact query
type ContactFilter struct {
	Search string
	Sort   string
	Order  string
	Fields []string
	Limit  int
	Offset int
}

// Pagination describes the page of a query result
type Pagination struct {
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"hasMore"`
}

// Statistics aggregates the filtered message set
type Statistics struct {
	TotalMessages    int `json:"total_messages"`
	MediaMessages    int `json:"media_messages"`
	TextMessages     int `json:"text_messages"`
	SentMessages     int `json:"sent_messages"`
	ReceivedMessages int `json:"received_messages"`
	UniqueContacts   int `json:"unique_contacts"`
}

// MessageResult is the full message query result with metadata
type MessageResult struct {
	Messages   []Message
	Total      int
	Pagination Pagination
	Statistics Statistics
}

// ContactResult is the full contact query result with metadata
type ContactResult struct {
	Contacts   []Contact
	Total      int
	Pagination Pagination
}

var messageSortColumns = map[string]string{
	"timestamp": "timestamp",
	"id":        "id",
	"from":      "from_user",
	"to":        "to_user",
}

var contactSortColumns = map[string]string{
	"name":       "name",
	"id":         "id",
	"updated_at": "updated_at",
	"created_at": "created_at",
}

const defaultLimit = 50
const maxLimit = 1000

// QueryMessages returns archived messages matching the filter, newest
// first by default, with pagination metadata and aggregate statistics
// computed over the same filtered set.
func (s *Store) QueryMessages(ctx context.Context, f MessageFilter) (*MessageResult, error) {
	where, args := buildMessageWhere(f)

	limit := clampLimit(f.Limit)
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	order := buildOrder(f.Sort, f.Order, messageSortColumns, "timestamp", "desc")

	query := fmt.Sprintf(
		`SELECT id, contact_id, COALESCE(from_user,''), COALESCE(to_user,''), COALESCE(body,''),
		        COALESCE(timestamp,0), from_me, has_media, COALESCE(media_type,''), COALESCE(media_caption,''), COALESCE(source,'')
		 FROM messages %s ORDER BY %s LIMIT ? OFFSET ?`, where, order)

	rows, err := s.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	messages := make([]Message, 0, limit)
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.ContactID, &m.FromUser, &m.ToUser, &m.Body,
			&m.Timestamp, &m.FromMe, &m.HasMedia, &m.MediaType, &m.MediaCaption, &m.Source); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stats, total, err := s.messageStatistics(ctx, where, args)
	if err != nil {
		return nil, err
	}

	return &MessageResult{
		Messages: messages,
		Total:    total,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(messages) < total,
		},
		Statistics: stats,
	}, nil
}

// QueryContacts returns archived contacts matching the filter
func (s *Store) QueryContacts(ctx context.Context, f ContactFilter) (*ContactResult, error) {
	var conds []string
	var args []interface{}
	if f.Search != "" {
		conds = append(conds, "(name LIKE ? OR id LIKE ? OR phone LIKE ?)")
		pattern := "%" + f.Search + "%"
		args = append(args, pattern, pattern, pattern)
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	limit := clampLimit(f.Limit)
	offset := f.Offset
	if offset < 0 {
		offset = 0
	}

	order := buildOrder(f.Sort, f.Order, contactSortColumns, "name", "asc")

	query := fmt.Sprintf(
		`SELECT id, name, COALESCE(phone,''), COALESCE(last_message,''), COALESCE(last_from,''),
		        COALESCE(created_at,''), COALESCE(updated_at,'')
		 FROM contacts %s ORDER BY %s LIMIT ? OFFSET ?`, where, order)

	rows, err := s.db.QueryContext(ctx, query, append(args, limit, offset)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := make([]Contact, 0, limit)
	for rows.Next() {
		var c Contact
		if err := rows.Scan(&c.ID, &c.Name, &c.Phone, &c.LastMessage, &c.LastFrom, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM contacts " + where
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, err
	}

	return &ContactResult{
		Contacts: contacts,
		Total:    total,
		Pagination: Pagination{
			Limit:   limit,
			Offset:  offset,
			HasMore: offset+len(contacts) < total,
		},
	}, nil
}

// Conversations joins each contact with its most recent archived message,
// sorted by recency descending. Contacts without a resolvable message
// timestamp sort last.
func (s *Store) Conversations(ctx context.Context) ([]Conversation, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.name, COALESCE(c.phone, c.id),
		       COALESCE((SELECT body FROM messages WHERE contact_id = c.id ORDER BY timestamp DESC LIMIT 1), COALESCE(c.last_message, '')),
		       (SELECT timestamp FROM messages WHERE contact_id = c.id ORDER BY timestamp DESC LIMIT 1) AS last_ts
		FROM contacts c
		ORDER BY last_ts IS NULL, last_ts DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	conversations := make([]Conversation, 0)
	for rows.Next() {
		var conv Conversation
		var ts sql.NullInt64
		if err := rows.Scan(&conv.ID, &conv.Name, &conv.Phone, &conv.LastMessage, &ts); err != nil {
			return nil, err
		}
		if conv.LastMessage == "" {
			conv.LastMessage = "No messages"
		}
		if ts.Valid {
			v := ts.Int64
			conv.Timestamp = &v
		}
		conv.Avatar = "https://ui-avatars.com/api/?name=" + conv.Name + "&background=random"
		conversations = append(conversations, conv)
	}
	return conversations, rows.Err()
}

// Project reduces a message to the requested field set. Unknown field
// names are ignored; an empty field list means no projection.
func (m Message) Project(fields []string) map[string]interface{} {
	full := map[string]interface{}{
		"id":           m.ID,
		"contact_id":   m.ContactID,
		"from":         m.FromUser,
		"to":           m.ToUser,
		"body":         m.Body,
		"timestamp":    m.Timestamp,
		"fromMe":       m.FromMe,
		"hasMedia":     m.HasMedia,
		"mediaType":    m.MediaType,
		"mediaCaption": m.MediaCaption,
		"source":       m.Source,
	}
	out := make(map[string]interface{}, len(fields))
	for _, field := range fields {
		if v, ok := full[field]; ok {
			out[field] = v
		}
	}
	return out
}

func (s *Store) messageStatistics(ctx context.Context, where string, args []interface{}) (Statistics, int, error) {
	var stats Statistics
	query := fmt.Sprintf(
		`SELECT COUNT(*),
		        COALESCE(SUM(has_media), 0),
		        COALESCE(SUM(from_me), 0),
		        COUNT(DISTINCT contact_id)
		 FROM messages %s`, where)
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&stats.TotalMessages, &stats.MediaMessages, &stats.SentMessages, &stats.UniqueContacts)
	if err != nil {
		return stats, 0, err
	}
	stats.TextMessages = stats.TotalMessages - stats.MediaMessages
	stats.ReceivedMessages = stats.TotalMessages - stats.SentMessages
	return stats, stats.TotalMessages, nil
}

func buildMessageWhere(f MessageFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	if f.ContactID != "" {
		conds = append(conds, "contact_id = ?")
		args = append(args, f.ContactID)
	}
	if f.FromUser != "" {
		conds = append(conds, "from_user = ?")
		args = append(args, f.FromUser)
	}
	if f.ToUser != "" {
		conds = append(conds, "to_user = ?")
		args = append(args, f.ToUser)
	}
	if f.Search != "" {
		conds = append(conds, "body LIKE ?")
		args = append(args, "%"+f.Search+"%")
	}
	if f.StartDate != "" {
		conds = append(conds, "timestamp >= ?")
		args = append(args, f.StartDate)
	}
	if f.EndDate != "" {
		conds = append(conds, "timestamp <= ?")
		args = append(args, f.EndDate)
	}
	if f.HasMedia != nil {
		conds = append(conds, "has_media = ?")
		args = append(args, boolToInt(*f.HasMedia))
	}
	if f.FromMe != nil {
		conds = append(conds, "from_me = ?")
		args = append(args, boolToInt(*f.FromMe))
	}

	if len(conds) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

// buildOrder whitelists sort columns; anything unrecognized falls back
// to the default so filter input can never reach the SQL text.
func buildOrder(sort, order string, allowed map[string]string, defaultSort, defaultOrder string) string {
	column, ok := allowed[sort]
	if !ok {
		column = allowed[defaultSort]
	}
	direction := strings.ToLower(order)
	if direction != "asc" && direction != "desc" {
		direction = defaultOrder
	}
	return column + " " + strings.ToUpper(direction)
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
