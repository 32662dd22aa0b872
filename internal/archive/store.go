package archive

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/wednesdev-id/puller-chat-dashboard/internal/logger"
)

const schema = `
CREATE TABLE IF NOT EXISTS contacts (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL DEFAULT '',
	phone        TEXT,
	last_message TEXT,
	last_from    TEXT,
	created_at   TEXT NOT NULL DEFAULT (datetime('now')),
	updated_at   TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS messages (
	id            TEXT PRIMARY KEY,
	contact_id    TEXT NOT NULL,
	from_user     TEXT,
	to_user       TEXT,
	body          TEXT,
	timestamp     INTEGER,
	from_me       INTEGER NOT NULL DEFAULT 0,
	has_media     INTEGER NOT NULL DEFAULT 0,
	media_type    TEXT,
	media_caption TEXT,
	source        TEXT
);

CREATE INDEX IF NOT EXISTS idx_messages_contact_ts ON messages(contact_id, timestamp);
CREATE INDEX IF NOT EXISTS idx_messages_ts ON messages(timestamp);
`

// Store is the local message archive. It is a read-mostly reporting
// store, orthogonal to the live session machinery: the only write path
// is recording outgoing messages the dashboard itself sent.
type Store struct {
	db  *sql.DB
	log *logger.Logger
}

// Open opens (and migrates) the archive database
func Open(driver, dsn string, log *logger.Logger) (*Store, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open archive database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate archive database: %w", err)
	}
	return &Store{db: db, log: log}, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordOutgoing archives a message sent through the dashboard so the
// reporting API reflects it. The contact row is created on first contact.
func (s *Store) RecordOutgoing(ctx context.Context, contactID, body string, sentAt time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO contacts (id, name) VALUES (?, ?)
		 ON CONFLICT(id) DO NOTHING`,
		contactID, contactID)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE contacts SET last_message = ?, last_from = 'me', updated_at = datetime('now') WHERE id = ?`,
		body, contactID)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO messages (id, contact_id, from_user, to_user, body, timestamp, from_me, source)
		 VALUES (?, ?, 'me', ?, ?, ?, 1, 'dashboard')`,
		uuid.NewString(), contactID, contactID, body, sentAt.Unix())
	if err != nil {
		return err
	}

	return tx.Commit()
}
