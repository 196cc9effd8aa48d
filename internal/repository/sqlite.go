package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteSchema creates the tables used by the SQLite store. Timestamps are
// stored as unix microseconds, matching Postgres timestamptz precision and
// covering any year time.Time can represent in practice.
const SQLiteSchema = `
CREATE TABLE IF NOT EXISTS contact_messages (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL,
	message    TEXT NOT NULL,
	created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_contact_messages_created_at ON contact_messages (created_at DESC);

CREATE TABLE IF NOT EXISTS event_logs (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	ts          INTEGER NOT NULL,
	session_id  TEXT NOT NULL DEFAULT '',
	event       TEXT NOT NULL,
	data        TEXT NOT NULL DEFAULT '{}',
	url         TEXT NOT NULL DEFAULT '',
	user_agent  TEXT NOT NULL DEFAULT '',
	ip          TEXT NOT NULL DEFAULT '',
	received_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_event_logs_ts ON event_logs (ts DESC);
CREATE INDEX IF NOT EXISTS idx_event_logs_event ON event_logs (event, ts DESC);
`

// SQLiteDSN converts a sqlite:// URL into a driver data source name.
// "file:" DSNs are passed through unchanged.
func SQLiteDSN(url string) string {
	if strings.HasPrefix(url, "sqlite://") {
		return strings.TrimPrefix(url, "sqlite://")
	}
	return url
}

// OpenSQLite opens the database, applies the schema and pings it.
// A single connection is used: writes are serialised by SQLite anyway and
// an in-memory database only exists per connection.
func OpenSQLite(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("repository: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("repository: ping sqlite: %w", err)
	}
	if err := EnsureSQLiteSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// EnsureSQLiteSchema creates missing tables and indexes.
func EnsureSQLiteSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, SQLiteSchema); err != nil {
		return fmt.Errorf("repository: apply sqlite schema: %w", err)
	}
	return nil
}

type sqlitePinger struct {
	db *sql.DB
}

func (p sqlitePinger) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func toUnixMicro(t time.Time) int64 { return t.UTC().UnixMicro() }

func fromUnixMicro(n int64) time.Time { return time.UnixMicro(n).UTC() }
