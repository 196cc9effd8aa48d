package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/portfolio/backend/internal/model"
)

// SQLiteEventLogRepository is the embedded SQLite implementation of
// EventLogRepository. Payloads are stored as JSON text.
type SQLiteEventLogRepository struct {
	db *sql.DB
}

// NewSQLiteEventLogRepository creates a SQLiteEventLogRepository on an opened database.
func NewSQLiteEventLogRepository(db *sql.DB) *SQLiteEventLogRepository {
	return &SQLiteEventLogRepository{db: db}
}

var _ EventLogRepository = (*SQLiteEventLogRepository)(nil)

func (r *SQLiteEventLogRepository) Append(ctx context.Context, e *model.LogEntry) error {
	data, err := marshalLogData(e.Data)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO event_logs (ts, session_id, event, data, url, user_agent, ip, received_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		toUnixMicro(e.Timestamp), e.SessionID, e.Event, string(data),
		e.URL, e.UserAgent, e.IP, toUnixMicro(e.ReceivedAt))
	if err != nil {
		return err
	}
	e.ID, err = res.LastInsertId()
	return err
}

func (r *SQLiteEventLogRepository) Query(ctx context.Context, q model.LogQuery) ([]*model.LogEntry, error) {
	where, args := logFilter(q, "ts", sqlitePlaceholder, func(t time.Time) any { return toUnixMicro(t) })
	args = append(args, q.Limit)

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, ts, session_id, event, data, url, user_agent, ip, received_at
		 FROM event_logs `+where+` ORDER BY ts DESC, id DESC LIMIT ?`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*model.LogEntry
	for rows.Next() {
		var e model.LogEntry
		var ts, received int64
		var data string
		if err := rows.Scan(&e.ID, &ts, &e.SessionID, &e.Event, &data,
			&e.URL, &e.UserAgent, &e.IP, &received); err != nil {
			return nil, err
		}
		e.Timestamp = fromUnixMicro(ts)
		e.ReceivedAt = fromUnixMicro(received)
		if e.Data, err = unmarshalLogData([]byte(data)); err != nil {
			return nil, fmt.Errorf("event log %d: %w", e.ID, err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
