package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/portfolio/backend/internal/model"
)

// PgEventLogRepository is the PostgreSQL implementation of EventLogRepository.
// Event payloads are stored as JSONB.
type PgEventLogRepository struct {
	pool *pgxpool.Pool
}

// NewPgEventLogRepository creates a PgEventLogRepository backed by the given pool.
func NewPgEventLogRepository(pool *pgxpool.Pool) *PgEventLogRepository {
	return &PgEventLogRepository{pool: pool}
}

var _ EventLogRepository = (*PgEventLogRepository)(nil)

func (r *PgEventLogRepository) Append(ctx context.Context, e *model.LogEntry) error {
	data, err := marshalLogData(e.Data)
	if err != nil {
		return err
	}
	return r.pool.QueryRow(ctx,
		`INSERT INTO event_logs (ts, session_id, event, data, url, user_agent, ip, received_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		e.Timestamp, e.SessionID, e.Event, data, e.URL, e.UserAgent, e.IP, e.ReceivedAt,
	).Scan(&e.ID)
}

func (r *PgEventLogRepository) Query(ctx context.Context, q model.LogQuery) ([]*model.LogEntry, error) {
	where, args := logFilter(q, "ts", pgPlaceholder, func(t time.Time) any { return t })
	args = append(args, q.Limit)

	query := `SELECT id, ts, session_id, event, data, url, user_agent, ip, received_at
	          FROM event_logs ` + where +
		` ORDER BY ts DESC, id DESC LIMIT ` + pgPlaceholder(len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*model.LogEntry
	for rows.Next() {
		var e model.LogEntry
		var data []byte
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.SessionID, &e.Event, &data,
			&e.URL, &e.UserAgent, &e.IP, &e.ReceivedAt); err != nil {
			return nil, err
		}
		if e.Data, err = unmarshalLogData(data); err != nil {
			return nil, fmt.Errorf("event log %d: %w", e.ID, err)
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// marshalLogData encodes an event payload; nil becomes an empty object.
func marshalLogData(d model.LogData) ([]byte, error) {
	if d == nil {
		return []byte("{}"), nil
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode event data: %w", err)
	}
	return b, nil
}

func unmarshalLogData(b []byte) (model.LogData, error) {
	d := model.LogData{}
	if len(b) == 0 {
		return d, nil
	}
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("decode event data: %w", err)
	}
	return d, nil
}
