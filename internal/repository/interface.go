package repository

import (
	"context"

	"github.com/portfolio/backend/internal/model"
)

// DB checks that the underlying database connection is alive.
type DB interface {
	Ping(ctx context.Context) error
}

// ContactRepository persists contact form submissions. Records are insert-only.
type ContactRepository interface {
	Save(ctx context.Context, msg *model.ContactMessage) error
	FindByID(ctx context.Context, id string) (*model.ContactMessage, error)
	// List returns messages newest first.
	List(ctx context.Context, opts model.ContactListOptions) ([]*model.ContactMessage, error)
	Count(ctx context.Context) (int64, error)
}

// EventLogRepository is the append-only event log sink.
type EventLogRepository interface {
	// Append stores entry and sets entry.ID.
	Append(ctx context.Context, entry *model.LogEntry) error
	// Query returns matching entries newest first, at most q.Limit of them.
	Query(ctx context.Context, q model.LogQuery) ([]*model.LogEntry, error)
}
