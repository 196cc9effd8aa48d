package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/portfolio/backend/internal/model"
)

// SQLiteContactRepository is the embedded SQLite implementation of ContactRepository.
type SQLiteContactRepository struct {
	db *sql.DB
}

// NewSQLiteContactRepository creates a SQLiteContactRepository on an opened database.
func NewSQLiteContactRepository(db *sql.DB) *SQLiteContactRepository {
	return &SQLiteContactRepository{db: db}
}

var _ ContactRepository = (*SQLiteContactRepository)(nil)

func (r *SQLiteContactRepository) Save(ctx context.Context, msg *model.ContactMessage) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO contact_messages (id, name, email, message, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		msg.ID, msg.Name, msg.Email, msg.Message, toUnixMicro(msg.CreatedAt),
	)
	return err
}

func (r *SQLiteContactRepository) FindByID(ctx context.Context, id string) (*model.ContactMessage, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, name, email, message, created_at
		 FROM contact_messages WHERE id = ?`, id)
	m, err := scanContact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return m, err
}

func (r *SQLiteContactRepository) List(ctx context.Context, opts model.ContactListOptions) ([]*model.ContactMessage, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, email, message, created_at
		 FROM contact_messages
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ? OFFSET ?`,
		opts.Limit, opts.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*model.ContactMessage
	for rows.Next() {
		m, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (r *SQLiteContactRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contact_messages`).Scan(&n)
	return n, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanContact(s scanner) (*model.ContactMessage, error) {
	var m model.ContactMessage
	var created int64
	if err := s.Scan(&m.ID, &m.Name, &m.Email, &m.Message, &created); err != nil {
		return nil, err
	}
	m.CreatedAt = fromUnixMicro(created)
	return &m, nil
}
