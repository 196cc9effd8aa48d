package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Driver names reported by Store.Driver.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Store bundles the repositories backed by one database.
type Store struct {
	Contacts ContactRepository
	Events   EventLogRepository
	DB       DB
	Driver   string

	closeFn func()
}

// Close releases the underlying connection pool.
func (s *Store) Close() {
	if s.closeFn != nil {
		s.closeFn()
	}
}

// NewPool creates a PostgreSQL connection pool and verifies it with a ping.
func NewPool(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// DriverFor picks the storage driver from the connection URL scheme.
func DriverFor(url string) (string, error) {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return DriverPostgres, nil
	case strings.HasPrefix(url, "sqlite://"), strings.HasPrefix(url, "file:"):
		return DriverSQLite, nil
	default:
		return "", fmt.Errorf("repository: unsupported database url %q", redact(url))
	}
}

// Open connects to the database named by url, pings it and, for SQLite,
// ensures the schema exists. Postgres schemas are managed by cmd/migrate.
func Open(ctx context.Context, url string) (*Store, error) {
	driver, err := DriverFor(url)
	if err != nil {
		return nil, err
	}

	switch driver {
	case DriverPostgres:
		pool, err := NewPool(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("repository: connect postgres: %w", err)
		}
		return &Store{
			Contacts: NewPgContactRepository(pool),
			Events:   NewPgEventLogRepository(pool),
			DB:       pool,
			Driver:   DriverPostgres,
			closeFn:  pool.Close,
		}, nil
	default:
		db, err := OpenSQLite(ctx, SQLiteDSN(url))
		if err != nil {
			return nil, err
		}
		return &Store{
			Contacts: NewSQLiteContactRepository(db),
			Events:   NewSQLiteEventLogRepository(db),
			DB:       sqlitePinger{db: db},
			Driver:   DriverSQLite,
			closeFn:  func() { _ = db.Close() },
		}, nil
	}
}

// redact hides credentials in a connection string before it is logged.
func redact(url string) string {
	at := strings.LastIndex(url, "@")
	scheme := strings.Index(url, "://")
	if at < 0 || scheme < 0 || at < scheme {
		return url
	}
	return url[:scheme+3] + "***" + url[at:]
}
