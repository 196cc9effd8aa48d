package service

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/portfolio/backend/internal/model"
	"github.com/portfolio/backend/internal/repository"
	"github.com/samber/lo"
)

const (
	defaultLogLimit   = 100
	maxLogLimit       = 1000
	asyncRecordBudget = 5 * time.Second
)

// EventLogService records and queries client and server events.
type EventLogService interface {
	// Record appends entry synchronously, filling in server-side defaults.
	Record(ctx context.Context, entry *model.LogEntry) error
	// RecordAsync appends entry in the background. Failures are only logged.
	RecordAsync(entry *model.LogEntry)
	// Query returns matching entries newest first.
	Query(ctx context.Context, q model.LogQuery) ([]*model.LogEntry, error)
	// Wait blocks until all background appends have finished.
	Wait()
}

type eventLogServiceImpl struct {
	repo   repository.EventLogRepository
	logger *slog.Logger
	now    func() time.Time
	wg     sync.WaitGroup
}

// NewEventLogService creates an EventLogService backed by the given repository.
func NewEventLogService(repo repository.EventLogRepository, logger *slog.Logger) EventLogService {
	if logger == nil {
		logger = slog.Default()
	}
	return &eventLogServiceImpl{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *eventLogServiceImpl) Record(ctx context.Context, entry *model.LogEntry) error {
	now := s.now()
	entry.Event = strings.TrimSpace(entry.Event)
	if entry.Event == "" {
		entry.Event = model.EventUnknown
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = now
	}
	entry.Timestamp = entry.Timestamp.UTC()
	entry.ReceivedAt = now
	if entry.Data == nil {
		entry.Data = model.LogData{}
	}

	if err := s.repo.Append(ctx, entry); err != nil {
		return &PersistenceError{Op: "append event log", Err: err}
	}
	return nil
}

func (s *eventLogServiceImpl) RecordAsync(entry *model.LogEntry) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), asyncRecordBudget)
		defer cancel()
		if err := s.Record(ctx, entry); err != nil {
			s.logger.Warn("event log append failed", "event", entry.Event, "error", err)
		}
	}()
}

// Query applies the default limit of 100 and caps it at 1000.
func (s *eventLogServiceImpl) Query(ctx context.Context, q model.LogQuery) ([]*model.LogEntry, error) {
	if q.Limit == 0 {
		q.Limit = defaultLogLimit
	}
	q.Limit = lo.Clamp(q.Limit, 1, maxLogLimit)
	q.Event = strings.TrimSpace(q.Event)
	if !q.Start.IsZero() && !q.End.IsZero() && q.Start.After(q.End) {
		return nil, &ValidationError{Field: "startDate", Reason: ReasonInvalidRange}
	}

	entries, err := s.repo.Query(ctx, q)
	if err != nil {
		return nil, &PersistenceError{Op: "query event logs", Err: err}
	}
	if entries == nil {
		entries = []*model.LogEntry{}
	}
	return entries, nil
}

func (s *eventLogServiceImpl) Wait() {
	s.wg.Wait()
}
