package service

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/portfolio/backend/internal/model"
	"github.com/portfolio/backend/internal/notify"
	"github.com/portfolio/backend/internal/repository"
	"github.com/samber/lo"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

// contactServiceImpl is the production implementation of ContactService.
type contactServiceImpl struct {
	repo     repository.ContactRepository
	notifier notify.Notifier
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
}

// NewContactService creates a ContactService backed by the given repository and notifier.
func NewContactService(repo repository.ContactRepository, notifier notify.Notifier, logger *slog.Logger) ContactService {
	if logger == nil {
		logger = slog.Default()
	}
	return &contactServiceImpl{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

// Submit normalises and validates the input, stores the message and then
// notifies the owner. Persistence and notification are independent steps:
// a failed notification does not remove the stored message.
func (s *contactServiceImpl) Submit(ctx context.Context, sub model.ContactSubmission) (*model.ContactMessage, error) {
	sub = NormalizeSubmission(sub)
	if err := ValidateSubmission(sub); err != nil {
		return nil, err
	}

	msg := &model.ContactMessage{
		ID:        s.newID(),
		Name:      sub.Name,
		Email:     sub.Email,
		Message:   sub.Message,
		CreatedAt: s.now(),
	}
	if err := s.repo.Save(ctx, msg); err != nil {
		return nil, &PersistenceError{Op: "save contact message", Err: err}
	}

	if err := s.notifier.Notify(ctx, msg); err != nil {
		s.logger.ErrorContext(ctx, "contact message stored but notification failed",
			"message_id", msg.ID,
			"error", err,
		)
		return msg, &NotificationError{MessageID: msg.ID, Err: err}
	}

	s.logger.InfoContext(ctx, "contact message received", "message_id", msg.ID)
	return msg, nil
}

// List returns one page of messages. page < 1 is treated as 1; limit is
// clamped to [1, 100] with 0 meaning the default of 10. page is capped so
// the row offset cannot overflow; pages past the end are empty.
func (s *contactServiceImpl) List(ctx context.Context, page, limit int) (*model.MessagePage, error) {
	if page < 1 {
		page = 1
	}
	if limit == 0 {
		limit = defaultPageLimit
	}
	limit = lo.Clamp(limit, 1, maxPageLimit)
	page = min(page, math.MaxInt/limit)

	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "count contact messages", Err: err}
	}
	messages, err := s.repo.List(ctx, model.ContactListOptions{
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return nil, &PersistenceError{Op: "list contact messages", Err: err}
	}
	if messages == nil {
		messages = []*model.ContactMessage{}
	}

	return &model.MessagePage{
		Messages:   messages,
		Pagination: model.NewPagination(page, limit, len(messages), total),
	}, nil
}

func (s *contactServiceImpl) Get(ctx context.Context, id string) (*model.ContactMessage, error) {
	return s.repo.FindByID(ctx, id)
}
