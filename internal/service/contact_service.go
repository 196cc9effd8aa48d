package service

import (
	"context"

	"github.com/portfolio/backend/internal/model"
)

// ContactService defines the business logic for contact form submissions.
type ContactService interface {
	// Submit validates, stores and notifies. It returns *ValidationError,
	// *PersistenceError or *NotificationError on failure; in the last case
	// the message has been stored and is returned alongside the error.
	Submit(ctx context.Context, sub model.ContactSubmission) (*model.ContactMessage, error)

	// List returns one page of stored messages, newest first.
	List(ctx context.Context, page, limit int) (*model.MessagePage, error)

	// Get returns a single message or repository.ErrNotFound.
	Get(ctx context.Context, id string) (*model.ContactMessage, error)
}
