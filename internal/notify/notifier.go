// Package notify alerts the site owner about new contact messages.
package notify

import (
	"context"
	"log/slog"
	"unicode/utf8"

	"github.com/portfolio/backend/internal/model"
)

// Notifier dispatches an outbound notification for a stored contact message.
type Notifier interface {
	Notify(ctx context.Context, msg *model.ContactMessage) error
}

// NotifierFunc adapts a plain function to Notifier.
type NotifierFunc func(ctx context.Context, msg *model.ContactMessage) error

func (f NotifierFunc) Notify(ctx context.Context, msg *model.ContactMessage) error {
	return f(ctx, msg)
}

// LogNotifier only writes the notification to the log. It is used in
// development when no SMTP credentials are configured.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier. A nil logger uses slog.Default().
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, msg *model.ContactMessage) error {
	n.logger.InfoContext(ctx, "contact notification (smtp disabled)",
		"message_id", msg.ID,
		"name", msg.Name,
		"email", msg.Email,
		"message_length", utf8.RuneCountInString(msg.Message),
	)
	return nil
}
