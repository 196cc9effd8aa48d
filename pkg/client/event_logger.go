package client

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const sendBudget = 10 * time.Second

// EventLoggerConfig configures an EventLogger.
type EventLoggerConfig struct {
	// Endpoint is the API base URL; "/api/log" is appended.
	Endpoint string
	// PageURL and UserAgent describe the page the events come from.
	PageURL   string
	UserAgent string
	// SessionID produces the session identifier once, at construction.
	// Defaults to a random UUID.
	SessionID  func() string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// EventLogger sends analytics events without blocking the caller.
// Each instance owns one session id for its lifetime.
type EventLogger struct {
	client    *Client
	pageURL   string
	userAgent string
	sessionID string
	logger    *slog.Logger
	now       func() time.Time
	wg        sync.WaitGroup
}

type eventPayload struct {
	Event     string         `json:"event"`
	SessionID string         `json:"sessionId"`
	Timestamp string         `json:"timestamp"`
	URL       string         `json:"url,omitempty"`
	UserAgent string         `json:"userAgent,omitempty"`
	Data      map[string]any `json:"data"`
}

// NewEventLogger creates an EventLogger from cfg.
func NewEventLogger(cfg EventLoggerConfig) *EventLogger {
	newSession := cfg.SessionID
	if newSession == nil {
		newSession = uuid.NewString
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	sessionID := newSession()

	opts := []Option{WithSessionID(sessionID)}
	if cfg.HTTPClient != nil {
		opts = append(opts, WithHTTPClient(cfg.HTTPClient))
	}

	return &EventLogger{
		client:    New(cfg.Endpoint, opts...),
		pageURL:   cfg.PageURL,
		userAgent: cfg.UserAgent,
		sessionID: sessionID,
		logger:    logger,
		now:       time.Now,
	}
}

// SessionID returns the session identifier attached to every event.
func (l *EventLogger) SessionID() string { return l.sessionID }

// Log queues event for delivery and returns immediately. Delivery
// failures are logged and never reported to the caller.
func (l *EventLogger) Log(event string, data map[string]any) {
	if data == nil {
		data = map[string]any{}
	}
	payload := eventPayload{
		Event:     strings.TrimSpace(event),
		SessionID: l.sessionID,
		Timestamp: l.now().UTC().Format(time.RFC3339Nano),
		URL:       l.pageURL,
		UserAgent: l.userAgent,
		Data:      data,
	}

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), sendBudget)
		defer cancel()
		if err := l.client.postJSON(ctx, logPath, payload, nil); err != nil {
			l.logger.Warn("event log delivery failed", "event", payload.Event, "error", err)
		}
	}()
}

// Wait blocks until all queued events have been sent or dropped.
func (l *EventLogger) Wait() {
	l.wg.Wait()
}
