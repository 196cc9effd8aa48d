package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/portfolio/backend/internal/model"
	"github.com/portfolio/backend/internal/repository"
	"github.com/portfolio/backend/internal/service"
)

const msgSent = "Message sent successfully!"

// SessionHeader carries the client's session identifier on API calls.
const SessionHeader = "X-Session-ID"

// ContactHandler handles contact form submission and message listing.
type ContactHandler struct {
	contactService  service.ContactService
	eventLogService service.EventLogService
	trustedProxies  int
	logger          *slog.Logger
}

// NewContactHandler creates a ContactHandler. eventLogService may be nil,
// in which case submissions are not recorded in the event log.
func NewContactHandler(contactService service.ContactService, eventLogService service.EventLogService, trustedProxies int) *ContactHandler {
	return &ContactHandler{
		contactService:  contactService,
		eventLogService: eventLogService,
		trustedProxies:  trustedProxies,
		logger:          slog.Default(),
	}
}

type sendEmailResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SendEmail handles POST /api/send-email.
func (h *ContactHandler) SendEmail(w http.ResponseWriter, r *http.Request) {
	var req model.ContactSubmission
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	_, err := h.contactService.Submit(r.Context(), req)

	var verr *service.ValidationError
	if errors.As(err, &verr) {
		writeError(w, http.StatusBadRequest, verr.Message())
		return
	}

	h.recordSubmission(r, req, err)

	var perr *service.PersistenceError
	var nerr *service.NotificationError
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, sendEmailResponse{Success: true, Message: msgSent})
	case errors.As(err, &nerr):
		writeError(w, http.StatusInternalServerError, "Failed to send message")
	case errors.As(err, &perr):
		h.logger.ErrorContext(r.Context(), "contact submission not stored", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to save message")
	default:
		h.logger.ErrorContext(r.Context(), "contact submission failed", "error", err)
		writeError(w, http.StatusInternalServerError, msgInternalError)
	}
}

// recordSubmission appends a log entry describing the outcome. Only sizes
// and the email domain are recorded, never the message body.
func (h *ContactHandler) recordSubmission(r *http.Request, req model.ContactSubmission, err error) {
	if h.eventLogService == nil {
		return
	}

	data := model.LogData{
		"message_length": utf8.RuneCountInString(strings.TrimSpace(req.Message)),
		"email_domain":   emailDomain(req.Email),
	}
	event := model.EventContactFormSuccess
	if err != nil {
		event = model.EventContactFormError
		data["error_kind"] = errorKind(err)
	}

	h.eventLogService.RecordAsync(&model.LogEntry{
		SessionID: r.Header.Get(SessionHeader),
		Event:     event,
		Data:      data,
		URL:       r.Referer(),
		UserAgent: r.UserAgent(),
		IP:        ClientIP(r, h.trustedProxies),
	})
}

func emailDomain(email string) string {
	_, domain, ok := strings.Cut(strings.ToLower(strings.TrimSpace(email)), "@")
	if !ok {
		return ""
	}
	return domain
}

func errorKind(err error) string {
	var perr *service.PersistenceError
	var nerr *service.NotificationError
	switch {
	case errors.As(err, &nerr):
		return "notification"
	case errors.As(err, &perr):
		return "persistence"
	default:
		return "internal"
	}
}

type messagesResponse struct {
	Success    bool                    `json:"success"`
	Messages   []*model.ContactMessage `json:"messages"`
	Pagination model.Pagination        `json:"pagination"`
}

// ListMessages handles GET /api/messages?limit&page.
func (h *ContactHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page")
	limit := queryInt(r, "limit")

	result, err := h.contactService.List(r.Context(), page, limit)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "list messages failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch messages")
		return
	}

	writeJSON(w, http.StatusOK, messagesResponse{
		Success:    true,
		Messages:   result.Messages,
		Pagination: result.Pagination,
	})
}

type messageResponse struct {
	Success bool                  `json:"success"`
	Message *model.ContactMessage `json:"message"`
}

// GetMessage handles GET /api/messages/{id}.
func (h *ContactHandler) GetMessage(w http.ResponseWriter, r *http.Request) {
	msg, err := h.contactService.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Message not found")
		return
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "get message failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch message")
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: msg})
}

// queryInt parses a query parameter; missing or malformed values yield 0
// so that the service applies its defaults.
func queryInt(r *http.Request, key string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0
	}
	return n
}
