package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/portfolio/backend/internal/model"
	"github.com/portfolio/backend/internal/service"
)

// EventLogHandler handles event log intake and queries.
type EventLogHandler struct {
	eventLogService service.EventLogService
	trustedProxies  int
	logger          *slog.Logger
}

func NewEventLogHandler(eventLogService service.EventLogService, trustedProxies int) *EventLogHandler {
	return &EventLogHandler{
		eventLogService: eventLogService,
		trustedProxies:  trustedProxies,
		logger:          slog.Default(),
	}
}

// logRequest is the event envelope posted by clients. Fields are read
// leniently so that any well-formed JSON body is accepted.
type logRequest struct {
	Event     string
	SessionID string
	Timestamp time.Time
	URL       string
	UserAgent string
	Data      model.LogData
}

// parseLogRequest maps a JSON body onto the envelope. A body that is not a
// JSON object is stored whole under data.
func parseLogRequest(body json.RawMessage) logRequest {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return logRequest{Data: decodeLogData(body)}
	}
	return logRequest{
		Event:     rawString(fields["event"]),
		SessionID: rawString(fields["sessionId"]),
		Timestamp: parseClientTime(fields["timestamp"]),
		URL:       rawString(fields["url"]),
		UserAgent: rawString(fields["userAgent"]),
		Data:      decodeLogData(fields["data"]),
	}
}

// Log handles POST /api/log.
func (h *EventLogHandler) Log(w http.ResponseWriter, r *http.Request) {
	var body json.RawMessage
	if err := decodeJSON(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	req := parseLogRequest(body)

	entry := &model.LogEntry{
		Event:     req.Event,
		SessionID: req.SessionID,
		Timestamp: req.Timestamp,
		Data:      req.Data,
		URL:       req.URL,
		UserAgent: req.UserAgent,
		IP:        ClientIP(r, h.trustedProxies),
	}
	if entry.UserAgent == "" {
		entry.UserAgent = r.UserAgent()
	}
	if entry.SessionID == "" {
		entry.SessionID = r.Header.Get(SessionHeader)
	}

	if err := h.eventLogService.Record(r.Context(), entry); err != nil {
		h.logger.ErrorContext(r.Context(), "event log append failed", "event", entry.Event, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to save log")
		return
	}
	writeJSON(w, http.StatusOK, successResponse{Success: true})
}

// rawString renders a scalar JSON value as text. Strings are unquoted,
// numbers and booleans keep their literal form, anything else is empty.
func rawString(raw json.RawMessage) string {
	var v any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// parseClientTime accepts an RFC 3339 string or a number of epoch
// milliseconds. Anything else yields the zero time so that the server clock
// is used.
func parseClientTime(raw json.RawMessage) time.Time {
	var v any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return time.Time{}
	}
	switch t := v.(type) {
	case string:
		ts, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(t))
		if err != nil {
			return time.Time{}
		}
		return ts
	case json.Number:
		ms, err := t.Float64()
		if err != nil || math.IsNaN(ms) || ms < minClientMillis || ms > maxClientMillis {
			return time.Time{}
		}
		return time.UnixMilli(int64(ms)).UTC()
	default:
		return time.Time{}
	}
}

// Bounds for numeric client timestamps, years 0001 through 9999.
const (
	minClientMillis = -62135596800000
	maxClientMillis = 253402300799999
)

// decodeLogData keeps JSON objects as they are and wraps any other JSON
// value under "value".
func decodeLogData(raw json.RawMessage) model.LogData {
	if len(raw) == 0 || string(raw) == "null" {
		return model.LogData{}
	}
	var obj model.LogData
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return model.LogData{}
	}
	return model.LogData{"value": v}
}

type logsResponse struct {
	Success bool              `json:"success"`
	Logs    []*model.LogEntry `json:"logs"`
}

// ListLogs handles GET /api/logs?event&limit&startDate&endDate.
func (h *EventLogHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	start, err := parseDateParam(q.Get("startDate"), false)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid startDate")
		return
	}
	end, err := parseDateParam(q.Get("endDate"), true)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid endDate")
		return
	}

	logs, err := h.eventLogService.Query(r.Context(), model.LogQuery{
		Event: q.Get("event"),
		Limit: queryInt(r, "limit"),
		Start: start,
		End:   end,
	})
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		writeError(w, http.StatusBadRequest, verr.Message())
		return
	}
	if err != nil {
		h.logger.ErrorContext(r.Context(), "query logs failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch logs")
		return
	}

	writeJSON(w, http.StatusOK, logsResponse{Success: true, Logs: logs})
}

// parseDateParam accepts RFC 3339 or YYYY-MM-DD. A bare end date covers the
// whole day.
func parseDateParam(s string, endOfDay bool) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}
