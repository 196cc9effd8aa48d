package model

import "time"

// Event names emitted by the site front-end and the server.
const (
	EventPageView           = "page_view"
	EventContactFormStarted = "contact_form_started"
	EventContactFormSuccess = "contact_form_success"
	EventContactFormError   = "contact_form_error"
	EventNavigationClick    = "navigation_click"
	EventResumeDownload     = "resume_download"
	EventProjectClick       = "project_click"
	EventSocialClick        = "social_click"
	EventSkillHover         = "skill_hover"

	// EventUnknown is stored when a client omits the event name.
	EventUnknown = "unknown"
)

// LogData is the free-form payload attached to an event.
type LogData map[string]any

// LogEntry is one append-only event record.
type LogEntry struct {
	ID         int64     `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	SessionID  string    `json:"sessionId"`
	Event      string    `json:"event"`
	Data       LogData   `json:"data"`
	URL        string    `json:"url"`
	UserAgent  string    `json:"userAgent"`
	IP         string    `json:"ip"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// LogQuery filters event log reads. Zero values mean "no filter".
type LogQuery struct {
	Event string
	Limit int
	Start time.Time
	End   time.Time
}
