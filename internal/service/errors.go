package service

import (
	"fmt"
	"strings"
)

// Validation failure reasons.
const (
	ReasonMissing      = "missing"
	ReasonInvalidEmail = "invalid_email"
	ReasonTooLong      = "too_long"
	ReasonInvalidRange = "invalid_range"
)

// ValidationError reports malformed caller input. No side effects have
// happened when it is returned.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Reason)
}

// Message is the client-facing explanation of the failure.
func (e *ValidationError) Message() string {
	switch e.Reason {
	case ReasonMissing:
		return "All fields are required"
	case ReasonInvalidEmail:
		return "Please provide a valid email address"
	case ReasonTooLong:
		return fieldLabel(e.Field) + " is too long"
	case ReasonInvalidRange:
		return "Start date must not be after end date"
	default:
		return "Invalid request"
	}
}

// PersistenceError wraps a storage failure.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// NotificationError means the message was stored but the owner could not
// be notified. The stored record is kept.
type NotificationError struct {
	MessageID string
	Err       error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("notification for message %s: %v", e.MessageID, e.Err)
}

func (e *NotificationError) Unwrap() error { return e.Err }

// fieldLabel turns a JSON field name into a sentence-initial label.
func fieldLabel(field string) string {
	if field == "" {
		return "Field"
	}
	return strings.ToUpper(field[:1]) + field[1:]
}
