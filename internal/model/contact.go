package model

import "time"

// ContactMessage represents a message submitted via the contact form.
// Records are written once and never updated.
type ContactMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// ContactSubmission is the raw form input before normalisation.
type ContactSubmission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// ContactListOptions carries pagination parameters for listing contact messages.
type ContactListOptions struct {
	Limit  int
	Offset int
}

// Pagination describes one page of a paginated listing.
type Pagination struct {
	Current       int   `json:"current"`
	Total         int   `json:"total"`
	Count         int   `json:"count"`
	TotalMessages int64 `json:"totalMessages"`
}

// MessagePage is a page of contact messages, newest first.
type MessagePage struct {
	Messages   []*ContactMessage `json:"messages"`
	Pagination Pagination        `json:"pagination"`
}

// NewPagination computes page metadata. limit must be positive.
func NewPagination(page, limit, count int, total int64) Pagination {
	pages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{
		Current:       page,
		Total:         pages,
		Count:         count,
		TotalMessages: total,
	}
}
