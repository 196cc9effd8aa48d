package notify

import (
	"bytes"
	"fmt"
	"mime"
	"strings"
	"text/template"
	"time"

	"github.com/portfolio/backend/internal/model"
)

var bodyTemplate = template.Must(template.New("contact").Parse(`New contact form submission from your portfolio:

Name: {{.Name}}
Email: {{.Email}}
Received: {{.ReceivedAt}}

Message:
{{.Message}}

---
Sent from your portfolio contact form
`))

type bodyData struct {
	Name       string
	Email      string
	Message    string
	ReceivedAt string
}

// Subject is the notification subject line for msg.
func Subject(msg *model.ContactMessage) string {
	return "New Contact Message from " + headerSafe(msg.Name)
}

// RenderBody renders the plain-text notification body.
func RenderBody(msg *model.ContactMessage) (string, error) {
	var buf bytes.Buffer
	err := bodyTemplate.Execute(&buf, bodyData{
		Name:       msg.Name,
		Email:      msg.Email,
		Message:    msg.Message,
		ReceivedAt: msg.CreatedAt.UTC().Format(time.RFC1123),
	})
	if err != nil {
		return "", fmt.Errorf("notify: render body: %w", err)
	}
	return buf.String(), nil
}

// buildMessage assembles the RFC 5322 message sent over SMTP.
func buildMessage(from, to string, msg *model.ContactMessage, now time.Time) ([]byte, error) {
	body, err := RenderBody(msg)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	writeHeader := func(k, v string) {
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(headerSafe(v))
		b.WriteString("\r\n")
	}
	writeHeader("From", from)
	writeHeader("To", to)
	writeHeader("Reply-To", msg.Email)
	writeHeader("Subject", mime.QEncoding.Encode("utf-8", Subject(msg)))
	writeHeader("Date", now.Format(time.RFC1123Z))
	writeHeader("MIME-Version", "1.0")
	writeHeader("Content-Type", "text/plain; charset=UTF-8")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String()), nil
}

// headerSafe strips line breaks so user input cannot inject headers.
func headerSafe(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
