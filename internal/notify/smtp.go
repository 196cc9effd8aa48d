package notify

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/portfolio/backend/internal/model"
)

const defaultTimeout = 10 * time.Second

// SMTPConfig configures SMTPNotifier.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	// From defaults to Username.
	From string
	To   string
	// Timeout bounds dialing and the whole SMTP session.
	Timeout time.Duration
}

// SMTPNotifier sends notifications through an SMTP relay using PLAIN auth
// and STARTTLS when the server offers it. Port 465 uses implicit TLS.
type SMTPNotifier struct {
	cfg  SMTPConfig
	auth smtp.Auth
	now  func() time.Time
}

// NewSMTPNotifier creates an SMTPNotifier.
func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	if cfg.From == "" {
		cfg.From = cfg.Username
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	n := &SMTPNotifier{cfg: cfg, now: time.Now}
	if cfg.Username != "" {
		n.auth = smtp.PlainAuth("", cfg.Username, cfg.Password, cfg.Host)
	}
	return n
}

var _ Notifier = (*SMTPNotifier)(nil)

// Notify sends one email for msg. It never retries.
func (n *SMTPNotifier) Notify(ctx context.Context, msg *model.ContactMessage) error {
	data, err := buildMessage(n.cfg.From, n.cfg.To, msg, n.now())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, n.cfg.Timeout)
	defer cancel()

	conn, err := n.dial(ctx)
	if err != nil {
		return fmt.Errorf("notify: dial %s: %w", n.addr(), err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	// Closing the connection unblocks any pending read if ctx is cancelled early.
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	c, err := smtp.NewClient(conn, n.cfg.Host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("notify: smtp handshake: %w", err)
	}
	defer c.Close()

	if err := n.send(c, data); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	return nil
}

func (n *SMTPNotifier) send(c *smtp.Client, data []byte) error {
	if n.cfg.Port != 465 {
		if ok, _ := c.Extension("STARTTLS"); ok {
			if err := c.StartTLS(&tls.Config{ServerName: n.cfg.Host}); err != nil {
				return fmt.Errorf("starttls: %w", err)
			}
		}
	}
	if n.auth != nil {
		if ok, _ := c.Extension("AUTH"); !ok {
			return errors.New("server does not support AUTH")
		}
		if err := c.Auth(n.auth); err != nil {
			return fmt.Errorf("auth: %w", err)
		}
	}
	if err := c.Mail(n.cfg.From); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := c.Rcpt(n.cfg.To); err != nil {
		return fmt.Errorf("rcpt to: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finish body: %w", err)
	}
	return c.Quit()
}

func (n *SMTPNotifier) dial(ctx context.Context) (net.Conn, error) {
	d := &net.Dialer{Timeout: n.cfg.Timeout}
	if n.cfg.Port == 465 {
		td := &tls.Dialer{NetDialer: d, Config: &tls.Config{ServerName: n.cfg.Host}}
		return td.DialContext(ctx, "tcp", n.addr())
	}
	return d.DialContext(ctx, "tcp", n.addr())
}

func (n *SMTPNotifier) addr() string {
	return net.JoinHostPort(n.cfg.Host, strconv.Itoa(n.cfg.Port))
}
