// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	env "github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/samber/lo"
)

// Config holds every externally supplied setting of the server.
type Config struct {
	Port        int    `env:"PORT,default=5000"`
	Environment string `env:"APP_ENV,default=development"`
	DatabaseURL string `env:"DATABASE_URL,required=true"`

	// AllowedOrigins is a comma separated CORS allow-list.
	AllowedOrigins string `env:"ALLOWED_ORIGINS,default=http://localhost:3000"`

	SMTPHost      string        `env:"SMTP_HOST,default=smtp.gmail.com"`
	SMTPPort      int           `env:"SMTP_PORT,default=587"`
	SMTPUser      string        `env:"SMTP_USER"`
	SMTPPass      string        `env:"SMTP_PASS"`
	NotifyTo      string        `env:"NOTIFY_TO"`
	NotifyTimeout time.Duration `env:"NOTIFY_TIMEOUT,default=10s"`

	LogLevel  string `env:"LOG_LEVEL,default=INFO"`
	LogFormat string `env:"LOG_FORMAT,default=json"`

	AdminToken       string        `env:"ADMIN_TOKEN"`
	ContactRateLimit int           `env:"CONTACT_RATE_LIMIT,default=5"`
	TrustedProxies   int           `env:"TRUSTED_PROXIES,default=1"`
	ShutdownTimeout  time.Duration `env:"SHUTDOWN_TIMEOUT,default=5s"`
}

var supportedSchemes = []string{"postgres://", "postgresql://", "sqlite://", "file:"}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	es, err := env.EnvironToEnvSet(os.Environ())
	if err != nil {
		return nil, fmt.Errorf("config: read environment: %w", err)
	}
	return Parse(es)
}

// Parse builds a Config from an explicit variable set and validates it.
func Parse(es env.EnvSet) (*Config, error) {
	var c Config
	if err := env.Unmarshal(es, &c); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks cross-field constraints that struct tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT out of range: %d", c.Port))
	}
	url := strings.TrimSpace(c.DatabaseURL)
	if url == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	} else if !lo.SomeBy(supportedSchemes, func(s string) bool { return strings.HasPrefix(url, s) }) {
		errs = append(errs, fmt.Errorf("DATABASE_URL has unsupported scheme (want one of %s)", strings.Join(supportedSchemes, ", ")))
	}
	if c.IsProduction() && !c.SMTPEnabled() {
		errs = append(errs, errors.New("SMTP_USER and SMTP_PASS are required in production"))
	}
	if c.SMTPEnabled() && c.Recipient() == "" {
		errs = append(errs, errors.New("NOTIFY_TO is required"))
	}
	if c.NotifyTimeout <= 0 {
		errs = append(errs, errors.New("NOTIFY_TIMEOUT must be positive"))
	}
	if c.ContactRateLimit <= 0 {
		errs = append(errs, errors.New("CONTACT_RATE_LIMIT must be positive"))
	}
	if c.TrustedProxies < 0 {
		errs = append(errs, errors.New("TRUSTED_PROXIES must not be negative"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}

// IsProduction reports whether APP_ENV is "production".
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// SMTPEnabled reports whether mail credentials were supplied.
func (c *Config) SMTPEnabled() bool {
	return c.SMTPUser != "" && c.SMTPPass != ""
}

// Recipient is the notification address, falling back to the SMTP account.
func (c *Config) Recipient() string {
	if c.NotifyTo != "" {
		return c.NotifyTo
	}
	return c.SMTPUser
}

// Origins splits AllowedOrigins into a trimmed list without empty entries.
func (c *Config) Origins() []string {
	parts := lo.Map(strings.Split(c.AllowedOrigins, ","), func(s string, _ int) string {
		return strings.TrimSpace(s)
	})
	return lo.Uniq(lo.Compact(parts))
}
