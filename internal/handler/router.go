package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/portfolio/backend/internal/repository"
	"github.com/portfolio/backend/internal/service"
	"github.com/portfolio/backend/pkg/auth"
)

const defaultRequestTimeout = 30 * time.Second

// RouterConfig wires services and policy into the HTTP router.
type RouterConfig struct {
	Contacts  service.ContactService
	EventLogs service.EventLogService
	DB        repository.DB

	AllowedOrigins []string
	Environment    string
	// AdminToken guards the read endpoints. Empty leaves them open.
	AdminToken       string
	ContactRateLimit int
	TrustedProxies   int
	RequestTimeout   time.Duration
	Logger           *slog.Logger
}

// Router is the API's http.Handler. Close releases the rate limiter.
type Router struct {
	mux     chi.Router
	limiter *RateLimiter
}

// NewRouter builds the middleware chain and the /api routes.
func NewRouter(cfg RouterConfig) *Router {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	h := New(cfg.DB, cfg.AllowedOrigins, cfg.Environment)
	h.logger = logger
	contactHandler := NewContactHandler(cfg.Contacts, cfg.EventLogs, cfg.TrustedProxies)
	contactHandler.logger = logger
	eventLogHandler := NewEventLogHandler(cfg.EventLogs, cfg.TrustedProxies)
	eventLogHandler.logger = logger

	limiter := NewRateLimiter(cfg.ContactRateLimit, cfg.TrustedProxies)
	requireAdmin := auth.RequireAdminToken(cfg.AdminToken)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(Recovery(logger))
	r.Use(SecurityHeaders)
	r.Use(h.CORS)
	r.Use(middleware.Timeout(timeout))

	r.NotFound(NotFound)
	r.MethodNotAllowed(NotFound)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)
		r.With(limiter.Middleware).Post("/send-email", contactHandler.SendEmail)
		r.Post("/log", eventLogHandler.Log)

		r.Group(func(r chi.Router) {
			r.Use(requireAdmin)
			r.Get("/logs", eventLogHandler.ListLogs)
			r.Get("/messages", contactHandler.ListMessages)
			r.Get("/messages/{id}", contactHandler.GetMessage)
		})
	})

	return &Router{mux: r, limiter: limiter}
}

func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt.mux.ServeHTTP(w, r)
}

// Close stops background work owned by the router.
func (rt *Router) Close() {
	rt.limiter.Close()
}
