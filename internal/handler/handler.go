package handler

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/portfolio/backend/internal/repository"
)

// Handler serves the cross-cutting endpoints (health) and the CORS policy.
type Handler struct {
	db             repository.DB
	allowedOrigins []string
	environment    string
	startedAt      time.Time
	logger         *slog.Logger
}

func New(db repository.DB, allowedOrigins []string, environment string) *Handler {
	return &Handler{
		db:             db,
		allowedOrigins: allowedOrigins,
		environment:    environment,
		startedAt:      time.Now(),
		logger:         slog.Default(),
	}
}

// CORS allows requests from the configured origins only. The matching
// Origin is echoed back; preflight requests are answered directly.
func (h *Handler) CORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && slices.Contains(h.allowedOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Session-ID")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
