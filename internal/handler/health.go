package handler

import (
	"context"
	"net/http"
	"time"
)

type healthResponse struct {
	Success     bool      `json:"success"`
	Timestamp   time.Time `json:"timestamp"`
	Uptime      float64   `json:"uptime"`
	Environment string    `json:"environment"`
	Database    string    `json:"database"`
}

// Health reports liveness. It always answers 200; the database field shows
// whether the store is reachable.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	database := "ok"
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		h.logger.Warn("health: database ping failed", "error", err)
		database = "unavailable"
	}

	writeJSON(w, http.StatusOK, healthResponse{
		Success:     true,
		Timestamp:   time.Now().UTC(),
		Uptime:      time.Since(h.startedAt).Seconds(),
		Environment: h.environment,
		Database:    database,
	})
}

// NotFound answers every unmatched route or method.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, msgRouteNotFound)
}
