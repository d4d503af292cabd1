package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// Pinger is anything that can report connectivity
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles health check endpoints
type HealthHandler struct {
	db     *sql.DB
	cache  Pinger
	logger *slog.Logger
}

// NewHealthHandler creates a new health handler. cache may be nil when
// the in-memory backend is in use.
func NewHealthHandler(db *sql.DB, cache Pinger, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{
		db:     db,
		cache:  cache,
		logger: logger,
	}
}

// HealthResponse represents the health status response
type HealthResponse struct {
	Status string `json:"status"`
}

// ReadinessResponse represents the readiness check response
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Health handles GET /healthz - simple liveness check
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(HealthResponse{Status: "ok"})
}

// APIHealth handles GET /api/health - same liveness signal, wrapped in
// the API envelope for clients that only speak /api routes.
func (h *HealthHandler) APIHealth(w http.ResponseWriter, r *http.Request) {
	respondMessage(w, http.StatusOK, "OK")
}

// Ready handles GET /readyz - returns 200 only if dependencies are healthy
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)

	dbOK := false
	if h.db != nil {
		if err := h.db.PingContext(ctx); err == nil {
			checks["database"] = "ok"
			dbOK = true
		} else {
			checks["database"] = "error: " + err.Error()
		}
	} else {
		checks["database"] = "not configured"
	}

	// The cache is an optimization tier; a failed ping is reported but
	// does not fail readiness.
	if h.cache != nil {
		if err := h.cache.Ping(ctx); err == nil {
			checks["cache"] = "ok"
		} else {
			checks["cache"] = "error: " + err.Error()
		}
	} else {
		checks["cache"] = "in-memory"
	}

	status := "ready"
	statusCode := http.StatusOK
	if !dbOK {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ReadinessResponse{
		Status: status,
		Checks: checks,
	})

	h.logger.Debug("readiness check",
		slog.String("status", status),
		slog.String("database", checks["database"]),
		slog.String("cache", checks["cache"]),
	)
}
