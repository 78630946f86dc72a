package handlers

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/finverse/accessgate/models"
	"github.com/finverse/accessgate/utils"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// SessionSnapshotter reads the session store for the readiness check
type SessionSnapshotter interface {
	Snapshot() models.Session
}

// DatabaseChecker verifies the audit database connection
type DatabaseChecker interface {
	HealthCheck(ctx context.Context) error
}

// HealthHandler handles health-related HTTP requests
type HealthHandler struct {
	sessions SessionSnapshotter
	db       DatabaseChecker // nil when the audit trail is disabled
	logger   *zap.Logger
}

// NewHealthHandler creates a new HealthHandler. db may be nil.
func NewHealthHandler(sessions SessionSnapshotter, db DatabaseChecker, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		sessions: sessions,
		db:       db,
		logger:   logger,
	}
}

// HandleHealth handles GET /healthz.
// Always returns 200 while the process is running.
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleReadiness handles GET /readyz.
// Ready once session bootstrap has settled and, when auditing is enabled,
// the audit database answers; guards answer pending until the former.
func (h *HealthHandler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	status := h.sessions.Snapshot().Status

	checks := map[string]string{
		"session_bootstrap": string(status),
	}

	if !status.Settled() {
		_ = utils.WriteJSON(w, http.StatusServiceUnavailable, HealthResponse{
			Status:    "initializing",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Checks:    checks,
		})
		return
	}

	if h.db != nil {
		if err := h.db.HealthCheck(r.Context()); err != nil {
			h.logger.Warn("audit database unreachable", zap.Error(err))
			checks["audit_database"] = "unreachable"
			_ = utils.WriteJSON(w, http.StatusServiceUnavailable, HealthResponse{
				Status:    "degraded",
				Timestamp: time.Now().UTC().Format(time.RFC3339),
				Checks:    checks,
			})
			return
		}
		checks["audit_database"] = "ok"
	}

	_ = utils.WriteJSON(w, http.StatusOK, HealthResponse{
		Status:    "ready",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	})
}
