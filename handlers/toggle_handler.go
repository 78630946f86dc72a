package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/finverse/accessgate/models"
	"github.com/finverse/accessgate/services/toggle"
	"github.com/finverse/accessgate/utils"
)

// ToggleReader exposes the toggle cache to the admin endpoints
type ToggleReader interface {
	Snapshot() toggle.Snapshot
	FetchAll(ctx context.Context) error
}

// ToggleHandler handles feature toggle administration requests
type ToggleHandler struct {
	toggles ToggleReader
	logger  *zap.Logger
}

// NewToggleHandler creates a new ToggleHandler
func NewToggleHandler(toggles ToggleReader, logger *zap.Logger) *ToggleHandler {
	return &ToggleHandler{
		toggles: toggles,
		logger:  logger,
	}
}

// ToggleView is one toggle's admin-facing state
type ToggleView struct {
	Key   models.FeatureKey  `json:"key"`
	State models.ToggleState `json:"state"`
}

// HandleList handles GET /admin/toggles
func (h *ToggleHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	snap := h.toggles.Snapshot()

	views := make([]ToggleView, 0, len(models.AllFeatureKeys))
	for _, key := range models.AllFeatureKeys {
		views = append(views, ToggleView{Key: key, State: snap.State(key)})
	}

	_ = utils.WriteOK(w, views)
}

// HandleRefresh handles POST /admin/toggles/refresh, the explicit
// re-fetch. Outside of sign-out this is the only way the cache changes.
func (h *ToggleHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.toggles.FetchAll(r.Context()); err != nil {
		h.logger.Warn("explicit toggle refresh failed", zap.Error(err))
		_ = utils.WriteJSON(w, http.StatusBadGateway, utils.ErrorResponse{
			Error:   "toggle_fetch_failed",
			Message: "Feature configuration service unavailable, previous cache retained",
		})
		return
	}
	h.HandleList(w, r)
}
