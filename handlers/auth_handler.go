package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/finverse/accessgate/clients/identity"
	"github.com/finverse/accessgate/models"
	"github.com/finverse/accessgate/services"
	"github.com/finverse/accessgate/utils"
)

// SessionManager defines the session store operations the auth endpoints use
type SessionManager interface {
	SignIn(ctx context.Context, creds identity.Credentials) (models.Session, error)
	SignOut(ctx context.Context) error
	Refresh(ctx context.Context) error
	Snapshot() models.Session
}

// ToggleFetcher re-fetches the feature toggle set after sign-in
type ToggleFetcher interface {
	FetchAll(ctx context.Context) error
}

// SignInRequest carries sign-in credentials
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// AuthHandler handles session lifecycle HTTP requests
type AuthHandler struct {
	sessions SessionManager
	toggles  ToggleFetcher
	logger   *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(sessions SessionManager, toggles ToggleFetcher, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		toggles:  toggles,
		logger:   logger,
	}
}

// HandleSignIn handles POST /auth/sign-in
func (h *AuthHandler) HandleSignIn(w http.ResponseWriter, r *http.Request) {
	var req SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		var vErr *utils.ValidationError
		if errors.As(err, &vErr) {
			_ = utils.WriteBadRequest(w, vErr.Message, vErr.FieldDetails())
			return
		}
		_ = utils.WriteBadRequest(w, "Invalid request", nil)
		return
	}

	sess, err := h.sessions.SignIn(r.Context(), identity.Credentials{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			_ = utils.WriteUnauthorized(w, "Invalid email or password")
			return
		}
		h.logger.Error("sign-in failed", zap.Error(err))
		_ = utils.WriteInternalServerError(w, "Sign-in failed")
		return
	}

	// A fresh session gets a fresh toggle set; failure here is not fatal,
	// feature-gated routes simply deny until the next successful fetch.
	if err := h.toggles.FetchAll(r.Context()); err != nil {
		h.logger.Warn("post-sign-in toggle fetch failed", zap.Error(err))
	}

	_ = utils.WriteOK(w, sess)
}

// HandleSignOut handles POST /auth/sign-out
func (h *AuthHandler) HandleSignOut(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.SignOut(r.Context()); err != nil {
		// Sign-out is unconditional locally; a provider failure is logged
		// upstream and the caller is still signed out.
		h.logger.Warn("provider sign-out reported an error", zap.Error(err))
	}
	utils.WriteNoContent(w)
}

// HandleRefresh handles POST /auth/refresh
func (h *AuthHandler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Refresh(r.Context()); err != nil {
		if errors.Is(err, services.ErrSessionExpired) {
			_ = utils.WriteUnauthorized(w, "Please sign in again")
			return
		}
		h.logger.Error("session refresh failed", zap.Error(err))
		_ = utils.WriteInternalServerError(w, "Refresh failed")
		return
	}
	_ = utils.WriteOK(w, h.sessions.Snapshot())
}

// HandleSession handles GET /auth/session
func (h *AuthHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteOK(w, h.sessions.Snapshot())
}
