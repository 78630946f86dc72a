package middleware

import (
	"net/http"
	"strings"

	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/finverse/accessgate/models"
	"github.com/finverse/accessgate/services/access"
	"github.com/finverse/accessgate/services/toggle"
	"github.com/finverse/accessgate/utils"
)

// SessionReader exposes the session store's snapshot to the guard
type SessionReader interface {
	Snapshot() models.Session
}

// ToggleReader exposes the toggle store's snapshot to the guard
type ToggleReader interface {
	Snapshot() toggle.Snapshot
}

// DecisionRecorder receives every evaluated decision for the audit trail
type DecisionRecorder interface {
	Record(rec *models.AccessRecord)
}

// Guard wraps protected routes with role and feature requirements. It is
// stateless across requests: every evaluation re-reads the current store
// snapshots, so a session expiring mid-session is observed on the next
// request rather than served from a cached decision.
type Guard struct {
	sessions SessionReader
	toggles  ToggleReader
	recorder DecisionRecorder
	logger   *zap.Logger
}

// NewGuard creates a new route guard. recorder may be nil when auditing
// is disabled.
func NewGuard(sessions SessionReader, toggles ToggleReader, recorder DecisionRecorder, logger *zap.Logger) *Guard {
	return &Guard{
		sessions: sessions,
		toggles:  toggles,
		recorder: recorder,
		logger:   logger,
	}
}

// Protect returns middleware enforcing the given route policy. The policy
// is validated here, at composition time: wiring a route to an unknown role
// or feature panics immediately instead of misbehaving at request time.
func (g *Guard) Protect(policy models.RoutePolicy) func(http.Handler) http.Handler {
	policy = access.MustPolicy(policy)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := chimw.GetReqID(ctx)

			sess := g.sessions.Snapshot()
			decision := access.Evaluate(sess, g.toggles.Snapshot(), policy)

			if g.recorder != nil {
				g.recorder.Record(models.NewAccessRecord(sess, r.URL.Path, requestID, decision))
			}

			switch decision.Outcome {
			case models.DecisionAllow:
				g.logger.Debug("access allowed",
					zap.String("request_id", requestID),
					zap.String("path", r.URL.Path),
					zap.String("role", string(sess.Role)))
				ctx = WithSession(ctx, sess)
				next.ServeHTTP(w, r.WithContext(ctx))

			case models.DecisionPending:
				g.logger.Debug("access pending, session not settled",
					zap.String("request_id", requestID),
					zap.String("path", r.URL.Path))
				_ = utils.WriteServiceUnavailable(w, "Session initializing")

			case models.DecisionDeny:
				g.logger.Info("access denied",
					zap.String("request_id", requestID),
					zap.String("path", r.URL.Path),
					zap.String("role", string(sess.Role)),
					zap.String("redirect", decision.RedirectTarget))
				g.deny(w, r, decision)
			}
		})
	}
}

// RequireAuthenticated is shorthand for a policy with no role or feature
// requirement: any authenticated user passes.
func (g *Guard) RequireAuthenticated(next http.Handler) http.Handler {
	return g.Protect(models.RoutePolicy{})(next)
}

// deny maps a denial to the transport: browsers get a redirect to the
// decision's target, API callers get a status code. Never an error page.
func (g *Guard) deny(w http.ResponseWriter, r *http.Request, decision models.AccessDecision) {
	if wantsJSON(r) {
		switch decision.RedirectTarget {
		case models.LoginPath:
			_ = utils.WriteUnauthorized(w, "Please sign in again")
		default:
			_ = utils.WriteForbidden(w, "")
		}
		return
	}
	http.Redirect(w, r, decision.RedirectTarget, http.StatusSeeOther)
}

// wantsJSON reports whether the caller prefers a JSON answer over a
// navigation redirect
func wantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json")
}
