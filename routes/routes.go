// Package routes declares the route tree and each protected route's guard
// policy. Policies are static declarations validated at wiring time; an
// unknown role or feature key panics on startup.
package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/finverse/accessgate/app"
	"github.com/finverse/accessgate/handlers"
	"github.com/finverse/accessgate/models"
	"github.com/finverse/accessgate/utils"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authHandler := handlers.NewAuthHandler(deps.Sessions, deps.Toggles, deps.Logger.Named("auth"))
	toggleHandler := handlers.NewToggleHandler(deps.Toggles, deps.Logger.Named("toggles"))

	// Keep the checker interface nil when auditing is disabled
	var dbCheck handlers.DatabaseChecker
	if deps.DB != nil {
		dbCheck = deps.DB
	}
	healthHandler := handlers.NewHealthHandler(deps.Sessions, dbCheck, deps.Logger.Named("health"))
	guard := deps.Guard

	// Health checks
	r.Get("/healthz", healthHandler.HandleHealth)
	r.Get("/readyz", healthHandler.HandleReadiness)

	// Session lifecycle (public: these are how a visitor becomes signed in)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/sign-in", authHandler.HandleSignIn)
		r.Post("/sign-out", authHandler.HandleSignOut)
		r.Post("/refresh", authHandler.HandleRefresh)
		r.Get("/session", authHandler.HandleSession)
	})

	// Any authenticated user
	r.Route("/dashboard", func(r chi.Router) {
		r.Use(guard.RequireAuthenticated)
		r.Get("/", handlers.ProtectedContent("dashboard"))
	})

	// Administrative area
	r.Route("/admin", func(r chi.Router) {
		r.Use(guard.Protect(models.RoutePolicy{
			RequiredRoles: []models.Role{models.RoleAdmin, models.RoleSuperAdmin, models.RoleComplianceOfficer},
		}))
		r.Get("/", handlers.ProtectedContent("admin"))

		r.Route("/compliance", func(r chi.Router) {
			r.Use(guard.Protect(models.RoutePolicy{
				RequiredRoles: []models.Role{models.RoleSuperAdmin, models.RoleComplianceOfficer},
			}))
			r.Get("/", handlers.ProtectedContent("compliance"))
		})

		r.Route("/toggles", func(r chi.Router) {
			r.Use(guard.Protect(models.RoutePolicy{
				RequiredRoles: []models.Role{models.RoleAdmin, models.RoleSuperAdmin},
			}))
			r.Get("/", toggleHandler.HandleList)
			r.Post("/refresh", toggleHandler.HandleRefresh)
		})
	})

	// Feature-gated product areas
	r.Route("/crypto", func(r chi.Router) {
		r.Use(guard.Protect(models.RoutePolicy{RequiredFeature: models.FeatureCrypto}))
		r.Get("/", handlers.ProtectedContent("crypto"))
	})

	r.Route("/cards/virtual", func(r chi.Router) {
		r.Use(guard.Protect(models.RoutePolicy{RequiredFeature: models.FeatureVirtualCards}))
		r.Get("/", handlers.ProtectedContent("virtual_cards"))
	})

	r.Route("/flights", func(r chi.Router) {
		r.Use(guard.Protect(models.RoutePolicy{RequiredFeature: models.FeatureFlights}))
		r.Get("/", handlers.ProtectedContent("flights"))
	})

	r.Route("/gift-cards", func(r chi.Router) {
		r.Use(guard.Protect(models.RoutePolicy{RequiredFeature: models.FeatureGiftCards}))
		r.Get("/", handlers.ProtectedContent("gift_cards"))
	})

	// Bulk SMS is both role- and feature-gated; the role requirement is
	// evaluated first so non-admins never learn whether the feature is on
	r.Route("/sms/bulk", func(r chi.Router) {
		r.Use(guard.Protect(models.RoutePolicy{
			RequiredRoles:   []models.Role{models.RoleAdmin, models.RoleSuperAdmin},
			RequiredFeature: models.FeatureBulkSMS,
		}))
		r.Get("/", handlers.ProtectedContent("bulk_sms"))
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteNotFound(w, "")
	})

	return r
}
