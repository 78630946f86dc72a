// Package app wires the application's dependencies together and owns the
// bootstrap sequence.
package app

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/finverse/accessgate/clients/featureconfig"
	"github.com/finverse/accessgate/clients/identity"
	"github.com/finverse/accessgate/config"
	"github.com/finverse/accessgate/middleware"
	"github.com/finverse/accessgate/repositories"
	"github.com/finverse/accessgate/repositories/postgres"
	"github.com/finverse/accessgate/services/audit"
	"github.com/finverse/accessgate/services/session"
	"github.com/finverse/accessgate/services/toggle"
)

// Dependencies holds all application dependencies. This is the central
// wiring point for dependency injection: the stores are single
// process-wide instances passed by reference, never hidden globals.
type Dependencies struct {
	Config *config.Config
	Logger *zap.Logger
	DB     *postgres.DB // nil when the audit trail is disabled

	Identity      *identity.Client
	FeatureConfig *featureconfig.Client

	Sessions *session.Store
	Toggles  *toggle.Store
	Audit    *audit.Service
	Guard    *middleware.Guard

	AccessRecords repositories.AccessRecordRepository

	ready atomic.Bool
}

// NewDependencies creates and wires up all application dependencies
func NewDependencies(cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	deps.Identity = identity.NewClient(cfg.IdentityProvider.BaseURL, cfg.IdentityProvider.Timeout)
	deps.FeatureConfig = featureconfig.NewClient(cfg.FeatureConfig.BaseURL, cfg.FeatureConfig.Timeout)

	deps.Sessions = session.NewStore(deps.Identity, logger.Named("session"))
	deps.Toggles = toggle.NewStore(deps.FeatureConfig, logger.Named("toggle"))

	// Sign-out invalidates the toggle cache: a new session re-derives it.
	deps.Sessions.OnReset(deps.Toggles.Reset)

	if err := deps.initAudit(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize audit trail: %w", err)
	}

	deps.Guard = middleware.NewGuard(deps.Sessions, deps.Toggles, deps.Audit, logger.Named("guard"))

	logger.Info("all dependencies initialized")
	return deps, nil
}

// initAudit sets up the optional access-decision audit trail
func (d *Dependencies) initAudit(cfg *config.Config) error {
	if !cfg.AuditEnabled() {
		d.Audit = audit.NewService(nil, d.Logger.Named("audit"), audit.DefaultConfig())
		return d.Audit.Start()
	}

	db, err := postgres.NewDB(*cfg.Database, d.Logger.Named("postgres"))
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.InitSchema(ctx); err != nil {
		_ = db.Close()
		return err
	}
	d.DB = db
	d.AccessRecords = postgres.NewAccessRecordRepository(db, d.Logger.Named("audit"))
	d.Audit = audit.NewService(d.AccessRecords, d.Logger.Named("audit"), audit.DefaultConfig())
	return d.Audit.Start()
}

// Ready reports whether bootstrap has completed
func (d *Dependencies) Ready() bool {
	return d.ready.Load()
}

// Close releases held resources
func (d *Dependencies) Close() {
	d.Audit.Stop()
	if d.DB != nil {
		_ = d.DB.Close()
	}
}

// NewLogger builds the zap logger from observability config
func NewLogger(cfg config.ObservabilityConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}

	var zapCfg zap.Config
	if cfg.LogFormat == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
