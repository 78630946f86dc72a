package app

import (
	"context"

	"go.uber.org/zap"

	"github.com/finverse/accessgate/models"
)

// Bootstrap sequences startup: session recovery first, then the initial
// feature toggle fetch, and the latter only once recovery has settled to
// authenticated.
// The ordering is a hard guarantee: feature-gated routes never observe a
// toggle fetch racing ahead of the session becoming authenticated.
//
// A failed toggle fetch is not fatal; feature-gated routes deny until a
// later explicit refresh succeeds. Readiness is signalled either way.
func (d *Dependencies) Bootstrap(ctx context.Context) error {
	if err := d.Sessions.Initialize(ctx); err != nil {
		return err
	}

	if d.Sessions.Snapshot().Status == models.SessionAuthenticated {
		if err := d.Toggles.FetchAll(ctx); err != nil {
			d.Logger.Warn("initial toggle fetch failed, feature-gated routes will deny",
				zap.Error(err))
		}
	}

	d.ready.Store(true)
	d.Logger.Info("bootstrap complete",
		zap.String("session_status", string(d.Sessions.Snapshot().Status)),
		zap.Bool("toggles_ready", d.Toggles.Ready()))
	return nil
}
