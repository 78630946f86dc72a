// Package toggle caches the set of feature flags controlling optional
// product areas. The cache is fetched once per session lifetime and
// replaced wholesale on each successful fetch; there is no per-request TTL
// and no internal retry.
package toggle

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/finverse/accessgate/models"
	"github.com/finverse/accessgate/services"
)

// Fetcher defines the feature configuration service operation the store
// depends on
type Fetcher interface {
	ListToggles(ctx context.Context) ([]models.FeatureToggle, error)
}

// Snapshot is an immutable view of the toggle cache handed to the
// evaluator. Ready is false until the first successful fetch.
type Snapshot struct {
	Ready   bool
	Toggles map[models.FeatureKey]bool
}

// State answers the tri-state enablement question for one key
func (s Snapshot) State(key models.FeatureKey) models.ToggleState {
	if !s.Ready {
		return models.ToggleUnknown
	}
	if s.Toggles[key] {
		return models.ToggleEnabled
	}
	// Absent keys are disabled: unlisted features stay off.
	return models.ToggleDisabled
}

// Store holds the process-wide toggle cache
type Store struct {
	fetcher Fetcher
	logger  *zap.Logger

	mu      sync.RWMutex
	ready   bool
	toggles map[models.FeatureKey]bool
}

// NewStore creates a toggle store with no cached state; every enablement
// question answers unknown until the first successful fetch
func NewStore(fetcher Fetcher, logger *zap.Logger) *Store {
	return &Store{
		fetcher: fetcher,
		logger:  logger,
	}
}

// FetchAll retrieves the full toggle set and replaces the cache atomically.
// A failed fetch leaves the previous cache untouched and returns
// ErrToggleFetchFailed; the store never retries on its own.
func (s *Store) FetchAll(ctx context.Context) error {
	toggles, err := s.fetcher.ListToggles(ctx)
	if err != nil {
		s.logger.Warn("feature toggle fetch failed, retaining previous cache",
			zap.Error(err))
		return services.WrapError(services.ErrorTypeToggleFetch, "feature toggle fetch failed", err)
	}
	if ctx.Err() != nil {
		// Caller went away mid-flight; no partial cache write.
		return ctx.Err()
	}

	next := make(map[models.FeatureKey]bool, len(toggles))
	for _, t := range toggles {
		next[t.Key] = t.Enabled
	}

	s.mu.Lock()
	s.toggles = next
	s.ready = true
	s.mu.Unlock()

	s.logger.Info("feature toggles refreshed", zap.Int("count", len(next)))
	return nil
}

// State returns the tri-state enablement answer for a key
func (s *Store) State(key models.FeatureKey) models.ToggleState {
	return s.Snapshot().State(key)
}

// IsEnabled returns true only when the key is known and enabled
func (s *Store) IsEnabled(key models.FeatureKey) bool {
	return s.State(key) == models.ToggleEnabled
}

// Ready reports whether the first fetch has succeeded
func (s *Store) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Snapshot returns an immutable copy of the cache for one evaluation
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.ready {
		return Snapshot{}
	}
	toggles := make(map[models.FeatureKey]bool, len(s.toggles))
	for k, v := range s.toggles {
		toggles[k] = v
	}
	return Snapshot{Ready: true, Toggles: toggles}
}

// Reset returns the store to its pre-first-fetch state. Wired as the
// session store's sign-out hook so a new session re-derives toggle state.
func (s *Store) Reset() {
	s.mu.Lock()
	s.toggles = nil
	s.ready = false
	s.mu.Unlock()

	s.logger.Debug("feature toggle cache reset")
}
