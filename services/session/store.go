// Package session owns the authentication session lifecycle. The store is
// the single source of truth for who is signed in and whether they are
// still valid; every other component reads it through immutable snapshots.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/finverse/accessgate/clients/identity"
	"github.com/finverse/accessgate/models"
	"github.com/finverse/accessgate/services"
)

// Provider defines the identity provider operations the store depends on
type Provider interface {
	RecoverSession(ctx context.Context) (models.Session, error)
	SignIn(ctx context.Context, creds identity.Credentials) (models.Session, error)
	RefreshSession(ctx context.Context, sess models.Session) (models.Session, error)
	SignOut(ctx context.Context, sess models.Session) error
}

// Store holds the process-wide session state. All reads go through
// Snapshot, all writes are atomic replacements under the store's lock.
type Store struct {
	provider Provider
	logger   *zap.Logger

	mu      sync.RWMutex
	current models.Session
	// epoch increments on every committed transition; in-flight provider
	// calls that observe a stale epoch discard their result instead of
	// overwriting newer state.
	epoch uint64

	resetHooks  []func()
	subscribers map[int]chan models.Session
	nextSubID   int

	now func() time.Time
}

// NewStore creates a session store in the uninitialized state
func NewStore(provider Provider, logger *zap.Logger) *Store {
	return &Store{
		provider:    provider,
		logger:      logger,
		current:     models.EmptySession(models.SessionUninitialized),
		subscribers: make(map[int]chan models.Session),
		now:         time.Now,
	}
}

// Initialize attempts to recover a session from the identity provider.
// Idempotent: a call while recovery is in flight is a no-op, and a call
// after the store has settled is a no-op. Use Reinitialize to force a
// re-run after settling.
func (s *Store) Initialize(ctx context.Context) error {
	s.mu.Lock()
	if s.current.Status != models.SessionUninitialized {
		s.mu.Unlock()
		return nil
	}
	prior := s.current
	s.transitionLocked(models.EmptySession(models.SessionLoading))
	epoch := s.epoch
	s.mu.Unlock()

	return s.recover(ctx, epoch, prior)
}

// Reinitialize re-runs session recovery after the store has settled.
// A call while recovery is in flight is a no-op.
func (s *Store) Reinitialize(ctx context.Context) error {
	s.mu.Lock()
	if s.current.Status == models.SessionLoading {
		s.mu.Unlock()
		return nil
	}
	prior := s.current
	s.transitionLocked(models.EmptySession(models.SessionLoading))
	epoch := s.epoch
	s.mu.Unlock()

	return s.recover(ctx, epoch, prior)
}

// recover performs provider recovery and commits the settled state.
// Provider unreachability and absence both settle to unauthenticated
// (fail-closed); the rest of the system always gets a binary answer.
func (s *Store) recover(ctx context.Context, epoch uint64, prior models.Session) error {
	sess, err := s.provider.RecoverSession(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epoch != epoch {
		// A sign-out or another transition won the race; discard.
		s.logger.Debug("discarding stale session recovery result")
		return nil
	}
	if ctx.Err() != nil {
		// Caller went away mid-flight; discard the pending result and
		// restore the state recovery started from.
		s.transitionLocked(prior)
		return ctx.Err()
	}

	switch {
	case err == nil:
		s.transitionLocked(sess)
		s.logger.Info("session recovered",
			zap.String("user_id", sess.UserID.String()),
			zap.String("role", string(sess.Role)))
	case errors.Is(err, identity.ErrNoSession):
		s.transitionLocked(models.EmptySession(models.SessionUnauthenticated))
		s.logger.Debug("no session to recover")
	default:
		s.transitionLocked(models.EmptySession(models.SessionUnauthenticated))
		s.logger.Warn("session recovery failed, treating as signed out",
			zap.Error(err))
	}

	return nil
}

// SignIn exchanges credentials for a new authenticated session
func (s *Store) SignIn(ctx context.Context, creds identity.Credentials) (models.Session, error) {
	s.mu.Lock()
	epoch := s.epoch
	s.mu.Unlock()

	sess, err := s.provider.SignIn(ctx, creds)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		if errors.Is(err, identity.ErrSessionRejected) {
			return models.Session{}, services.ErrInvalidCredentials
		}
		return models.Session{}, services.WrapExternal("identity provider sign-in failed", err)
	}
	if ctx.Err() != nil {
		return models.Session{}, ctx.Err()
	}
	if s.epoch != epoch {
		// A concurrent sign-out superseded this sign-in; do not resurrect.
		return models.Session{}, services.ErrSessionUnavailable
	}

	s.transitionLocked(sess)
	s.logger.Info("signed in",
		zap.String("user_id", sess.UserID.String()),
		zap.String("role", string(sess.Role)))
	return sess, nil
}

// Refresh re-validates the current session against the identity provider.
// On acceptance the validity window is updated; on rejection the store
// transitions to expired and the session fields are cleared.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	if s.current.Status != models.SessionAuthenticated {
		s.mu.Unlock()
		return services.ErrSessionExpired
	}
	sess := s.current
	epoch := s.epoch
	s.mu.Unlock()

	refreshed, err := s.provider.RefreshSession(ctx, sess)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epoch != epoch {
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	if err != nil {
		if errors.Is(err, identity.ErrSessionRejected) {
			s.transitionLocked(models.EmptySession(models.SessionExpired))
			s.logger.Info("session rejected on refresh",
				zap.String("user_id", sess.UserID.String()))
			return services.ErrSessionExpired
		}
		// Transport failure: keep the existing session, the caller may retry.
		return services.WrapExternal("identity provider refresh failed", err)
	}

	s.transitionLocked(refreshed)
	s.logger.Debug("session refreshed",
		zap.Time("expires_at", refreshed.ExpiresAt))
	return nil
}

// SignOut unconditionally clears the session and fires the registered
// reset hooks (feature toggle cache invalidation). The provider call is
// best effort; the local transition happens regardless.
func (s *Store) SignOut(ctx context.Context) error {
	s.mu.Lock()
	sess := s.current
	s.mu.Unlock()

	var provErr error
	if sess.Status == models.SessionAuthenticated {
		provErr = s.provider.SignOut(ctx, sess)
		if provErr != nil {
			s.logger.Warn("provider sign-out failed", zap.Error(provErr))
		}
	}

	s.mu.Lock()
	s.transitionLocked(models.EmptySession(models.SessionUnauthenticated))
	hooks := make([]func(), len(s.resetHooks))
	copy(hooks, s.resetHooks)
	s.mu.Unlock()

	for _, hook := range hooks {
		hook()
	}

	s.logger.Info("signed out")
	return provErr
}

// Snapshot returns the current session by value. An authenticated session
// whose validity window has lapsed is reported as expired; the store never
// runs a background timer, expiry is observed lazily on read.
func (s *Store) Snapshot() models.Session {
	s.mu.RLock()
	sess := s.current
	now := s.now()
	s.mu.RUnlock()

	if sess.ExpiredAt(now) {
		sess.Status = models.SessionExpired
	}
	return sess
}

// Subscribe returns a channel receiving a snapshot after every committed
// transition, plus a cancel function. Sends never block; a slow subscriber
// observes the latest snapshot and may miss intermediate ones.
func (s *Store) Subscribe() (<-chan models.Session, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	ch := make(chan models.Session, 1)
	s.subscribers[id] = ch

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(sub)
		}
	}
	return ch, cancel
}

// OnReset registers a hook fired after every sign-out
func (s *Store) OnReset(hook func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetHooks = append(s.resetHooks, hook)
}

// transitionLocked commits a state change and notifies subscribers.
// Callers must hold the write lock.
func (s *Store) transitionLocked(next models.Session) {
	s.current = next
	s.epoch++

	for _, ch := range s.subscribers {
		select {
		case ch <- next:
		default:
			// Drop the stale buffered snapshot and retry with the latest.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- next:
			default:
			}
		}
	}
}
