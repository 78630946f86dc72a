package models

import (
	"time"

	"github.com/google/uuid"
)

// SessionStatus represents the lifecycle state of an authentication session
type SessionStatus string

const (
	SessionUninitialized   SessionStatus = "uninitialized"
	SessionLoading         SessionStatus = "loading"
	SessionAuthenticated   SessionStatus = "authenticated"
	SessionUnauthenticated SessionStatus = "unauthenticated"
	SessionExpired         SessionStatus = "expired"
)

// Settled returns true once the session has resolved to a terminal state.
// Uninitialized and loading are the only intermediate states consumers
// must special-case.
func (s SessionStatus) Settled() bool {
	switch s {
	case SessionAuthenticated, SessionUnauthenticated, SessionExpired:
		return true
	}
	return false
}

// Session represents the authenticated-identity record and its validity
// window. It is passed around by value; only the session store mutates it.
type Session struct {
	UserID    uuid.UUID     `json:"user_id"`
	Role      Role          `json:"role"`
	IssuedAt  time.Time     `json:"issued_at"`
	ExpiresAt time.Time     `json:"expires_at"`
	Status    SessionStatus `json:"status"`
}

// NewSession creates an authenticated Session for the given identity
func NewSession(userID uuid.UUID, role Role, issuedAt, expiresAt time.Time) Session {
	return Session{
		UserID:    userID,
		Role:      role,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
		Status:    SessionAuthenticated,
	}
}

// EmptySession returns a cleared session in the given status
func EmptySession(status SessionStatus) Session {
	return Session{Status: status}
}

// ExpiredAt reports whether an authenticated session's validity window has
// lapsed at the given instant. Sessions in other states never expire here.
func (s Session) ExpiredAt(now time.Time) bool {
	return s.Status == SessionAuthenticated && !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}
