package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestRole(t *testing.T) {
	t.Run("known roles are valid", func(t *testing.T) {
		for _, r := range AllRoles {
			assert.True(t, r.Valid(), "role %s", r)
		}
		assert.False(t, Role("superuser").Valid())
		assert.False(t, Role("").Valid())
	})

	t.Run("administrative subset", func(t *testing.T) {
		assert.False(t, RoleUser.Administrative())
		assert.True(t, RoleAdmin.Administrative())
		assert.True(t, RoleSuperAdmin.Administrative())
		assert.True(t, RoleComplianceOfficer.Administrative())
	})

	t.Run("fallback paths", func(t *testing.T) {
		assert.Equal(t, DashboardPath, RoleUser.FallbackPath())
		assert.Equal(t, AdminHomePath, RoleAdmin.FallbackPath())
		assert.Equal(t, AdminHomePath, RoleComplianceOfficer.FallbackPath())
	})

	t.Run("parse", func(t *testing.T) {
		r, ok := ParseRole("compliance_officer")
		assert.True(t, ok)
		assert.Equal(t, RoleComplianceOfficer, r)

		_, ok = ParseRole("root")
		assert.False(t, ok)
	})
}

func TestRoutePolicy(t *testing.T) {
	t.Run("validate rejects unknown roles and features", func(t *testing.T) {
		assert.NoError(t, RoutePolicy{}.Validate())
		assert.NoError(t, RoutePolicy{
			RequiredRoles:   []Role{RoleAdmin},
			RequiredFeature: FeatureCrypto,
		}.Validate())
		assert.Error(t, RoutePolicy{RequiredRoles: []Role{"root"}}.Validate())
		assert.Error(t, RoutePolicy{RequiredFeature: "loans"}.Validate())
	})

	t.Run("empty role list admits any role", func(t *testing.T) {
		p := RoutePolicy{}
		for _, r := range AllRoles {
			assert.True(t, p.AllowsRole(r))
		}
	})

	t.Run("non-empty role list admits members only", func(t *testing.T) {
		p := RoutePolicy{RequiredRoles: []Role{RoleSuperAdmin, RoleComplianceOfficer}}
		assert.True(t, p.AllowsRole(RoleComplianceOfficer))
		assert.False(t, p.AllowsRole(RoleAdmin))
		assert.False(t, p.AllowsRole(RoleUser))
	})
}

func TestSession(t *testing.T) {
	t.Run("settled states", func(t *testing.T) {
		assert.False(t, SessionUninitialized.Settled())
		assert.False(t, SessionLoading.Settled())
		assert.True(t, SessionAuthenticated.Settled())
		assert.True(t, SessionUnauthenticated.Settled())
		assert.True(t, SessionExpired.Settled())
	})

	t.Run("expiry window", func(t *testing.T) {
		now := time.Now()
		sess := NewSession(uuid.New(), RoleUser, now, now.Add(time.Hour))

		assert.False(t, sess.ExpiredAt(now))
		assert.True(t, sess.ExpiredAt(now.Add(2*time.Hour)))

		// Only authenticated sessions have a window to lapse.
		empty := EmptySession(SessionUnauthenticated)
		assert.False(t, empty.ExpiredAt(now.Add(24*time.Hour)))
	})
}

func TestAccessDecision(t *testing.T) {
	assert.True(t, Allow().Allowed())
	assert.False(t, Pending().Allowed())

	deny := DenyRedirect(LoginPath)
	assert.False(t, deny.Allowed())
	assert.Equal(t, DecisionDeny, deny.Outcome)
	assert.Equal(t, LoginPath, deny.RedirectTarget)
}

func TestNewAccessRecord(t *testing.T) {
	t.Run("authenticated session carries the user", func(t *testing.T) {
		now := time.Now()
		sess := NewSession(uuid.New(), RoleAdmin, now, now.Add(time.Hour))

		rec := NewAccessRecord(sess, "/admin", "req-1", Allow())

		assert.NotEqual(t, uuid.Nil, rec.ID)
		assert.NotNil(t, rec.UserID)
		assert.Equal(t, sess.UserID, *rec.UserID)
		assert.Equal(t, RoleAdmin, rec.Role)
		assert.Equal(t, DecisionAllow, rec.Outcome)
	})

	t.Run("anonymous evaluation has no user", func(t *testing.T) {
		rec := NewAccessRecord(EmptySession(SessionUnauthenticated), "/dashboard", "", DenyRedirect(LoginPath))

		assert.Nil(t, rec.UserID)
		assert.Equal(t, LoginPath, rec.RedirectTarget)
	})
}
