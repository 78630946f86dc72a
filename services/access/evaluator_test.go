package access

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finverse/accessgate/models"
	"github.com/finverse/accessgate/services"
	"github.com/finverse/accessgate/services/toggle"
)

func authenticatedSession(role models.Role) models.Session {
	now := time.Now()
	return models.NewSession(uuid.New(), role, now, now.Add(time.Hour))
}

func readyToggles(toggles map[models.FeatureKey]bool) toggle.Snapshot {
	return toggle.Snapshot{Ready: true, Toggles: toggles}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name    string
		session models.Session
		toggles toggle.Snapshot
		policy  models.RoutePolicy
		want    models.AccessDecision
	}{
		{
			name:    "uninitialized session is pending",
			session: models.EmptySession(models.SessionUninitialized),
			policy:  models.RoutePolicy{},
			want:    models.Pending(),
		},
		{
			name:    "loading session is pending for any route",
			session: models.EmptySession(models.SessionLoading),
			policy: models.RoutePolicy{
				RequiredRoles:   []models.Role{models.RoleAdmin},
				RequiredFeature: models.FeatureCrypto,
			},
			want: models.Pending(),
		},
		{
			name:    "unauthenticated session redirects to login regardless of policy",
			session: models.EmptySession(models.SessionUnauthenticated),
			policy: models.RoutePolicy{
				RequiredRoles: []models.Role{models.RoleAdmin},
			},
			want: models.DenyRedirect(models.LoginPath),
		},
		{
			name:    "expired session redirects to login",
			session: models.EmptySession(models.SessionExpired),
			policy:  models.RoutePolicy{},
			want:    models.DenyRedirect(models.LoginPath),
		},
		{
			name:    "zero-value status redirects to login, never allows",
			session: models.Session{},
			policy:  models.RoutePolicy{},
			want:    models.DenyRedirect(models.LoginPath),
		},
		{
			name:    "unrecognized status redirects to login",
			session: models.EmptySession("corrupted"),
			policy:  models.RoutePolicy{},
			want:    models.DenyRedirect(models.LoginPath),
		},
		{
			name:    "empty role requirement admits any authenticated role",
			session: authenticatedSession(models.RoleUser),
			policy:  models.RoutePolicy{},
			want:    models.Allow(),
		},
		{
			name:    "non-administrative role denied an admin route falls back to dashboard",
			session: authenticatedSession(models.RoleUser),
			policy: models.RoutePolicy{
				RequiredRoles: []models.Role{models.RoleAdmin, models.RoleSuperAdmin, models.RoleComplianceOfficer},
			},
			want: models.DenyRedirect(models.DashboardPath),
		},
		{
			name:    "compliance officer allowed where policy lists it",
			session: authenticatedSession(models.RoleComplianceOfficer),
			policy: models.RoutePolicy{
				RequiredRoles: []models.Role{models.RoleSuperAdmin, models.RoleComplianceOfficer},
			},
			want: models.Allow(),
		},
		{
			name:    "administrative role denied a stricter admin route falls back to admin home",
			session: authenticatedSession(models.RoleAdmin),
			policy: models.RoutePolicy{
				RequiredRoles: []models.Role{models.RoleSuperAdmin},
			},
			want: models.DenyRedirect(models.AdminHomePath),
		},
		{
			name:    "disabled feature denies with the neutral target",
			session: authenticatedSession(models.RoleSuperAdmin),
			toggles: readyToggles(map[models.FeatureKey]bool{models.FeatureCrypto: false}),
			policy: models.RoutePolicy{
				RequiredFeature: models.FeatureCrypto,
			},
			want: models.DenyRedirect(models.FeatureUnavailablePath),
		},
		{
			name:    "unknown toggle state denies even with sufficient role",
			session: authenticatedSession(models.RoleAdmin),
			toggles: toggle.Snapshot{},
			policy: models.RoutePolicy{
				RequiredFeature: models.FeatureFlights,
			},
			want: models.DenyRedirect(models.FeatureUnavailablePath),
		},
		{
			name:    "absent key is disabled after the first fetch",
			session: authenticatedSession(models.RoleUser),
			toggles: readyToggles(map[models.FeatureKey]bool{models.FeatureCrypto: true}),
			policy: models.RoutePolicy{
				RequiredFeature: models.FeatureGiftCards,
			},
			want: models.DenyRedirect(models.FeatureUnavailablePath),
		},
		{
			name:    "enabled feature with sufficient role allows",
			session: authenticatedSession(models.RoleAdmin),
			toggles: readyToggles(map[models.FeatureKey]bool{models.FeatureBulkSMS: true}),
			policy: models.RoutePolicy{
				RequiredRoles:   []models.Role{models.RoleAdmin, models.RoleSuperAdmin},
				RequiredFeature: models.FeatureBulkSMS,
			},
			want: models.Allow(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Evaluate(tt.session, tt.toggles, tt.policy)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluate_RoleCheckPrecedesFeatureCheck(t *testing.T) {
	// A caller without the required role must get the role-specific
	// redirect even when the feature is disabled: the denial target must
	// not reveal feature state.
	session := authenticatedSession(models.RoleUser)
	toggles := readyToggles(map[models.FeatureKey]bool{models.FeatureBulkSMS: false})
	policy := models.RoutePolicy{
		RequiredRoles:   []models.Role{models.RoleAdmin},
		RequiredFeature: models.FeatureBulkSMS,
	}

	got := Evaluate(session, toggles, policy)

	assert.Equal(t, models.DecisionDeny, got.Outcome)
	assert.Equal(t, models.DashboardPath, got.RedirectTarget)
	assert.NotEqual(t, models.FeatureUnavailablePath, got.RedirectTarget)
}

func TestEvaluate_IsDeterministic(t *testing.T) {
	session := authenticatedSession(models.RoleAdmin)
	toggles := readyToggles(map[models.FeatureKey]bool{models.FeatureCrypto: true})
	policy := models.RoutePolicy{
		RequiredRoles:   []models.Role{models.RoleAdmin},
		RequiredFeature: models.FeatureCrypto,
	}

	first := Evaluate(session, toggles, policy)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Evaluate(session, toggles, policy))
	}
}

func TestMustPolicy(t *testing.T) {
	t.Run("valid policy passes through", func(t *testing.T) {
		policy := models.RoutePolicy{
			RequiredRoles:   []models.Role{models.RoleAdmin},
			RequiredFeature: models.FeatureCrypto,
		}
		assert.NotPanics(t, func() {
			got := MustPolicy(policy)
			assert.Equal(t, policy, got)
		})
	})

	t.Run("unknown role panics with the misconfiguration error", func(t *testing.T) {
		defer func() {
			recovered := recover()
			require.NotNil(t, recovered)
			err, ok := recovered.(error)
			require.True(t, ok)
			assert.True(t, services.IsMisconfigurationError(err))
			assert.ErrorIs(t, err, services.ErrPolicyMisconfigured)
		}()
		MustPolicy(models.RoutePolicy{
			RequiredRoles: []models.Role{"superuser"},
		})
	})

	t.Run("unknown feature panics", func(t *testing.T) {
		assert.Panics(t, func() {
			MustPolicy(models.RoutePolicy{
				RequiredFeature: "loans",
			})
		})
	})
}
