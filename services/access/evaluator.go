// Package access implements the policy evaluator: a pure decision function
// combining a session snapshot, a toggle snapshot and a route policy into
// exactly one access decision. It holds no state and is fully deterministic
// given its inputs.
package access

import (
	"github.com/finverse/accessgate/models"
	"github.com/finverse/accessgate/services"
	"github.com/finverse/accessgate/services/toggle"
)

// Evaluate maps (session, toggles, policy) to one decision:
//
//  1. An unsettled session yields pending.
//  2. An unauthenticated or expired session yields a redirect to sign-in,
//     regardless of the policy. Unrecognized statuses are treated the same
//     way, never allowed through.
//  3. The role requirement is checked strictly before the feature
//     requirement, so a caller lacking the role never learns whether the
//     feature is enabled. Role denial redirects to the role's fallback.
//  4. A required feature that is disabled or still unknown denies with the
//     neutral feature-unavailable target.
//  5. Otherwise the decision is allow.
func Evaluate(sess models.Session, toggles toggle.Snapshot, policy models.RoutePolicy) models.AccessDecision {
	switch sess.Status {
	case models.SessionUninitialized, models.SessionLoading:
		return models.Pending()
	case models.SessionAuthenticated:
	default:
		// Anything outside the enumeration, including the zero value,
		// is treated as signed out rather than allowed through.
		return models.DenyRedirect(models.LoginPath)
	}

	if !policy.AllowsRole(sess.Role) {
		return models.DenyRedirect(sess.Role.FallbackPath())
	}

	if policy.RequiredFeature != "" {
		if toggles.State(policy.RequiredFeature) != models.ToggleEnabled {
			return models.DenyRedirect(models.FeatureUnavailablePath)
		}
	}

	return models.Allow()
}

// MustPolicy validates a route policy at composition time and panics on
// misconfiguration. Route policies are static declarations; an unknown role
// or feature key is a programming error that must never silently allow or
// deny at runtime.
func MustPolicy(policy models.RoutePolicy) models.RoutePolicy {
	if err := policy.Validate(); err != nil {
		panic(services.NewDomainError(services.ErrorTypeMisconfiguration, "route policy misconfigured", err))
	}
	return policy
}
