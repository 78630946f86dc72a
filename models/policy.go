package models

import "fmt"

// RoutePolicy declares the guard requirements for a protected route.
// An empty RequiredRoles list means any authenticated user; an empty
// RequiredFeature means no feature gate. Policies are declared statically
// at route wiring time, never persisted.
type RoutePolicy struct {
	RequiredRoles   []Role     `json:"required_roles,omitempty"`
	RequiredFeature FeatureKey `json:"required_feature,omitempty"`
}

// Validate checks the policy against the known role and feature
// enumerations. A policy referencing an unknown role or feature is a
// programming error and must be rejected at composition time, never
// silently allowed.
func (p RoutePolicy) Validate() error {
	for _, r := range p.RequiredRoles {
		if !r.Valid() {
			return fmt.Errorf("route policy references unknown role %q", r)
		}
	}
	if p.RequiredFeature != "" && !p.RequiredFeature.Valid() {
		return fmt.Errorf("route policy references unknown feature %q", p.RequiredFeature)
	}
	return nil
}

// AllowsRole returns true when the session role satisfies the policy's
// role requirement. An empty requirement admits any role.
func (p RoutePolicy) AllowsRole(r Role) bool {
	if len(p.RequiredRoles) == 0 {
		return true
	}
	for _, required := range p.RequiredRoles {
		if r == required {
			return true
		}
	}
	return false
}
