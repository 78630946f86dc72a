package models

// Role represents the closed set of identities a session may hold.
// Exactly one role per session; a role change requires re-authentication.
type Role string

const (
	RoleUser              Role = "user"
	RoleAdmin             Role = "admin"
	RoleSuperAdmin        Role = "super_admin"
	RoleComplianceOfficer Role = "compliance_officer"
)

// Redirect targets used by access decisions
const (
	LoginPath              = "/login"
	AdminHomePath          = "/admin"
	DashboardPath          = "/dashboard"
	FeatureUnavailablePath = "/feature-unavailable"
)

// AllRoles lists every role the system recognizes
var AllRoles = []Role{RoleUser, RoleAdmin, RoleSuperAdmin, RoleComplianceOfficer}

// Valid returns true if the role is part of the known enumeration
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperAdmin, RoleComplianceOfficer:
		return true
	}
	return false
}

// Administrative returns true for roles with administrative permission
// scope. Membership here drives the denial fallback: administrative roles
// are sent to the admin home, everyone else to the user dashboard.
func (r Role) Administrative() bool {
	switch r {
	case RoleAdmin, RoleSuperAdmin, RoleComplianceOfficer:
		return true
	}
	return false
}

// FallbackPath returns where a role lands when denied access to a route
// it does not hold the required role for
func (r Role) FallbackPath() string {
	if r.Administrative() {
		return AdminHomePath
	}
	return DashboardPath
}

// ParseRole converts a raw string (e.g. a JWT claim) into a Role,
// reporting whether it is part of the known enumeration
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	return r, r.Valid()
}
