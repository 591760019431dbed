package auth

import (
	"fmt"
	"strings"
)

// Role is the privilege tier of an identity. Route-level authorization is an
// explicit allowed-set check; the hierarchy is realized by listing multiple
// roles at the call site, never by numeric tier comparison.
type Role string

const (
	RoleSuperSuperAdmin Role = "superSuperAdmin"
	RoleSuperAdmin      Role = "superAdmin"
	RoleAdmin           Role = "admin"
	RoleFieldAgent      Role = "fieldAgent"
	RoleAuditor         Role = "auditor"
)

// PrivilegedRoles see every resource without an ownership check.
var PrivilegedRoles = []Role{RoleSuperSuperAdmin, RoleSuperAdmin, RoleAdmin}

var roleNames = map[string]Role{
	"supersuperadmin": RoleSuperSuperAdmin,
	"superadmin":      RoleSuperAdmin,
	"admin":           RoleAdmin,
	"fieldagent":      RoleFieldAgent,
	"auditor":         RoleAuditor,
}

// ParseRole maps a stored role value onto the enumerated type.
func ParseRole(raw string) (Role, error) {
	role, ok := roleNames[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, raw)
	}
	return role, nil
}

// In reports membership in an explicit allowed set.
func (r Role) In(allowed ...Role) bool {
	for _, a := range allowed {
		if r == a {
			return true
		}
	}
	return false
}

// Privileged reports whether the role bypasses ownership scoping.
func (r Role) Privileged() bool {
	return r.In(PrivilegedRoles...)
}

// Sponsored reports whether the role's sessions depend on the activity of
// the admin that created the identity.
func (r Role) Sponsored() bool {
	return r == RoleFieldAgent || r == RoleAuditor
}
