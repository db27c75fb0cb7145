package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Role enumerates the roles a marketplace account can be granted.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleSupplier   Role = "supplier"
	RoleAgency     Role = "agency"
	RoleSuperAdmin Role = "super_admin"
)

// roleRank orders roles most-privileged-first.
var roleRank = map[Role]int{
	RoleSuperAdmin: 0,
	RoleAdmin:      1,
	RoleSupplier:   2,
	RoleAgency:     3,
}

// AllRoles lists every known role, most privileged first.
func AllRoles() []Role {
	return []Role{RoleSuperAdmin, RoleAdmin, RoleSupplier, RoleAgency}
}

// ParseRole converts a wire value into a Role.
func ParseRole(value string) (Role, error) {
	role := Role(strings.TrimSpace(value))
	if !role.Valid() {
		return "", fmt.Errorf("unknown role %q", value)
	}
	return role, nil
}

// Valid reports whether the role is one of the enumerated values.
func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// IsAdmin is true for admin and super_admin.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// Satisfies reports whether r passes a guard that requires the given role.
// super_admin satisfies admin guards; the reverse never holds.
func (r Role) Satisfies(required Role) bool {
	if r == required {
		return true
	}
	return r == RoleSuperAdmin && required == RoleAdmin
}

// SatisfiesAny reports whether r passes a guard admitting any of allowed.
func (r Role) SatisfiesAny(allowed ...Role) bool {
	for _, candidate := range allowed {
		if r.Satisfies(candidate) {
			return true
		}
	}
	return false
}

// NormalizeRoles removes duplicates and orders roles most privileged first.
func NormalizeRoles(roles []Role) ([]Role, error) {
	seen := make(map[Role]struct{}, len(roles))
	out := make([]Role, 0, len(roles))
	for _, role := range roles {
		if !role.Valid() {
			return nil, fmt.Errorf("unknown role %q", role)
		}
		if _, dup := seen[role]; dup {
			continue
		}
		seen[role] = struct{}{}
		out = append(out, role)
	}
	sort.Slice(out, func(i, j int) bool { return roleRank[out[i]] < roleRank[out[j]] })
	return out, nil
}

// PrimaryRole derives the display role of a granted set: the most privileged one.
func PrimaryRole(roles []Role) Role {
	var primary Role
	for _, role := range roles {
		rank, ok := roleRank[role]
		if !ok {
			continue
		}
		if primary == "" || rank < roleRank[primary] {
			primary = role
		}
	}
	return primary
}
