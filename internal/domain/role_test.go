package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRole_SatisfiesAny(t *testing.T) {
	guards := [][]Role{
		{RoleAdmin},
		{RoleSuperAdmin},
		{RoleSupplier},
		{RoleAgency, RoleAdmin},
		{RoleSupplier, RoleAgency},
		{},
	}
	for _, role := range AllRoles() {
		for _, allowed := range guards {
			want := false
			for _, a := range allowed {
				if a == role || (role == RoleSuperAdmin && a == RoleAdmin) {
					want = true
				}
			}
			assert.Equal(t, want, role.SatisfiesAny(allowed...), "%s in %v", role, allowed)
		}
	}
	assert.False(t, RoleAdmin.Satisfies(RoleSuperAdmin))
	assert.True(t, RoleSuperAdmin.Satisfies(RoleAdmin))
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole("super_admin")
	require.NoError(t, err)
	assert.Equal(t, RoleSuperAdmin, role)

	_, err = ParseRole("root")
	assert.Error(t, err)
	_, err = ParseRole("")
	assert.Error(t, err)
}

func TestNormalizeRoles(t *testing.T) {
	roles, err := NormalizeRoles([]Role{RoleAgency, RoleSupplier, RoleAgency, RoleSuperAdmin})
	require.NoError(t, err)
	assert.Equal(t, []Role{RoleSuperAdmin, RoleSupplier, RoleAgency}, roles)

	_, err = NormalizeRoles([]Role{"owner"})
	assert.Error(t, err)
}

func TestPrimaryRole(t *testing.T) {
	assert.Equal(t, RoleSupplier, PrimaryRole([]Role{RoleAgency, RoleSupplier}))
	assert.Equal(t, RoleSuperAdmin, PrimaryRole([]Role{RoleAdmin, RoleSuperAdmin}))
	assert.Equal(t, Role(""), PrimaryRole(nil))

	u := &User{GrantedRoles: []Role{RoleAgency, RoleSupplier}, ActiveRole: RoleAgency}
	assert.Equal(t, RoleSupplier, u.PrimaryRole())
	assert.True(t, u.RequiresRoleSelection())
	assert.True(t, u.HasRole(RoleAgency))
	assert.False(t, u.HasRole(RoleAdmin))
}
