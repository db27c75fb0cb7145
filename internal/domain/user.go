package domain

import "time"

// User is a marketplace account. GrantedRoles is never empty and always
// contains ActiveRole.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	DisplayName  string
	GrantedRoles []Role
	ActiveRole   Role
	IsDeleted    bool
	DeletedAt    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasRole reports whether role is among the granted roles.
func (u *User) HasRole(role Role) bool {
	for _, granted := range u.GrantedRoles {
		if granted == role {
			return true
		}
	}
	return false
}

// PrimaryRole returns the most privileged granted role.
func (u *User) PrimaryRole() Role {
	return PrimaryRole(u.GrantedRoles)
}

// RequiresRoleSelection is true when the account can operate under more than one role.
func (u *User) RequiresRoleSelection() bool {
	return len(u.GrantedRoles) > 1
}
