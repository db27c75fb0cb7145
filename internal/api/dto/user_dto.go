package dto

import (
	"time"

	"github.com/spec-kit/tour-marketplace/internal/domain"
)

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SelectRoleRequest payload for switching the active role.
type SelectRoleRequest struct {
	Role string `json:"role"`
}

// SessionResponse is returned by login and role selection.
type SessionResponse struct {
	Token                 string       `json:"token"`
	ExpiresAt             time.Time    `json:"expiresAt"`
	User                  UserResponse `json:"user"`
	RequiresRoleSelection bool         `json:"requiresRoleSelection"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID           string        `json:"id"`
	Email        string        `json:"email"`
	DisplayName  string        `json:"displayName"`
	GrantedRoles []domain.Role `json:"grantedRoles"`
	ActiveRole   domain.Role   `json:"activeRole"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// CreateUserRequest payload for admin account creation.
type CreateUserRequest struct {
	Email       string   `json:"email"`
	Password    string   `json:"password"`
	DisplayName string   `json:"displayName"`
	Roles       []string `json:"roles"`
}

// UpdateRolesRequest replaces the granted roles of an account.
type UpdateRolesRequest struct {
	Roles []string `json:"roles"`
}

// NewUserResponse maps a domain user.
func NewUserResponse(u *domain.User) UserResponse {
	roles := append([]domain.Role(nil), u.GrantedRoles...)
	if roles == nil {
		roles = []domain.Role{}
	}
	return UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		DisplayName:  u.DisplayName,
		GrantedRoles: roles,
		ActiveRole:   u.ActiveRole,
		CreatedAt:    u.CreatedAt,
	}
}
