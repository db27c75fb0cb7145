package domain

// Actor identifies who performs a mutation and under which active role.
type Actor struct {
	UserID string
	Role   Role
}

// IsAdmin reports whether the actor operates with admin privileges.
func (a Actor) IsAdmin() bool {
	return a.Role.IsAdmin()
}
