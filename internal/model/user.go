package model

import "time"

// User is the slice of the platform user record this service reads.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// User role constants
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// IsAdmin reports whether the user holds the platform admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
