package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/upb/conference-portal/internal/rbac"
)

// User represents a portal account. Roles are stored in the user_roles join table.
type User struct {
	ID           uuid.UUID   `json:"id" db:"id"`
	Name         string      `json:"name" db:"name"`
	Email        string      `json:"email" db:"email"`
	PasswordHash string      `json:"-" db:"password_hash"`
	Roles        []rbac.Role `json:"roles" db:"-"`
	CreatedAt    time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// NewUser creates a new User instance holding the given roles
func NewUser(name, email, passwordHash string, roles ...rbac.Role) *User {
	now := time.Now()
	return &User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Roles:        rbac.Normalize(roles),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// HasRole returns true if the user holds the role
func (u *User) HasRole(role rbac.Role) bool {
	return rbac.HasAnyRole(u.Roles, []rbac.Role{role})
}

// HasAnyRole returns true if the user holds at least one of the roles
func (u *User) HasAnyRole(roles ...rbac.Role) bool {
	return rbac.HasAnyRole(u.Roles, roles)
}

// IsAdmin returns true if the user has the admin role
func (u *User) IsAdmin() bool {
	return u.HasRole(rbac.RoleAdmin)
}
