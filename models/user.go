package models

import (
	"time"
)

// UserRole represents the role of a user within the CRM
type UserRole string

const (
	RoleAdmin      UserRole = "admin"
	RoleSales      UserRole = "sales"
	RoleManagement UserRole = "management"
)

// Valid reports whether the role is one of the known roles
func (r UserRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleSales, RoleManagement:
		return true
	}
	return false
}

// User represents a CRM user account
type User struct {
	ID             int64     `json:"id" db:"id"`
	Username       string    `json:"username" db:"username"`
	Email          *string   `json:"email,omitempty" db:"email"`
	HashedPassword string    `json:"-" db:"hashed_password"`
	Role           UserRole  `json:"role" db:"role"`
	IsActive       bool      `json:"is_active" db:"is_active"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// NewUser creates a new User instance. The password must already be hashed;
// plaintext never reaches the persistence or audit layers.
func NewUser(username, hashedPassword string, email *string, role UserRole) *User {
	now := time.Now().UTC()
	return &User{
		Username:       username,
		Email:          email,
		HashedPassword: hashedPassword,
		Role:           role,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// IsAdmin returns true if the user has admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Snapshot returns the full field mapping used for audit snapshots.
// Timestamps are serialized as RFC 3339 strings. The password hash is
// what appears here; the plaintext password never exists on this model.
func (u *User) Snapshot() map[string]any {
	return map[string]any{
		"id":              u.ID,
		"username":        u.Username,
		"email":           strValue(u.Email),
		"hashed_password": u.HashedPassword,
		"role":            string(u.Role),
		"is_active":       u.IsActive,
		"created_at":      isoTime(u.CreatedAt),
		"updated_at":      isoTime(u.UpdatedAt),
	}
}

// UserPatch carries proposed field changes for a user update.
// Nil pointers mean "no change", never "clear this field".
type UserPatch struct {
	Username       *string
	Email          *string
	HashedPassword *string
	Role           *UserRole
	IsActive       *bool
}
