package models

import (
	"time"

	"github.com/google/uuid"
)

// Roles a principal can hold. One row per principal, written once at
// signup or first federated sign-in and trusted for routing thereafter.
const (
	RoleStudent = "student"
	RoleVendor  = "vendor"
)

type UserRole struct {
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Role      string    `json:"role" db:"role"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ValidRole reports whether role is one of the assignable roles.
func ValidRole(role string) bool {
	return role == RoleStudent || role == RoleVendor
}
