package models

import (
	"time"

	"github.com/google/uuid"
)

// Profile is the signed-in principal. PasswordHash is empty for accounts
// created through the federated provider.
type Profile struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	Name         string    `json:"name" db:"name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	// NotificationsEnabled mirrors the platform notification permission
	// the user granted. The toast channel works regardless.
	NotificationsEnabled bool      `json:"notifications_enabled" db:"notifications_enabled"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time `json:"updated_at" db:"updated_at"`
}
