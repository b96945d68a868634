package models

import (
	"time"

	"github.com/google/uuid"
)

type MenuItem struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	CanteenID   uuid.UUID  `json:"canteen_id" db:"canteen_id"`
	CategoryID  *uuid.UUID `json:"category_id" db:"category_id"`
	Name        string     `json:"name" db:"name"`
	Description *string    `json:"description" db:"description"`
	Price       float64    `json:"price" db:"price"`
	IsAvailable bool       `json:"is_available" db:"is_available"`
	ImageURL    *string    `json:"image_url" db:"image_url"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}
