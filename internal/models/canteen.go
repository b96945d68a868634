package models

import (
	"time"

	"github.com/google/uuid"
)

type Canteen struct {
	ID        uuid.UUID `json:"id" db:"id"`
	VendorID  uuid.UUID `json:"vendor_id" db:"vendor_id"`
	Name      string    `json:"name" db:"name"`
	Location  string    `json:"location" db:"location"`
	ImageURL  *string   `json:"image_url" db:"image_url"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
