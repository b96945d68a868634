package models

import (
	"time"

	"github.com/google/uuid"
)

type Category struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CanteenID uuid.UUID `json:"canteen_id" db:"canteen_id"`
	Name      string    `json:"name" db:"name"`
	ImageURL  *string   `json:"image_url" db:"image_url"`
	// VariablePricing marks a category whose items are priced at
	// add-to-cart time from a fixed tier set instead of the catalog
	// price. Categories created before the flag existed fall back to a
	// name-based predicate in the cart package.
	VariablePricing bool      `json:"variable_pricing" db:"variable_pricing"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}
