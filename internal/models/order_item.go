package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderItem is a line of an order. Price is the unit price at the time
// the order was placed, deliberately decoupled from the catalog price so
// historical totals stay stable when the menu changes.
type OrderItem struct {
	ID         uuid.UUID `json:"id" db:"id"`
	OrderID    uuid.UUID `json:"order_id" db:"order_id"`
	MenuItemID uuid.UUID `json:"menu_item_id" db:"menu_item_id"`
	Quantity   int       `json:"quantity" db:"quantity"`
	Price      float64   `json:"price" db:"price"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}
