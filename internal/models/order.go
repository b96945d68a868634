package models

import (
	"time"

	"github.com/google/uuid"
)

// Order statuses. An order is created as pending, advanced by vendor
// actions to ready and then completed, and never moves backwards.
const (
	OrderStatusPending   = "pending"
	OrderStatusReady     = "ready"
	OrderStatusCompleted = "completed"
)

type Order struct {
	ID          uuid.UUID `json:"id" db:"id"`
	StudentID   uuid.UUID `json:"student_id" db:"student_id"`
	CanteenID   uuid.UUID `json:"canteen_id" db:"canteen_id"`
	TotalAmount float64   `json:"total_amount" db:"total_amount"`
	Status      string    `json:"status" db:"status"`
	PickupCode  string    `json:"pickup_code" db:"pickup_code"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Active reports whether the order still owns its pickup code. Pickup
// codes are unique among non-completed orders only.
func (o *Order) Active() bool {
	return o.Status != OrderStatusCompleted
}

// NextStatus returns the status that follows s, or "" for the terminal
// status. The machine has no cycles and no skips.
func NextStatus(s string) string {
	switch s {
	case OrderStatusPending:
		return OrderStatusReady
	case OrderStatusReady:
		return OrderStatusCompleted
	}
	return ""
}

// ValidOrderStatus reports whether s is one of the lifecycle states.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPending, OrderStatusReady, OrderStatusCompleted:
		return true
	}
	return false
}
