// Package realtime fans order changes out to the student and vendor
// views. Every committed insert or status update is published as an
// event scoped by ownership; subscribers receive events for their scope
// only and react by alerting the user and re-fetching their order list.
package realtime

import (
	"context"
	"fmt"

	"campuseats/internal/models"

	"github.com/google/uuid"
)

type EventKind string

const (
	EventInsert EventKind = "insert"
	EventUpdate EventKind = "update"
)

// OrderEvent carries before/after snapshots of one order row. Old is nil
// for inserts.
type OrderEvent struct {
	Kind EventKind     `json:"kind"`
	Old  *models.Order `json:"old,omitempty"`
	New  *models.Order `json:"new"`
}

// Filter selects one ownership scope: the orders belonging to a student
// or the orders belonging to a canteen. Exactly one field is set.
type Filter struct {
	StudentID *uuid.UUID
	CanteenID *uuid.UUID
}

func StudentFilter(id uuid.UUID) Filter { return Filter{StudentID: &id} }
func CanteenFilter(id uuid.UUID) Filter { return Filter{CanteenID: &id} }

func (f Filter) channel() string {
	if f.StudentID != nil {
		return fmt.Sprintf("campuseats:orders:student:%s", f.StudentID.String())
	}
	if f.CanteenID != nil {
		return fmt.Sprintf("campuseats:orders:canteen:%s", f.CanteenID.String())
	}
	return "campuseats:orders"
}

type Handler func(OrderEvent)

// Bus is the change-notification feed. Delivery is per-subscription
// ordered but not guaranteed; a missed event is healed by the next
// re-fetch, never retried here.
type Bus interface {
	Publish(ctx context.Context, ev OrderEvent) error
	Subscribe(ctx context.Context, f Filter, h Handler) (*Subscription, error)
}

// Subscription is a cancellable handle on one subscribed scope.
// Cancel is idempotent.
type Subscription struct {
	cancel func()
}

func NewSubscription(cancel func()) *Subscription {
	return &Subscription{cancel: cancel}
}

func (s *Subscription) Cancel() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}
