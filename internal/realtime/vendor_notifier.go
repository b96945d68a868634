package realtime

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// VendorNotifier watches one canteen's orders. New orders and status
// changes raise distinct alerts; every event triggers a re-fetch of the
// vendor's order list grouped by status.
type VendorNotifier struct {
	bus      Bus
	alerter  Alerter
	vendorID uuid.UUID
	refresh  func(ctx context.Context, canteenID uuid.UUID)
}

func NewVendorNotifier(bus Bus, alerter Alerter, vendorID uuid.UUID, refresh func(ctx context.Context, canteenID uuid.UUID)) *VendorNotifier {
	return &VendorNotifier{
		bus:      bus,
		alerter:  alerter,
		vendorID: vendorID,
		refresh:  refresh,
	}
}

func (n *VendorNotifier) Start(ctx context.Context, canteenID uuid.UUID) (*Subscription, error) {
	return n.bus.Subscribe(ctx, CanteenFilter(canteenID), func(ev OrderEvent) {
		n.Handle(ctx, canteenID, ev)
	})
}

// Handle reacts to one event on the canteen channel.
func (n *VendorNotifier) Handle(ctx context.Context, canteenID uuid.UUID, ev OrderEvent) {
	if ev.New == nil {
		return
	}

	switch ev.Kind {
	case EventInsert:
		n.alerter.Toast(n.vendorID, "New order received!")
	case EventUpdate:
		if ev.Old != nil && ev.Old.Status != ev.New.Status {
			n.alerter.Toast(n.vendorID, fmt.Sprintf("Order #%s updated → %s", ev.New.PickupCode, ev.New.Status))
		}
	}

	if n.refresh != nil {
		n.refresh(ctx, canteenID)
	}
}
