package realtime

import (
	"context"
	"fmt"
	"log"

	"campuseats/internal/models"
	"campuseats/internal/repositories"

	"github.com/google/uuid"
)

// StudentNotifier watches one student's orders and fires the "food is
// ready" alert on the transition into ready. The alert is edge-triggered:
// an update that was already ready, or into any other state, never
// re-fires it.
type StudentNotifier struct {
	bus         Bus
	canteenRepo repositories.CanteenRepository
	profileRepo repositories.ProfileRepository
	alerter     Alerter
	// refresh re-fetches the student's order list so displayed state
	// matches the database after an observed change.
	refresh func(ctx context.Context, studentID uuid.UUID)
}

func NewStudentNotifier(bus Bus, canteenRepo repositories.CanteenRepository, profileRepo repositories.ProfileRepository, alerter Alerter, refresh func(ctx context.Context, studentID uuid.UUID)) *StudentNotifier {
	return &StudentNotifier{
		bus:         bus,
		canteenRepo: canteenRepo,
		profileRepo: profileRepo,
		alerter:     alerter,
		refresh:     refresh,
	}
}

// Start subscribes to the student's scope. The subscription lives until
// Cancel or until ctx is done.
func (n *StudentNotifier) Start(ctx context.Context, studentID uuid.UUID) (*Subscription, error) {
	return n.bus.Subscribe(ctx, StudentFilter(studentID), func(ev OrderEvent) {
		n.Handle(ctx, studentID, ev)
	})
}

// Handle reacts to one event on the student channel.
func (n *StudentNotifier) Handle(ctx context.Context, studentID uuid.UUID, ev OrderEvent) {
	if ev.Kind != EventUpdate || ev.New == nil || ev.Old == nil {
		return
	}
	if ev.Old.Status == models.OrderStatusReady || ev.New.Status != models.OrderStatusReady {
		return
	}

	canteenName := "the canteen"
	if canteen, err := n.canteenRepo.GetByID(ctx, ev.New.CanteenID); err != nil {
		log.Printf("student notifier: canteen lookup failed for order %s: %v", ev.New.ID, err)
	} else if canteen != nil {
		canteenName = canteen.Name
	}

	n.alerter.Toast(studentID, fmt.Sprintf("Your food is ready at %s!", canteenName))

	if profile, err := n.profileRepo.GetByID(ctx, studentID); err != nil {
		log.Printf("student notifier: profile lookup failed for %s: %v", studentID, err)
	} else if profile != nil && profile.NotificationsEnabled {
		n.alerter.Push(studentID, "Order ready", fmt.Sprintf("%s, ₹%.2f", canteenName, ev.New.TotalAmount))
	}

	if n.refresh != nil {
		n.refresh(ctx, studentID)
	}
}
