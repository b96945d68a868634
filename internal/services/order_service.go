package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"campuseats/internal/cart"
	"campuseats/internal/models"
	"campuseats/internal/realtime"
	"campuseats/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/gommon/random"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrInvalidTransition = errors.New("invalid order status transition")
)

// pickup codes are retried on collision this many times before checkout
// gives up. Collisions are rare while fewer than ~10k orders are active.
const pickupCodeAttempts = 5

// OrderServiceInterface owns order submission and the vendor-driven
// lifecycle. All status writes go through MarkReady/MarkCompleted so the
// pending → ready → completed machine cannot be bypassed.
type OrderServiceInterface interface {
	Checkout(ctx context.Context, studentID, canteenID uuid.UUID) (*models.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error)
	OrderItems(ctx context.Context, orderID uuid.UUID) ([]*models.OrderItem, error)
	ListStudentOrders(ctx context.Context, studentID uuid.UUID, limit, offset int) ([]*models.Order, error)
	ListCanteenOrders(ctx context.Context, canteenID uuid.UUID, limit, offset int) ([]*models.Order, error)
	GroupCanteenOrders(ctx context.Context, canteenID uuid.UUID, limit int) (map[string][]*models.Order, error)
	MarkReady(ctx context.Context, canteenID, orderID uuid.UUID) error
	MarkCompleted(ctx context.Context, canteenID, orderID uuid.UUID) error
	ReconcileEmptyOrders(ctx context.Context, olderThan time.Duration) (int, error)
}

type orderService struct {
	orderRepo     repositories.OrderRepository
	orderItemRepo repositories.OrderItemRepository
	cartSvc       *cart.Service
	bus           realtime.Bus
}

func NewOrderService(orderRepo repositories.OrderRepository, orderItemRepo repositories.OrderItemRepository, cartSvc *cart.Service, bus realtime.Bus) OrderServiceInterface {
	return &orderService{
		orderRepo:     orderRepo,
		orderItemRepo: orderItemRepo,
		cartSvc:       cartSvc,
		bus:           bus,
	}
}

// Checkout turns the student's cart for one canteen into an order. The
// header and all line items are written in a single transaction; the
// cart is cleared only after the transaction commits, so a failed
// submission leaves the cart intact for a manual retry.
func (s *orderService) Checkout(ctx context.Context, studentID, canteenID uuid.UUID) (*models.Order, error) {
	c, err := s.cartSvc.Get(ctx, studentID, canteenID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if c.Empty() {
		return nil, cart.ErrEmptyCart
	}

	order := &models.Order{
		ID:          uuid.New(),
		StudentID:   studentID,
		CanteenID:   canteenID,
		TotalAmount: c.Total(),
		Status:      models.OrderStatusPending,
	}

	items := make([]*models.OrderItem, 0, len(c.Lines))
	for _, line := range c.Lines {
		if line.Quantity < 1 {
			return nil, fmt.Errorf("cart line for item %s has quantity %d", line.MenuItemID, line.Quantity)
		}
		items = append(items, &models.OrderItem{
			ID:         uuid.New(),
			OrderID:    order.ID,
			MenuItemID: line.MenuItemID,
			Quantity:   line.Quantity,
			Price:      line.Price,
		})
	}

	for attempt := 0; ; attempt++ {
		order.PickupCode = random.String(4, random.Numeric)
		err = s.orderRepo.CreateWithItems(ctx, order, items)
		if err == nil {
			break
		}
		if errors.Is(err, repositories.ErrPickupCodeTaken) && attempt < pickupCodeAttempts-1 {
			continue
		}
		return nil, fmt.Errorf("create order: %w", err)
	}

	if err := s.cartSvc.Clear(ctx, studentID, canteenID); err != nil {
		// The order is committed; a stale cart is an annoyance, not a
		// failure of the submission.
		log.Printf("checkout: failed to clear cart for student %s canteen %s: %v", studentID, canteenID, err)
	}

	s.publish(ctx, realtime.OrderEvent{Kind: realtime.EventInsert, New: order})

	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	return order, err
}

func (s *orderService) OrderItems(ctx context.Context, orderID uuid.UUID) ([]*models.OrderItem, error) {
	return s.orderItemRepo.ListByOrderID(ctx, orderID)
}

func (s *orderService) ListStudentOrders(ctx context.Context, studentID uuid.UUID, limit, offset int) ([]*models.Order, error) {
	return s.orderRepo.ListByStudent(ctx, studentID, limit, offset)
}

func (s *orderService) ListCanteenOrders(ctx context.Context, canteenID uuid.UUID, limit, offset int) ([]*models.Order, error) {
	return s.orderRepo.ListByCanteen(ctx, canteenID, limit, offset)
}

// GroupCanteenOrders returns the canteen's newest orders bucketed by
// lifecycle state, the shape the vendor dashboard renders.
func (s *orderService) GroupCanteenOrders(ctx context.Context, canteenID uuid.UUID, limit int) (map[string][]*models.Order, error) {
	orders, err := s.orderRepo.ListByCanteen(ctx, canteenID, limit, 0)
	if err != nil {
		return nil, err
	}

	grouped := map[string][]*models.Order{
		models.OrderStatusPending:   {},
		models.OrderStatusReady:     {},
		models.OrderStatusCompleted: {},
	}
	for _, order := range orders {
		grouped[order.Status] = append(grouped[order.Status], order)
	}
	return grouped, nil
}

// MarkReady advances a pending order to ready. Marking an already-ready
// order is a no-op, not an error, so a double-tapped vendor action stays
// harmless. Completed orders are immutable history.
func (s *orderService) MarkReady(ctx context.Context, canteenID, orderID uuid.UUID) error {
	return s.transition(ctx, canteenID, orderID, models.OrderStatusPending, models.OrderStatusReady)
}

// MarkCompleted advances a ready order to completed, the terminal state.
// Pending orders cannot skip straight to completed.
func (s *orderService) MarkCompleted(ctx context.Context, canteenID, orderID uuid.UUID) error {
	return s.transition(ctx, canteenID, orderID, models.OrderStatusReady, models.OrderStatusCompleted)
}

func (s *orderService) transition(ctx context.Context, canteenID, orderID uuid.UUID, from, to string) error {
	order, err := s.orderRepo.GetByIDForCanteen(ctx, canteenID, orderID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrOrderNotFound
	}
	if err != nil {
		return fmt.Errorf("load order: %w", err)
	}

	if order.Status == to {
		return nil // repeated vendor action, idempotent
	}
	if order.Status != from {
		return fmt.Errorf("%w: %s → %s", ErrInvalidTransition, order.Status, to)
	}

	if err := s.orderRepo.UpdateStatus(ctx, orderID, to); err != nil {
		return fmt.Errorf("update status: %w", err)
	}

	old := *order
	updated := *order
	updated.Status = to
	s.publish(ctx, realtime.OrderEvent{Kind: realtime.EventUpdate, Old: &old, New: &updated})

	return nil
}

// ReconcileEmptyOrders voids order headers that never received their
// line items, the residue of a writer that inserted the header and items
// separately and died in between. Returns how many headers were voided.
func (s *orderService) ReconcileEmptyOrders(ctx context.Context, olderThan time.Duration) (int, error) {
	headers, err := s.orderRepo.ListEmptyHeaders(ctx, time.Now().Add(-olderThan))
	if err != nil {
		return 0, fmt.Errorf("list empty headers: %w", err)
	}

	voided := 0
	for _, order := range headers {
		log.Printf("reconcile: voiding empty order %s (student=%s canteen=%s code=%s)", order.ID, order.StudentID, order.CanteenID, order.PickupCode)
		if err := s.orderRepo.Delete(ctx, order.ID); err != nil {
			return voided, fmt.Errorf("void order %s: %w", order.ID, err)
		}
		voided++
	}
	return voided, nil
}

func (s *orderService) publish(ctx context.Context, ev realtime.OrderEvent) {
	if s.bus == nil {
		return
	}
	if err := s.bus.Publish(ctx, ev); err != nil {
		// Notification loss is tolerated; subscribers heal on re-fetch.
		log.Printf("order service: publish %s event for order %s failed: %v", ev.Kind, ev.New.ID, err)
	}
}
