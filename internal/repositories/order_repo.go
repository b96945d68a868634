package repositories

import (
	"context"
	"errors"
	"time"

	"campuseats/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	// ErrPickupCodeTaken is returned when the generated pickup code
	// collides with another active order.
	ErrPickupCodeTaken = errors.New("pickup code already in use")
)

type OrderRepository interface {
	// CreateWithItems inserts the order header and all of its line items
	// in one transaction. Either everything is written or nothing is.
	CreateWithItems(ctx context.Context, order *models.Order, items []*models.OrderItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetByIDForCanteen(ctx context.Context, canteenID, id uuid.UUID) (*models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	ListByStudent(ctx context.Context, studentID uuid.UUID, limit, offset int) ([]*models.Order, error)
	ListByCanteen(ctx context.Context, canteenID uuid.UUID, limit, offset int) ([]*models.Order, error)
	ListByCanteenAndStatus(ctx context.Context, canteenID uuid.UUID, status string, limit, offset int) ([]*models.Order, error)
	// ListEmptyHeaders returns orders older than cutoff that have no line
	// items, the residue of a submission interrupted between writes.
	ListEmptyHeaders(ctx context.Context, cutoff time.Time) ([]*models.Order, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type orderRepo struct {
	db Database
}

func NewOrderRepo(db Database) OrderRepository {
	return &orderRepo{db: db}
}

const orderColumns = `id, student_id, canteen_id, total_amount, status, pickup_code, created_at, updated_at`

func scanOrder(row pgx.Row) (*models.Order, error) {
	order := &models.Order{}
	err := row.Scan(&order.ID, &order.StudentID, &order.CanteenID, &order.TotalAmount, &order.Status, &order.PickupCode, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepo) CreateWithItems(ctx context.Context, order *models.Order, items []*models.OrderItem) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Pickup codes are unique among active orders only. The check runs
	// inside the transaction so two concurrent submissions cannot both
	// claim the same code.
	var taken bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM orders WHERE pickup_code = $1 AND status <> $2
		)
	`, order.PickupCode, models.OrderStatusCompleted).Scan(&taken)
	if err != nil {
		return err
	}
	if taken {
		return ErrPickupCodeTaken
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (id, student_id, canteen_id, total_amount, status, pickup_code, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`, order.ID, order.StudentID, order.CanteenID, order.TotalAmount, order.Status, order.PickupCode)
	if err != nil {
		return err
	}

	for _, item := range items {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items (id, order_id, menu_item_id, quantity, price, created_at)
			VALUES ($1, $2, $3, $4, $5, NOW())
		`, item.ID, item.OrderID, item.MenuItemID, item.Quantity, item.Price)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *orderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE id = $1
	`
	return scanOrder(r.db.QueryRow(ctx, query, id))
}

func (r *orderRepo) GetByIDForCanteen(ctx context.Context, canteenID, id uuid.UUID) (*models.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE canteen_id = $1 AND id = $2
	`
	return scanOrder(r.db.QueryRow(ctx, query, canteenID, id))
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	query := `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`
	_, err := r.db.Exec(ctx, query, status, id)
	return err
}

func (r *orderRepo) ListByStudent(ctx context.Context, studentID uuid.UUID, limit, offset int) ([]*models.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE student_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, studentID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (r *orderRepo) ListByCanteen(ctx context.Context, canteenID uuid.UUID, limit, offset int) ([]*models.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE canteen_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.Query(ctx, query, canteenID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (r *orderRepo) ListByCanteenAndStatus(ctx context.Context, canteenID uuid.UUID, status string, limit, offset int) ([]*models.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE canteen_id = $1 AND status = $2
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.Query(ctx, query, canteenID, status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (r *orderRepo) ListEmptyHeaders(ctx context.Context, cutoff time.Time) ([]*models.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders o
		WHERE o.created_at < $1
		AND NOT EXISTS (SELECT 1 FROM order_items oi WHERE oi.order_id = o.id)
	`
	rows, err := r.db.Query(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func (r *orderRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	return err
}

func collectOrders(rows pgx.Rows) ([]*models.Order, error) {
	var orders []*models.Order
	for rows.Next() {
		order := &models.Order{}
		if err := rows.Scan(&order.ID, &order.StudentID, &order.CanteenID, &order.TotalAmount, &order.Status, &order.PickupCode, &order.CreatedAt, &order.UpdatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}
