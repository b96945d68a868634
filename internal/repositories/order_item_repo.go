package repositories

import (
	"context"

	"campuseats/internal/models"

	"github.com/google/uuid"
)

type OrderItemRepository interface {
	ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]*models.OrderItem, error)
}

type orderItemRepo struct {
	db Database
}

func NewOrderItemRepo(db Database) OrderItemRepository {
	return &orderItemRepo{db: db}
}

// Line items are written together with their order header by
// OrderRepository.CreateWithItems and are immutable afterwards, so this
// repository is read-only.
func (r *orderItemRepo) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]*models.OrderItem, error) {
	query := `
		SELECT id, order_id, menu_item_id, quantity, price, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.OrderItem
	for rows.Next() {
		item := &models.OrderItem{}
		if err := rows.Scan(&item.ID, &item.OrderID, &item.MenuItemID, &item.Quantity, &item.Price, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
