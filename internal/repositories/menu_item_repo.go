package repositories

import (
	"context"
	"errors"

	"campuseats/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type MenuItemRepository interface {
	Create(ctx context.Context, item *models.MenuItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.MenuItem, error)
	ListByCanteen(ctx context.Context, canteenID uuid.UUID) ([]*models.MenuItem, error)
	// ListAvailableByCategory returns the items a student can order from
	// one category, ordered by name.
	ListAvailableByCategory(ctx context.Context, canteenID, categoryID uuid.UUID) ([]*models.MenuItem, error)
	Update(ctx context.Context, item *models.MenuItem) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type menuItemRepo struct {
	db Database
}

func NewMenuItemRepo(db Database) MenuItemRepository {
	return &menuItemRepo{db: db}
}

const menuItemColumns = `id, canteen_id, category_id, name, description, price, is_available, image_url, created_at, updated_at`

func scanMenuItem(row pgx.Row) (*models.MenuItem, error) {
	item := &models.MenuItem{}
	err := row.Scan(&item.ID, &item.CanteenID, &item.CategoryID, &item.Name, &item.Description, &item.Price, &item.IsAvailable, &item.ImageURL, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *menuItemRepo) Create(ctx context.Context, item *models.MenuItem) error {
	query := `
		INSERT INTO menu_items (id, canteen_id, category_id, name, description, price, is_available, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, item.ID, item.CanteenID, item.CategoryID, item.Name, item.Description, item.Price, item.IsAvailable, item.ImageURL)
	return err
}

func (r *menuItemRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	query := `
		SELECT ` + menuItemColumns + `
		FROM menu_items
		WHERE id = $1
	`
	item, err := scanMenuItem(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return item, err
}

func (r *menuItemRepo) ListByCanteen(ctx context.Context, canteenID uuid.UUID) ([]*models.MenuItem, error) {
	query := `
		SELECT ` + menuItemColumns + `
		FROM menu_items
		WHERE canteen_id = $1
		ORDER BY name
	`
	rows, err := r.db.Query(ctx, query, canteenID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMenuItems(rows)
}

func (r *menuItemRepo) ListAvailableByCategory(ctx context.Context, canteenID, categoryID uuid.UUID) ([]*models.MenuItem, error) {
	query := `
		SELECT ` + menuItemColumns + `
		FROM menu_items
		WHERE canteen_id = $1 AND category_id = $2 AND is_available = TRUE
		ORDER BY name
	`
	rows, err := r.db.Query(ctx, query, canteenID, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMenuItems(rows)
}

func (r *menuItemRepo) Update(ctx context.Context, item *models.MenuItem) error {
	query := `
		UPDATE menu_items
		SET category_id = $1, name = $2, description = $3, price = $4, is_available = $5, image_url = $6, updated_at = NOW()
		WHERE id = $7
	`
	_, err := r.db.Exec(ctx, query, item.CategoryID, item.Name, item.Description, item.Price, item.IsAvailable, item.ImageURL, item.ID)
	return err
}

func (r *menuItemRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
	return err
}

func collectMenuItems(rows pgx.Rows) ([]*models.MenuItem, error) {
	var items []*models.MenuItem
	for rows.Next() {
		item := &models.MenuItem{}
		if err := rows.Scan(&item.ID, &item.CanteenID, &item.CategoryID, &item.Name, &item.Description, &item.Price, &item.IsAvailable, &item.ImageURL, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
