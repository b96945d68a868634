package repositories

import (
	"context"
	"errors"

	"campuseats/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	ListByCanteen(ctx context.Context, canteenID uuid.UUID) ([]*models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type categoryRepo struct {
	db Database
}

func NewCategoryRepo(db Database) CategoryRepository {
	return &categoryRepo{db: db}
}

const categoryColumns = `id, canteen_id, name, image_url, variable_pricing, created_at, updated_at`

func (r *categoryRepo) Create(ctx context.Context, category *models.Category) error {
	query := `
		INSERT INTO categories (id, canteen_id, name, image_url, variable_pricing, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, category.ID, category.CanteenID, category.Name, category.ImageURL, category.VariablePricing)
	return err
}

func (r *categoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	category := &models.Category{}
	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&category.ID, &category.CanteenID, &category.Name, &category.ImageURL, &category.VariablePricing, &category.CreatedAt, &category.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (r *categoryRepo) ListByCanteen(ctx context.Context, canteenID uuid.UUID) ([]*models.Category, error) {
	query := `
		SELECT ` + categoryColumns + `
		FROM categories
		WHERE canteen_id = $1
		ORDER BY name
	`
	rows, err := r.db.Query(ctx, query, canteenID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		category := &models.Category{}
		if err := rows.Scan(&category.ID, &category.CanteenID, &category.Name, &category.ImageURL, &category.VariablePricing, &category.CreatedAt, &category.UpdatedAt); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

func (r *categoryRepo) Update(ctx context.Context, category *models.Category) error {
	query := `
		UPDATE categories
		SET name = $1, image_url = $2, variable_pricing = $3, updated_at = NOW()
		WHERE id = $4
	`
	_, err := r.db.Exec(ctx, query, category.Name, category.ImageURL, category.VariablePricing, category.ID)
	return err
}

func (r *categoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	return err
}
