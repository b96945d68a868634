package repositories

import (
	"context"
	"errors"

	"campuseats/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type CanteenRepository interface {
	Create(ctx context.Context, canteen *models.Canteen) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Canteen, error)
	GetByVendorID(ctx context.Context, vendorID uuid.UUID) (*models.Canteen, error)
	List(ctx context.Context, limit, offset int) ([]*models.Canteen, error)
	Update(ctx context.Context, canteen *models.Canteen) error
}

type canteenRepo struct {
	db Database
}

func NewCanteenRepo(db Database) CanteenRepository {
	return &canteenRepo{db: db}
}

const canteenColumns = `id, vendor_id, name, location, image_url, created_at, updated_at`

func (r *canteenRepo) Create(ctx context.Context, canteen *models.Canteen) error {
	query := `
		INSERT INTO canteens (id, vendor_id, name, location, image_url, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, canteen.ID, canteen.VendorID, canteen.Name, canteen.Location, canteen.ImageURL)
	return err
}

func (r *canteenRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Canteen, error) {
	query := `
		SELECT ` + canteenColumns + `
		FROM canteens
		WHERE id = $1
	`
	return r.scan(ctx, query, id)
}

func (r *canteenRepo) GetByVendorID(ctx context.Context, vendorID uuid.UUID) (*models.Canteen, error) {
	query := `
		SELECT ` + canteenColumns + `
		FROM canteens
		WHERE vendor_id = $1
	`
	return r.scan(ctx, query, vendorID)
}

func (r *canteenRepo) List(ctx context.Context, limit, offset int) ([]*models.Canteen, error) {
	query := `
		SELECT ` + canteenColumns + `
		FROM canteens
		ORDER BY name
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var canteens []*models.Canteen
	for rows.Next() {
		canteen := &models.Canteen{}
		if err := rows.Scan(&canteen.ID, &canteen.VendorID, &canteen.Name, &canteen.Location, &canteen.ImageURL, &canteen.CreatedAt, &canteen.UpdatedAt); err != nil {
			return nil, err
		}
		canteens = append(canteens, canteen)
	}
	return canteens, rows.Err()
}

func (r *canteenRepo) Update(ctx context.Context, canteen *models.Canteen) error {
	query := `
		UPDATE canteens
		SET name = $1, location = $2, image_url = $3, updated_at = NOW()
		WHERE id = $4
	`
	_, err := r.db.Exec(ctx, query, canteen.Name, canteen.Location, canteen.ImageURL, canteen.ID)
	return err
}

func (r *canteenRepo) scan(ctx context.Context, query string, arg any) (*models.Canteen, error) {
	canteen := &models.Canteen{}
	err := r.db.QueryRow(ctx, query, arg).Scan(&canteen.ID, &canteen.VendorID, &canteen.Name, &canteen.Location, &canteen.ImageURL, &canteen.CreatedAt, &canteen.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return canteen, nil
}
