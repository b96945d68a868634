package repositories

import (
	"context"
	"errors"

	"campuseats/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type UserRoleRepository interface {
	// Create inserts the role row for a principal. Inserting a second
	// role for the same principal is a no-op; the first write wins.
	Create(ctx context.Context, userRole *models.UserRole) error
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.UserRole, error)
}

type userRoleRepo struct {
	db Database
}

func NewUserRoleRepo(db Database) UserRoleRepository {
	return &userRoleRepo{db: db}
}

func (r *userRoleRepo) Create(ctx context.Context, userRole *models.UserRole) error {
	query := `
		INSERT INTO user_roles (user_id, role, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, userRole.UserID, userRole.Role)
	return err
}

func (r *userRoleRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.UserRole, error) {
	userRole := &models.UserRole{}
	query := `
		SELECT user_id, role, created_at
		FROM user_roles
		WHERE user_id = $1
	`
	err := r.db.QueryRow(ctx, query, userID).Scan(&userRole.UserID, &userRole.Role, &userRole.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return userRole, nil
}
