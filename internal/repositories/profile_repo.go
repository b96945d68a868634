package repositories

import (
	"context"
	"errors"

	"campuseats/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	GetByEmail(ctx context.Context, email string) (*models.Profile, error)
	SetNotificationsEnabled(ctx context.Context, id uuid.UUID, enabled bool) error
}

type profileRepo struct {
	db Database
}

func NewProfileRepo(db Database) ProfileRepository {
	return &profileRepo{db: db}
}

const profileColumns = `id, email, name, password_hash, notifications_enabled, created_at, updated_at`

func (r *profileRepo) Create(ctx context.Context, profile *models.Profile) error {
	query := `
		INSERT INTO profiles (id, email, name, password_hash, notifications_enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, profile.ID, profile.Email, profile.Name, profile.PasswordHash, profile.NotificationsEnabled)
	return err
}

func (r *profileRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE id = $1
	`
	return r.scan(ctx, query, id)
}

func (r *profileRepo) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	query := `
		SELECT ` + profileColumns + `
		FROM profiles
		WHERE email = $1
	`
	return r.scan(ctx, query, email)
}

func (r *profileRepo) SetNotificationsEnabled(ctx context.Context, id uuid.UUID, enabled bool) error {
	query := `
		UPDATE profiles
		SET notifications_enabled = $1, updated_at = NOW()
		WHERE id = $2
	`
	_, err := r.db.Exec(ctx, query, enabled, id)
	return err
}

func (r *profileRepo) scan(ctx context.Context, query string, arg any) (*models.Profile, error) {
	profile := &models.Profile{}
	err := r.db.QueryRow(ctx, query, arg).Scan(&profile.ID, &profile.Email, &profile.Name, &profile.PasswordHash, &profile.NotificationsEnabled, &profile.CreatedAt, &profile.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}
