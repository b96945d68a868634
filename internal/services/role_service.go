package services

import (
	"context"
	"fmt"

	"campuseats/internal/models"
	"campuseats/internal/repositories"

	"github.com/google/uuid"
)

// RoleService resolves a signed-in principal to its role. A role row is
// written once, at signup or first federated sign-in, and trusted for
// routing afterwards.
type RoleService interface {
	// Resolve returns the principal's role, or "" when no row exists
	// yet. Transient lookup failures surface as errors so callers treat
	// the principal as unauthenticated rather than guessing.
	Resolve(ctx context.Context, userID uuid.UUID) (string, error)
	// Assign persists role for the principal and returns the role that
	// is effective afterwards. The insert is idempotent per principal:
	// under duplicate callback invocations the first write wins and both
	// callers observe the same value.
	Assign(ctx context.Context, userID uuid.UUID, role string) (string, error)
	// EnsureDefault assigns the student role when no explicit choice was
	// made, as happens on first sign-in through the federated provider.
	EnsureDefault(ctx context.Context, userID uuid.UUID) (string, error)
}

type roleService struct {
	userRoleRepo repositories.UserRoleRepository
}

func NewRoleService(userRoleRepo repositories.UserRoleRepository) RoleService {
	return &roleService{userRoleRepo: userRoleRepo}
}

func (s *roleService) Resolve(ctx context.Context, userID uuid.UUID) (string, error) {
	userRole, err := s.userRoleRepo.GetByUserID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("resolve role: %w", err)
	}
	if userRole == nil {
		return "", nil
	}
	return userRole.Role, nil
}

func (s *roleService) Assign(ctx context.Context, userID uuid.UUID, role string) (string, error) {
	if !models.ValidRole(role) {
		return "", fmt.Errorf("invalid role %q", role)
	}

	if err := s.userRoleRepo.Create(ctx, &models.UserRole{UserID: userID, Role: role}); err != nil {
		return "", fmt.Errorf("assign role: %w", err)
	}

	// Re-read rather than trust our own write: if a concurrent caller
	// inserted first, its role is the one that stuck.
	userRole, err := s.userRoleRepo.GetByUserID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("read back role: %w", err)
	}
	if userRole == nil {
		return "", fmt.Errorf("role row missing after insert for user %s", userID)
	}
	return userRole.Role, nil
}

func (s *roleService) EnsureDefault(ctx context.Context, userID uuid.UUID) (string, error) {
	return s.Assign(ctx, userID, models.RoleStudent)
}
