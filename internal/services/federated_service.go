package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"campuseats/internal/models"
	"campuseats/internal/repositories"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidIDToken = errors.New("invalid identity token")

// FederatedAuthService completes sign-in through the campus identity
// provider. The provider redirects back with a signed ID token; we
// verify it against the provider's JWKS, provision a profile on first
// sign-in, and hand back our own access token.
type FederatedAuthService interface {
	HandleCallback(ctx context.Context, rawIDToken string) (*models.TokenResponse, error)
	Close()
}

type idTokenClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}

type federatedAuthService struct {
	profileRepo repositories.ProfileRepository
	roleSvc     RoleService
	authSvc     AuthService
	jwks        *keyfunc.JWKS
}

func NewFederatedAuthService(profileRepo repositories.ProfileRepository, roleSvc RoleService, authSvc AuthService, jwksURL string) (FederatedAuthService, error) {
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
		RefreshInterval:  time.Hour,
		RefreshRateLimit: 5 * time.Minute,
		RefreshErrorHandler: func(err error) {
			log.Printf("Failed to refresh identity provider JWKS: %v", err)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("load JWKS from %s: %w", jwksURL, err)
	}

	return &federatedAuthService{
		profileRepo: profileRepo,
		roleSvc:     roleSvc,
		authSvc:     authSvc,
		jwks:        jwks,
	}, nil
}

func (s *federatedAuthService) HandleCallback(ctx context.Context, rawIDToken string) (*models.TokenResponse, error) {
	claims := &idTokenClaims{}
	token, err := jwt.ParseWithClaims(rawIDToken, claims, s.jwks.Keyfunc)
	if err != nil || !token.Valid {
		return nil, ErrInvalidIDToken
	}
	if claims.Email == "" {
		return nil, fmt.Errorf("%w: missing email claim", ErrInvalidIDToken)
	}

	profile, err := s.profileRepo.GetByEmail(ctx, claims.Email)
	if err != nil {
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	if profile == nil {
		profile = &models.Profile{
			ID:    uuid.New(),
			Email: claims.Email,
			Name:  claims.Name,
		}
		if err := s.profileRepo.Create(ctx, profile); err != nil {
			return nil, fmt.Errorf("provision profile: %w", err)
		}
	}

	// The callback can fire more than once for the same sign-in. The
	// role write is idempotent, so every invocation lands on the same
	// effective role.
	role, err := s.roleSvc.EnsureDefault(ctx, profile.ID)
	if err != nil {
		return nil, err
	}

	return s.authSvc.GenerateToken(ctx, profile.ID, role)
}

func (s *federatedAuthService) Close() {
	s.jwks.EndBackground()
}
