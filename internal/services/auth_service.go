package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"campuseats/internal/caching"
	"campuseats/internal/models"
	"campuseats/internal/repositories"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrTokenRevoked       = errors.New("token has been revoked")
)

// AuthService handles account creation, password login and JWT token
// management.
type AuthService interface {
	Signup(ctx context.Context, email, name, password, role string) (*models.TokenResponse, error)
	Login(ctx context.Context, email, password string) (*models.TokenResponse, error)
	GenerateToken(ctx context.Context, userID uuid.UUID, role string) (*models.TokenResponse, error)
	ValidateToken(ctx context.Context, token string) (*TokenClaims, error)
	RevokeToken(ctx context.Context, token string) error
}

type authService struct {
	profileRepo repositories.ProfileRepository
	roleSvc     RoleService
	cacheSvc    caching.CacheService
	jwtSecret   []byte
	tokenTTL    int // seconds
}

// TokenClaims represents JWT claims
type TokenClaims struct {
	UserID  string `json:"user_id"`
	Role    string `json:"role"`
	TokenID string `json:"token_id"`
	jwt.RegisteredClaims
}

func NewAuthService(profileRepo repositories.ProfileRepository, roleSvc RoleService, cacheSvc caching.CacheService, jwtSecret string, tokenTTLSeconds int) AuthService {
	return &authService{
		profileRepo: profileRepo,
		roleSvc:     roleSvc,
		cacheSvc:    cacheSvc,
		jwtSecret:   []byte(jwtSecret),
		tokenTTL:    tokenTTLSeconds,
	}
}

func (s *authService) Signup(ctx context.Context, email, name, password, role string) (*models.TokenResponse, error) {
	existing, err := s.profileRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	profile := &models.Profile{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
	}
	if err := s.profileRepo.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}

	effective, err := s.roleSvc.Assign(ctx, profile.ID, role)
	if err != nil {
		return nil, err
	}

	return s.GenerateToken(ctx, profile.ID, effective)
}

func (s *authService) Login(ctx context.Context, email, password string) (*models.TokenResponse, error) {
	profile, err := s.profileRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("lookup email: %w", err)
	}
	if profile == nil || profile.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	role, err := s.roleSvc.Resolve(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	if role == "" {
		// Accounts predating role rows fall back to student.
		role, err = s.roleSvc.EnsureDefault(ctx, profile.ID)
		if err != nil {
			return nil, err
		}
	}

	return s.GenerateToken(ctx, profile.ID, role)
}

func (s *authService) GenerateToken(ctx context.Context, userID uuid.UUID, role string) (*models.TokenResponse, error) {
	now := time.Now()
	tokenID := uuid.NewString()

	claims := TokenClaims{
		UserID:  userID.String(),
		Role:    role,
		TokenID: tokenID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "campuseats-auth",
			Subject:   userID.String(),
			Audience:  jwt.ClaimStrings{"campuseats-api"},
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Duration(s.tokenTTL) * time.Second)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        tokenID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign JWT: %v", err)
	}

	return &models.TokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   s.tokenTTL,
		UserID:      userID.String(),
		Role:        role,
		IssuedAt:    now,
	}, nil
}

func (s *authService) ValidateToken(ctx context.Context, token string) (*TokenClaims, error) {
	jwtToken, err := jwt.ParseWithClaims(token, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %v", err)
	}

	claims, ok := jwtToken.Claims.(*TokenClaims)
	if !ok || !jwtToken.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	blacklistKey := fmt.Sprintf("campuseats:token_blacklist:%s", claims.TokenID)
	revoked, err := s.cacheSvc.GetString(ctx, blacklistKey)
	if err != nil {
		log.Printf("Failed to check token blacklist: %v", err)
	} else if revoked != "" {
		return nil, ErrTokenRevoked
	}

	return claims, nil
}

func (s *authService) RevokeToken(ctx context.Context, token string) error {
	claims, err := s.ValidateToken(ctx, token)
	if err != nil {
		return fmt.Errorf("cannot revoke invalid token: %v", err)
	}

	blacklistKey := fmt.Sprintf("campuseats:token_blacklist:%s", claims.TokenID)
	return s.cacheSvc.SetString(ctx, blacklistKey, "revoked", time.Until(claims.ExpiresAt.Time))
}
